package review

// Visibility reports which optional form sections currently apply. Both
// sections track the quote-only flag together: a reviewer who never proceeded
// past a quote has no system or components to describe.
type Visibility struct {
	SystemDetails    bool `json:"systemDetails"`
	ComponentDetails bool `json:"componentDetails"`
}

// VisibleSections computes section visibility for a snapshot.
func VisibleSections(f Form) Visibility {
	show := !f.IsQuoteOnly
	return Visibility{SystemDetails: show, ComponentDetails: show}
}

// ComponentVisibility reports which sub-fields of one component block apply.
type ComponentVisibility struct {
	// CustomBrand is shown whenever the brand is a free-text entry,
	// independent of the too-early flag.
	CustomBrand bool `json:"customBrand"`
	// TooEarlyFlag is shown once any brand is selected.
	TooEarlyFlag bool `json:"tooEarlyFlag"`
	// RatingReview is shown once a brand is selected and the reviewer has not
	// marked the component too early to rate.
	RatingReview bool `json:"ratingReview"`
}

// ComponentFields computes sub-field visibility for one component block.
func ComponentFields(cr ComponentReview) ComponentVisibility {
	return ComponentVisibility{
		CustomBrand:  cr.Brand.IsOther(),
		TooEarlyFlag: cr.Brand.IsSet(),
		RatingReview: cr.Brand.IsSet() && !cr.IsTooEarly,
	}
}
