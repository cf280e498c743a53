package review

// BrandKind discriminates the Brand union.
type BrandKind string

const (
	// BrandUnset is the zero value: no brand chosen yet.
	BrandUnset BrandKind = ""
	// BrandKnown is a pick from the catalog's brand list.
	BrandKnown BrandKind = "known"
	// BrandOther is a free-text brand the catalog does not carry.
	BrandOther BrandKind = "other"
)

// Brand is the selected brand of one component: either a catalog entry or a
// free-text custom name. The zero value means unselected.
type Brand struct {
	Kind   BrandKind `json:"kind,omitempty"`
	Name   string    `json:"name,omitempty"`
	Custom string    `json:"custom,omitempty"`
}

// KnownBrand selects a catalog entry.
func KnownBrand(name string) Brand {
	return Brand{Kind: BrandKnown, Name: name}
}

// OtherBrand selects a brand outside the catalog. The custom text may still
// be empty while the user is typing.
func OtherBrand(custom string) Brand {
	return Brand{Kind: BrandOther, Custom: custom}
}

// IsSet reports whether any brand has been chosen.
func (b Brand) IsSet() bool { return b.Kind != BrandUnset }

// IsOther reports whether the brand is a free-text entry.
func (b Brand) IsOther() bool { return b.Kind == BrandOther }

// Display returns the user-facing brand name, empty when unset.
func (b Brand) Display() string {
	switch b.Kind {
	case BrandKnown:
		return b.Name
	case BrandOther:
		return b.Custom
	default:
		return ""
	}
}
