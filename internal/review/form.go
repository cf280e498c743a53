// Package review holds the in-progress installer review: the form aggregate
// and its field update operations, the validation engine that gates
// submission, the section visibility rules, and the editing session that ties
// them together.
//
// The aggregate has value semantics. Every update operation takes a Form and
// returns a fresh Form with one leaf field replaced; a snapshot handed out
// earlier is never mutated. Updates perform no validation beyond the three
// entry-point rules (description truncation, the system-cost grammar, and the
// image caps); submission validation is a separate pass in validate.go.
package review

import (
	"regexp"

	"github.com/solarvoice/review-intake/internal/catalog"
)

const (
	// MaxDescriptionRunes caps the free-text review body. Longer input is
	// silently truncated at the point of entry, not rejected.
	MaxDescriptionRunes = 500
	// MaxReviewImages caps the installation photo list.
	MaxReviewImages = 5
	// MaxProofOfPurchase caps the invoice upload.
	MaxProofOfPurchase = 1
)

// systemCostRe is the numeric-string grammar for the cost field: digits with
// at most one decimal point. Non-conforming updates are dropped outright.
var systemCostRe = regexp.MustCompile(`^\d*\.?\d*$`)

// RatingField names one of the four experience scores.
type RatingField string

const (
	RatingCostEffectiveness RatingField = "costEffectiveness"
	RatingPerformance       RatingField = "performance"
	RatingInstallation      RatingField = "installation"
	RatingClientSupport     RatingField = "clientSupport"
)

// RatingSet holds the four experience scores, each 0-5 where 0 means unrated.
type RatingSet struct {
	CostEffectiveness int `json:"costEffectiveness"`
	Performance       int `json:"performance"`
	Installation      int `json:"installation"`
	ClientSupport     int `json:"clientSupport"`
}

// ComponentReview captures the optional per-component detail block.
type ComponentReview struct {
	Brand      Brand  `json:"brand"`
	Rating     int    `json:"rating"`
	Review     string `json:"review"`
	IsTooEarly bool   `json:"isTooEarly"`
}

// Components holds one ComponentReview per fixed equipment category.
type Components struct {
	Inverter  ComponentReview `json:"inverter"`
	Panel     ComponentReview `json:"panel"`
	Battery   ComponentReview `json:"battery"`
	EVCharger ComponentReview `json:"evCharger"`
	HeatPump  ComponentReview `json:"heatPump"`
}

// Get returns the review for a component type, the zero value for an unknown
// type.
func (c Components) Get(t catalog.ComponentType) ComponentReview {
	switch t {
	case catalog.Inverter:
		return c.Inverter
	case catalog.Panel:
		return c.Panel
	case catalog.Battery:
		return c.Battery
	case catalog.EVCharger:
		return c.EVCharger
	case catalog.HeatPump:
		return c.HeatPump
	default:
		return ComponentReview{}
	}
}

func (c Components) with(t catalog.ComponentType, cr ComponentReview) Components {
	switch t {
	case catalog.Inverter:
		c.Inverter = cr
	case catalog.Panel:
		c.Panel = cr
	case catalog.Battery:
		c.Battery = cr
	case catalog.EVCharger:
		c.EVCharger = cr
	case catalog.HeatPump:
		c.HeatPump = cr
	}
	return c
}

// Attachment references one uploaded image. The binary itself lives wherever
// the upload handler put it; the form only carries the handle.
type Attachment struct {
	Name        string `json:"name"`
	StoredPath  string `json:"storedPath"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Customer is the required contact block.
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	PostCode  string `json:"postCode"`
}

// Form is the full review in progress.
type Form struct {
	InstallerName         string       `json:"installerName"`
	Ratings               RatingSet    `json:"ratings"`
	ReviewDescription     string       `json:"reviewDescription"`
	ReviewImages          []Attachment `json:"reviewImages"`
	InstallerResponseTime string       `json:"installerResponseTime"`
	IsQuoteOnly           bool         `json:"isQuoteOnly"`
	InstallationDate      string       `json:"installationDate"`
	SystemSize            string       `json:"systemSize"`
	SystemCost            string       `json:"systemCost"`
	Components            Components   `json:"components"`
	ProofOfPurchase       []Attachment `json:"proofOfPurchase"`
	Customer              Customer     `json:"customer"`
}

// NewForm returns a freshly defaulted aggregate.
func NewForm() Form { return Form{} }

// WithInstallerName replaces the installer name.
func (f Form) WithInstallerName(v string) Form {
	f.InstallerName = v
	return f
}

// WithRating replaces one experience score, clamped to 0-5.
func (f Form) WithRating(field RatingField, v int) Form {
	v = clampRating(v)
	switch field {
	case RatingCostEffectiveness:
		f.Ratings.CostEffectiveness = v
	case RatingPerformance:
		f.Ratings.Performance = v
	case RatingInstallation:
		f.Ratings.Installation = v
	case RatingClientSupport:
		f.Ratings.ClientSupport = v
	}
	return f
}

// WithReviewDescription replaces the review body, truncated to
// MaxDescriptionRunes.
func (f Form) WithReviewDescription(v string) Form {
	f.ReviewDescription = truncateRunes(v, MaxDescriptionRunes)
	return f
}

// AddReviewImages appends installation photos, keeping the first
// MaxReviewImages in arrival order.
func (f Form) AddReviewImages(atts ...Attachment) Form {
	f.ReviewImages = appendCapped(f.ReviewImages, atts, MaxReviewImages)
	return f
}

// RemoveReviewImage drops the photo at index i; out-of-range indexes are
// ignored.
func (f Form) RemoveReviewImage(i int) Form {
	f.ReviewImages = removeAt(f.ReviewImages, i)
	return f
}

// WithResponseTime replaces the installer response time bucket.
func (f Form) WithResponseTime(v string) Form {
	f.InstallerResponseTime = v
	return f
}

// WithQuoteOnly flips the quote-only flag. System and component values
// entered earlier are retained; toggling back reveals them again.
func (f Form) WithQuoteOnly(v bool) Form {
	f.IsQuoteOnly = v
	return f
}

// WithInstallationDate replaces the installation date (YYYY-MM-DD).
func (f Form) WithInstallationDate(v string) Form {
	f.InstallationDate = v
	return f
}

// WithSystemSize replaces the system size bucket.
func (f Form) WithSystemSize(v string) Form {
	f.SystemSize = v
	return f
}

// WithSystemCost replaces the system cost when the proposed text matches the
// numeric grammar; otherwise the prior value is retained.
func (f Form) WithSystemCost(v string) Form {
	if systemCostRe.MatchString(v) {
		f.SystemCost = v
	}
	return f
}

// WithComponentBrand replaces one component's brand selection.
func (f Form) WithComponentBrand(t catalog.ComponentType, b Brand) Form {
	cr := f.Components.Get(t)
	cr.Brand = b
	f.Components = f.Components.with(t, cr)
	return f
}

// WithComponentRating replaces one component's score, clamped to 0-5.
func (f Form) WithComponentRating(t catalog.ComponentType, v int) Form {
	cr := f.Components.Get(t)
	cr.Rating = clampRating(v)
	f.Components = f.Components.with(t, cr)
	return f
}

// WithComponentReviewText replaces one component's free-text review.
func (f Form) WithComponentReviewText(t catalog.ComponentType, v string) Form {
	cr := f.Components.Get(t)
	cr.Review = v
	f.Components = f.Components.with(t, cr)
	return f
}

// WithComponentTooEarly flips one component's "too early to tell" flag. The
// stored rating and review text are retained either way.
func (f Form) WithComponentTooEarly(t catalog.ComponentType, v bool) Form {
	cr := f.Components.Get(t)
	cr.IsTooEarly = v
	f.Components = f.Components.with(t, cr)
	return f
}

// AddProofOfPurchase attaches the invoice, keeping at most one.
func (f Form) AddProofOfPurchase(atts ...Attachment) Form {
	f.ProofOfPurchase = appendCapped(f.ProofOfPurchase, atts, MaxProofOfPurchase)
	return f
}

// RemoveProofOfPurchase drops the invoice at index i.
func (f Form) RemoveProofOfPurchase(i int) Form {
	f.ProofOfPurchase = removeAt(f.ProofOfPurchase, i)
	return f
}

// WithCustomerField replaces one contact field. Fields outside the customer
// block are ignored.
func (f Form) WithCustomerField(field Field, v string) Form {
	switch field {
	case FieldFirstName:
		f.Customer.FirstName = v
	case FieldLastName:
		f.Customer.LastName = v
	case FieldEmail:
		f.Customer.Email = v
	case FieldPhone:
		f.Customer.Phone = v
	case FieldPostCode:
		f.Customer.PostCode = v
	}
	return f
}

func clampRating(v int) int {
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// appendCapped copies base, appends add, and truncates to limit. The copy
// keeps earlier snapshots independent of later appends.
func appendCapped(base, add []Attachment, limit int) []Attachment {
	out := make([]Attachment, 0, len(base)+len(add))
	out = append(out, base...)
	out = append(out, add...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func removeAt(list []Attachment, i int) []Attachment {
	if i < 0 || i >= len(list) {
		return list
	}
	out := make([]Attachment, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out
}
