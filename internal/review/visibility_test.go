package review

import (
	"testing"

	"github.com/solarvoice/review-intake/internal/catalog"
)

func TestVisibleSections(t *testing.T) {
	f := NewForm()
	vis := VisibleSections(f)
	if !vis.SystemDetails || !vis.ComponentDetails {
		t.Fatalf("default form must show both sections: %+v", vis)
	}

	vis = VisibleSections(f.WithQuoteOnly(true))
	if vis.SystemDetails || vis.ComponentDetails {
		t.Fatalf("quote-only must suppress both sections together: %+v", vis)
	}

	// Nothing but the quote-only flag affects section visibility.
	f = f.WithQuoteOnly(true).
		WithComponentBrand(catalog.Battery, KnownBrand("BYD")).
		WithSystemCost("9999")
	if vis := VisibleSections(f); vis.SystemDetails || vis.ComponentDetails {
		t.Fatalf("other fields leaked into visibility: %+v", vis)
	}
}

func TestComponentFields(t *testing.T) {
	var cr ComponentReview
	if vis := ComponentFields(cr); vis != (ComponentVisibility{}) {
		t.Fatalf("empty brand must hide all sub-fields: %+v", vis)
	}

	cr.Brand = KnownBrand("Fronius")
	vis := ComponentFields(cr)
	if !vis.TooEarlyFlag || !vis.RatingReview || vis.CustomBrand {
		t.Fatalf("known brand: %+v", vis)
	}

	cr.IsTooEarly = true
	vis = ComponentFields(cr)
	if vis.RatingReview {
		t.Fatal("too-early must suppress rating and review")
	}
	if !vis.TooEarlyFlag {
		t.Fatal("too-early checkbox itself stays visible")
	}

	// Custom-brand entry shows for "other" regardless of the too-early flag.
	cr.Brand = OtherBrand("")
	vis = ComponentFields(cr)
	if !vis.CustomBrand {
		t.Fatalf("other brand must show custom-brand entry: %+v", vis)
	}
}
