package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/solarvoice/review-intake/internal/catalog"
	"github.com/solarvoice/review-intake/internal/review"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "reviews.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	s.now = func() time.Time {
		return time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	}
	return s
}

func sampleForm() review.Form {
	f := review.NewForm().
		WithInstallerName("Acme Solar").
		WithRating(review.RatingCostEffectiveness, 4).
		WithRating(review.RatingPerformance, 5).
		WithReviewDescription("Punctual crew, tidy wiring.").
		WithResponseTime("24h").
		WithInstallationDate("2026-05-01").
		WithSystemSize("6.6kW - 8kW").
		WithSystemCost("8990.50").
		WithComponentBrand(catalog.Inverter, review.KnownBrand("Fronius")).
		WithComponentRating(catalog.Inverter, 5).
		WithComponentBrand(catalog.Battery, review.OtherBrand("Shed Battery Co")).
		WithComponentTooEarly(catalog.Battery, true).
		AddReviewImages(
			review.Attachment{Name: "roof.jpg", StoredPath: "/uploads/roof.jpg", ContentType: "image/jpeg", Size: 2048},
		).
		AddProofOfPurchase(
			review.Attachment{Name: "invoice.pdf", StoredPath: "/uploads/invoice.pdf", ContentType: "application/pdf", Size: 512},
		)
	f = f.WithCustomerField(review.FieldFirstName, "Jane").
		WithCustomerField(review.FieldLastName, "Doe").
		WithCustomerField(review.FieldEmail, "jane@x.co").
		WithCustomerField(review.FieldPhone, "0400 000 000").
		WithCustomerField(review.FieldPostCode, "2000")
	return f
}

func TestSubmitAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := sampleForm()
	ack, err := s.Submit(ctx, f)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ack.ID == "" {
		t.Fatal("ack must carry a review id")
	}
	if !ack.ReceivedAt.Equal(time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("received at = %v", ack.ReceivedAt)
	}

	got, err := s.Get(ctx, ack.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != ack.ID {
		t.Fatalf("id = %q, want %q", got.ID, ack.ID)
	}
	if !reflect.DeepEqual(got.Form, f) {
		t.Fatalf("form round trip mismatch:\n got %+v\nwant %+v", got.Form, f)
	}
	if !got.CreatedAt.Equal(ack.ReceivedAt) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, ack.ReceivedAt)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSubmitGeneratesUniqueIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		ack, err := s.Submit(ctx, sampleForm())
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if seen[ack.ID] {
			t.Fatalf("duplicate id %q", ack.ID)
		}
		seen[ack.ID] = true
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Submit(ctx, sampleForm()); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	got, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("list = %d rows, want 2", len(got))
	}
}

func TestQuoteOnlyRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := sampleForm().WithQuoteOnly(true)
	ack, err := s.Submit(ctx, f)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	got, err := s.Get(ctx, ack.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Form.IsQuoteOnly {
		t.Fatal("quote-only flag lost")
	}
	// Suppressed sections keep their stored values through persistence too.
	if got.Form.SystemCost != "8990.50" {
		t.Fatalf("system cost = %q", got.Form.SystemCost)
	}
}
