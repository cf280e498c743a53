// Package receipt renders an accepted review into a human-readable receipt:
// a markdown summary, its HTML form, and optionally a PDF printed through
// headless Chromium.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/solarvoice/review-intake/internal/catalog"
	"github.com/solarvoice/review-intake/internal/review"
)

// BuildMarkdown summarizes an accepted review as GFM markdown. Sections the
// visibility policy suppresses (quote-only system and component details) are
// left out of the receipt as well.
func BuildMarkdown(id string, receivedAt time.Time, f review.Form, cat *catalog.Catalog) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Review Receipt\n\n")
	fmt.Fprintf(&b, "**Reference:** %s  \n", id)
	fmt.Fprintf(&b, "**Received:** %s  \n", receivedAt.Format("January 2, 2006"))
	fmt.Fprintf(&b, "**Installer:** %s\n\n", f.InstallerName)

	if f.IsQuoteOnly {
		b.WriteString("_Quote only — the reviewer did not proceed with this installer._\n\n")
	}

	b.WriteString("## Experience Ratings\n\n")
	b.WriteString("| Category | Rating |\n|---|---|\n")
	writeRatingRow(&b, cat, "Cost-Effectiveness", f.Ratings.CostEffectiveness)
	writeRatingRow(&b, cat, "System Performance & Reliability", f.Ratings.Performance)
	writeRatingRow(&b, cat, "Installation Experience", f.Ratings.Installation)
	writeRatingRow(&b, cat, "Client Support Services", f.Ratings.ClientSupport)
	b.WriteString("\n")

	if strings.TrimSpace(f.ReviewDescription) != "" {
		b.WriteString("## Review\n\n")
		b.WriteString(f.ReviewDescription)
		b.WriteString("\n\n")
	}
	if label := responseTimeLabel(cat, f.InstallerResponseTime); label != "" {
		fmt.Fprintf(&b, "**Installer response time:** %s\n\n", label)
	}
	if n := len(f.ReviewImages); n > 0 {
		fmt.Fprintf(&b, "%d installation photo(s) attached.\n\n", n)
	}

	vis := review.VisibleSections(f)
	if vis.SystemDetails {
		writeSystemSection(&b, f)
	}
	if vis.ComponentDetails {
		writeComponentSection(&b, f, cat)
	}

	b.WriteString("## Reviewer\n\n")
	fmt.Fprintf(&b, "%s %s, %s\n", f.Customer.FirstName, f.Customer.LastName, f.Customer.PostCode)

	return b.String()
}

func writeRatingRow(b *strings.Builder, cat *catalog.Catalog, label string, rating int) {
	fmt.Fprintf(b, "| %s | %s |\n", label, ratingText(cat, rating))
}

func ratingText(cat *catalog.Catalog, rating int) string {
	if rating == 0 {
		return "Not rated"
	}
	if label, ok := cat.RatingLabels[rating]; ok {
		return fmt.Sprintf("%d/5 — %s", rating, label)
	}
	return fmt.Sprintf("%d/5", rating)
}

func responseTimeLabel(cat *catalog.Catalog, value string) string {
	for _, rt := range cat.ResponseTimes {
		if rt.Value == value {
			return rt.Label
		}
	}
	return ""
}

func writeSystemSection(b *strings.Builder, f review.Form) {
	if f.InstallationDate == "" && f.SystemSize == "" && f.SystemCost == "" && len(f.ProofOfPurchase) == 0 {
		return
	}
	b.WriteString("## System\n\n")
	if f.InstallationDate != "" {
		fmt.Fprintf(b, "- Installed: %s\n", f.InstallationDate)
	}
	if f.SystemSize != "" {
		fmt.Fprintf(b, "- Size: %s\n", f.SystemSize)
	}
	if f.SystemCost != "" {
		fmt.Fprintf(b, "- Cost: $%s\n", f.SystemCost)
	}
	if len(f.ProofOfPurchase) > 0 {
		b.WriteString("- Proof of purchase attached\n")
	}
	b.WriteString("\n")
}

func writeComponentSection(b *strings.Builder, f review.Form, cat *catalog.Catalog) {
	wroteHeader := false
	for _, t := range catalog.ComponentTypes {
		cr := f.Components.Get(t)
		if !cr.Brand.IsSet() {
			continue
		}
		if !wroteHeader {
			b.WriteString("## Components\n\n")
			wroteHeader = true
		}
		label := cat.ComponentLabels[t]
		if label == "" {
			label = string(t)
		}
		fmt.Fprintf(b, "### %s — %s\n\n", label, cr.Brand.Display())
		if cr.IsTooEarly {
			b.WriteString("Too early to rate.\n\n")
			continue
		}
		if cr.Rating > 0 {
			fmt.Fprintf(b, "Rating: %s\n\n", ratingText(cat, cr.Rating))
		}
		if strings.TrimSpace(cr.Review) != "" {
			b.WriteString(cr.Review)
			b.WriteString("\n\n")
		}
	}
}

// HTML converts the receipt markdown into a standalone HTML document.
func HTML(id string, receivedAt time.Time, f review.Form, cat *catalog.Catalog) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var content strings.Builder
	if err := md.Convert([]byte(BuildMarkdown(id, receivedAt, f, cat)), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>Review Receipt</title>" +
		"<style>" + receiptCSS + "</style></head><body>" +
		"<div class='receipt'>" + content.String() + "</div>" +
		"</body></html>", nil
}

const receiptCSS = `
body{font-family:Georgia,serif;color:#1c1917;background:#fff;margin:0;padding:1rem;}
.receipt{max-width:760px;margin:0 auto;}
h1{border-bottom:2px solid #f59e0b;padding-bottom:0.4rem;}
h2{margin-top:1.4rem;}
table{width:100%;border-collapse:collapse;font-size:0.9rem;}
th,td{border:1px solid #a8a29e;padding:0.35rem 0.5rem;text-align:left;}
thead th{background:#f1f5f9;font-weight:700;}
em{color:#78350f;}
@media print{@page{size:auto;margin:12mm;}body{padding:0;}}
`
