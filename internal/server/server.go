// Package server exposes the review intake over HTTP: the option catalog,
// review submission with photo uploads, stored-review lookup, receipt
// rendering, and the best-effort text refinement endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/solarvoice/review-intake/internal/catalog"
	"github.com/solarvoice/review-intake/internal/receipt"
	"github.com/solarvoice/review-intake/internal/review"
	"github.com/solarvoice/review-intake/internal/store"
)

// ReviewStore is the slice of the store the server needs.
type ReviewStore interface {
	Submit(ctx context.Context, f review.Form) (review.Ack, error)
	Get(ctx context.Context, id string) (store.StoredReview, error)
}

// TextRefiner polishes review text; disabled refiners return input unchanged.
type TextRefiner interface {
	Refine(ctx context.Context, text string) string
	Enabled() bool
}

type Server struct {
	cat       *catalog.Catalog
	reviews   ReviewStore
	refiner   TextRefiner
	pdf       receipt.PDFRenderer
	uploadDir string
	tracer    trace.Tracer
}

// New wires the intake handler. pdf may be nil, in which case the PDF receipt
// endpoint reports the feature unavailable.
func New(cat *catalog.Catalog, reviews ReviewStore, refiner TextRefiner, pdf receipt.PDFRenderer, uploadDir string) http.Handler {
	s := &Server{
		cat:       cat,
		reviews:   reviews,
		refiner:   refiner,
		pdf:       pdf,
		uploadDir: uploadDir,
		tracer:    otel.Tracer("review-intake/server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/catalog", s.handleCatalog)
	mux.HandleFunc("/reviews", s.handleSubmit)
	mux.HandleFunc("/reviews/", s.handleReview)
	mux.HandleFunc("/refine", s.handleRefine)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{"ok": true, "refiner": s.refiner != nil && s.refiner.Enabled()})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, 200, s.cat)
}

type componentPayload struct {
	Brand       string `json:"brand"`
	CustomBrand string `json:"customBrand"`
	Rating      int    `json:"rating"`
	Review      string `json:"review"`
	IsTooEarly  bool   `json:"isTooEarly"`
}

type submitPayload struct {
	InstallerName         string                      `json:"installerName"`
	Ratings               review.RatingSet            `json:"ratings"`
	ReviewDescription     string                      `json:"reviewDescription"`
	InstallerResponseTime string                      `json:"installerResponseTime"`
	IsQuoteOnly           bool                        `json:"isQuoteOnly"`
	InstallationDate      string                      `json:"installationDate"`
	SystemSize            string                      `json:"systemSize"`
	SystemCost            string                      `json:"systemCost"`
	Components            map[string]componentPayload `json:"components"`
	Customer              review.Customer             `json:"customer"`
}

// brandFromPayload translates the wire's brand/customBrand pair into the
// Brand union. "Other" is the sentinel the form clients send for a free-text
// brand.
func brandFromPayload(p componentPayload) review.Brand {
	switch {
	case p.Brand == "Other":
		return review.OtherBrand(p.CustomBrand)
	case strings.TrimSpace(p.Brand) == "":
		return review.Brand{}
	default:
		return review.KnownBrand(p.Brand)
	}
}

// buildForm feeds the wire payload through the form's own update operations
// so the entry-point rules (truncation, cost grammar, image caps) apply at
// the boundary exactly as they do in an interactive session.
func buildForm(p submitPayload, photos, proof []review.Attachment) review.Form {
	f := review.NewForm().
		WithInstallerName(p.InstallerName).
		WithRating(review.RatingCostEffectiveness, p.Ratings.CostEffectiveness).
		WithRating(review.RatingPerformance, p.Ratings.Performance).
		WithRating(review.RatingInstallation, p.Ratings.Installation).
		WithRating(review.RatingClientSupport, p.Ratings.ClientSupport).
		WithReviewDescription(p.ReviewDescription).
		WithResponseTime(p.InstallerResponseTime).
		WithQuoteOnly(p.IsQuoteOnly).
		WithInstallationDate(p.InstallationDate).
		WithSystemSize(p.SystemSize).
		WithSystemCost(p.SystemCost)

	for name, cp := range p.Components {
		t := catalog.ComponentType(name)
		f = f.WithComponentBrand(t, brandFromPayload(cp)).
			WithComponentRating(t, cp.Rating).
			WithComponentReviewText(t, cp.Review).
			WithComponentTooEarly(t, cp.IsTooEarly)
	}

	f = f.WithCustomerField(review.FieldFirstName, p.Customer.FirstName).
		WithCustomerField(review.FieldLastName, p.Customer.LastName).
		WithCustomerField(review.FieldEmail, p.Customer.Email).
		WithCustomerField(review.FieldPhone, p.Customer.Phone).
		WithCustomerField(review.FieldPostCode, p.Customer.PostCode)

	f = f.AddReviewImages(photos...)
	f = f.AddProofOfPurchase(proof...)
	return f
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, span := s.tracer.Start(r.Context(), "reviews.submit")
	defer span.End()

	var (
		payload submitPayload
		photos  []review.Attachment
		proof   []review.Attachment
	)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeError(w, 400, "invalid multipart form")
			return
		}
		raw := r.FormValue("review")
		if strings.TrimSpace(raw) == "" {
			writeError(w, 400, "review field is required")
			return
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			writeError(w, 400, fmt.Sprintf("invalid review payload: %v", err))
			return
		}
		var err error
		photos, err = s.saveUploads(r, "photos", review.MaxReviewImages)
		if err != nil {
			writeError(w, 500, "failed to save uploaded photos")
			return
		}
		proof, err = s.saveUploads(r, "proofOfPurchase", review.MaxProofOfPurchase)
		if err != nil {
			writeError(w, 500, "failed to save proof of purchase")
			return
		}
	} else {
		defer r.Body.Close()
		dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
		if err := dec.Decode(&payload); err != nil {
			writeError(w, 400, fmt.Sprintf("invalid review payload: %v", err))
			return
		}
	}

	f := buildForm(payload, photos, proof)
	span.SetAttributes(
		attribute.String("review.installer", f.InstallerName),
		attribute.Bool("review.quote_only", f.IsQuoteOnly),
		attribute.Int("review.photos", len(f.ReviewImages)),
	)

	if errs := review.Validate(f); !errs.OK() {
		span.SetAttributes(attribute.Int("review.validation_errors", len(errs)))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors":       errs,
			"firstSection": errs.FirstSection(),
		})
		return
	}

	ack, err := s.reviews.Submit(ctx, f)
	if err != nil {
		log.Printf("server submit_failed installer=%q err=%v", f.InstallerName, err)
		writeError(w, 500, "failed to store review")
		return
	}
	log.Printf("server review_accepted id=%s installer=%q photos=%d", ack.ID, f.InstallerName, len(f.ReviewImages))

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         ack.ID,
		"receivedAt": ack.ReceivedAt.Format(time.RFC3339Nano),
		"status":     "submitted",
	})
}

// saveUploads stores at most limit files from the named multipart field.
// Files past the limit would be dropped by the form's cap anyway, so they are
// never written to disk.
func (s *Server) saveUploads(r *http.Request, field string, limit int) ([]review.Attachment, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	if len(headers) > limit {
		headers = headers[:limit]
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, err
	}
	var atts []review.Attachment
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("%d-%s", time.Now().UTC().UnixNano(), filepath.Base(header.Filename))
		dst := filepath.Join(s.uploadDir, name)
		out, err := os.Create(dst)
		if err != nil {
			src.Close()
			return nil, err
		}
		if _, err := io.Copy(out, src); err != nil {
			out.Close()
			src.Close()
			return nil, err
		}
		out.Close()
		src.Close()
		atts = append(atts, review.Attachment{
			Name:        header.Filename,
			StoredPath:  dst,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		})
	}
	return atts, nil
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	// Path: /reviews/{id}[/receipt[.pdf]]
	path := strings.TrimPrefix(r.URL.Path, "/reviews/")
	path = strings.TrimSuffix(path, "/")
	id, rest, _ := strings.Cut(path, "/")
	if id == "" {
		writeError(w, 400, "review id is required")
		return
	}

	sr, err := s.reviews.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, 404, "review not found")
			return
		}
		log.Printf("server get_review_failed id=%s err=%v", id, err)
		writeError(w, 500, "failed to load review")
		return
	}

	switch rest {
	case "":
		writeJSON(w, 200, sr)
	case "receipt":
		s.serveReceiptHTML(w, sr)
	case "receipt.pdf":
		s.serveReceiptPDF(w, r, sr)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) serveReceiptHTML(w http.ResponseWriter, sr store.StoredReview) {
	doc, err := receipt.HTML(sr.ID, sr.CreatedAt, sr.Form, s.cat)
	if err != nil {
		log.Printf("server receipt_html_failed id=%s err=%v", sr.ID, err)
		writeError(w, 500, "failed to render receipt")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, doc)
}

func (s *Server) serveReceiptPDF(w http.ResponseWriter, r *http.Request, sr store.StoredReview) {
	if s.pdf == nil {
		writeError(w, 503, "pdf rendering is not available")
		return
	}
	doc, err := receipt.HTML(sr.ID, sr.CreatedAt, sr.Form, s.cat)
	if err != nil {
		log.Printf("server receipt_html_failed id=%s err=%v", sr.ID, err)
		writeError(w, 500, "failed to render receipt")
		return
	}
	pdf, err := s.pdf.Render(r.Context(), doc)
	if err != nil {
		log.Printf("server receipt_pdf_failed id=%s err=%v", sr.ID, err)
		writeError(w, 500, "failed to render receipt pdf")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "receipt-"+sr.ID+".pdf"))
	_, _ = w.Write(pdf)
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var payload struct {
		Text string `json:"text"`
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	if err := dec.Decode(&payload); err != nil {
		writeError(w, 400, "invalid refine payload")
		return
	}

	ctx, span := s.tracer.Start(r.Context(), "reviews.refine")
	defer span.End()
	span.SetAttributes(attribute.Int("refine.input_chars", len(payload.Text)))

	text := payload.Text
	if s.refiner != nil {
		text = s.refiner.Refine(ctx, payload.Text)
	}
	// Refinement is best-effort: the client gets either polished text or the
	// original, never an error.
	writeJSON(w, 200, map[string]any{
		"text":    text,
		"changed": text != payload.Text,
	})
}
