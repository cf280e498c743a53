// Package store persists accepted reviews. It is the submission boundary
// behind review.Submitter: a validated form snapshot goes in, an
// acknowledgement with a review ID comes out. Nested form sections are stored
// as JSON columns; the flat columns exist for querying.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/solarvoice/review-intake/internal/review"
)

// ErrNotFound is returned when no review exists under the requested ID.
var ErrNotFound = errors.New("store: review not found")

const schema = `
CREATE TABLE IF NOT EXISTS reviews (
	review_id          TEXT PRIMARY KEY,
	installer_name     TEXT NOT NULL,
	ratings            TEXT NOT NULL DEFAULT '{}',
	review_description TEXT NOT NULL DEFAULT '',
	review_images      TEXT NOT NULL DEFAULT '[]',
	response_time      TEXT NOT NULL DEFAULT '',
	quote_only         INTEGER NOT NULL DEFAULT 0,
	installation_date  TEXT NOT NULL DEFAULT '',
	system_size        TEXT NOT NULL DEFAULT '',
	system_cost        TEXT NOT NULL DEFAULT '',
	components         TEXT NOT NULL DEFAULT '{}',
	proof_of_purchase  TEXT NOT NULL DEFAULT '[]',
	customer           TEXT NOT NULL DEFAULT '{}',
	created_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reviews_installer ON reviews(installer_name);
`

// SQLite is a review store backed by a single SQLite database file.
type SQLite struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens (creating if needed) the review database at path.
func Open(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }

// StoredReview is an accepted review as persisted.
type StoredReview struct {
	ID        string      `json:"id"`
	Form      review.Form `json:"form"`
	CreatedAt time.Time   `json:"createdAt"`
}

type reviewRow struct {
	ReviewID          string `db:"review_id"`
	InstallerName     string `db:"installer_name"`
	Ratings           string `db:"ratings"`
	ReviewDescription string `db:"review_description"`
	ReviewImages      string `db:"review_images"`
	ResponseTime      string `db:"response_time"`
	QuoteOnly         bool   `db:"quote_only"`
	InstallationDate  string `db:"installation_date"`
	SystemSize        string `db:"system_size"`
	SystemCost        string `db:"system_cost"`
	Components        string `db:"components"`
	ProofOfPurchase   string `db:"proof_of_purchase"`
	Customer          string `db:"customer"`
	CreatedAt         string `db:"created_at"`
}

func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Submit persists a validated form snapshot and acknowledges it. It
// implements review.Submitter.
func (s *SQLite) Submit(ctx context.Context, f review.Form) (review.Ack, error) {
	id := generateID()
	createdAt := s.now()

	row := reviewRow{
		ReviewID:          id,
		InstallerName:     f.InstallerName,
		Ratings:           mustJSON(f.Ratings),
		ReviewDescription: f.ReviewDescription,
		ReviewImages:      mustJSON(emptyAsList(f.ReviewImages)),
		ResponseTime:      f.InstallerResponseTime,
		QuoteOnly:         f.IsQuoteOnly,
		InstallationDate:  f.InstallationDate,
		SystemSize:        f.SystemSize,
		SystemCost:        f.SystemCost,
		Components:        mustJSON(f.Components),
		ProofOfPurchase:   mustJSON(emptyAsList(f.ProofOfPurchase)),
		Customer:          mustJSON(f.Customer),
		CreatedAt:         createdAt.Format(time.RFC3339Nano),
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO reviews (
			review_id, installer_name, ratings, review_description,
			review_images, response_time, quote_only, installation_date,
			system_size, system_cost, components, proof_of_purchase,
			customer, created_at
		) VALUES (
			:review_id, :installer_name, :ratings, :review_description,
			:review_images, :response_time, :quote_only, :installation_date,
			:system_size, :system_cost, :components, :proof_of_purchase,
			:customer, :created_at
		)`, row)
	if err != nil {
		return review.Ack{}, fmt.Errorf("insert review: %w", err)
	}
	return review.Ack{ID: id, ReceivedAt: createdAt}, nil
}

// Get loads one stored review by ID.
func (s *SQLite) Get(ctx context.Context, id string) (StoredReview, error) {
	var row reviewRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM reviews WHERE review_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredReview{}, ErrNotFound
	}
	if err != nil {
		return StoredReview{}, fmt.Errorf("select review: %w", err)
	}
	return rowToStored(row)
}

// List returns the most recent reviews, newest first, capped at limit.
func (s *SQLite) List(ctx context.Context, limit int) ([]StoredReview, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []reviewRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM reviews ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	out := make([]StoredReview, 0, len(rows))
	for _, row := range rows {
		sr, err := rowToStored(row)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, nil
}

func rowToStored(row reviewRow) (StoredReview, error) {
	f := review.Form{
		InstallerName:         row.InstallerName,
		ReviewDescription:     row.ReviewDescription,
		InstallerResponseTime: row.ResponseTime,
		IsQuoteOnly:           row.QuoteOnly,
		InstallationDate:      row.InstallationDate,
		SystemSize:            row.SystemSize,
		SystemCost:            row.SystemCost,
	}
	if err := json.Unmarshal([]byte(row.Ratings), &f.Ratings); err != nil {
		return StoredReview{}, fmt.Errorf("decode ratings: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ReviewImages), &f.ReviewImages); err != nil {
		return StoredReview{}, fmt.Errorf("decode review_images: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Components), &f.Components); err != nil {
		return StoredReview{}, fmt.Errorf("decode components: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ProofOfPurchase), &f.ProofOfPurchase); err != nil {
		return StoredReview{}, fmt.Errorf("decode proof_of_purchase: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Customer), &f.Customer); err != nil {
		return StoredReview{}, fmt.Errorf("decode customer: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return StoredReview{}, fmt.Errorf("parse created_at: %w", err)
	}
	return StoredReview{ID: row.ReviewID, Form: f, CreatedAt: createdAt}, nil
}

func mustJSON(v any) string {
	blob, err := json.Marshal(v)
	if err != nil {
		// All persisted types are plain structs and slices; marshal cannot
		// fail for them.
		panic(err)
	}
	return string(blob)
}

func emptyAsList(atts []review.Attachment) []review.Attachment {
	if atts == nil {
		return []review.Attachment{}
	}
	return atts
}
