// review-receipt renders a stored review's receipt to HTML or PDF.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/solarvoice/review-intake/internal/catalog"
	"github.com/solarvoice/review-intake/internal/receipt"
	"github.com/solarvoice/review-intake/internal/store"
)

func main() {
	var (
		dbPath = flag.String("db", "./reviews.db", "Path to the SQLite review database")
		id     = flag.String("id", "", "Review ID to render")
		out    = flag.String("out", "", "Output file (default: receipt-<id>.html or .pdf)")
		asPDF  = flag.Bool("pdf", false, "Render PDF through headless Chromium instead of HTML")
	)
	flag.Parse()

	if strings.TrimSpace(*id) == "" {
		log.Fatal("--id is required")
	}

	reviews, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open review store: %v", err)
	}
	defer reviews.Close()

	ctx := context.Background()
	sr, err := reviews.Get(ctx, *id)
	if err != nil {
		log.Fatalf("load review %s: %v", *id, err)
	}

	doc, err := receipt.HTML(sr.ID, sr.CreatedAt, sr.Form, catalog.Default())
	if err != nil {
		log.Fatalf("render receipt: %v", err)
	}

	path := *out
	var blob []byte
	if *asPDF {
		blob, err = receipt.NewChromiumPDFRenderer().Render(ctx, doc)
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if path == "" {
			path = "receipt-" + sr.ID + ".pdf"
		}
	} else {
		blob = []byte(doc)
		if path == "" {
			path = "receipt-" + sr.ID + ".html"
		}
	}

	if err := os.WriteFile(path, blob, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	log.Printf("wrote %s (%d bytes)", path, len(blob))
}
