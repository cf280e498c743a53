package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/solarvoice/review-intake/internal/catalog"
	"github.com/solarvoice/review-intake/internal/receipt"
	"github.com/solarvoice/review-intake/internal/refiner"
	"github.com/solarvoice/review-intake/internal/server"
	"github.com/solarvoice/review-intake/internal/store"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "Listen address")
		dbPath    = flag.String("db", "./reviews.db", "Path to the SQLite review database")
		uploadDir = flag.String("upload-dir", "./uploads", "Directory for uploaded photos")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	shutdownTracing, err := setupTracing(ctx)
	if err != nil {
		log.Printf("warning: tracing setup failed: %v", err)
	}
	if shutdownTracing != nil {
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer flushCancel()
			_ = shutdownTracing(flushCtx)
		}()
	}

	reviews, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open review store: %v", err)
	}
	defer reviews.Close()

	ref := refiner.NewFromEnv()
	if !ref.Enabled() {
		log.Printf("text refinement disabled (ANTHROPIC_API_KEY not set)")
	}

	handler := server.New(catalog.Default(), reviews, ref, receipt.NewChromiumPDFRenderer(), *uploadDir)

	log.Printf("review-intake listening on %s (db=%s uploads=%s)", *addr, *dbPath, *uploadDir)
	srv := &http.Server{Addr: *addr, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// setupTracing wires the OTLP trace exporter when an endpoint is configured.
// Without one, spans stay no-ops.
func setupTracing(ctx context.Context) (func(context.Context) error, error) {
	if strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")) == "" {
		return nil, nil
	}
	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "review-intake"),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
