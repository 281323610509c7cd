package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ReviewsScanner/internal/domain"
	"ReviewsScanner/internal/interaction"
	"ReviewsScanner/internal/ports"
	"ReviewsScanner/internal/scanner"
)

var tracer = otel.Tracer("reviewsscanner/parser")

// GoogleReviewsScanner drives a Google Maps / Search place page in a headless
// browser and extracts its reviews.
type GoogleReviewsScanner struct {
	browser ports.Browser
	consent *interaction.ConsentResolver
	panel   *interaction.Panel
	logger  *slog.Logger
}

var _ scanner.Scanner = (*GoogleReviewsScanner)(nil)

// NewGoogleReviewsScanner wires the browser with the default interaction policy.
func NewGoogleReviewsScanner(b ports.Browser, log *slog.Logger) *GoogleReviewsScanner {
	return &GoogleReviewsScanner{
		browser: b,
		consent: interaction.NewConsentResolver(log),
		panel:   interaction.NewPanel(strings.Join(ReviewContainerSelectors, ", "), log),
		logger:  log,
	}
}

// Name identifies the strategy inside the registry.
func (g *GoogleReviewsScanner) Name() string {
	return "google-maps"
}

// Scan opens the page, clears consent, opens and scrolls the reviews panel, and
// extracts candidates from the selected context. The browser is released on
// every return path.
func (g *GoogleReviewsScanner) Scan(ctx context.Context, req scanner.Request) (reviews []domain.RawReview, err error) {
	ctx, span := tracer.Start(ctx, "GoogleReviewsScanner.Scan")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "scan failed")
		}
		span.SetAttributes(attribute.Int("reviews.raw", len(reviews)))
		span.End()
	}()

	if req.SourceURL == "" {
		return nil, fmt.Errorf("no source url provided")
	}

	page, err := g.browser.Open(ctx, req.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", req.SourceURL, err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			g.warn("close browser", "error", cerr)
		}
	}()

	g.consent.Resolve(ctx, page)

	surface := interaction.LocateReviewsContext(ctx, page, g.logger)
	g.debug("reviews context", "surface", surface.Name(), "url", surface.URL())

	g.panel.Open(ctx, surface)
	g.panel.Scroll(ctx, surface)

	snapshot, err := surface.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", surface.Name(), err)
	}

	base := surface.URL()
	if base == "" {
		base = req.SourceURL
	}
	reviews, err = ExtractReviews(snapshot, ExtractOptions{
		BaseURL:    base,
		RunID:      req.RunID,
		MaxReviews: req.MaxReviews,
	})
	if err != nil {
		return nil, fmt.Errorf("extract reviews: %w", err)
	}

	return reviews, nil
}

func (g *GoogleReviewsScanner) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}

func (g *GoogleReviewsScanner) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}
