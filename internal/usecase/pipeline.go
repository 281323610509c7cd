package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ReviewsScanner/internal/domain"
	"ReviewsScanner/internal/ports"
)

// FetchedAtLayout is ISO-8601 UTC with millisecond precision.
const FetchedAtLayout = "2006-01-02T15:04:05.000Z07:00"

var tracer = otel.Tracer("reviewsscanner/usecase")

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	PlaceURL  string
	Source    ports.ReviewSource
	Verifier  ports.AuthoritativeSource
	Artifacts ports.ArtifactStore
	Audits    ports.AuditRepository
	Notifier  ports.Notifier
	Metrics   ports.MetricsRecorder
	Logger    *slog.Logger
	// Clock and NewRunID default to time.Now and uuid.NewString.
	Clock    func() time.Time
	NewRunID func() string
}

// Pipeline implements the review acquisition workflow: scrape, sanitize,
// verify, select, persist.
type Pipeline struct {
	placeURL  string
	source    ports.ReviewSource
	verifier  ports.AuthoritativeSource
	artifacts ports.ArtifactStore
	audits    ports.AuditRepository
	notifier  ports.Notifier
	metrics   ports.MetricsRecorder
	logger    *slog.Logger
	clock     func() time.Time
	newRunID  func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		placeURL:  deps.PlaceURL,
		source:    deps.Source,
		verifier:  deps.Verifier,
		artifacts: deps.Artifacts,
		audits:    deps.Audits,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		clock:     deps.Clock,
		newRunID:  deps.NewRunID,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.newRunID == nil {
		p.newRunID = uuid.NewString
	}
	return p
}

// Run executes one acquisition. Only scraping and artifact writes can fail it;
// verification and the optional sinks log their errors and carry on.
func (p *Pipeline) Run(ctx context.Context) (summary domain.RunSummary, err error) {
	if p.source == nil {
		return summary, errors.New("review source is not configured")
	}
	if p.artifacts == nil {
		return summary, errors.New("artifact store is not configured")
	}

	summary = domain.RunSummary{
		RunID:     p.newRunID(),
		PlaceURL:  p.placeURL,
		NewCount:  -1,
		StartedAt: p.clock(),
	}
	log := p.logger.With("run_id", summary.RunID)

	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	span.SetAttributes(attribute.String("run.id", summary.RunID))
	defer func() {
		summary.FinishedAt = p.clock()
		p.recordMetrics(log, summary, err == nil)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "run failed")
		}
		span.End()
	}()

	raw, err := p.source.FetchReviews(ctx, summary.RunID)
	if err != nil {
		return summary, fmt.Errorf("fetch reviews: %w", err)
	}
	summary.RawCount = len(raw)
	log.Info("raw reviews found", "count", len(raw))

	sanitized := Sanitize(raw)

	authoritative := p.fetchAuthoritative(ctx, log)
	verified := MatchToAuthoritative(sanitized, SanitizeAuthoritative(authoritative))
	summary.APICount = len(authoritative)
	summary.VerifiedCount = CountVerified(verified)
	log.Info("verification finished",
		"api_reviews", summary.APICount,
		"verified", summary.VerifiedCount,
	)

	selected := SelectTopSix(verified)
	summary.SelectedCount = len(selected)
	log.Info("reviews selected", "count", len(selected))

	fetchedAt := summary.StartedAt.UTC().Format(FetchedAtLayout)
	output := BuildOutput(p.placeURL, fetchedAt, selected)
	audit := BuildAudit(p.placeURL, fetchedAt, summary.RunID, len(authoritative), selected)

	if err := p.artifacts.WriteOutput(ctx, output); err != nil {
		return summary, fmt.Errorf("write display artifact: %w", err)
	}
	if err := p.artifacts.WriteAudit(ctx, audit); err != nil {
		return summary, fmt.Errorf("write audit artifact: %w", err)
	}
	log.Info("artifacts written", "displayed", audit.DisplayedCount, "discrepancies", audit.Discrepancies)

	if p.audits != nil {
		summary.NewCount = p.countNew(ctx, log, audit)
		if err := p.audits.SaveAudit(ctx, audit); err != nil {
			log.Warn("persist audit history failed", "error", err)
		}
	}
	if p.notifier != nil {
		summary.FinishedAt = p.clock()
		if err := p.notifier.PublishSummary(ctx, summary); err != nil {
			log.Warn("publish run summary failed", "error", err)
		}
	}

	return summary, nil
}

func (p *Pipeline) fetchAuthoritative(ctx context.Context, log *slog.Logger) []domain.AuthoritativeReview {
	if p.verifier == nil || !p.verifier.Enabled() {
		log.Info("verification skipped", "reason", "place id or api key not configured")
		return nil
	}

	ctx, span := tracer.Start(ctx, "Pipeline.verify")
	defer span.End()

	reviews, err := p.verifier.FetchReviews(ctx)
	if err != nil {
		span.RecordError(err)
		log.Warn("places verification failed", "error", err)
		return nil
	}
	return reviews
}

// countNew must run before the current audit is saved.
func (p *Pipeline) countNew(ctx context.Context, log *slog.Logger, audit domain.AuditArtifact) int {
	hashes := make([]string, len(audit.Items))
	for i, item := range audit.Items {
		hashes[i] = item.TextHash
	}
	seen, err := p.audits.SeenTextHashes(ctx, hashes)
	if err != nil {
		log.Warn("load audit history failed", "error", err)
		return -1
	}
	fresh := 0
	for _, h := range hashes {
		if !seen[h] {
			fresh++
		}
	}
	log.Info("compared with audit history", "new", fresh)
	return fresh
}

func (p *Pipeline) recordMetrics(log *slog.Logger, summary domain.RunSummary, success bool) {
	if p.metrics == nil {
		return
	}
	if err := p.metrics.RecordRun(summary, success); err != nil {
		log.Warn("record metrics failed", "error", err)
	}
}

// BuildOutput maps the selection to the display document.
func BuildOutput(placeURL, fetchedAt string, selected []domain.VerifiedReview) domain.OutputArtifact {
	reviews := make([]domain.ReviewJSON, 0, len(selected))
	for _, r := range selected {
		item := domain.ReviewJSON{
			ID:               r.ID,
			AuthorName:       r.AuthorName,
			AuthorProfileURL: r.AuthorProfileURL,
			AuthorAvatarURL:  r.AuthorAvatarURL,
			Rating:           r.Rating,
			DateText:         r.DateText,
			Text:             r.Text,
			ReviewURL:        r.ReviewURL,
			Verified:         r.Verified,
		}
		if r.HasTimestamp() {
			item.Timestamp = r.Timestamp
		}
		reviews = append(reviews, item)
	}
	return domain.OutputArtifact{PlaceURL: placeURL, FetchedAt: fetchedAt, Reviews: reviews}
}

// BuildAudit records provenance for the selection without storing its text.
func BuildAudit(placeURL, fetchedAt, runID string, apiCount int, selected []domain.VerifiedReview) domain.AuditArtifact {
	items := make([]domain.AuditItem, 0, len(selected))
	unverified := 0
	for _, r := range selected {
		if !r.Verified {
			unverified++
		}
		items = append(items, domain.AuditItem{
			AuthorName: r.AuthorName,
			Rating:     r.Rating,
			Verified:   r.Verified,
			MatchedBy:  r.MatchedBy,
			Similarity: r.Similarity,
			TextHash:   TextHash(r.Text),
		})
	}
	return domain.AuditArtifact{
		PlaceURL:        placeURL,
		FetchedAt:       fetchedAt,
		RunID:           runID,
		APIReviewsCount: apiCount,
		DisplayedCount:  len(selected),
		Discrepancies:   unverified,
		Items:           items,
	}
}

// TextHash is the hex SHA-256 of the normalized text.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeForMatch(text)))
	return hex.EncodeToString(sum[:])
}
