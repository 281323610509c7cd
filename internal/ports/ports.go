package ports

import (
	"context"
	"time"

	"ReviewsScanner/internal/domain"
)

// Surface is the document or frame that DOM queries and actions run against.
type Surface interface {
	// Name identifies the surface in logs ("main" or a frame id).
	Name() string
	URL() string
	Exists(ctx context.Context, selector string) (bool, error)
	Count(ctx context.Context, selector string) (int, error)
	Click(ctx context.Context, selector string) error
	// ClickByText clicks the first button whose text contains one of the keywords and
	// returns the keyword that matched, or "" when nothing matched.
	ClickByText(ctx context.Context, keywords []string) (string, error)
	// ScrollBy scrolls the first element matching selector, or the window when selector is empty.
	ScrollBy(ctx context.Context, selector string, dy int) error
	Evaluate(ctx context.Context, expression string, out any) error
	// Snapshot serializes the document, open shadow roots included.
	Snapshot(ctx context.Context) (string, error)
}

// Page is a loaded browser tab.
type Page interface {
	Main() Surface
	// Surfaces returns the main document followed by every frame in tree order.
	Surfaces(ctx context.Context) ([]Surface, error)
	Close() error
}

// Browser opens pages; the returned page owns the browser process.
type Browser interface {
	Open(ctx context.Context, url string) (Page, error)
}

// ReviewSource yields raw review candidates for one place. runID prefixes
// synthetic review ids.
type ReviewSource interface {
	FetchReviews(ctx context.Context, runID string) ([]domain.RawReview, error)
}

// AuthoritativeSource returns reviews from a trusted structured API.
type AuthoritativeSource interface {
	Enabled() bool
	FetchReviews(ctx context.Context) ([]domain.AuthoritativeReview, error)
}

// ArtifactStore persists the display and audit documents.
type ArtifactStore interface {
	WriteOutput(ctx context.Context, artifact domain.OutputArtifact) error
	WriteAudit(ctx context.Context, artifact domain.AuditArtifact) error
}

// AuditRepository keeps a history of audit artifacts.
type AuditRepository interface {
	SaveAudit(ctx context.Context, audit domain.AuditArtifact) error
	// SeenTextHashes reports which hashes an earlier run already displayed.
	SeenTextHashes(ctx context.Context, hashes []string) (map[string]bool, error)
}

// Notifier announces a finished run.
type Notifier interface {
	PublishSummary(ctx context.Context, summary domain.RunSummary) error
}

// MetricsRecorder exports run counters.
type MetricsRecorder interface {
	RecordRun(summary domain.RunSummary, success bool) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
