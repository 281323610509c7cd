package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewsScanner/internal/domain"
)

func TestRecorderWritesTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "collector", "reviews.prom")
	rec := NewRecorder(path)

	start := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	summary := domain.RunSummary{
		RawCount:      20,
		VerifiedCount: 4,
		SelectedCount: 6,
		NewCount:      1,
		StartedAt:     start,
		FinishedAt:    start.Add(30 * time.Second),
	}
	require.NoError(t, rec.RecordRun(summary, true))

	assert.InDelta(t, 20, testutil.ToFloat64(rec.raw), 0)
	assert.InDelta(t, 30, testutil.ToFloat64(rec.duration), 0)
	assert.InDelta(t, float64(summary.FinishedAt.Unix()), testutil.ToFloat64(rec.lastSuccess), 0)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "reviews_last_run_selected 6")
	assert.Contains(t, text, `reviews_runs_total{result="success"} 1`)
}

func TestRecorderFailureKeepsLastSuccess(t *testing.T) {
	t.Parallel()

	rec := NewRecorder("")
	start := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	require.NoError(t, rec.RecordRun(domain.RunSummary{SelectedCount: 6, NewCount: -1, StartedAt: start, FinishedAt: start}, true))
	require.NoError(t, rec.RecordRun(domain.RunSummary{StartedAt: start, FinishedAt: start.Add(time.Second)}, false))

	assert.InDelta(t, 6, testutil.ToFloat64(rec.selected), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.runs.WithLabelValues("failure")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.duration), 0)
}
