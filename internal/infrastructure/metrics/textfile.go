// Package metrics exports run statistics in the Prometheus text format, for
// node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ReviewsScanner/internal/domain"
	"ReviewsScanner/internal/ports"
)

const namespace = "reviews"

// Recorder keeps the last run's gauges in a private registry.
type Recorder struct {
	path     string
	registry *prometheus.Registry

	raw         prometheus.Gauge
	verified    prometheus.Gauge
	selected    prometheus.Gauge
	fresh       prometheus.Gauge
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
	runs        *prometheus.CounterVec
}

var _ ports.MetricsRecorder = (*Recorder)(nil)

// NewRecorder writes to path after every run; an empty path only keeps the
// values in memory.
func NewRecorder(path string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	return &Recorder{
		path:        path,
		registry:    reg,
		raw:         gauge("last_run_raw", "Review candidates extracted by the last successful run."),
		verified:    gauge("last_run_verified", "Reviews matched against the Places API by the last successful run."),
		selected:    gauge("last_run_selected", "Reviews written to the display artifact by the last successful run."),
		fresh:       gauge("last_run_new", "Displayed reviews not shown by any earlier run."),
		duration:    gauge("last_run_duration_seconds", "Wall time of the last run."),
		lastSuccess: gauge("last_success_timestamp_seconds", "Unix time the last successful run finished."),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by result.",
		}, []string{"result"}),
	}
}

// Registry exposes the collectors, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordRun updates the collectors and rewrites the textfile.
func (r *Recorder) RecordRun(summary domain.RunSummary, success bool) error {
	r.duration.Set(summary.Duration().Seconds())
	if success {
		r.runs.WithLabelValues("success").Inc()
		r.raw.Set(float64(summary.RawCount))
		r.verified.Set(float64(summary.VerifiedCount))
		r.selected.Set(float64(summary.SelectedCount))
		if summary.NewCount >= 0 {
			r.fresh.Set(float64(summary.NewCount))
		}
		r.lastSuccess.Set(float64(summary.FinishedAt.Unix()))
	} else {
		r.runs.WithLabelValues("failure").Inc()
	}

	if r.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
