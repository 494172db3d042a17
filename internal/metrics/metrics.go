// Package metrics exports run statistics in the Prometheus text format so a
// node_exporter textfile collector can pick up batch results.
package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/salesflow/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "salesflow"

// Registry holds the collectors describing the most recent run.
type Registry struct {
	reg              *prometheus.Registry
	Quality          *prometheus.GaugeVec
	ParseStatus      *prometheus.CounterVec
	DateRule         *prometheus.CounterVec
	SubmissionStatus *prometheus.CounterVec
	FactRows         prometheus.Gauge
	DurationSec      prometheus.Gauge
	LastRunSec       prometheus.Gauge
}

// NewRegistry creates a registry with every salesflow collector registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	quality := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "quality_metric",
		Help:      "Data-quality counts of the last run.",
	}, []string{"metric"})
	parseStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_by_parse_status_total",
		Help:      "Processed records by parse status.",
	}, []string{"parse_status"})
	dateRule := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_by_date_rule_total",
		Help:      "Processed records by date resolution rule.",
	}, []string{"rule"})
	submissionStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_by_submission_status_total",
		Help:      "Processed records by submission status.",
	}, []string{"status"})
	factRows := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fact_rows",
		Help:      "Daily fact rows produced by the last run.",
	})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run.",
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	})

	r.MustRegister(quality, parseStatus, dateRule, submissionStatus, factRows, duration, lastRun)

	// Known label values are exported as zero rather than left out.
	for _, name := range model.QualityMetricNames {
		quality.WithLabelValues(name)
	}
	for _, s := range model.AllParseStatuses {
		parseStatus.WithLabelValues(string(s))
	}
	for _, rule := range model.AllDateRules {
		dateRule.WithLabelValues(string(rule))
	}
	for _, s := range model.AllSubmissionStatuses {
		submissionStatus.WithLabelValues(string(s))
	}

	return &Registry{
		reg:              r,
		Quality:          quality,
		ParseStatus:      parseStatus,
		DateRule:         dateRule,
		SubmissionStatus: submissionStatus,
		FactRows:         factRows,
		DurationSec:      duration,
		LastRunSec:       lastRun,
	}
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Observe records a finished run.
func (r *Registry) Observe(result *model.RunResult) {
	for _, m := range result.Quality.Metrics() {
		r.Quality.WithLabelValues(m.Name).Set(float64(m.Value))
	}
	for _, rec := range result.Records {
		r.ParseStatus.WithLabelValues(string(rec.ParseStatus)).Inc()
		r.DateRule.WithLabelValues(string(rec.DateResolutionRule)).Inc()
		r.SubmissionStatus.WithLabelValues(string(rec.SubmissionStatus)).Inc()
	}
	r.FactRows.Set(float64(len(result.Facts)))
	r.DurationSec.Set(result.Duration().Seconds())
	if !result.FinishedAt.IsZero() {
		r.LastRunSec.Set(float64(result.FinishedAt.Unix()))
	}
}

// WriteTextfile writes the current values to path, creating its directory.
// The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

// TextfileWriter is a result sink that observes each run and rewrites a
// textfile.
type TextfileWriter struct {
	registry *Registry
	path     string
}

// NewTextfileWriter creates a sink writing to path.
func NewTextfileWriter(registry *Registry, path string) *TextfileWriter {
	return &TextfileWriter{registry: registry, path: path}
}

// Name implements service.ResultWriter.
func (w *TextfileWriter) Name() string {
	return "metrics"
}

// Artifacts lists the file the writer produces.
func (w *TextfileWriter) Artifacts() []string {
	return []string{w.path}
}

// Write implements service.ResultWriter.
func (w *TextfileWriter) Write(ctx context.Context, result *model.RunResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.registry.Observe(result)
	return w.registry.WriteTextfile(w.path)
}
