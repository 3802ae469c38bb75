package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

// runMetrics are the per-run series written to the metrics text file.
type runMetrics struct {
	registry *prometheus.Registry
	modules  *prometheus.CounterVec
	files    prometheus.Counter
	messages *prometheus.CounterVec
	stages   *prometheus.HistogramVec
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		modules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hdlgen_modules_total",
			Help: "Distinct modules produced by the generator, by write outcome.",
		}, []string{"outcome"}),
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hdlgen_files_written_total",
			Help: "Files written to the output tree.",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hdlgen_messages_total",
			Help: "Reported messages by severity.",
		}, []string{"severity"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hdlgen_stage_duration_seconds",
			Help:    "Duration of each run stage.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
	}
	m.registry.MustRegister(m.modules, m.files, m.messages, m.stages)
	return m
}

func (m *runMetrics) observeMessages(r *report.Result) {
	for _, sev := range []report.Severity{report.Warning, report.SevereWarning, report.Fatal} {
		m.messages.WithLabelValues(sev.String()).Add(float64(r.Counts[sev.String()]))
	}
}

func (m *runMetrics) write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
