package metrics

import (
	"fmt"
	"time"

	"github.com/gh-nvat/jitdiff/src/pkg/assembler"
	"github.com/gh-nvat/jitdiff/src/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const METRICS_FILE_NAME = "metrics.prom"

// RunMetrics collects the counters of a single run in a private registry.
// The registry is written once as a node-exporter textfile at the end of the run.
type RunMetrics struct {
	registry *prometheus.Registry

	entriesTotal   *prometheus.CounterVec
	fragmentsTotal *prometheus.CounterVec
	sectionBytes   *prometheus.GaugeVec
	truncated      *prometheus.GaugeVec
	noiseRemoved   prometheus.Gauge
	runDuration    prometheus.Gauge
}

// NewRunMetrics creates the run metrics and registers them
func NewRunMetrics() *RunMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &RunMetrics{
		registry: registry,
		entriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jitdiff",
			Name:      "entries_total",
			Help:      "Summary entries looked at, by section and outcome.",
		}, []string{"kind", "outcome"}),
		fragmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jitdiff",
			Name:      "fragments_total",
			Help:      "Method diffs accepted into the report, by section.",
		}, []string{"kind"}),
		sectionBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "jitdiff",
			Name:      "section_bytes",
			Help:      "Size of the rendered report section in bytes.",
		}, []string{"kind"}),
		truncated: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "jitdiff",
			Name:      "section_truncated",
			Help:      "1 when the section left fragments out to stay within budget.",
		}, []string{"kind"}),
		noiseRemoved: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "jitdiff",
			Name:      "noise_removed",
			Help:      "1 when at least one method was hidden because of known noise.",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "jitdiff",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the whole run.",
		}),
	}
}

// ObserveSection records the assembler and budgeter outcome of one section
func (m *RunMetrics) ObserveSection(kind models.ChangeKind, stats assembler.Stats, section models.SectionData) {
	k := string(kind)
	m.entriesTotal.WithLabelValues(k, "accepted").Add(float64(stats.Accepted))
	m.entriesTotal.WithLabelValues(k, "filtered").Add(float64(stats.Filtered))
	m.entriesTotal.WithLabelValues(k, "unchanged").Add(float64(stats.Unchanged))
	m.entriesTotal.WithLabelValues(k, "noisy").Add(float64(stats.Noisy))
	m.entriesTotal.WithLabelValues(k, "failed").Add(float64(stats.Failed))
	m.fragmentsTotal.WithLabelValues(k).Add(float64(section.Fragments))
	m.sectionBytes.WithLabelValues(k).Set(float64(len(section.Rendered)))
	m.truncated.WithLabelValues(k).Set(boolToFloat(section.Truncated))
}

// SetNoiseRemoved records whether noise suppression happened
func (m *RunMetrics) SetNoiseRemoved(removed bool) {
	m.noiseRemoved.Set(boolToFloat(removed))
}

// SetDuration records the run wall time
func (m *RunMetrics) SetDuration(d time.Duration) {
	m.runDuration.Set(d.Seconds())
}

// Registry returns the underlying registry
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes all metrics in the text exposition format
func (m *RunMetrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
