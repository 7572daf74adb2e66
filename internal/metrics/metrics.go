// Package metrics records counters for a populate run and writes them in
// Prometheus text format for the node_exporter textfile collector. A
// one-shot CLI has nothing to scrape, so instead of serving /metrics the
// run drops a .prom file when --metrics-file is set.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by all counters.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	registry *prometheus.Registry

	secretsGeneratedTotal *prometheus.CounterVec
	sinkWritesTotal       *prometheus.CounterVec
	generationDuration    prometheus.Histogram
	lastRunTimestamp      prometheus.Gauge

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// RunMetrics provides methods to record events during a run. Recording
// is a no-op until InitMetrics has been called, so commands can record
// unconditionally.
type RunMetrics struct{}

// NewRunMetrics creates a new RunMetrics instance.
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{}
}

// InitMetrics registers all metrics into a private registry. Called once
// at startup when metrics output is enabled.
func InitMetrics() {
	metricsOnce.Do(func() {
		registry = prometheus.NewRegistry()
		factory := promauto.With(registry)

		secretsGeneratedTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secretseed_secrets_generated_total",
				Help: "Total number of secret values generated",
			},
			[]string{"outcome"},
		)

		sinkWritesTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secretseed_sink_writes_total",
				Help: "Total number of sink write operations",
			},
			[]string{"sink_type", "outcome"},
		)

		generationDuration = factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "secretseed_generation_duration_seconds",
				Help:    "Duration of the generation phase in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		)

		lastRunTimestamp = factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "secretseed_last_run_timestamp_seconds",
				Help: "Unix timestamp of the last completed run",
			},
		)

		metricsRegistered = true
	})
}

// RecordSecretGenerated records one generated secret value.
func (m *RunMetrics) RecordSecretGenerated(outcome string) {
	if !metricsRegistered || secretsGeneratedTotal == nil {
		return
	}
	secretsGeneratedTotal.WithLabelValues(outcome).Inc()
}

// RecordSinkWrite records one sink write attempt.
func (m *RunMetrics) RecordSinkWrite(sinkType, outcome string) {
	if !metricsRegistered || sinkWritesTotal == nil {
		return
	}
	sinkWritesTotal.WithLabelValues(sinkType, outcome).Inc()
}

// ObserveGenerationDuration records how long the generation phase took.
func (m *RunMetrics) ObserveGenerationDuration(seconds float64) {
	if !metricsRegistered || generationDuration == nil {
		return
	}
	generationDuration.Observe(seconds)
}

// WriteTextfile stamps the run and writes all metrics to path in
// Prometheus text format. WriteToTextfile writes to a temp file and
// renames, so a collector never reads a half-written file. No-op when
// metrics were never initialized.
func WriteTextfile(path string) error {
	if !metricsRegistered {
		return nil
	}
	lastRunTimestamp.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, registry)
}

// IsMetricsRegistered returns whether metrics have been initialized.
func IsMetricsRegistered() bool {
	return metricsRegistered
}
