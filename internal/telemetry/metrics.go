// Package telemetry holds the agent's Prometheus metrics and OpenTelemetry
// tracer.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blogclaw"

// Cycle outcomes used as the "outcome" label.
const (
	OutcomeSuccess       = "success"
	OutcomeGenerateError = "generate_error"
	OutcomePublishError  = "publish_error"
	OutcomeCritical      = "critical"
	OutcomeSkipped       = "skipped"
)

// Metrics is the set of collectors exposed on /metrics. Each instance has
// its own registry so tests never collide.
type Metrics struct {
	registry *prometheus.Registry

	cycles         *prometheus.CounterVec
	generateErrors *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	running        prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

// NewMetrics creates and registers all collectors, plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Generate-and-publish cycles by outcome.",
		}, []string{"outcome"}),
		generateErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generate_errors_total",
			Help:      "Content generation failures by error class.",
		}, []string{"class"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a generate-and-publish cycle.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 while the scheduler is started.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last published post.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cycles,
		m.generateErrors,
		m.cycleDuration,
		m.running,
		m.lastSuccess,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCycle counts a finished cycle. Skipped cycles are not timed.
func (m *Metrics) ObserveCycle(outcome string, elapsed time.Duration, at time.Time) {
	m.cycles.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSkipped {
		return
	}
	m.cycleDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		m.lastSuccess.Set(float64(at.Unix()))
	}
}

// GenerateError counts a generation failure of the given class.
func (m *Metrics) GenerateError(class string) {
	m.generateErrors.WithLabelValues(class).Inc()
}

// SetRunning reports whether the scheduler is started.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.running.Set(1)
		return
	}
	m.running.Set(0)
}
