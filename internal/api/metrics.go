package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/specgate/specgate/aggregator"
)

// Metric label values for dropped sources.
const (
	dropStageProbe = "probe"
	dropStageFetch = "fetch"
)

// Metrics holds the aggregation Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	// RunsTotal counts aggregation runs by outcome (ok, error).
	RunsTotal *prometheus.CounterVec
	// SourcesDropped counts sources lost per run stage (probe, fetch).
	SourcesDropped *prometheus.CounterVec
	// CollisionsTotal counts keys renamed during merging.
	CollisionsTotal prometheus.Counter
	// RunDuration observes wall time per aggregation run.
	RunDuration prometheus.Histogram
}

// NewMetrics builds the metric set on its own registry so that
// multiple servers in one process never collide.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "specgate_runs_total",
			Help: "Total aggregation runs by outcome",
		}, []string{"outcome"}),
		SourcesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "specgate_sources_dropped_total",
			Help: "Total sources dropped per run stage",
		}, []string{"stage"}),
		CollisionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "specgate_collisions_total",
			Help: "Total keys renamed to resolve merge collisions",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "specgate_run_duration_seconds",
			Help:    "Wall time per aggregation run",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// Handler serves the metrics endpoint for this metric set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records one completed run's statistics.
func (m *Metrics) ObserveRun(stats aggregator.Stats) {
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.SourcesDropped.WithLabelValues(dropStageProbe).Add(float64(stats.Eligible - stats.Available))
	m.SourcesDropped.WithLabelValues(dropStageFetch).Add(float64(stats.Available - stats.Fetched))
	m.CollisionsTotal.Add(float64(stats.Collisions))
	m.RunDuration.Observe(stats.Duration.Seconds())
}

// ObserveFailure records a run that ended in a fatal merge error.
func (m *Metrics) ObserveFailure() {
	m.RunsTotal.WithLabelValues("error").Inc()
}
