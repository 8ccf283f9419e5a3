// Package metrics defines the Prometheus collectors for impact analysis.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeStore    = "store_error"
	OutcomeCanceled = "canceled"
	OutcomeInvalid  = "invalid"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	requests          *prometheus.CounterVec
	requestDuration   prometheus.Histogram
	storeQueries      *prometheus.CounterVec
	storeLatency      prometheus.Histogram
	narrativeFailures prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scimpact",
			Name:      "impact_requests_total",
			Help:      "Impact analysis requests by outcome.",
		}, []string{"outcome"}),
		requestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scimpact",
			Name:      "impact_request_duration_seconds",
			Help:      "End-to-end impact analysis latency, narration included.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		storeQueries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scimpact",
			Name:      "store_queries_total",
			Help:      "Graph store queries by outcome.",
		}, []string{"outcome"}),
		storeLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scimpact",
			Name:      "store_query_duration_seconds",
			Help:      "Graph store query latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		narrativeFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "scimpact",
			Name:      "narrative_failures_total",
			Help:      "Narrative generations replaced by a failure placeholder.",
		}),
	}
}

// ObserveRequest records one finished impact analysis.
func (m *Metrics) ObserveRequest(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.requestDuration.Observe(elapsed.Seconds())
}

// ObserveStoreQuery records one graph store query. Its signature matches
// sparql.ObserveFunc.
func (m *Metrics) ObserveStoreQuery(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.storeQueries.WithLabelValues(outcome).Inc()
	m.storeLatency.Observe(elapsed.Seconds())
}

// NarrativeFailed records a narrative replaced by its failure placeholder.
func (m *Metrics) NarrativeFailed() {
	if m == nil {
		return
	}
	m.narrativeFailures.Inc()
}
