// Package monitoring exposes Prometheus metrics for the assessment engine
// and its upstream API clients.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	OperationRequests *prometheus.CounterVec
	OperationLatency  *prometheus.HistogramVec
	UpstreamRequests  *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics on the given registerer.
// Pass prometheus.DefaultRegisterer outside of tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankiq_operation_requests_total",
				Help: "Total engine operations by name and result.",
			},
			[]string{"operation", "result"},
		),
		OperationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankiq_operation_latency_seconds",
				Help:    "Latency of engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankiq_upstream_requests_total",
				Help: "Total upstream API calls by service and result.",
			},
			[]string{"service", "result"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankiq_cache_lookups_total",
				Help: "Assessment cache lookups by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
	}
}

// RecordOperation counts one completed engine operation. Latency is
// observed separately by the engine itself, which does not know the
// final result label.
func (m *Metrics) RecordOperation(operation, result string) {
	m.OperationRequests.WithLabelValues(operation, result).Inc()
}

// RecordUpstream records one upstream API call.
func (m *Metrics) RecordUpstream(service, result string) {
	m.UpstreamRequests.WithLabelValues(service, result).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (m *Metrics) RecordCacheLookup(kind string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookups.WithLabelValues(kind, outcome).Inc()
}
