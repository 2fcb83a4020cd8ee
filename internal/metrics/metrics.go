package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Analytics service calls
	AnalyticsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retailpulse_analytics_requests_total",
			Help: "Total number of analytics service requests",
		},
		[]string{"endpoint", "status_code"},
	)

	AnalyticsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retailpulse_analytics_request_duration_seconds",
			Help:    "Analytics service request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"endpoint"},
	)

	CircuitBreakerStateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "retailpulse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service"},
	)

	// Payload memoization
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retailpulse_cache_lookups_total",
			Help: "Payload cache lookups by backend and result",
		},
		[]string{"backend", "result"}, // hit, miss, error
	)

	// View orchestration
	ViewFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retailpulse_view_fetches_total",
			Help: "Completed view fetches by outcome",
		},
		[]string{"view", "outcome"}, // ready, failed, discarded
	)

	ViewFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retailpulse_view_fetch_duration_seconds",
			Help:    "Time from issuing a view fetch to its completion",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	ViewStateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "retailpulse_view_state",
			Help: "Current view state (0=idle, 1=loading, 2=ready, 3=failed)",
		},
		[]string{"view"},
	)

	// Filter changes
	FilterChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retailpulse_filter_changes_total",
			Help: "Global filter changes by field",
		},
		[]string{"field"},
	)
)
