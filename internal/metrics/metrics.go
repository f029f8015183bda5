package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal tracks public client calls by terminal state
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlink_operations_total",
			Help: "Total number of client operations by outcome",
		},
		[]string{"operation", "state"},
	)

	// RequestsTotal tracks HTTP requests sent to the backend
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlink_backend_requests_total",
			Help: "Total number of backend HTTP requests",
		},
		[]string{"operation", "status"},
	)

	// RequestLatency tracks backend request latency
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitlink_backend_request_latency_seconds",
			Help:    "Backend request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RetriesTotal tracks retry attempts scheduled by the executor
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlink_retries_total",
			Help: "Total number of retries scheduled",
		},
		[]string{"operation"},
	)

	// FallbacksTotal tracks synthetic results handed out instead of backend data
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlink_fallbacks_total",
			Help: "Total number of degraded (synthetic) results",
		},
		[]string{"operation"},
	)

	// QueueDepth tracks the number of deferred requests
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitlink_offline_queue_depth",
			Help: "Number of requests waiting in the offline queue",
		},
	)

	// QueueDroppedTotal tracks deferred requests abandoned after the retry ceiling
	QueueDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlink_offline_queue_dropped_total",
			Help: "Total number of deferred requests dropped",
		},
		[]string{"kind"},
	)

	// CacheLookupsTotal tracks cache hits and misses
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlink_cache_lookups_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"result"},
	)

	// Connected is 1 while the device reports connectivity
	Connected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitlink_connected",
			Help: "Whether the backend is considered reachable (1) or not (0)",
		},
	)

	// BreakerState tracks the transport circuit breaker (0 closed, 1 half-open, 2 open)
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fitlink_circuit_breaker_state",
			Help: "Circuit breaker state",
		},
		[]string{"name"},
	)
)
