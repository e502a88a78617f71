// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// OperationOutcomes counts terminal states per contract operation:
	// completed, unauthorized, invalid_input, not_found, store_failure.
	OperationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_operation_outcomes_total",
			Help: "Terminal outcome of each API operation",
		},
		[]string{"operation", "outcome"},
	)

	// gRPC lookup service

	GRPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_grpc_requests_total",
			Help: "Total number of catalog lookup RPCs",
		},
		[]string{"method", "code"},
	)

	// Client query cache

	ClientCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_client_cache_hits_total",
			Help: "Query cache hits by key family",
		},
		[]string{"family"},
	)

	ClientCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_client_cache_misses_total",
			Help: "Query cache misses by key family",
		},
		[]string{"family"},
	)

	ClientCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_client_cache_invalidations_total",
			Help: "Key family invalidations",
		},
		[]string{"family"},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordOutcome(operation, outcome string) {
	OperationOutcomes.WithLabelValues(operation, outcome).Inc()
}

func RecordGRPCRequest(method, code string) {
	GRPCRequestsTotal.WithLabelValues(method, code).Inc()
}

// RecordCacheLookup counts a hit or a miss for family.
func RecordCacheLookup(family string, hit bool) {
	if hit {
		ClientCacheHits.WithLabelValues(family).Inc()
		return
	}
	ClientCacheMisses.WithLabelValues(family).Inc()
}

func RecordCacheInvalidation(family string) {
	ClientCacheInvalidations.WithLabelValues(family).Inc()
}
