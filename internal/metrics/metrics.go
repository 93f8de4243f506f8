// Package metrics exposes the Prometheus collectors for the API:
// request throughput and latency, report-cache behavior, and rate
// limiter rejections. Collectors are package-level and registered via
// promauto so every layer can record without plumbing a registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centsible_http_requests_total",
			Help: "HTTP requests by method, route pattern, and status code.",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "centsible_http_request_duration_seconds",
			Help:    "HTTP request duration by method and route pattern.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centsible_cache_hits_total",
			Help: "Report cache hits by tier (backend or fallback).",
		},
		[]string{"tier"},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "centsible_cache_misses_total",
			Help: "Report cache misses.",
		},
	)

	CacheFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "centsible_cache_fallbacks_total",
			Help: "Reads served by the in-process fallback because the cache backend was unavailable.",
		},
	)

	CacheBackendState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "centsible_cache_backend_state",
			Help: "Circuit breaker state of the cache backend (0 closed, 1 half-open, 2 open).",
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centsible_rate_limited_total",
			Help: "Requests rejected by a rate limit, by limiter scope.",
		},
		[]string{"scope"},
	)

	LoginThrottledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "centsible_login_throttled_total",
			Help: "Login attempts rejected by the per-account throttle.",
		},
	)
)

// RecordRequest records one completed HTTP request.
func RecordRequest(method, route, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
