// Package metrics is the reference for the Prometheus metrics exported by the
// tabquery client. Metrics are defined in their owning packages (client,
// cache, ratelimit) and registered via promauto on the default registerer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the tabquery client.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the matching gatherer for Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
// Applications embedding the client mount it on their own mux.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Names lists every metric family the client packages export.
var Names = []string{
	// pkg/client
	"tabquery_requests_total",
	"tabquery_request_duration_seconds",
	"tabquery_errors_total",
	"tabquery_retries_total",
	"tabquery_retry_exhausted_total",
	"tabquery_batched_calls_total",
	"tabquery_overflow_probes_total",
	"tabquery_overflow_unprobed_total",

	// pkg/cache
	"tabquery_cache_hits_total",
	"tabquery_cache_misses_total",
	"tabquery_cache_size_bytes",
	"tabquery_cache_errors_total",

	// pkg/ratelimit
	"tabquery_rate_limit_blocks_total",
	"tabquery_rate_limit_throttles_total",
	"tabquery_quota_exhausted_total",
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - tabquery_requests_total{endpoint, status} (Counter): HTTP round trips by endpoint and status, "network_error" on transport failure
//   - tabquery_request_duration_seconds{endpoint} (Histogram): Call duration including every chunk and probe
//   - tabquery_errors_total{category} (Counter): Service errors by category (no_privilege, rate_limited, ...)
//   - tabquery_batched_calls_total{endpoint} (Counter): Calls split into several requests
//   - tabquery_overflow_probes_total{endpoint} (Counter): Second-page probes issued
//   - tabquery_overflow_unprobed_total{endpoint} (Counter): Batched chunks that hit the page cap
//
// Retry Metrics (pkg/client):
//   - tabquery_retries_total{error_class} (Counter): Retry attempts
//   - tabquery_retry_exhausted_total{error_class} (Counter): Requests that used every attempt
//
// Cache Metrics (pkg/cache):
//   - tabquery_cache_hits_total{layer} (Counter): Hits by layer (memory, redis)
//   - tabquery_cache_misses_total{layer} (Counter): Misses by layer
//   - tabquery_cache_size_bytes{layer} (Gauge): Bytes written by layer
//   - tabquery_cache_errors_total{operation} (Counter): Redis cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - tabquery_rate_limit_blocks_total (Counter): Requests refused during a quota cooldown
//   - tabquery_rate_limit_throttles_total (Counter): Requests delayed by pacing
//   - tabquery_quota_exhausted_total (Counter): -11 responses from the service
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(tabquery_cache_hits_total[5m])) /
//   (sum(rate(tabquery_cache_hits_total[5m])) + sum(rate(tabquery_cache_misses_total[5m])))
//
//   # Error Rate by Category
//   sum by (category) (rate(tabquery_errors_total[5m]))
//
//   # P95 Call Latency
//   histogram_quantile(0.95, rate(tabquery_request_duration_seconds_bucket[5m]))
//
//   # Truncation Risk
//   increase(tabquery_overflow_unprobed_total[1h]) > 0
