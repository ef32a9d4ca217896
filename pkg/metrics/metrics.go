// Package metrics exposes the Prometheus registry used by the assistant.
// Metrics are defined in their own packages (cache, client, notify) to keep
// modularity and avoid circular dependencies; this package documents them
// and serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the counterpart of Registry used when serving metrics.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - lenta_cache_hits_total{backend} (Counter): Cache hits by backend (memory, redis)
//   - lenta_cache_misses_total{backend} (Counter): Cache misses, expired entries included
//   - lenta_cache_errors_total{backend, operation} (Counter): Backend failures (connect, get, set, reset)
//   - lenta_cache_entries{backend="memory"} (Gauge): Entries held in process memory
//
// Request Metrics (pkg/client):
//   - lenta_requests_total{operation, status} (Counter): Requests by operation and HTTP status,
//     "cached" for cache hits and "network_error" for transport failures
//   - lenta_request_duration_seconds{operation} (Histogram): Request duration, cache hits included
//   - lenta_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Notification Metrics (internal/notify):
//   - lenta_notify_runs_total{result} (Counter): Discount job runs (ok, failed)
//   - lenta_notify_messages_total{result} (Counter): Messages by delivery result (sent, failed)
//   - lenta_notify_store_failures_total (Counter): Stores skipped because their SKUs could not be fetched
//
// Example Prometheus Queries:
//
//	# Cache Hit Rate
//	sum(rate(lenta_cache_hits_total[5m])) /
//	(sum(rate(lenta_cache_hits_total[5m])) + sum(rate(lenta_cache_misses_total[5m])))
//
//	# Upstream Error Rate
//	sum by (class) (rate(lenta_errors_total[5m]))
//
//	# P95 Request Latency
//	histogram_quantile(0.95, sum by (le, operation) (rate(lenta_request_duration_seconds_bucket[5m])))
//
//	# Failed Notifications
//	increase(lenta_notify_messages_total{result="failed"}[1d])
