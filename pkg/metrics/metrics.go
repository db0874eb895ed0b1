// Package metrics exposes the Prometheus registry shared by the client
// packages. Metrics are defined next to the code that records them
// (client, cache, ratelimit, pagination, feed) and registered via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client packages.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cooldown Metrics (pkg/ratelimit):
//   - ma_cooldown_active (Gauge): 1 while requests are held back after a 429/503
//   - ma_cooldown_starts_total (Counter): Cooldowns started by throttled responses
//   - ma_rate_limit_blocks_total (Counter): Requests refused locally during a cooldown
//
// Cache Metrics (pkg/cache):
//   - ma_cache_hits_total (Counter): Cache hits
//   - ma_cache_misses_total (Counter): Cache misses
//   - ma_cache_stored_bytes_total (Counter): Bytes written to the page cache
//   - ma_304_responses_total (Counter): 304 Not Modified responses served from cache
//   - ma_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - ma_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - ma_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - ma_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, timeout)
//
// Pagination Metrics (pkg/pagination):
//   - ma_pagination_fetches_total{kind, outcome} (Counter): Fetch calls by outcome
//     (success, error, joined, exhausted, superseded)
//   - ma_pagination_fetch_duration_seconds{kind} (Histogram): Page request and decode time
//   - ma_pagination_pages_decoded_total{kind} (Counter): Pages appended
//   - ma_pagination_records_appended_total{kind} (Counter): Records appended
//   - ma_pagination_stale_completions_total{kind} (Counter): Results discarded after a reset
//
// Homepage Metrics (pkg/feed):
//   - ma_feed_section_loads_total{section, outcome} (Counter): Section loads
//   - ma_feed_refreshes_total{outcome} (Counter): Refreshes (success, partial)
//   - ma_feed_events_dropped_total (Counter): Events dropped for slow subscribers
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(ma_cache_hits_total[5m])) /
//   (sum(rate(ma_cache_hits_total[5m])) + sum(rate(ma_cache_misses_total[5m])))
//
//   # Currently cooling down
//   ma_cooldown_active == 1
//
//   # Failed page fetches per kind
//   sum by (kind) (rate(ma_pagination_fetches_total{outcome="error"}[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(ma_request_duration_seconds_bucket[5m]))
