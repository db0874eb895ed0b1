package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_cache_hits_total",
		Help: "Total number of page cache hits",
	})

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_cache_misses_total",
		Help: "Total number of page cache misses",
	})

	// StoredBytes tracks bytes written to Redis
	StoredBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_cache_stored_bytes_total",
		Help: "Total bytes written to the page cache",
	})

	// NotModifiedResponses tracks 304 Not Modified responses
	NotModifiedResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_304_responses_total",
		Help: "Total number of 304 Not Modified responses served from cache",
	})

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ma_cache_errors_total",
			Help: "Total number of page cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
