// Package cache provides an optional Redis-backed response cache for the
// Metal Archives transport.
//
// The transport performs no caching unless the caller opts in with
// client.Config.EnableCache. When enabled the cache:
//
//   - keys entries deterministically by path and sorted query
//   - honors Expires when the site sends it, DefaultTTL otherwise
//   - replays ETag / Last-Modified as conditional request headers
//   - serves the stored body for 304 Not Modified answers
//
// # Basic Usage
//
//	manager, err := cache.NewManager(redisClient, cache.DefaultTTL)
//	if err != nil {
//		return err
//	}
//
//	key := cache.KeyFromURL(req.URL)
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the site
//	}
//
// # Metrics
//
//   - ma_cache_hits_total - Cache hits
//   - ma_cache_misses_total - Cache misses
//   - ma_cache_stored_bytes_total - Bytes written to Redis
//   - ma_304_responses_total - Conditional request successes
//   - ma_cache_errors_total{operation} - Cache operation errors
package cache
