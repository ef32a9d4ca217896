// Package cache provides the response cache that sits in front of the
// Lenta retail API client.
//
// The cache stores raw JSON documents under keys derived from the logical
// request (method, URL, query and body parameters). Parsed domain records are
// never cached.
//
// Two backends implement the Backend interface:
//
//   - MemoryBackend: a mutex-guarded map with lazy expiry on read
//   - RedisBackend: a shared Redis database with native key expiry, connected
//     lazily on first use
//
// # Basic Usage
//
//	backend := cache.NewRedisBackend(cache.RedisConfig{
//		Addr:      "localhost:6379",
//		KeyPrefix: "lenta_cache",
//	})
//	defer backend.Close()
//
//	key := cache.Key{
//		Method: http.MethodGet,
//		URL:    "https://lenta.com/api/v1/stores/0007/skus",
//		Query:  map[string]string{"barcode": "4607001771548"},
//	}.String()
//
//	value, err := backend.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - fetch from upstream
//	}
//
//	if err := backend.Set(ctx, key, value, 5*time.Minute); err != nil {
//		// Cache writes are best effort
//	}
//
// # Failure Semantics
//
// Backend errors are returned to the caller. The request pipeline treats a
// failed Get as a miss and a failed Set as a logged, non-fatal event.
//
// Reset on a RedisBackend without a key prefix flushes the whole logical
// database, not only the keys written by this process.
//
// # Metrics
//
//   - lenta_cache_hits_total{backend} - Cache hits
//   - lenta_cache_misses_total{backend} - Cache misses (absent or expired)
//   - lenta_cache_errors_total{backend,operation} - Backend operation errors
//   - lenta_cache_entries{backend="memory"} - Entries held by the memory backend
package cache
