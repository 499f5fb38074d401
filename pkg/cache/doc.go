// Package cache provides the call-memoization seam of the query client.
//
// A Store maps a CallKey (endpoint name plus ordered argument values) to the
// assembled CSV of a previous call. The client reads the store before issuing
// any request and writes to it after a successful decode.
//
// # Implementations
//
//   - Noop: the default. Every Get misses and every Put is discarded.
//   - Memory: an in-process map guarded by a mutex, with an optional TTL.
//   - Manager: a Redis-backed store with TTL and Prometheus metrics.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	cfg := client.DefaultConfig(client.StaticToken(token))
//	cfg.Cache = cache.NewManager(redisClient, 10*time.Minute)
//
// # Keys
//
//	key := cache.NewCallKey("price_daily", []string{"code=000001.XSHE", "end=20240131"})
//	key.String() // tabquery:price_daily:<sha256 hex>
//
// # Metrics
//
//   - tabquery_cache_hits_total{layer} - Cache hits by layer (memory, redis)
//   - tabquery_cache_misses_total{layer} - Cache misses by layer
//   - tabquery_cache_size_bytes{layer} - Bytes written per layer
//   - tabquery_cache_errors_total{operation} - Cache operation errors
//
// Cache failures are never fatal: the client logs them and proceeds with
// the remote call.
package cache
