// Package cache provides the key/value cache used by the data-proxy service.
//
// Every derived artifact (raw upstream payloads, merged detail records, type
// member lists) is stored as JSON bytes under its own key with its own TTL.
// Two backends implement Store:
//
//   - Manager keeps entries in Redis and relies on the native key TTL.
//   - MemoryStore keeps entries in a bounded in-process LRU with per-entry expiry.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	store := cache.NewManager(redisClient)
//
//	// Key by resolved upstream URL
//	key := cache.URLKey("https://pokeapi.co/api/v2/pokemon?offset=0&limit=20")
//
//	data, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch upstream, then
//		_ = store.Set(ctx, key, body, 10*time.Minute)
//	}
//
// Synthetic keys for artifacts that are not a single upstream resource are
// built with Key:
//
//	cache.Key("pokemon", "type", "fire") // "pokemon:type:fire"
//
// # Metrics
//
//   - pokedex_cache_hits_total{layer} - Cache hits
//   - pokedex_cache_misses_total{layer} - Cache misses
//   - pokedex_cache_errors_total{layer,operation} - Cache operation errors
package cache
