// Package cache provides a fast, generic, sharded in-memory cache with a
// pluggable eviction engine (LRU by default), optional singleflight
// loading, and lightweight metrics hooks.
//
// Design
//
//   - Concurrency: the cache is split into shards, each owning an
//     independent eviction engine from the policy subpackages (lru, lfu,
//     lruk, arc). Every engine already serializes itself with its own
//     mutex, so a shard adds no lock of its own except for Add's
//     test-and-set. The default shard count is chosen by a heuristic
//     (ReasonableShardCount) and is a power of two, reducing contention
//     without bloating memory overhead.
//
//   - Engines: the eviction engine is pluggable via Options.NewEngine.
//     LRU is the default. LFU, LRU-K, and ARC are provided in the policy
//     subpackages; a custom engine need only implement policy.Engine.
//
//   - GetOrLoad: coalesces concurrent loads for the same key using
//     singleflight. If Loader is nil, GetOrLoad returns ErrNoLoader.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals from
//     every shard. By default NoopMetrics is used; plug in
//     metrics/prom.Adapter to export to Prometheus.
//
// Basic usage
//
//	// Create an LRU cache with capacity for 10k entries.
//	c := cache.New[string, []byte](cache.Options[string, []byte]{Capacity: 10_000})
//	c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	c.Remove("a")
//
// With GetOrLoad (singleflight)
//
//	c := cache.New[string, string](cache.Options[string, string]{
//	    Capacity: 1024,
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        // e.g. fetch from DB
//	        return "v:" + k, nil
//	    },
//	})
//	v, err := c.GetOrLoad(context.Background(), "key")
//
// Using an alternative engine (ARC)
//
//	c := cache.New[string, string](cache.Options[string, string]{
//	    Capacity: 50_000,
//	    NewEngine: func(capacity int, m policy.Metrics) policy.Engine[string, string] {
//	        return arc.New[string, string](capacity, 2).WithMetrics(m)
//	    },
//	})
//
// Exporting metrics (example Prometheus adapter)
//
//	m := prom.New(nil, "cachex", "demo", nil) // implements Metrics
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    Capacity: 10_000,
//	    Metrics:  m,
//	})
//
// Thread-safety & complexity
//
// All methods on Cache are safe for concurrent use. Typical operation cost
// is amortized O(1). Eviction work is also O(1) per removed item for LRU,
// LFU, and ARC; LRU-K's history bookkeeping adds a constant number of
// extra map/list operations per access. ARC is the exception on insertion:
// adding a new key (and Len) counts the distinct keys across its two
// sub-caches, which is linear in the shard's resident entries.
//
// See cache/options.go for all available Options fields and package
// policy for the Engine interface used to implement custom strategies.
package cache
