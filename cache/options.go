package cache

import (
	"context"

	"github.com/cacheforge/polycache/policy"
)

// EvictReason and Metrics are re-exported from policy so callers configuring
// a Cache never need to import the policy package directly.
type (
	EvictReason = policy.EvictReason
	Metrics     = policy.Metrics
)

const (
	EvictPolicy = policy.EvictPolicy
	EvictManual = policy.EvictManual
)

// NoopMetrics is a drop-in Metrics implementation that does nothing. It is
// the default when no observability backend is configured.
type NoopMetrics = policy.NoopMetrics

// EngineFactory builds the policy.Engine backing a single shard. capacity
// is that shard's entry budget (Options.Capacity divided evenly across
// Options.Shards), and m is the per-shard metrics sink the cache wires
// automatically — factories should install it via the engine's
// WithMetrics method.
type EngineFactory[K comparable, V any] func(capacity int, m policy.Metrics) policy.Engine[K, V]

// Options configures the cache behavior. Zero values are safe; sane
// defaults are applied in New():
//   - nil NewEngine => plain LRU
//   - Shards <= 0   => auto (rounded up to power of two)
//   - nil Metrics   => NoopMetrics
type Options[K comparable, V any] struct {
	// Capacity is the total entry count limit, split evenly across shards.
	Capacity int

	// Shards defines the number of shards. If 0, an automatic value is
	// chosen (≈ 2*GOMAXPROCS) and rounded to the next power of two. A
	// positive value is also rounded up to the next power of two.
	Shards int

	// NewEngine builds the eviction engine for each shard; nil defaults to
	// plain LRU. Use this to select LFU, LRU-K, ARC, or a custom engine
	// from the policy subpackages.
	NewEngine EngineFactory[K, V]

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// Metrics receives Hit/Miss/Evict/Size signals from every shard.
	Metrics Metrics
}
