package cache

import "github.com/cacheforge/polycache/internal/util"

// shard metrics: hot per-shard counters plus a forward to the user's
// configured Metrics, split across cache lines to avoid false sharing.
type shardCounters struct {
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

// shardMetrics adapts a shard's counters and the cache's user-configured
// Metrics into a single policy.Metrics sink, so an engine's hit/miss/evict
// signals drive both without the engine knowing about either.
type shardMetrics[K comparable, V any] struct {
	counters *shardCounters
	user     Metrics
}

func (m shardMetrics[K, V]) Hit() {
	m.counters.hits.Add(1)
	m.user.Hit()
}

func (m shardMetrics[K, V]) Miss() {
	m.counters.misses.Add(1)
	m.user.Miss()
}

func (m shardMetrics[K, V]) Evict(reason EvictReason) {
	m.counters.evicts.Add(1)
	m.user.Evict(reason)
}

func (m shardMetrics[K, V]) Size(entries int) {
	m.user.Size(entries)
}

var _ Metrics = shardMetrics[string, int]{}
