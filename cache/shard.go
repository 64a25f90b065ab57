package cache

import (
	"sync"

	"github.com/cacheforge/polycache/policy"
)

// shard is an independent partition of the cache: its own eviction engine
// (which owns its own lock) plus an extra mutex used only to make Add
// (test-and-set) atomic against concurrent Adds on the same shard.
type shard[K comparable, V any] struct {
	addMu sync.Mutex
	eng   policy.Engine[K, V]

	counters shardCounters
}

// newShard builds a shard's engine via factory at the given per-shard
// capacity, wiring its metrics through shardMetrics so hits/misses/evicts
// are visible both as local counters and through the user's Metrics.
func newShard[K comparable, V any](capacity int, factory EngineFactory[K, V], userMetrics Metrics) *shard[K, V] {
	s := &shard[K, V]{}
	s.eng = factory(capacity, shardMetrics[K, V]{counters: &s.counters, user: userMetrics})
	return s
}

// Add inserts k→v only if absent. Concurrent Adds on this shard are
// serialized by addMu; a concurrent Set on the same key is not, since Set
// does not need the same exclusivity and only the engine's own lock
// guards it — a narrow, intentional gap given that cross-key transactions
// are out of scope.
func (s *shard[K, V]) Add(k K, v V) bool {
	s.addMu.Lock()
	defer s.addMu.Unlock()
	if _, ok := s.eng.Get(k); ok {
		return false
	}
	s.eng.Put(k, v)
	return true
}

func (s *shard[K, V]) Set(k K, v V) {
	s.eng.Put(k, v)
}

func (s *shard[K, V]) Get(k K) (V, bool) {
	return s.eng.Get(k)
}

func (s *shard[K, V]) Remove(k K) bool {
	return s.eng.Remove(k)
}

func (s *shard[K, V]) Len() int {
	return s.eng.Len()
}

func (s *shard[K, V]) Purge() {
	s.eng.Purge()
}
