// Package lru implements the classic move-to-front Least-Recently-Used
// eviction engine: recency ordering, evict the stale tail, promote on
// every access.
package lru

import (
	"sync"

	"github.com/cacheforge/polycache/internal/dlist"
	"github.com/cacheforge/polycache/policy"
)

// Cache is an LRU eviction engine. It implements policy.Engine[K,V].
// All state is guarded by a single mutex.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	cap     int
	index   map[K]*dlist.Node[K, V]
	order   *dlist.List[K, V]
	metrics policy.Metrics
}

// New constructs an LRU engine bounded at capacity entries. A non-positive
// capacity makes every Put a no-op and every Get a miss.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		cap:     capacity,
		index:   make(map[K]*dlist.Node[K, V]),
		order:   dlist.New[K, V](),
		metrics: policy.NoopMetrics{},
	}
}

// WithMetrics installs m as the engine's observability sink and returns c
// for chaining.
func (c *Cache[K, V]) WithMetrics(m policy.Metrics) *Cache[K, V] {
	if m != nil {
		c.metrics = m
	}
	return c
}

// Put stores v under k, evicting the stale tail if the engine is at
// capacity. Updating an existing key promotes it to the fresh end.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cap <= 0 {
		return
	}
	if n, ok := c.index[k]; ok {
		n.Val = v
		c.order.MoveToFresh(n)
		return
	}
	if c.order.Len() >= c.cap {
		c.evictStaleLocked()
	}
	n := dlist.NewNode(k, v)
	c.order.PushFresh(n)
	c.index[k] = n
	c.metrics.Size(len(c.index))
}

// Get returns the value for k and whether it was present, promoting the
// entry to the fresh end on a hit.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[k]
	if !ok {
		c.metrics.Miss()
		var zero V
		return zero, false
	}
	c.order.MoveToFresh(n)
	c.metrics.Hit()
	return n.Val, true
}

// GetOrZero returns the value for k, or the zero value on a miss.
func (c *Cache[K, V]) GetOrZero(k K) V {
	v, _ := c.Get(k)
	return v
}

// Remove deletes k if present and reports whether it was present.
func (c *Cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[k]
	if !ok {
		return false
	}
	c.order.Remove(n)
	delete(c.index, k)
	return true
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Purge discards every resident entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = make(map[K]*dlist.Node[K, V])
	c.order = dlist.New[K, V]()
}

// evictStaleLocked removes the stale-end entry. Callers must hold c.mu.
func (c *Cache[K, V]) evictStaleLocked() {
	stale := c.order.Stale()
	if stale == nil {
		return
	}
	c.order.Remove(stale)
	delete(c.index, stale.Key())
	c.metrics.Evict(policy.EvictPolicy)
}

var _ policy.Engine[string, int] = (*Cache[string, int])(nil)
