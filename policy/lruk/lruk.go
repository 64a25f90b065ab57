// Package lruk implements the LRU-K admission filter: a small history of
// per-key access counts gates entry into a backing main cache, so one-shot
// scans cannot pollute the hot set the way they would under plain LRU.
//
// Main and history could each be modeled as an independently-mutexed LRU,
// but both queues and the staging map live under a single mutex here, so
// the engine keeps the same single-mutex-per-engine shape as the rest of
// this module.
package lruk

import (
	"sync"

	"github.com/cacheforge/polycache/internal/dlist"
	"github.com/cacheforge/polycache/policy"
)

// Cache is an LRU-K admission filter. It implements policy.Engine[K,V].
type Cache[K comparable, V any] struct {
	mu sync.Mutex

	mainCap, histCap, k int

	mainIndex map[K]*dlist.Node[K, V]
	mainOrder *dlist.List[K, V]

	histIndex map[K]*dlist.Node[K, int]
	histOrder *dlist.List[K, int]

	staging map[K]V
	metrics policy.Metrics
}

// New constructs an LRU-K engine. mainCapacity bounds the hot set,
// historyCapacity bounds the access-count tracker for not-yet-admitted
// keys, and k is the access count required for admission.
func New[K comparable, V any](mainCapacity, historyCapacity, k int) *Cache[K, V] {
	if k < 1 {
		k = 1
	}
	return &Cache[K, V]{
		mainCap:   mainCapacity,
		histCap:   historyCapacity,
		k:         k,
		mainIndex: make(map[K]*dlist.Node[K, V]),
		mainOrder: dlist.New[K, V](),
		histIndex: make(map[K]*dlist.Node[K, int]),
		histOrder: dlist.New[K, int](),
		staging:   make(map[K]V),
		metrics:   policy.NoopMetrics{},
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

// Put stores v under k. A key already resident in main is updated and
// touched; otherwise the access is recorded in history and the value is
// staged, promoted to main once the cumulative count reaches k.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.mainIndex[k]; ok {
		n.Val = v
		c.mainOrder.MoveToFresh(n)
		return
	}
	c.staging[k] = v
	if c.bumpHistoryLocked(k) >= c.k {
		c.admitLocked(k, v)
	}
}

// Get returns the value for k and whether it was present. A hit in main
// promotes the entry; a miss still records the access in history and, once
// the count reaches k with a staged value on hand, admits and returns it.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.mainIndex[k]; ok {
		c.mainOrder.MoveToFresh(n)
		c.metrics.Hit()
		return n.Val, true
	}

	count := c.bumpHistoryLocked(k)
	if count >= c.k {
		if v, ok := c.staging[k]; ok {
			c.admitLocked(k, v)
			c.metrics.Hit()
			return v, true
		}
	}
	c.metrics.Miss()
	var zero V
	return zero, false
}

// GetOrZero returns the value for k, or the zero value on a miss.
func (c *Cache[K, V]) GetOrZero(k K) V {
	v, _ := c.Get(k)
	return v
}

// Remove deletes k from main, history, and staging, reporting whether it
// was resident in main.
func (c *Cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, inMain := c.mainIndex[k]
	if inMain {
		c.mainOrder.Remove(n)
		delete(c.mainIndex, k)
	}
	if hn, ok := c.histIndex[k]; ok {
		c.histOrder.Remove(hn)
		delete(c.histIndex, k)
	}
	delete(c.staging, k)
	return inMain
}

// Len returns the number of entries resident in the main cache. Staged,
// not-yet-admitted keys are not counted.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mainIndex)
}

// Purge discards every resident, staged, and history entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mainIndex = make(map[K]*dlist.Node[K, V])
	c.mainOrder = dlist.New[K, V]()
	c.histIndex = make(map[K]*dlist.Node[K, int])
	c.histOrder = dlist.New[K, int]()
	c.staging = make(map[K]V)
}

// bumpHistoryLocked increments k's access count (creating a history entry
// at count 1 if absent, evicting the stale history entry if over capacity)
// and returns the new count. Callers must hold c.mu.
func (c *Cache[K, V]) bumpHistoryLocked(k K) int {
	if n, ok := c.histIndex[k]; ok {
		n.Val++
		c.histOrder.MoveToFresh(n)
		return n.Val
	}
	if c.histCap > 0 && c.histOrder.Len() >= c.histCap {
		if stale := c.histOrder.Stale(); stale != nil {
			c.histOrder.Remove(stale)
			delete(c.histIndex, stale.Key())
		}
	}
	n := dlist.NewNode(k, 1)
	c.histOrder.PushFresh(n)
	c.histIndex[k] = n
	return 1
}

// admitLocked clears k's history/staging record and inserts (k,v) into
// main, evicting the stale main entry if at capacity. Callers must hold
// c.mu.
func (c *Cache[K, V]) admitLocked(k K, v V) {
	if n, ok := c.histIndex[k]; ok {
		c.histOrder.Remove(n)
		delete(c.histIndex, k)
	}
	delete(c.staging, k)

	if c.mainCap <= 0 {
		return
	}
	if c.mainOrder.Len() >= c.mainCap {
		if stale := c.mainOrder.Stale(); stale != nil {
			c.mainOrder.Remove(stale)
			delete(c.mainIndex, stale.Key())
			c.metrics.Evict(policy.EvictPolicy)
		}
	}
	n := dlist.NewNode(k, v)
	c.mainOrder.PushFresh(n)
	c.mainIndex[k] = n
	c.metrics.Size(len(c.mainIndex))
}

var _ policy.Engine[string, int] = (*Cache[string, int])(nil)
