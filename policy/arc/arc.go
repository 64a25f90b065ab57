// Package arc implements the Adaptive Replacement Cache: a recency
// sub-cache (T1) and a frequency sub-cache (T2), each paired with a ghost
// list (B1, B2) of evicted keys. A ghost hit shifts capacity from the
// opposite sub-cache to the one that just proved it evicted too eagerly.
//
// A Put always lands in T1, and Get only adds a promoted key to T2 without
// removing it from T1 — so a single key can be resident in both sub-caches
// at once. Each sub-cache is independently sized up to the configured
// capacity, so total residency can reach twice the configured capacity
// rather than bounding at it; this is the algorithm's own behavior, not a
// bug, and is left as-is.
package arc

import (
	"sync"

	"github.com/cacheforge/polycache/internal/dlist"
	"github.com/cacheforge/polycache/policy"
)

type t1Entry[V any] struct {
	val         V
	accessCount int
}

type t2Entry[V any] struct {
	val  V
	freq int
}

// Cache is an ARC eviction engine. It implements policy.Engine[K,V]. All
// state — both sub-caches and both ghost lists — is guarded by one mutex.
type Cache[K comparable, V any] struct {
	mu sync.Mutex

	threshold int
	ghostCap1 int
	ghostCap2 int

	capT1 int
	capT2 int

	t1Index map[K]*dlist.Node[K, t1Entry[V]]
	t1Order *dlist.List[K, t1Entry[V]]

	b1Index map[K]*dlist.Node[K, struct{}]
	b1Order *dlist.List[K, struct{}]

	t2Index   map[K]*dlist.Node[K, t2Entry[V]]
	t2Buckets map[int]*dlist.List[K, t2Entry[V]]
	t2MinFreq int

	b2Index map[K]*dlist.Node[K, struct{}]
	b2Order *dlist.List[K, struct{}]

	metrics policy.Metrics
}

// New constructs an ARC engine. capacity bounds each sub-cache and each
// ghost list independently. transformThreshold is the access count at which
// a T1 hit also admits the key into T2; the inserting Put counts as the
// first access, so the default of 2 promotes on the first Get hit. A
// non-positive value falls back to 2.
func New[K comparable, V any](capacity, transformThreshold int) *Cache[K, V] {
	if transformThreshold < 1 {
		transformThreshold = 2
	}
	return &Cache[K, V]{
		threshold: transformThreshold,
		ghostCap1: capacity,
		ghostCap2: capacity,
		capT1:     capacity,
		capT2:     capacity,

		t1Index: make(map[K]*dlist.Node[K, t1Entry[V]]),
		t1Order: dlist.New[K, t1Entry[V]](),
		b1Index: make(map[K]*dlist.Node[K, struct{}]),
		b1Order: dlist.New[K, struct{}](),

		t2Index:   make(map[K]*dlist.Node[K, t2Entry[V]]),
		t2Buckets: make(map[int]*dlist.List[K, t2Entry[V]]),
		b2Index:   make(map[K]*dlist.Node[K, struct{}]),
		b2Order:   dlist.New[K, struct{}](),

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

// Put stores v under k in T1, syncing T2's copy if k is already resident
// there. A ghost hit on k rebalances the sub-cache capacities first.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checkGhostCachesLocked(k)
	c.upsertT1Locked(k, v)
	if n2, ok := c.t2Index[k]; ok {
		n2.Val.val = v
		c.promoteT2Locked(n2)
	}
}

// Get returns the value for k and whether it was present. A T1 hit that
// reaches the transform threshold additionally admits k into T2 without
// removing it from T1.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checkGhostCachesLocked(k)

	if n1, ok := c.t1Index[k]; ok {
		n1.Val.accessCount++
		c.t1Order.MoveToFresh(n1)
		v := n1.Val.val
		if n1.Val.accessCount >= c.threshold {
			c.admitOrPromoteT2Locked(k, v)
		}
		c.metrics.Hit()
		return v, true
	}
	if n2, ok := c.t2Index[k]; ok {
		c.promoteT2Locked(n2)
		c.metrics.Hit()
		return n2.Val.val, true
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

// Remove deletes k from both T1 and T2 (it does not touch either ghost
// list, since ghosts deliberately outlive the entries they track),
// reporting whether k was resident in either.
func (c *Cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	if n, ok := c.t1Index[k]; ok {
		c.t1Order.Remove(n)
		delete(c.t1Index, k)
		found = true
	}
	if n, ok := c.t2Index[k]; ok {
		bucket := c.t2BucketLocked(n.Val.freq)
		bucket.Remove(n)
		if bucket.Len() == 0 {
			delete(c.t2Buckets, n.Val.freq)
			if n.Val.freq == c.t2MinFreq {
				c.t2MinFreq = c.lowestNonEmptyT2FreqLocked()
			}
		}
		delete(c.t2Index, k)
		found = true
	}
	return found
}

// Len returns the number of distinct keys resident in either sub-cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sizeLocked()
}

// sizeLocked counts distinct keys resident in either sub-cache. Callers
// must hold c.mu.
func (c *Cache[K, V]) sizeLocked() int {
	seen := make(map[K]struct{}, len(c.t1Index)+len(c.t2Index))
	for k := range c.t1Index {
		seen[k] = struct{}{}
	}
	for k := range c.t2Index {
		seen[k] = struct{}{}
	}
	return len(seen)
}

// Purge discards every resident and ghost entry, resetting sub-cache
// capacities back to their configured starting point.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.capT1 = c.ghostCap1
	c.capT2 = c.ghostCap2
	c.t1Index = make(map[K]*dlist.Node[K, t1Entry[V]])
	c.t1Order = dlist.New[K, t1Entry[V]]()
	c.b1Index = make(map[K]*dlist.Node[K, struct{}])
	c.b1Order = dlist.New[K, struct{}]()
	c.t2Index = make(map[K]*dlist.Node[K, t2Entry[V]])
	c.t2Buckets = make(map[int]*dlist.List[K, t2Entry[V]])
	c.t2MinFreq = 0
	c.b2Index = make(map[K]*dlist.Node[K, struct{}])
	c.b2Order = dlist.New[K, struct{}]()
}

// checkGhostCachesLocked looks for k in B1 or B2. A B1 hit means a key
// evicted from T1 was wanted again, so T2 gives up a slot to T1; a B2 hit
// shifts capacity the other way. Callers must hold c.mu.
func (c *Cache[K, V]) checkGhostCachesLocked(k K) bool {
	if n, ok := c.b1Index[k]; ok {
		c.b1Order.Remove(n)
		delete(c.b1Index, k)
		if c.decreaseT2Locked() {
			c.capT1++
		}
		return true
	}
	if n, ok := c.b2Index[k]; ok {
		c.b2Order.Remove(n)
		delete(c.b2Index, k)
		if c.decreaseT1Locked() {
			c.capT2++
		}
		return true
	}
	return false
}

func (c *Cache[K, V]) decreaseT1Locked() bool {
	if c.capT1 <= 0 {
		c.capT1 = 0
		return false
	}
	if len(c.t1Index) == c.capT1 {
		c.evictT1Locked()
	}
	c.capT1--
	return true
}

func (c *Cache[K, V]) decreaseT2Locked() bool {
	if c.capT2 <= 0 {
		c.capT2 = 0
		return false
	}
	if len(c.t2Index) == c.capT2 {
		c.evictT2Locked()
	}
	c.capT2--
	return true
}

func (c *Cache[K, V]) upsertT1Locked(k K, v V) {
	if n, ok := c.t1Index[k]; ok {
		n.Val.val = v
		c.t1Order.MoveToFresh(n)
		return
	}
	if c.capT1 <= 0 {
		return
	}
	if len(c.t1Index) >= c.capT1 {
		c.evictT1Locked()
	}
	n := dlist.NewNode(k, t1Entry[V]{val: v, accessCount: 1})
	c.t1Order.PushFresh(n)
	c.t1Index[k] = n
	c.metrics.Size(c.sizeLocked())
}

// evictT1Locked drops T1's stale entry into B1, dropping B1's own stale
// entry first if B1 is at capacity. Callers must hold c.mu.
func (c *Cache[K, V]) evictT1Locked() {
	stale := c.t1Order.Stale()
	if stale == nil {
		return
	}
	c.t1Order.Remove(stale)
	delete(c.t1Index, stale.Key())

	if len(c.b1Index) >= c.ghostCap1 {
		if oldest := c.b1Order.Stale(); oldest != nil {
			c.b1Order.Remove(oldest)
			delete(c.b1Index, oldest.Key())
		}
	}
	g := dlist.NewNode[K, struct{}](stale.Key(), struct{}{})
	c.b1Order.PushFresh(g)
	c.b1Index[stale.Key()] = g
	c.metrics.Evict(policy.EvictPolicy)
}

func (c *Cache[K, V]) admitOrPromoteT2Locked(k K, v V) {
	if n, ok := c.t2Index[k]; ok {
		n.Val.val = v
		c.promoteT2Locked(n)
		return
	}
	if c.capT2 <= 0 {
		return
	}
	if len(c.t2Index) >= c.capT2 {
		c.evictT2Locked()
	}
	n := dlist.NewNode(k, t2Entry[V]{val: v, freq: 1})
	c.t2BucketLocked(1).PushFresh(n)
	c.t2Index[k] = n
	c.t2MinFreq = 1
	c.metrics.Size(c.sizeLocked())
}

func (c *Cache[K, V]) t2BucketLocked(freq int) *dlist.List[K, t2Entry[V]] {
	b, ok := c.t2Buckets[freq]
	if !ok {
		b = dlist.New[K, t2Entry[V]]()
		c.t2Buckets[freq] = b
	}
	return b
}

// promoteT2Locked moves n to the next frequency bucket, advancing
// t2MinFreq when the vacated bucket was the minimum. Callers must hold
// c.mu.
func (c *Cache[K, V]) promoteT2Locked(n *dlist.Node[K, t2Entry[V]]) {
	oldFreq := n.Val.freq
	oldBucket := c.t2BucketLocked(oldFreq)
	oldBucket.Remove(n)
	if oldBucket.Len() == 0 {
		delete(c.t2Buckets, oldFreq)
		if oldFreq == c.t2MinFreq {
			c.t2MinFreq = oldFreq + 1
		}
	}
	n.Val.freq++
	c.t2BucketLocked(n.Val.freq).PushFresh(n)
}

// evictT2Locked drops T2's minimum-frequency stale entry into B2, dropping
// B2's own stale entry first if B2 is at capacity. Callers must hold c.mu.
func (c *Cache[K, V]) evictT2Locked() {
	bucket, ok := c.t2Buckets[c.t2MinFreq]
	if !ok {
		return
	}
	stale := bucket.Stale()
	if stale == nil {
		return
	}
	bucket.Remove(stale)
	if bucket.Len() == 0 {
		delete(c.t2Buckets, c.t2MinFreq)
		c.t2MinFreq = c.lowestNonEmptyT2FreqLocked()
	}
	delete(c.t2Index, stale.Key())

	if len(c.b2Index) >= c.ghostCap2 {
		if oldest := c.b2Order.Stale(); oldest != nil {
			c.b2Order.Remove(oldest)
			delete(c.b2Index, oldest.Key())
		}
	}
	g := dlist.NewNode[K, struct{}](stale.Key(), struct{}{})
	c.b2Order.PushFresh(g)
	c.b2Index[stale.Key()] = g
	c.metrics.Evict(policy.EvictPolicy)
}

func (c *Cache[K, V]) lowestNonEmptyT2FreqLocked() int {
	min := 0
	for freq, b := range c.t2Buckets {
		if b.Len() == 0 {
			continue
		}
		if min == 0 || freq < min {
			min = freq
		}
	}
	return min
}

var _ policy.Engine[string, int] = (*Cache[string, int])(nil)
