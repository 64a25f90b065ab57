// Package lfu implements the Least-Frequently-Used eviction engine:
// per-frequency buckets for O(1) promotion, a running minFreq pointer, and
// periodic age reduction so once-hot keys do not become immortal.
package lfu

import (
	"sync"

	"github.com/cacheforge/polycache/internal/dlist"
	"github.com/cacheforge/polycache/policy"
)

type payload[V any] struct {
	val  V
	freq int
}

// Cache is an LFU eviction engine. It implements policy.Engine[K,V].
type Cache[K comparable, V any] struct {
	mu sync.Mutex

	cap        int
	maxAverage int

	index   map[K]*dlist.Node[K, payload[V]]
	buckets map[int]*dlist.List[K, payload[V]]
	minFreq int

	totalFreq int
	metrics   policy.Metrics
}

// New constructs an LFU engine bounded at capacity entries. maxAverage
// triggers age reduction when the running average frequency exceeds it;
// a non-positive maxAverage falls back to a default of 10.
func New[K comparable, V any](capacity, maxAverage int) *Cache[K, V] {
	if maxAverage <= 0 {
		maxAverage = 10
	}
	return &Cache[K, V]{
		cap:        capacity,
		maxAverage: maxAverage,
		index:      make(map[K]*dlist.Node[K, payload[V]]),
		buckets:    make(map[int]*dlist.List[K, payload[V]]),
		metrics:    policy.NoopMetrics{},
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

// Put stores v under k. A new key is admitted at frequency 1; an existing
// key is promoted exactly like a Get.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cap <= 0 {
		return
	}
	if n, ok := c.index[k]; ok {
		n.Val.val = v
		c.promoteLocked(n)
		return
	}
	if len(c.index) >= c.cap {
		c.evictLocked()
	}
	n := dlist.NewNode(k, payload[V]{val: v, freq: 1})
	c.bucketLocked(1).PushFresh(n)
	c.index[k] = n
	c.minFreq = 1
	c.totalFreq++
	c.ageIfNeededLocked()
	c.metrics.Size(len(c.index))
}

// Get returns the value for k and whether it was present, promoting the
// entry's frequency bucket on a hit.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[k]
	if !ok {
		c.metrics.Miss()
		var zero V
		return zero, false
	}
	c.promoteLocked(n)
	c.metrics.Hit()
	return n.Val.val, true
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
	freq := n.Val.freq
	bucket := c.bucketLocked(freq)
	bucket.Remove(n)
	if bucket.Len() == 0 {
		delete(c.buckets, freq)
		if freq == c.minFreq {
			c.minFreq = c.lowestNonEmptyFreqLocked()
		}
	}
	c.totalFreq -= freq
	delete(c.index, k)
	return true
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Purge discards every resident entry and bucket.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = make(map[K]*dlist.Node[K, payload[V]])
	c.buckets = make(map[int]*dlist.List[K, payload[V]])
	c.minFreq = 0
	c.totalFreq = 0
}

func (c *Cache[K, V]) bucketLocked(freq int) *dlist.List[K, payload[V]] {
	b, ok := c.buckets[freq]
	if !ok {
		b = dlist.New[K, payload[V]]()
		c.buckets[freq] = b
	}
	return b
}

// promoteLocked moves n from bucket[f] to bucket[f+1], advancing minFreq
// when the vacated bucket was the minimum. Callers must hold c.mu.
func (c *Cache[K, V]) promoteLocked(n *dlist.Node[K, payload[V]]) {
	oldFreq := n.Val.freq
	oldBucket := c.bucketLocked(oldFreq)
	oldBucket.Remove(n)
	if oldBucket.Len() == 0 {
		delete(c.buckets, oldFreq)
		if oldFreq == c.minFreq {
			c.minFreq = oldFreq + 1
		}
	}
	n.Val.freq++
	c.bucketLocked(n.Val.freq).PushFresh(n)
	c.totalFreq++
	c.ageIfNeededLocked()
}

// evictLocked drops the stale entry of bucket[minFreq]. The vacated bucket
// is deleted but minFreq is not rescanned here — the next insertion resets
// it to 1.
func (c *Cache[K, V]) evictLocked() {
	bucket, ok := c.buckets[c.minFreq]
	if !ok {
		return
	}
	stale := bucket.Stale()
	if stale == nil {
		return
	}
	bucket.Remove(stale)
	if bucket.Len() == 0 {
		delete(c.buckets, c.minFreq)
	}
	c.totalFreq -= stale.Val.freq
	delete(c.index, stale.Key())
	c.metrics.Evict(policy.EvictPolicy)
}

// ageIfNeededLocked lowers every entry's frequency by maxAverage/2 (clamped
// at 1) when the running average crosses maxAverage, rebuilding buckets and
// minFreq.
// Callers must hold c.mu.
func (c *Cache[K, V]) ageIfNeededLocked() {
	if len(c.index) == 0 {
		return
	}
	avg := c.totalFreq / len(c.index)
	if avg <= c.maxAverage {
		return
	}

	delta := c.maxAverage / 2
	rebuilt := make(map[int]*dlist.List[K, payload[V]])
	c.totalFreq = 0
	for _, n := range c.index {
		n.Val.freq -= delta
		if n.Val.freq < 1 {
			n.Val.freq = 1
		}
		b, ok := rebuilt[n.Val.freq]
		if !ok {
			b = dlist.New[K, payload[V]]()
			rebuilt[n.Val.freq] = b
		}
		b.PushFresh(n)
		c.totalFreq += n.Val.freq
	}
	c.buckets = rebuilt
	c.minFreq = c.lowestNonEmptyFreqLocked()
}

func (c *Cache[K, V]) lowestNonEmptyFreqLocked() int {
	min := 0
	for freq, b := range c.buckets {
		if b.Len() == 0 {
			continue
		}
		if min == 0 || freq < min {
			min = freq
		}
	}
	if min == 0 {
		return 1
	}
	return min
}

var _ policy.Engine[string, int] = (*Cache[string, int])(nil)
