package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cacheforge/polycache/policy"
	"github.com/cacheforge/polycache/policy/arc"
	"github.com/cacheforge/polycache/policy/lfu"
)

// Basic Add/Set/Get/Remove semantics.
// Add inserts only if key is absent; Set updates; Remove deletes.
func TestCache_BasicAddSetGetRemove(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 8})
	t.Cleanup(func() { _ = c.Close() })

	if !c.Add("a", 1) {
		t.Fatal("Add a=1 must be true")
	}
	if c.Add("a", 2) {
		t.Fatal("Add duplicate must be false")
	}

	c.Set("a", 11)
	if v, ok := c.Get("a"); !ok || v != 11 {
		t.Fatalf("Get a want 11, got %v ok=%v", v, ok)
	}

	if !c.Remove("a") {
		t.Fatal("Remove a must be true")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be absent after Remove")
	}
}

// Deterministic LRU eviction: single shard, small capacity.
// Accessing "a" promotes it; inserting "c" evicts LRU ("b").
func TestCache_EvictionLRU(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{
		Capacity: 2,
		Shards:   1, // force a single shard so LRU is global
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Set("a", 1) // LRU = a
	c.Set("b", 2) // MRU = b

	if _, ok := c.Get("a"); !ok { // promote a -> MRU
		t.Fatal("expect hit for a")
	}
	c.Set("c", 3) // overflow -> evict LRU (b)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b must be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a must survive (promoted)")
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatal("c must be present")
	}
}

// Sharded distribution: total capacity 8 split across 4 shards bounds
// each shard at ⌈8/4⌉=2 residents, even once far more keys than the
// total capacity have been written.
func TestCache_ShardedCapacityDistribution(t *testing.T) {
	t.Parallel()

	const (
		capacity = 8
		shards   = 4
		perShard = 2 // ⌈capacity/shards⌉
		keyspace = 32
	)

	c := New[int, int](Options[int, int]{
		Capacity: capacity,
		Shards:   shards,
	})
	t.Cleanup(func() { _ = c.Close() })

	for i := 0; i < keyspace; i++ {
		c.Set(i, i)
	}

	cc := c.(*cache[int, int])
	if len(cc.shards) != shards {
		t.Fatalf("len(shards) = %d, want %d", len(cc.shards), shards)
	}
	for i, s := range cc.shards {
		if n := s.Len(); n > perShard {
			t.Fatalf("shard %d: Len() = %d, want <= %d", i, n, perShard)
		}
	}
	if total := c.Len(); total > capacity {
		t.Fatalf("Len() = %d, want <= %d", total, capacity)
	}
}

// Engine selection: plugging in LFU via NewEngine changes eviction
// behavior without touching any other Options field.
func TestCache_SelectableEngine_LFU(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{
		Capacity: 2,
		Shards:   1,
		NewEngine: func(capacity int, m policy.Metrics) policy.Engine[string, int] {
			return lfu.New[string, int](capacity, 10).WithMetrics(m)
		},
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Get("a")
	c.Set("c", 3) // b has the lowest frequency; LFU evicts it, not a

	if _, ok := c.Get("b"); ok {
		t.Fatal("b must be evicted under LFU (lowest frequency)")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get a want 1, got %v ok=%v", v, ok)
	}
}

func TestCache_SelectableEngine_ARC(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{
		Capacity: 4,
		Shards:   1,
		NewEngine: func(capacity int, m policy.Metrics) policy.Engine[string, int] {
			return arc.New[string, int](capacity, 2).WithMetrics(m)
		},
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get a want 1, got %v ok=%v", v, ok)
	}
}

func TestCache_Purge(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 8})
	t.Cleanup(func() { _ = c.Close() })

	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len() after Purge = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be absent after Purge")
	}
}

func TestCache_ClosedCacheIsNoop(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 4})
	c.Set("a", 1)
	_ = c.Close()

	if c.Add("b", 2) {
		t.Fatal("Add must be a no-op after Close")
	}
	c.Set("a", 99) // no-op after close
	if _, ok := c.Get("a"); ok {
		t.Fatal("Get must miss after Close")
	}
}

// Singleflight test: concurrent GetOrLoad calls for the same key
// should trigger the Loader at most once; subsequent calls are cache hits.
func TestCache_GetOrLoad_Singleflight(t *testing.T) {
	var calls int64

	c := New[string, string](Options[string, string]{
		Capacity: 64,
		Loader: func(_ context.Context, k string) (string, error) {
			atomic.AddInt64(&calls, 1)
			time.Sleep(5 * time.Millisecond) // simulate I/O
			return "v:" + k, nil
		},
	})
	t.Cleanup(func() { _ = c.Close() })

	const N = 64
	var g errgroup.Group
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < N; i++ {
		g.Go(func() error {
			v, err := c.GetOrLoad(ctx, "k")
			if err != nil {
				return err
			}
			if v != "v:k" {
				return fmt.Errorf("got %q", v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("loader must run exactly once, got %d", got)
	}

	if v, err := c.GetOrLoad(context.Background(), "k"); err != nil || v != "v:k" {
		t.Fatalf("second GetOrLoad failed: v=%q err=%v", v, err)
	}
}

func TestCache_GetOrLoad_NoLoader(t *testing.T) {
	t.Parallel()

	c := New[string, string](Options[string, string]{Capacity: 4})
	t.Cleanup(func() { _ = c.Close() })

	if _, err := c.GetOrLoad(context.Background(), "missing"); err != ErrNoLoader {
		t.Fatalf("err = %v, want ErrNoLoader", err)
	}
}
