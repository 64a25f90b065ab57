package cache

import "context"

// Cache is a sharded, in-memory key/value cache interface.
// All methods are safe for concurrent use by multiple goroutines.
//
// Typical complexity for operations is amortized O(1): a map lookup plus
// constant-time list/bucket adjustments under the owning shard's engine
// lock. With the ARC engine, inserting a new key and Len also count the
// distinct keys across its two sub-caches, which is linear in the shard's
// resident entries.
type Cache[K comparable, V any] interface {
	// Add inserts k→v only if k is not present.
	// Returns false if the key already exists (no update is performed).
	Add(k K, v V) bool

	// Set inserts or updates k→v, promoting the entry according to the
	// active eviction engine (e.g. LRU, LFU, LRU-K, ARC).
	Set(k K, v V)

	// Get returns the value for k and a boolean flag indicating presence.
	// On hit, the entry is promoted according to the active engine.
	Get(k K) (V, bool)

	// Remove deletes k if present and returns true on success.
	Remove(k K) bool

	// Len returns the total number of resident entries across all shards.
	Len() int

	// Purge discards every resident entry across every shard.
	Purge()

	// Close marks the cache as closed. Afterwards Add, Set, Get and Remove
	// are no-ops (Add, Get and Remove report false); Len and Purge still act
	// on the shards, and GetOrLoad still calls the Loader but does not store
	// its result. Current implementation is a soft close and returns nil.
	Close() error

	// GetOrLoad returns the value for k, loading it via Options.Loader on
	// miss. Concurrent loads for the same key are coalesced (singleflight).
	// If no Loader was configured, returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)
}
