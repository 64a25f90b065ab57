// Package dlist implements the intrusive doubly linked list shared by every
// eviction engine in this module: LRU's recency order, LFU's per-frequency
// buckets, LRU-K's main/history queues, and ARC's T1/T2/B1/B2 lists are all
// built on the same sentinel-delimited list.
//
// Two sentinel nodes delimit the list so interior splice/detach operations
// never branch on nil. One end is "stale" (adjacent to the head sentinel,
// the next eviction candidate); the other is "fresh" (adjacent to the tail
// sentinel, the most recently touched entry). A key is present in an
// engine's index map iff its node is linked between the sentinels.
package dlist

// Node is one element of a List. K identifies the entry for map indexing;
// Val carries whatever payload the owning engine needs (a plain value, or a
// small struct tracking frequency/access-count alongside the value).
type Node[K comparable, V any] struct {
	key  K
	Val  V
	prev *Node[K, V]
	next *Node[K, V]
}

// NewNode constructs a detached node. The caller links it into a List with
// PushStale or PushFresh.
func NewNode[K comparable, V any](k K, v V) *Node[K, V] {
	return &Node[K, V]{key: k, Val: v}
}

// Key returns the node's key.
func (n *Node[K, V]) Key() K { return n.key }

// List is a sentinel-delimited intrusive doubly linked list.
type List[K comparable, V any] struct {
	head Node[K, V] // sentinel; head.next is the stale end
	tail Node[K, V] // sentinel; tail.prev is the fresh end
	n    int
}

// New returns an empty list with its sentinels linked to each other.
func New[K comparable, V any]() *List[K, V] {
	l := &List[K, V]{}
	l.head.next = &l.tail
	l.tail.prev = &l.head
	return l
}

// Len returns the number of linked (non-sentinel) nodes.
func (l *List[K, V]) Len() int { return l.n }

// PushFresh links n adjacent to the tail sentinel (the fresh end).
func (l *List[K, V]) PushFresh(n *Node[K, V]) {
	n.prev = l.tail.prev
	n.next = &l.tail
	l.tail.prev.next = n
	l.tail.prev = n
	l.n++
}

// PushStale links n adjacent to the head sentinel (the stale end).
func (l *List[K, V]) PushStale(n *Node[K, V]) {
	n.next = l.head.next
	n.prev = &l.head
	l.head.next.prev = n
	l.head.next = n
	l.n++
}

// MoveToFresh splices an already-linked n to the fresh end.
func (l *List[K, V]) MoveToFresh(n *Node[K, V]) {
	if l.tail.prev == n {
		return
	}
	l.unlink(n)
	n.prev = l.tail.prev
	n.next = &l.tail
	l.tail.prev.next = n
	l.tail.prev = n
}

// Remove detaches n from the list. n must belong to this list.
func (l *List[K, V]) Remove(n *Node[K, V]) {
	l.unlink(n)
	n.prev, n.next = nil, nil
	l.n--
}

func (l *List[K, V]) unlink(n *Node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

// Stale returns the node adjacent to the head sentinel (the eviction
// candidate), or nil if the list is empty.
func (l *List[K, V]) Stale() *Node[K, V] {
	if l.head.next == &l.tail {
		return nil
	}
	return l.head.next
}

// Fresh returns the node adjacent to the tail sentinel, or nil if empty.
func (l *List[K, V]) Fresh() *Node[K, V] {
	if l.tail.prev == &l.head {
		return nil
	}
	return l.tail.prev
}
