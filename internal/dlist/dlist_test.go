package dlist

import "testing"

func TestList_PushFreshOrderAndLen(t *testing.T) {
	l := New[string, int]()
	a := NewNode("a", 1)
	b := NewNode("b", 2)
	c := NewNode("c", 3)

	l.PushFresh(a)
	l.PushFresh(b)
	l.PushFresh(c)

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	if l.Stale() != a {
		t.Fatalf("Stale() = %v, want a", l.Stale().Key())
	}
	if l.Fresh() != c {
		t.Fatalf("Fresh() = %v, want c", l.Fresh().Key())
	}
}

func TestList_MoveToFresh(t *testing.T) {
	l := New[string, int]()
	a := NewNode("a", 1)
	b := NewNode("b", 2)
	l.PushFresh(a)
	l.PushFresh(b)

	l.MoveToFresh(a)
	if l.Fresh() != a {
		t.Fatalf("Fresh() = %v, want a after MoveToFresh", l.Fresh().Key())
	}
	if l.Stale() != b {
		t.Fatalf("Stale() = %v, want b after MoveToFresh(a)", l.Stale().Key())
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (MoveToFresh must not change length)", l.Len())
	}
}

func TestList_Remove(t *testing.T) {
	l := New[string, int]()
	a := NewNode("a", 1)
	b := NewNode("b", 2)
	c := NewNode("c", 3)
	l.PushFresh(a)
	l.PushFresh(b)
	l.PushFresh(c)

	l.Remove(b)
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if l.Stale() != a || l.Fresh() != c {
		t.Fatalf("Remove(b) must leave a<->c linked, got stale=%v fresh=%v", l.Stale().Key(), l.Fresh().Key())
	}
}

func TestList_PushStale(t *testing.T) {
	l := New[string, int]()
	a := NewNode("a", 1)
	b := NewNode("b", 2)
	l.PushFresh(a)
	l.PushStale(b)

	if l.Stale() != b {
		t.Fatalf("Stale() = %v, want b", l.Stale().Key())
	}
	if l.Fresh() != a {
		t.Fatalf("Fresh() = %v, want a", l.Fresh().Key())
	}
}

func TestList_EmptyListStaleFreshNil(t *testing.T) {
	l := New[string, int]()
	if l.Stale() != nil || l.Fresh() != nil {
		t.Fatalf("empty list must report nil Stale/Fresh")
	}
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
}
