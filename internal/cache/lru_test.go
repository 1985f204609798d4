package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache should miss")
	}

	c.Set("k1", "g1", "v1")
	got, ok := c.Get("k1")
	if !ok || got != "v1" {
		t.Errorf("Get(k1) = %q, %v; want v1, true", got, ok)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)
	c.Set("k1", "g1", "v1")

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k1"); ok {
		t.Error("expired entry should miss")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be evicted on read, size = %d", c.Size())
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", "g", 1)
	c.Set("b", "g", 2)
	c.Set("c", "g", 3) // evicts a, the least recently used

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should survive")
	}
}

func TestLRUCache_DeleteGroup(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("k1", "analytics:overview:u1", 1)
	c.Set("k2", "analytics:overview:u1", 2)
	c.Set("k3", "analytics:overview:u2", 3)

	c.DeleteGroup("analytics:overview:u1")

	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should be gone with its group")
	}
	if _, ok := c.Get("k2"); ok {
		t.Error("k2 should be gone with its group")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("another user's group must be untouched")
	}
}

func TestLRUCache_SetMovesGroups(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("k1", "g1", 1)
	c.Set("k1", "g2", 2)

	c.DeleteGroup("g1")
	if _, ok := c.Get("k1"); !ok {
		t.Error("k1 was re-tagged to g2, deleting g1 must not remove it")
	}
	c.DeleteGroup("g2")
	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should be gone after deleting its current group")
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	c.Set("k1", "g", 1)
	c.Set("k2", "g", 2)

	time.Sleep(20 * time.Millisecond)
	c.Set("k3", "g", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestKeyDeterminism(t *testing.T) {
	k1 := Key("analytics:overview", "u1", "month", "2026-06-01")
	k2 := Key("analytics:overview", "u1", "month", "2026-06-01")
	if k1 != k2 {
		t.Error("identical inputs must produce identical keys")
	}

	k3 := Key("analytics:overview", "u1", "month", "2026-07-01")
	if k1 == k3 {
		t.Error("different arguments must produce different keys")
	}

	if Group("analytics:overview", "u1") != "analytics:overview:u1" {
		t.Errorf("Group() = %q", Group("analytics:overview", "u1"))
	}
}

func TestNoop(t *testing.T) {
	n := NewNoop[int]()
	n.Set("k", "g", 1)
	if _, ok := n.Get("k"); ok {
		t.Error("noop cache must always miss")
	}
	if n.Size() != 0 {
		t.Error("noop cache has no entries")
	}
}
