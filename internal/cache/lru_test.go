package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should be present")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute)
	c.now = clock.now

	c.Set("k", "v")
	c.Set("other", "v")
	clock.t = clock.t.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected k to be expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 cleaned, got %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUUpdate(t *testing.T) {
	c := NewLRUCache[[]int](4, time.Hour)
	c.Update("k", func(cur []int, ok bool) []int {
		if ok {
			t.Fatalf("unexpected existing value")
		}
		return append(cur, 1)
	})
	got := c.Update("k", func(cur []int, ok bool) []int {
		if !ok {
			t.Fatalf("expected existing value")
		}
		return append(cur, 2)
	})
	if len(got) != 2 || got[1] != 2 {
		t.Fatalf("update result = %v", got)
	}
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected deleted")
	}
}

func TestManagerSweep(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Second)
	c.now = clock.now
	c.Set("a", 1)
	c.Set("b", 2)
	clock.t = clock.t.Add(time.Minute)

	m := NewManager(nil)
	m.Register("test", c)
	if n := m.Sweep(); n != 2 {
		t.Fatalf("expected 2 swept, got %d", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
}
