package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestTTLCache_GetSet(t *testing.T) {
	c := New[[]int](2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []int{1, 2, 3}, 0)
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []int{4}, 0)
	c.Get("a")              // a is now most recently used
	c.Set("c", []int{5}, 0) // evicts b
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[string](0, WithClock[string](clock.Now))

	c.Set("repo", "gemini-cli", 5*time.Minute)
	clock.Advance(4 * time.Minute)
	if v, ok := c.Get("repo"); !ok || v != "gemini-cli" {
		t.Fatalf("before expiry: got %q, %v", v, ok)
	}
	clock.Advance(time.Minute)
	if _, ok := c.Get("repo"); ok {
		t.Error("entry should expire exactly at its TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed on access, len = %d", c.Len())
	}
}

func TestTTLCache_SetRefreshesTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := New[int](0, WithClock[int](clock.Now))
	c.Set("k", 1, time.Minute)
	clock.Advance(50 * time.Second)
	c.Set("k", 2, time.Minute)
	clock.Advance(50 * time.Second)
	if v, ok := c.Get("k"); !ok || v != 2 {
		t.Errorf("got %v, %v; want 2, true", v, ok)
	}
}

func TestTTLCache_DeleteAndClear(t *testing.T) {
	c := New[int](0)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len after clear = %d", c.Len())
	}
}

func TestTTLCache_IsolatedInstances(t *testing.T) {
	var a, b Cache[int] = New[int](0), New[int](0)
	a.Set("k", 1, 0)
	if _, ok := b.Get("k"); ok {
		t.Error("caches must not share state")
	}
}
