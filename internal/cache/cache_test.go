package cache

import (
	"testing"
	"time"
)

// TestGetSet verifies a stored value is returned before its TTL elapses.
func TestGetSet(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 42)

	got, ok := c.Get("a")
	if !ok || got != 42 {
		t.Errorf("Get(a) = %d, %v; want 42, true", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) hit, want miss")
	}
}

// TestExpiry verifies entries expire after the TTL.
func TestExpiry(t *testing.T) {
	c := New[string](time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", "v")

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Error("Get after TTL hit, want miss")
	}
}

// TestInvalidate verifies Invalidate drops all entries.
func TestInvalidate(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate()
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after Invalidate hit, want miss")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) after Invalidate hit, want miss")
	}
}

// TestZeroTTLDisables verifies a non-positive TTL disables caching.
func TestZeroTTLDisables(t *testing.T) {
	c := New[int](0)
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Error("Get with zero TTL hit, want miss")
	}
}
