// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T, ttl time.Duration, capacity int) (*Cache[string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[string](Config{TTL: ttl, Capacity: capacity})
	c.now = clock.Now
	return c, clock
}

func TestCache_SetGet(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, time.Hour, 10)
	c.Set("1.2.3.4", "Canada")

	got, ok := c.Get("1.2.3.4")
	if !ok || got != "Canada" {
		t.Errorf("Get() = (%q, %v), want (Canada, true)", got, ok)
	}
	if _, ok := c.Get("5.6.7.8"); ok {
		t.Error("Get() of unknown key should miss")
	}

	s := c.GetStats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 miss", s)
	}
	if rate := c.HitRate(); rate != 0.5 {
		t.Errorf("HitRate() = %v, want 0.5", rate)
	}
}

func TestCache_HitRateEmpty(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, time.Hour, 10)
	if rate := c.HitRate(); rate != 0 {
		t.Errorf("HitRate() = %v, want 0", rate)
	}
}

func TestCache_Expiry(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(t, time.Hour, 10)
	c.Set("k", "v")

	clock.Advance(59 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should be live before TTL")
	}

	clock.Advance(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should be expired at TTL")
	}
	if c.Len() != 1 {
		t.Errorf("Get must not remove entries, Len() = %d", c.Len())
	}

	if removed := c.Sweep(); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	s := c.GetStats()
	if s.Evictions != 1 || s.Sweeps != 1 || s.Size != 0 {
		t.Errorf("stats = %+v, want 1 eviction, 1 sweep, size 0", s)
	}
	if s.LastSweep.IsZero() {
		t.Error("LastSweep not recorded")
	}
}

func TestCache_SetTrimsExpired(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(t, time.Minute, 100)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("old-%d", i), "x")
	}

	clock.Advance(2 * time.Minute)
	c.Set("fresh", "y")

	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
	if ev := c.GetStats().Evictions; ev != 5 {
		t.Errorf("Evictions = %d, want 5", ev)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry must survive")
	}
}

func TestCache_CapacityBound(t *testing.T) {
	t.Parallel()

	const capacity = 100
	c, _ := newTestCache(t, time.Hour, capacity)

	for i := 0; i < 5000; i++ {
		c.Set(fmt.Sprintf("10.0.%d.%d", i/256, i%256), "live")
		if got := c.Len(); got > capacity {
			t.Fatalf("Len() = %d after %d sets, exceeds capacity %d", got, i+1, capacity)
		}
	}

	s := c.GetStats()
	if s.Size != capacity || s.Evictions != 5000-capacity {
		t.Errorf("stats = %+v, want size %d and %d evictions", s, capacity, 5000-capacity)
	}
	if s.Sweeps != 0 {
		t.Errorf("Sweeps = %d, want 0 (Set never scans)", s.Sweeps)
	}

	// The oldest writes go first.
	if _, ok := c.Get("10.0.0.0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	last := fmt.Sprintf("10.0.%d.%d", 4999/256, 4999%256)
	if _, ok := c.Get(last); !ok {
		t.Error("newest entry should be present")
	}
}

func TestCache_OverwriteRefreshes(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(t, time.Hour, 2)
	c.Set("a", "1")
	clock.Advance(time.Minute)
	c.Set("b", "2")
	clock.Advance(time.Minute)
	c.Set("a", "1b") // a moves ahead of b
	c.Set("c", "3")  // evicts b

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if got, ok := c.Get("a"); !ok || got != "1b" {
		t.Errorf("Get(a) = (%q, %v), want (1b, true)", got, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCache_DefaultCapacity(t *testing.T) {
	t.Parallel()

	c := New[int](Config{TTL: time.Second})
	if c.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", c.capacity, DefaultCapacity)
	}
	if got := c.GetStats().Capacity; got != DefaultCapacity {
		t.Errorf("Stats.Capacity = %d", got)
	}
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := New[int](Config{TTL: time.Millisecond, Capacity: 50})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("%d-%d", g, i%60)
				c.Set(key, i)
				c.Get(key)
				if i%100 == 0 {
					c.Sweep()
				}
			}
		}(g)
	}
	wg.Wait()

	s := c.GetStats()
	if s.Hits+s.Misses != 8*500 {
		t.Errorf("every Get should be counted, stats = %+v", s)
	}
	if s.Size > 50 {
		t.Errorf("Size = %d exceeds capacity", s.Size)
	}
}
