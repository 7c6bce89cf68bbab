// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

// Package cache provides the in-memory structures used on the ingest hot path:
// a bounded TTL cache for geo lookups and an Aho-Corasick matcher for user
// agent signatures.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCapacity is used when Config.Capacity is not positive.
const DefaultCapacity = 10000

// Config configures a Cache.
type Config struct {
	// TTL is the lifetime of every entry.
	TTL time.Duration

	// Capacity is the maximum number of entries. Adding past it evicts the
	// entry closest to expiry.
	Capacity int
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	prev      *entry[V]
	next      *entry[V]
}

// Cache is a thread-safe map bounded by size and per-entry TTL.
//
// Entries live in a doubly-linked list ordered by write time. Every entry
// shares one TTL, so the list is also ordered by expiry: head.next expires
// last and tail.prev expires first. Set trims expired entries from the tail
// and then evicts from the tail until the cache fits its capacity, both in
// O(1) per removed entry. Get never reorders, so it only needs the read lock.
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]*entry[V]
	head     *entry[V]
	tail     *entry[V]
	ttl      time.Duration
	capacity int
	now      func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	sweeps    atomic.Int64
	lastSweep atomic.Int64 // unix nanos
}

// Stats tracks cache performance.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Sweeps    int64
	Size      int
	Capacity  int
	LastSweep time.Time
}

// New creates an empty cache.
//
//	geoCache := cache.New[models.GeoInfo](cache.Config{TTL: time.Hour, Capacity: 10000})
//	geoCache.Set("203.0.113.7", info)
func New[V any](cfg Config) *Cache[V] {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	c := &Cache[V]{
		items:    make(map[string]*entry[V]),
		head:     &entry[V]{},
		tail:     &entry[V]{},
		ttl:      cfg.TTL,
		capacity: cfg.Capacity,
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value for key if present and not expired. Expired entries
// are left for Set or Sweep to remove.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	var (
		value   V
		expires time.Time
	)
	if ok {
		value, expires = e.value, e.expiresAt
	}
	c.mu.RUnlock()

	if !ok || !c.now().Before(expires) {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return value, true
}

// Set stores value under key for the configured TTL.
func (c *Cache[V]) Set(key string, value V) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = now.Add(c.ttl)
		c.unlink(e)
		c.pushFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expiresAt: now.Add(c.ttl)}
	c.pushFront(e)
	c.items[key] = e

	removed := c.trimExpiredLocked(now)
	for len(c.items) > c.capacity {
		c.removeLocked(c.tail.prev)
		removed++
	}
	c.evictions.Add(int64(removed))
}

// Sweep removes every expired entry and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	removed := c.trimExpiredLocked(now)
	c.mu.Unlock()

	c.evictions.Add(int64(removed))
	c.sweeps.Add(1)
	c.lastSweep.Store(now.UnixNano())
	return removed
}

// trimExpiredLocked walks from the tail and stops at the first live entry.
func (c *Cache[V]) trimExpiredLocked(now time.Time) int {
	removed := 0
	for e := c.tail.prev; e != c.head && !now.Before(e.expiresAt); e = c.tail.prev {
		c.removeLocked(e)
		removed++
	}
	return removed
}

func (c *Cache[V]) pushFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *Cache[V]) unlink(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (c *Cache[V]) removeLocked(e *entry[V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	delete(c.items, e.key)
}

// Len returns the number of entries, including expired ones not yet removed.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GetStats returns a snapshot of the counters.
func (c *Cache[V]) GetStats() Stats {
	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Sweeps:    c.sweeps.Load(),
		Size:      c.Len(),
		Capacity:  c.capacity,
	}
	if ns := c.lastSweep.Load(); ns != 0 {
		s.LastSweep = time.Unix(0, ns)
	}
	return s
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (c *Cache[V]) HitRate() float64 {
	hits, misses := c.hits.Load(), c.misses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
