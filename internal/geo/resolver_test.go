// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package geo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/pixelgate/internal/breaker"
	"github.com/tomtom215/pixelgate/internal/cache"
	"github.com/tomtom215/pixelgate/internal/models"
)

// fakeProvider returns canned results and counts calls.
type fakeProvider struct {
	calls atomic.Int32
	mu    sync.Mutex
	geo   models.GeoInfo
	err   error
	delay time.Duration
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Lookup(ctx context.Context, _ string) (models.GeoInfo, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return models.GeoInfo{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.geo, f.err
}

func (f *fakeProvider) set(geo models.GeoInfo, err error) {
	f.mu.Lock()
	f.geo, f.err = geo, err
	f.mu.Unlock()
}

func canada() models.GeoInfo {
	return models.GeoInfo{Country: models.StringPtr("Canada"), City: models.StringPtr("Toronto")}
}

func newTestResolver(p Provider, timeout time.Duration) (*Resolver, *cache.Cache[models.GeoInfo]) {
	c := cache.New[models.GeoInfo](cache.Config{TTL: time.Hour, Capacity: 100})
	r := NewResolver(ResolverConfig{
		Provider: p,
		Cache:    c,
		Timeout:  timeout,
		Breaker:  breaker.Settings{MinRequests: 1000},
	})
	return r, c
}

func TestResolver_PrivateIPShortCircuits(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{geo: canada()}
	r, _ := newTestResolver(p, time.Second)

	for _, ip := range []string{"10.0.0.1", "127.0.0.1", "::1", "192.168.0.5", "0.0.0.0", "garbage", ""} {
		if geo := r.Resolve(context.Background(), ip); !geo.IsEmpty() {
			t.Errorf("Resolve(%q) = %+v, want empty", ip, geo)
		}
	}
	if n := p.calls.Load(); n != 0 {
		t.Errorf("provider called %d times, want 0", n)
	}
}

func TestResolver_CachesSuccess(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{geo: canada()}
	r, c := newTestResolver(p, time.Second)

	for i := 0; i < 3; i++ {
		geo := r.Resolve(context.Background(), "203.0.113.7")
		if models.Deref(geo.Country) != "Canada" {
			t.Fatalf("Resolve() country = %q", models.Deref(geo.Country))
		}
	}
	if n := p.calls.Load(); n != 1 {
		t.Errorf("provider called %d times, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("cache Len() = %d, want 1", c.Len())
	}
}

func TestResolver_CacheKeyIgnoresPort(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{geo: canada()}
	r, _ := newTestResolver(p, time.Second)

	r.Resolve(context.Background(), "203.0.113.7:1234")
	r.Resolve(context.Background(), "203.0.113.7")
	if n := p.calls.Load(); n != 1 {
		t.Errorf("provider called %d times, want 1", n)
	}
}

func TestResolver_FailureNotCached(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: errors.New("upstream 503")}
	r, c := newTestResolver(p, time.Second)

	if geo := r.Resolve(context.Background(), "203.0.113.7"); !geo.IsEmpty() {
		t.Errorf("failed lookup should degrade to empty, got %+v", geo)
	}
	if c.Len() != 0 {
		t.Error("failures must not be cached")
	}

	p.set(canada(), nil)
	if geo := r.Resolve(context.Background(), "203.0.113.7"); models.Deref(geo.Country) != "Canada" {
		t.Errorf("recovered provider should be retried, got %+v", geo)
	}
	if n := p.calls.Load(); n != 2 {
		t.Errorf("provider called %d times, want 2", n)
	}
}

func TestResolver_Timeout(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{geo: canada(), delay: time.Second}
	r, _ := newTestResolver(p, 20*time.Millisecond)

	start := time.Now()
	geo := r.Resolve(context.Background(), "203.0.113.7")
	if !geo.IsEmpty() {
		t.Errorf("timed out lookup should be empty, got %+v", geo)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Resolve took %v, timeout not applied", elapsed)
	}
}

func TestResolver_OpenBreakerSkipsProvider(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: errors.New("down")}
	r := NewResolver(ResolverConfig{
		Provider: p,
		Timeout:  time.Second,
		Breaker:  breaker.Settings{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Hour},
	})

	r.Resolve(context.Background(), "203.0.113.7")
	r.Resolve(context.Background(), "203.0.113.8")
	before := p.calls.Load()

	if geo := r.Resolve(context.Background(), "203.0.113.9"); !geo.IsEmpty() {
		t.Errorf("open breaker should yield empty, got %+v", geo)
	}
	if p.calls.Load() != before {
		t.Error("provider must not be called while the breaker is open")
	}
}

func TestResolver_RateLimitDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: ErrRateLimited}
	r := NewResolver(ResolverConfig{
		Provider: p,
		Breaker:  breaker.Settings{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Hour},
	})

	for i := 0; i < 5; i++ {
		r.Resolve(context.Background(), "203.0.113.7")
	}
	if n := p.calls.Load(); n != 5 {
		t.Errorf("provider called %d times, want 5 (breaker should stay closed)", n)
	}
}
