// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

// Package geo resolves client IP addresses to coarse location data.
//
// Resolution never fails from the caller's point of view: private
// addresses, provider errors, timeouts, rate limiting and an open circuit
// breaker all yield an empty GeoInfo. Only successful lookups are cached,
// so a provider that recovers is used again on the next event.
package geo

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/pixelgate/internal/breaker"
	"github.com/tomtom215/pixelgate/internal/logging"
	"github.com/tomtom215/pixelgate/internal/metrics"
	"github.com/tomtom215/pixelgate/internal/models"
)

// DefaultTimeout bounds a single provider lookup.
const DefaultTimeout = 3 * time.Second

// GeoCache stores successful lookups keyed by IP.
// cache.Cache[models.GeoInfo] satisfies it.
type GeoCache interface {
	Get(key string) (models.GeoInfo, bool)
	Set(key string, value models.GeoInfo)
}

// Resolver combines the private-IP policy, a cache and a provider.
type Resolver struct {
	provider Provider
	cache    GeoCache
	timeout  time.Duration
	breaker  *breaker.Breaker[models.GeoInfo]
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	Provider Provider
	Cache    GeoCache
	Timeout  time.Duration
	Breaker  breaker.Settings
}

// NewResolver creates a resolver. Cache may be nil to disable caching.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Breaker.IsSuccessful == nil {
		// Local throttling says nothing about provider health.
		cfg.Breaker.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, ErrRateLimited)
		}
	}

	return &Resolver{
		provider: cfg.Provider,
		cache:    cfg.Cache,
		timeout:  cfg.Timeout,
		breaker:  breaker.New[models.GeoInfo]("geo-"+cfg.Provider.Name(), cfg.Breaker),
	}
}

// Resolve returns location data for ip, or an empty GeoInfo.
func (r *Resolver) Resolve(ctx context.Context, ip string) models.GeoInfo {
	addr, ok := ParseIP(ip)
	if !ok {
		metrics.RecordGeoLookup(metrics.GeoInvalid, 0)
		return models.GeoInfo{}
	}
	if isPrivateAddr(addr) {
		metrics.RecordGeoLookup(metrics.GeoPrivate, 0)
		return models.GeoInfo{}
	}

	key := addr.String()
	if r.cache != nil {
		if geo, hit := r.cache.Get(key); hit {
			metrics.RecordGeoLookup(metrics.GeoCacheHit, 0)
			return geo
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	geo, err := r.breaker.Execute(func() (models.GeoInfo, error) {
		return r.provider.Lookup(lookupCtx, key)
	})
	elapsed := time.Since(start)

	if err != nil {
		result := metrics.GeoFailure
		switch {
		case errors.Is(err, ErrRateLimited):
			result = metrics.GeoRateLimited
		case errors.Is(err, breaker.ErrOpen):
			result = metrics.GeoCircuitOpen
		}
		metrics.RecordGeoLookup(result, elapsed)

		logging.Ctx(ctx).Debug().
			Err(err).
			Str("provider", r.provider.Name()).
			Str("result", result).
			Dur("elapsed", elapsed).
			Msg("Geo lookup degraded to empty location")
		return models.GeoInfo{}
	}

	metrics.RecordGeoLookup(metrics.GeoSuccess, elapsed)
	if r.cache != nil {
		r.cache.Set(key, geo)
	}
	return geo
}
