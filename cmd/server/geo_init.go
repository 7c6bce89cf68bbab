// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package main

import (
	"github.com/tomtom215/pixelgate/internal/cache"
	"github.com/tomtom215/pixelgate/internal/config"
	"github.com/tomtom215/pixelgate/internal/geo"
	"github.com/tomtom215/pixelgate/internal/ingest"
	"github.com/tomtom215/pixelgate/internal/models"
)

// initGeo builds the geo resolver and its cache. Both are nil when
// geolocation is disabled; the resolver is returned as the interface so
// the enricher sees a true nil.
func initGeo(cfg *config.GeoIPConfig) (ingest.GeoResolver, *cache.Cache[models.GeoInfo]) {
	if !cfg.Enabled {
		return nil, nil
	}

	geoCache := cache.New[models.GeoInfo](cache.Config{
		TTL:      cfg.CacheTTL,
		Capacity: cfg.CacheCapacity,
	})
	provider := geo.NewIPAPIProvider(geo.IPAPIConfig{
		BaseURL:            cfg.BaseURL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	resolver := geo.NewResolver(geo.ResolverConfig{
		Provider: provider,
		Cache:    geoCache,
		Timeout:  cfg.Timeout,
	})
	return resolver, geoCache
}
