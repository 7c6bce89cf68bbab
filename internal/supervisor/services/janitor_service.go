// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package services

import (
	"context"
	"time"

	"github.com/tomtom215/pixelgate/internal/logging"
	"github.com/tomtom215/pixelgate/internal/metrics"
)

// DefaultJanitorInterval is how often expired geo entries are swept.
const DefaultJanitorInterval = 5 * time.Minute

// Sweeper is a cache that can drop its expired entries.
// Satisfied by *cache.Cache[V].
type Sweeper interface {
	Sweep() int
	Len() int
	HitRate() float64
}

// CacheJanitorService periodically sweeps a TTL cache and publishes its
// size and hit rate. Set only trims expired entries when a new key arrives,
// so a quiet cache would otherwise hold them until the next write.
type CacheJanitorService struct {
	cache    Sweeper
	interval time.Duration
	name     string
}

// NewCacheJanitorService creates a janitor for c.
func NewCacheJanitorService(c Sweeper, interval time.Duration) *CacheJanitorService {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	return &CacheJanitorService{cache: c, interval: interval, name: "geo-cache-janitor"}
}

// Serve implements suture.Service.
func (j *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *CacheJanitorService) sweep() {
	removed := j.cache.Sweep()
	size := j.cache.Len()

	metrics.GeoCacheSweeps.Inc()
	metrics.GeoCacheEvictions.Add(float64(removed))
	metrics.GeoCacheSize.Set(float64(size))
	metrics.GeoCacheHitRatio.Set(j.cache.HitRate())

	if removed > 0 {
		logging.Debug().Int("removed", removed).Int("size", size).Msg("Geo cache swept")
	}
}

func (j *CacheJanitorService) String() string {
	return j.name
}
