// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package services

import (
	"context"
	"time"

	"github.com/tomtom215/pixelgate/internal/metrics"
)

// UptimeService refreshes the app_uptime_seconds gauge.
type UptimeService struct {
	start    time.Time
	interval time.Duration
	name     string
}

// NewUptimeService reports uptime measured from start every interval.
func NewUptimeService(start time.Time, interval time.Duration) *UptimeService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &UptimeService{start: start, interval: interval, name: "uptime-reporter"}
}

// Serve implements suture.Service.
func (s *UptimeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	metrics.AppUptime.Set(time.Since(s.start).Seconds())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			metrics.AppUptime.Set(time.Since(s.start).Seconds())
		}
	}
}

// String implements fmt.Stringer.
func (s *UptimeService) String() string {
	return s.name
}
