// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package api

import (
	"context"
	"time"

	"github.com/tomtom215/pixelgate/internal/config"
	"github.com/tomtom215/pixelgate/internal/ingest"
)

// Tracker runs one decoded beacon through ingestion.
// Satisfied by *ingest.Pipeline.
type Tracker interface {
	Process(ctx context.Context, payload ingest.Payload, nc ingest.NetContext) (ingest.Result, error)
}

// Pinger reports store connectivity. Satisfied by *database.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_track.go: beacon endpoints
//   - handlers_health.go: health and readiness probes
//   - handlers_helpers.go: response writers and request helpers
type Handler struct {
	tracker      Tracker
	db           Pinger
	maxBodyBytes int64
	strictApps   bool
	probeTimeout time.Duration
	version      string
	startTime    time.Time
}

// NewHandler creates the API handler.
func NewHandler(tracker Tracker, db Pinger, cfg *config.Config, version string) *Handler {
	probe := cfg.Database.ProbeTimeout
	if probe <= 0 {
		probe = ingest.DefaultProbeTimeout
	}
	return &Handler{
		tracker:      tracker,
		db:           db,
		maxBodyBytes: cfg.Ingest.MaxBodyBytes,
		strictApps:   cfg.Ingest.StrictUnknownApp,
		probeTimeout: probe,
		version:      version,
		startTime:    time.Now(),
	}
}
