// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string    `json:"status"` // "healthy" or "degraded"
	Version           string    `json:"version"`
	DatabaseConnected bool      `json:"database_connected"`
	Uptime            float64   `json:"uptime"`
	Timestamp         time.Time `json:"timestamp"`
}

func (h *Handler) dbConnected(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, h.probeTimeout)
	defer cancel()
	return h.db.Ping(ctx) == nil
}

// Health handles GET /health. It always answers 200; a failed database
// ping is reported as "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.dbConnected(r.Context())

	status := "healthy"
	if !connected {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &HealthStatus{
		Status:            status,
		Version:           h.version,
		DatabaseConnected: connected,
		Uptime:            time.Since(h.startTime).Seconds(),
		Timestamp:         time.Now().UTC(),
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 503 until DuckDB answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	connected := h.dbConnected(r.Context())

	statusCode := http.StatusOK
	status := "ready"
	if !connected {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, map[string]any{
		"status":             status,
		"database_connected": connected,
		"uptime":             time.Since(h.startTime).Seconds(),
	})
}
