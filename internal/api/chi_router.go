// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/pixelgate/internal/middleware"
)

// trackEndpoint labels rate limit metrics for the beacon routes.
const trackEndpoint = "/api/track"

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw gets permissive CORS and no rate
// limit.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to all routes, in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(APISecurityHeaders())

	// Beacons: any origin, per-IP rate limit.
	r.Group(func(r chi.Router) {
		r.Use(TrackCORS())
		r.Options("/api/track", router.handler.TrackOptions)
		r.Options("/api/track.gif", router.handler.TrackOptions)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit(trackEndpoint))
			r.Post("/api/track", router.handler.TrackJSON)
			r.Get("/api/track", router.handler.TrackGIF)
			r.Get("/api/track.gif", router.handler.TrackGIF)
		})
	})

	// Operational endpoints.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.CORS())
		r.Get("/health", router.handler.Health)
		r.Get("/health/live", router.handler.HealthLive)
		r.Get("/health/ready", router.handler.HealthReady)
		r.Handle("/metrics", promhttp.Handler())
	})

	return r
}
