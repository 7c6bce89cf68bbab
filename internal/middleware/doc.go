// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

/*
Package middleware provides the HTTP middleware shared by every route.

  - RequestID: X-Request-ID propagation plus request and correlation IDs
    in the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by chi route pattern

Both use the http.HandlerFunc wrapping form:

	handler := middleware.PrometheusMetrics(middleware.RequestID(track))

The api package adapts them to chi's r.Use with a small shim. CORS and
inbound rate limiting come from go-chi/cors and go-chi/httprate and are
wired in the api package.

See Also:

  - internal/api: router and handlers wrapped by this middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
