// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

/*
Package api serves Pixelgate's HTTP surface on a chi router.

Routes:

	POST    /api/track        JSON beacon (flat or GraphQL envelope)
	GET     /api/track        image beacon, ?e=<event>&d=<base64 json>
	GET     /api/track.gif    alias of the image beacon
	OPTIONS /api/track        CORS preflight
	GET     /health           overall status
	GET     /health/live      liveness
	GET     /health/ready     readiness (DuckDB ping)
	GET     /metrics          Prometheus

Track routes answer any origin: the snippet runs on merchant storefronts
whose domains are not known in advance. The JSON endpoint maps pipeline
errors to status codes (see statusForError). The image beacon always
answers 200 with a transparent GIF so a broken beacon never shows as a
broken image on the storefront.

Middleware order: RequestID, RealIP, Recoverer, PrometheusMetrics, then
per-group CORS, rate limiting and security headers.
*/
package api
