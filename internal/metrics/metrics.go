// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

// Package metrics defines the Prometheus instrumentation for Pixelgate.
// Everything registers with the default registry via promauto and is
// served at GET /metrics.
package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingest outcomes.
const (
	OutcomeAccepted    = "accepted"
	OutcomeBot         = "bot"
	OutcomeInvalid     = "invalid"
	OutcomeUnknownApp  = "unknown_app"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Geo lookup results.
const (
	GeoCacheHit    = "cache_hit"
	GeoPrivate     = "private"
	GeoInvalid     = "invalid"
	GeoSuccess     = "success"
	GeoFailure     = "failure"
	GeoRateLimited = "rate_limited"
	GeoCircuitOpen = "circuit_open"
)

// Conversions API forward results.
const (
	CAPISuccess     = "success"
	CAPIAPIError    = "api_error"
	CAPIHTTPError   = "http_error"
	CAPIMarshal     = "marshal_error"
	CAPIQueueFull   = "queue_full"
	CAPITimeout     = "timeout"
	CAPICircuitOpen = "circuit_open"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConflictRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_conflict_retries_total",
			Help: "Upsert retries caused by DuckDB transaction conflicts",
		},
		[]string{"table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Ingest Metrics
	IngestEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_events_total",
			Help: "Beacons processed by outcome",
		},
		[]string{"outcome"},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "Time from beacon decode to response, excluding async forwarding",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 3.5},
		},
	)

	BotFilterHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_filter_hits_total",
			Help: "Beacons dropped by the bot filter, by matched signature",
		},
		[]string{"signature"},
	)

	SecondaryWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secondary_write_failures_total",
			Help: "Best-effort session and daily stat writes that failed",
		},
		[]string{"write"}, // "session", "daily_stat"
	)

	// Geolocation Metrics
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geo_lookups_total",
			Help: "Geo resolutions by result",
		},
		[]string{"result"},
	)

	GeoLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geo_lookup_duration_seconds",
			Help:    "Duration of ip-api.com calls in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3},
		},
	)

	GeoCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geo_cache_entries",
			Help: "Current number of entries in the geo cache",
		},
	)

	GeoCacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geo_cache_hit_ratio",
			Help: "Geo cache hits / lookups since start, updated by the janitor",
		},
	)

	GeoCacheSweeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geo_cache_sweeps_total",
			Help: "Janitor sweeps of the geo cache",
		},
	)

	GeoCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geo_cache_evictions_total",
			Help: "Expired geo cache entries removed by the janitor",
		},
	)

	// Conversions API Metrics
	CAPIForwards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capi_forwards_total",
			Help: "Conversions API forwards by result",
		},
		[]string{"result"},
	)

	CAPIForwardDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "capi_forward_duration_seconds",
			Help:    "Duration of Conversions API calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		},
	)

	CAPIInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "capi_forwards_in_flight",
			Help: "Conversions API forwards currently executing",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, classifyDBError(err)).Inc()
	}
}

// classifyDBError keeps the error_type label bounded.
func classifyDBError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Conflict"):
		return "conflict"
	case strings.Contains(msg, "Constraint Error"):
		return "constraint"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "database is closed"):
		return "connection"
	default:
		return "other"
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordIngest counts one beacon outcome.
func RecordIngest(outcome string, duration time.Duration) {
	IngestEvents.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAccepted {
		IngestDuration.Observe(duration.Seconds())
	}
}

// RecordGeoLookup counts one geo resolution. Pass a zero duration when no
// provider call was made.
func RecordGeoLookup(result string, duration time.Duration) {
	GeoLookups.WithLabelValues(result).Inc()
	if duration > 0 {
		GeoLookupDuration.Observe(duration.Seconds())
	}
}

// RecordCAPIForward counts one Conversions API forward.
func RecordCAPIForward(result string, duration time.Duration) {
	CAPIForwards.WithLabelValues(result).Inc()
	if duration > 0 {
		CAPIForwardDuration.Observe(duration.Seconds())
	}
}
