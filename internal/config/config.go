// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

// Package config loads Pixelgate configuration with Koanf v2.
//
// Loading order, lowest priority first:
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/pixelgate/config.yaml)
//  3. Environment variables (explicit name mapping, see envTransformFunc)
//
// Config is immutable after Load and safe for concurrent reads.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
	Ingest    IngestConfig    `koanf:"ingest"`
	GeoIP     GeoIPConfig     `koanf:"geoip"`
	Meta      MetaConfig      `koanf:"meta"`
	Bootstrap BootstrapConfig `koanf:"bootstrap"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// ProbeTimeout bounds the connectivity check run before each write path.
	ProbeTimeout time.Duration `koanf:"probe_timeout"`
}

// LoggingConfig holds logging settings, passed straight to logging.Init.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds CORS and inbound rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// IngestConfig holds settings for the tracking endpoints.
type IngestConfig struct {
	// MaxBodyBytes caps the POST body read from a beacon.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// StrictUnknownApp makes the JSON endpoint answer 404 for an unknown app id.
	// The image beacon always answers with the GIF regardless.
	StrictUnknownApp bool `koanf:"strict_unknown_app"`
}

// GeoIPConfig configures the ip-api.com resolver and its cache.
type GeoIPConfig struct {
	Enabled            bool          `koanf:"enabled"`
	BaseURL            string        `koanf:"base_url"`
	Timeout            time.Duration `koanf:"timeout"`
	CacheTTL           time.Duration `koanf:"cache_ttl"`
	CacheCapacity      int           `koanf:"cache_capacity"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute"`
}

// MetaConfig configures forwarding to the Meta Conversions API.
// Per-app credentials live in app settings, not here.
type MetaConfig struct {
	Enabled     bool          `koanf:"enabled"`
	GraphURL    string        `koanf:"graph_url"`
	APIVersion  string        `koanf:"api_version"`
	Timeout     time.Duration `koanf:"timeout"`
	Workers     int           `koanf:"workers"`
	QueueBuffer int           `koanf:"queue_buffer"`
}

// BootstrapConfig lists tracked apps to create at startup. YAML only.
//
//	bootstrap:
//	  apps:
//	    - public_id: px_9f2c1a
//	      owner_id: shop_42
//	      name: Main storefront
//	      settings:
//	        record_ip: false
type BootstrapConfig struct {
	Apps []BootstrapApp `koanf:"apps"`
}

// BootstrapApp describes one tracked app.
type BootstrapApp struct {
	PublicID     string                 `koanf:"public_id" validate:"required,max=128"`
	OwnerID      string                 `koanf:"owner_id" validate:"max=128"`
	Name         string                 `koanf:"name" validate:"max=256"`
	Settings     BootstrapSettings      `koanf:"settings"`
	CustomEvents []BootstrapCustomEvent `koanf:"custom_events" validate:"dive"`
}

// BootstrapSettings mirrors app settings. Nil toggles keep their defaults.
type BootstrapSettings struct {
	AutoTrackPageviews *bool  `koanf:"auto_track_pageviews"`
	AutoTrackClicks    *bool  `koanf:"auto_track_clicks"`
	AutoTrackScroll    *bool  `koanf:"auto_track_scroll"`
	RecordIP           *bool  `koanf:"record_ip"`
	RecordLocation     *bool  `koanf:"record_location"`
	RecordSession      *bool  `koanf:"record_session"`
	MetaPixelID        string `koanf:"meta_pixel_id"`
	MetaAccessToken    string `koanf:"meta_access_token"`
	MetaVerified       bool   `koanf:"meta_verified"`
	MetaPixelEnabled   bool   `koanf:"meta_pixel_enabled"`
	MetaTestEventCode  string `koanf:"meta_test_event_code"`
}

// BootstrapCustomEvent describes a merchant-authored custom event rule.
type BootstrapCustomEvent struct {
	Name          string `koanf:"name" validate:"required,max=128"`
	Selector      string `koanf:"selector" validate:"required,max=512"`
	DOMEvent      string `koanf:"dom_event" validate:"omitempty,oneof=click submit change focus"`
	MetaEventName string `koanf:"meta_event_name" validate:"max=64"`
}

// Load reads configuration from defaults, the optional YAML file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
