// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/pixelgate/internal/validation"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"json": true, "console": true,
}

var validEnvironments = map[string]bool{
	"development": true, "staging": true, "production": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateIngest(); err != nil {
		return err
	}

	if err := c.validateGeoIP(); err != nil {
		return err
	}

	if err := c.validateMeta(); err != nil {
		return err
	}

	if err := c.validateBootstrap(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if !validEnvironments[strings.ToLower(c.Server.Environment)] {
		return fmt.Errorf("ENVIRONMENT must be one of development, staging, production, got: %s", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.MaxMemory == "" {
		return fmt.Errorf("DUCKDB_MAX_MEMORY is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be zero (auto) or positive")
	}
	if c.Database.ProbeTimeout <= 0 {
		return fmt.Errorf("DB_PROBE_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must contain at least one origin")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.MaxBodyBytes < 1024 {
		return fmt.Errorf("INGEST_MAX_BODY_BYTES must be at least 1024")
	}
	return nil
}

// validateGeoIP validates the location resolver (only if enabled)
func (c *Config) validateGeoIP() error {
	if !c.GeoIP.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.GeoIP.BaseURL, "GEOIP_BASE_URL"); err != nil {
		return fmt.Errorf("GEOIP_BASE_URL is invalid: %w", err)
	}
	if c.GeoIP.Timeout <= 0 || c.GeoIP.Timeout > 10*time.Second {
		return fmt.Errorf("GEOIP_TIMEOUT must be in (0, 10s], got: %s", c.GeoIP.Timeout)
	}
	if c.GeoIP.CacheTTL <= 0 {
		return fmt.Errorf("GEOIP_CACHE_TTL must be positive")
	}
	if c.GeoIP.CacheCapacity < 1 {
		return fmt.Errorf("GEOIP_CACHE_CAPACITY must be at least 1")
	}
	if c.GeoIP.RateLimitPerMinute < 1 {
		return fmt.Errorf("GEOIP_RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	return nil
}

// validateMeta validates Conversions API forwarding (only if enabled)
func (c *Config) validateMeta() error {
	if !c.Meta.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.Meta.GraphURL, "META_GRAPH_URL"); err != nil {
		return fmt.Errorf("META_GRAPH_URL is invalid: %w", err)
	}
	if !strings.HasPrefix(c.Meta.APIVersion, "v") {
		return fmt.Errorf("META_API_VERSION must look like v19.0, got: %s", c.Meta.APIVersion)
	}
	if c.Meta.Timeout <= 0 || c.Meta.Timeout > 30*time.Second {
		return fmt.Errorf("META_TIMEOUT must be in (0, 30s], got: %s", c.Meta.Timeout)
	}
	if c.Meta.Workers < 1 {
		return fmt.Errorf("META_WORKERS must be at least 1")
	}
	if c.Meta.QueueBuffer < 1 {
		return fmt.Errorf("META_QUEUE_BUFFER must be at least 1")
	}
	return nil
}

func (c *Config) validateBootstrap() error {
	seen := make(map[string]bool, len(c.Bootstrap.Apps))
	for i := range c.Bootstrap.Apps {
		app := &c.Bootstrap.Apps[i]
		if err := validation.ValidateStruct(app); err != nil {
			return fmt.Errorf("bootstrap.apps[%d]: %w", i, err)
		}
		if seen[app.PublicID] {
			return fmt.Errorf("bootstrap.apps[%d]: duplicate public_id %q", i, app.PublicID)
		}
		seen[app.PublicID] = true
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error (got: %s)", c.Logging.Level)
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console (got: %s)", c.Logging.Format)
	}
	return nil
}
