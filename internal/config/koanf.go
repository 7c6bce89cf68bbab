// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are checked in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pixelgate/config.yaml",
	"/etc/pixelgate/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "production",
		},
		Database: DatabaseConfig{
			Path:         "/data/pixelgate.duckdb",
			MaxMemory:    "2GB",
			Threads:      0,
			ProbeTimeout: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			// The snippet runs on arbitrary storefront origins.
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   600,
			RateLimitWindow: time.Minute,
		},
		Ingest: IngestConfig{
			MaxBodyBytes:     64 << 10,
			StrictUnknownApp: true,
		},
		GeoIP: GeoIPConfig{
			Enabled:            true,
			BaseURL:            "http://ip-api.com/json",
			Timeout:            3 * time.Second,
			CacheTTL:           time.Hour,
			CacheCapacity:      10000,
			RateLimitPerMinute: 45, // ip-api.com free tier
		},
		Meta: MetaConfig{
			Enabled:     true,
			GraphURL:    "https://graph.facebook.com",
			APIVersion:  "v19.0",
			Timeout:     5 * time.Second,
			Workers:     8,
			QueueBuffer: 1024,
		},
	}
}

// LoadWithKoanf loads configuration in three layers: defaults, file, environment.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are split on commas when they arrive as a single env string.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"db_probe_timeout":  "database.probe_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"ingest_max_body_bytes":     "ingest.max_body_bytes",
	"ingest_strict_unknown_app": "ingest.strict_unknown_app",

	"geoip_enabled":               "geoip.enabled",
	"geoip_base_url":              "geoip.base_url",
	"geoip_timeout":               "geoip.timeout",
	"geoip_cache_ttl":             "geoip.cache_ttl",
	"geoip_cache_capacity":        "geoip.cache_capacity",
	"geoip_rate_limit_per_minute": "geoip.rate_limit_per_minute",

	"meta_enabled":      "meta.enabled",
	"meta_graph_url":    "meta.graph_url",
	"meta_api_version":  "meta.api_version",
	"meta_timeout":      "meta.timeout",
	"meta_workers":      "meta.workers",
	"meta_queue_buffer": "meta.queue_buffer",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
//	HTTP_PORT     -> server.port
//	GEOIP_TIMEOUT -> geoip.timeout
//	HOME          -> "" (skipped)
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
