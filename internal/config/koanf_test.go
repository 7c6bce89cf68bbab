// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Database.Path != "/data/pixelgate.duckdb" {
		t.Errorf("Database.Path = %q, want /data/pixelgate.duckdb", cfg.Database.Path)
	}
	if cfg.Database.ProbeTimeout != 2*time.Second {
		t.Errorf("Database.ProbeTimeout = %v, want 2s", cfg.Database.ProbeTimeout)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.GeoIP.Timeout != 3*time.Second {
		t.Errorf("GeoIP.Timeout = %v, want 3s", cfg.GeoIP.Timeout)
	}
	if cfg.GeoIP.CacheTTL != time.Hour {
		t.Errorf("GeoIP.CacheTTL = %v, want 1h", cfg.GeoIP.CacheTTL)
	}
	if cfg.GeoIP.RateLimitPerMinute != 45 {
		t.Errorf("GeoIP.RateLimitPerMinute = %d, want 45", cfg.GeoIP.RateLimitPerMinute)
	}
	if cfg.Meta.Timeout != 5*time.Second {
		t.Errorf("Meta.Timeout = %v, want 5s", cfg.Meta.Timeout)
	}
	if cfg.Meta.APIVersion != "v19.0" {
		t.Errorf("Meta.APIVersion = %q, want v19.0", cfg.Meta.APIVersion)
	}
	if !cfg.Ingest.StrictUnknownApp {
		t.Error("Ingest.StrictUnknownApp should default to true")
	}
	if len(cfg.Bootstrap.Apps) != 0 {
		t.Errorf("Bootstrap.Apps = %d entries, want 0", len(cfg.Bootstrap.Apps))
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"GEOIP_TIMEOUT", "geoip.timeout"},
		{"META_WORKERS", "meta.workers"},
		{"log_level", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

// Tests below mutate process env and cannot run in parallel.

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("GEOIP_TIMEOUT", "1500ms")
	t.Setenv("CORS_ORIGINS", "https://shop.example, https://other.example")
	t.Setenv("META_ENABLED", "false")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.GeoIP.Timeout != 1500*time.Millisecond {
		t.Errorf("GeoIP.Timeout = %v, want 1.5s", cfg.GeoIP.Timeout)
	}
	want := []string{"https://shop.example", "https://other.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
	if cfg.Meta.Enabled {
		t.Error("Meta.Enabled = true, want false")
	}
}

func TestLoadWithKoanf_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 8181
logging:
  level: debug
bootstrap:
  apps:
    - public_id: px_demo
      owner_id: shop_1
      name: Demo shop
      settings:
        record_ip: false
        meta_pixel_id: "123"
      custom_events:
        - name: newsletter_signup
          selector: "#newsletter button"
          dom_event: click
          meta_event_name: Lead
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (env beats file)", cfg.Logging.Level)
	}
	if len(cfg.Bootstrap.Apps) != 1 {
		t.Fatalf("Bootstrap.Apps = %d entries, want 1", len(cfg.Bootstrap.Apps))
	}

	app := cfg.Bootstrap.Apps[0]
	if app.PublicID != "px_demo" {
		t.Errorf("PublicID = %q, want px_demo", app.PublicID)
	}
	if app.Settings.RecordIP == nil || *app.Settings.RecordIP {
		t.Errorf("Settings.RecordIP = %v, want explicit false", app.Settings.RecordIP)
	}
	if app.Settings.RecordLocation != nil {
		t.Errorf("Settings.RecordLocation = %v, want nil (unset)", *app.Settings.RecordLocation)
	}
	if len(app.CustomEvents) != 1 || app.CustomEvents[0].MetaEventName != "Lead" {
		t.Errorf("CustomEvents = %+v", app.CustomEvents)
	}
}

func TestLoadWithKoanf_InvalidEnv(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_PORT", "70000")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected validation error for out of range port")
	}
	if !strings.Contains(err.Error(), "HTTP_PORT") {
		t.Errorf("error = %v, want mention of HTTP_PORT", err)
	}
}
