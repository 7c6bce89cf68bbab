// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

/*
schema.go - Database Schema Management

Tables:
  - apps: tracked apps keyed by an internal UUID, looked up by public_id
  - app_settings: zero or one row per app; absent means defaults
  - custom_event_definitions: merchant selector rules, read by the snippet generator
  - events: one immutable row per accepted beacon
  - analytics_sessions: one row per (app_id, session_id)
  - daily_stats: one row per (app_id, stat_date), UTC days

DuckDB has no ON DELETE CASCADE, so no foreign keys are declared and
DeleteApp removes owned rows explicitly inside one transaction.
custom_data is stored as JSON text so the json extension is not required.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS apps (
		id UUID PRIMARY KEY,
		public_id TEXT NOT NULL UNIQUE,
		owner_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS app_settings (
		app_id UUID PRIMARY KEY,
		auto_track_pageviews BOOLEAN NOT NULL DEFAULT true,
		auto_track_clicks BOOLEAN NOT NULL DEFAULT true,
		auto_track_scroll BOOLEAN NOT NULL DEFAULT false,
		record_ip BOOLEAN NOT NULL DEFAULT true,
		record_location BOOLEAN NOT NULL DEFAULT true,
		record_session BOOLEAN NOT NULL DEFAULT true,
		meta_pixel_id TEXT,
		meta_access_token TEXT,
		meta_verified BOOLEAN NOT NULL DEFAULT false,
		meta_pixel_enabled BOOLEAN NOT NULL DEFAULT false,
		meta_test_event_code TEXT,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS custom_event_definitions (
		id UUID PRIMARY KEY,
		app_id UUID NOT NULL,
		name TEXT NOT NULL,
		selector TEXT NOT NULL,
		dom_event TEXT NOT NULL DEFAULT 'click',
		meta_event_name TEXT,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		app_id UUID NOT NULL,
		event_name TEXT NOT NULL,
		url TEXT,
		referrer TEXT,
		page_title TEXT,
		session_id TEXT,
		visitor_id TEXT,
		fingerprint TEXT,
		ip_address TEXT,
		user_agent TEXT,
		browser TEXT,
		browser_version TEXT,
		os TEXT,
		os_version TEXT,
		device_type TEXT,
		device_model TEXT,
		device_vendor TEXT,
		screen_width INTEGER,
		screen_height INTEGER,
		language TEXT,
		country TEXT,
		country_code TEXT,
		region TEXT,
		city TEXT,
		zip TEXT,
		latitude DOUBLE,
		longitude DOUBLE,
		timezone TEXT,
		isp TEXT,
		utm_source TEXT,
		utm_medium TEXT,
		utm_campaign TEXT,
		utm_term TEXT,
		utm_content TEXT,
		value DOUBLE,
		currency TEXT,
		product_id TEXT,
		product_name TEXT,
		quantity INTEGER,
		custom_data TEXT,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS analytics_sessions (
		app_id UUID NOT NULL,
		session_id TEXT NOT NULL,
		fingerprint TEXT,
		browser TEXT,
		os TEXT,
		device_type TEXT,
		country TEXT,
		city TEXT,
		pageviews BIGINT NOT NULL DEFAULT 0,
		event_count BIGINT NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL,
		last_seen TIMESTAMP NOT NULL,
		PRIMARY KEY (app_id, session_id)
	)`,

	`CREATE TABLE IF NOT EXISTS daily_stats (
		app_id UUID NOT NULL,
		stat_date DATE NOT NULL,
		pageviews BIGINT NOT NULL DEFAULT 0,
		unique_users BIGINT NOT NULL DEFAULT 0,
		sessions BIGINT NOT NULL DEFAULT 0,
		purchases BIGINT NOT NULL DEFAULT 0,
		revenue DOUBLE NOT NULL DEFAULT 0,
		PRIMARY KEY (app_id, stat_date)
	)`,
}

// Upserted tables carry only their primary key; extra ART indexes on
// them make ON CONFLICT updates conflict-prone in DuckDB.
var indexCreationQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_events_app_created ON events(app_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_session ON events(app_id, session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_custom_events_app ON custom_event_definitions(app_id)`,
}
