// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/pixelgate/internal/metrics"
	"github.com/tomtom215/pixelgate/internal/models"
)

// upsertSessionQuery creates the session on its first event and otherwise
// bumps counters. The snapshot columns are only written on insert.
const upsertSessionQuery = `INSERT INTO analytics_sessions (
	app_id, session_id, fingerprint, browser, os, device_type, country, city,
	pageviews, event_count, started_at, last_seen
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
ON CONFLICT (app_id, session_id) DO UPDATE SET
	pageviews = analytics_sessions.pageviews + EXCLUDED.pageviews,
	event_count = analytics_sessions.event_count + 1,
	last_seen = greatest(analytics_sessions.last_seen, EXCLUDED.last_seen)
RETURNING event_count`

// UpsertSession records one event against its session. isNew is true when
// this call created the session.
func (db *DB) UpsertSession(ctx context.Context, u *models.SessionUpdate) (isNew bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "analytics_sessions", time.Since(start), err) }()

	if u.SessionID == "" {
		return false, fmt.Errorf("session id is required")
	}
	if u.SeenAt.IsZero() {
		u.SeenAt = time.Now().UTC()
	}

	var pageviews int64
	if u.Pageview {
		pageviews = 1
	}

	unlock := db.keyLocks.lock("session:" + u.AppID.String() + ":" + u.SessionID)
	defer unlock()

	var eventCount int64
	err = withConflictRetry(ctx, "analytics_sessions", func(ctx context.Context) error {
		return db.conn.QueryRowContext(ctx, upsertSessionQuery,
			u.AppID.String(), u.SessionID, u.Fingerprint, u.Browser, u.OS, u.DeviceType, u.Country, u.City,
			pageviews, u.SeenAt, u.SeenAt,
		).Scan(&eventCount)
	})
	if err != nil {
		return false, fmt.Errorf("failed to upsert session: %w", err)
	}
	return eventCount == 1, nil
}

// GetSession loads one session.
func (db *DB) GetSession(ctx context.Context, appID uuid.UUID, sessionID string) (*models.AnalyticsSession, error) {
	var s models.AnalyticsSession
	err := db.conn.QueryRowContext(ctx,
		`SELECT CAST(app_id AS VARCHAR), session_id, fingerprint, browser, os, device_type, country, city,
			pageviews, event_count, started_at, last_seen
		FROM analytics_sessions WHERE app_id = ? AND session_id = ?`,
		appID.String(), sessionID,
	).Scan(
		&s.AppID, &s.SessionID, &s.Fingerprint, &s.Browser, &s.OS, &s.DeviceType, &s.Country, &s.City,
		&s.Pageviews, &s.EventCount, &s.StartedAt, &s.LastSeen,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// CountSessions returns the number of sessions recorded for an app.
func (db *DB) CountSessions(ctx context.Context, appID uuid.UUID) (int64, error) {
	return db.count(ctx, "analytics_sessions", appID)
}
