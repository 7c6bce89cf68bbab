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

// FindAppByPublicID loads an app and its settings. Settings is nil when the
// app has no settings row. Returns ErrNotFound for an unknown public id.
func (db *DB) FindAppByPublicID(ctx context.Context, publicID string) (app *models.TrackedApp, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordDBQuery("select", "apps", time.Since(start), nil)
			return
		}
		metrics.RecordDBQuery("select", "apps", time.Since(start), err)
	}()

	query := `SELECT
		CAST(a.id AS VARCHAR), a.public_id, a.owner_id, a.name, a.created_at,
		s.app_id IS NOT NULL,
		s.auto_track_pageviews, s.auto_track_clicks, s.auto_track_scroll,
		s.record_ip, s.record_location, s.record_session,
		s.meta_pixel_id, s.meta_access_token, s.meta_verified, s.meta_pixel_enabled,
		s.meta_test_event_code, s.updated_at
	FROM apps a
	LEFT JOIN app_settings s ON s.app_id = a.id
	WHERE a.public_id = ?`

	var (
		a                                       models.TrackedApp
		hasSettings                             bool
		pageviews, clicks, scroll               sql.NullBool
		recordIP, recordLocation, recordSession sql.NullBool
		pixelID, accessToken, testEventCode     sql.NullString
		metaVerified, metaEnabled               sql.NullBool
		updatedAt                               sql.NullTime
	)

	err = db.conn.QueryRowContext(ctx, query, publicID).Scan(
		&a.ID, &a.PublicID, &a.OwnerID, &a.Name, &a.CreatedAt,
		&hasSettings,
		&pageviews, &clicks, &scroll,
		&recordIP, &recordLocation, &recordSession,
		&pixelID, &accessToken, &metaVerified, &metaEnabled,
		&testEventCode, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find app: %w", err)
	}

	if hasSettings {
		a.Settings = &models.AppSettings{
			AutoTrackPageviews: pageviews.Bool,
			AutoTrackClicks:    clicks.Bool,
			AutoTrackScroll:    scroll.Bool,
			RecordIP:           recordIP.Bool,
			RecordLocation:     recordLocation.Bool,
			RecordSession:      recordSession.Bool,
			MetaPixelID:        pixelID.String,
			MetaAccessToken:    accessToken.String,
			MetaVerified:       metaVerified.Bool,
			MetaPixelEnabled:   metaEnabled.Bool,
			MetaTestEventCode:  testEventCode.String,
			UpdatedAt:          updatedAt.Time,
		}
	}

	return &a, nil
}

// CreateApp inserts app, assigning ID and CreatedAt when unset. If
// app.Settings is non-nil it is saved too.
func (db *DB) CreateApp(ctx context.Context, app *models.TrackedApp) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "apps", time.Since(start), err) }()

	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO apps (id, public_id, owner_id, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		app.ID.String(), app.PublicID, app.OwnerID, app.Name, app.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicatePublicID
		}
		return fmt.Errorf("failed to create app: %w", err)
	}

	if app.Settings != nil {
		return db.SaveSettings(ctx, app.ID, app.Settings)
	}
	return nil
}

// SaveSettings creates or replaces the settings row for appID.
func (db *DB) SaveSettings(ctx context.Context, appID uuid.UUID, s *models.AppSettings) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "app_settings", time.Since(start), err) }()

	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}

	query := `INSERT INTO app_settings (
		app_id, auto_track_pageviews, auto_track_clicks, auto_track_scroll,
		record_ip, record_location, record_session,
		meta_pixel_id, meta_access_token, meta_verified, meta_pixel_enabled,
		meta_test_event_code, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (app_id) DO UPDATE SET
		auto_track_pageviews = EXCLUDED.auto_track_pageviews,
		auto_track_clicks = EXCLUDED.auto_track_clicks,
		auto_track_scroll = EXCLUDED.auto_track_scroll,
		record_ip = EXCLUDED.record_ip,
		record_location = EXCLUDED.record_location,
		record_session = EXCLUDED.record_session,
		meta_pixel_id = EXCLUDED.meta_pixel_id,
		meta_access_token = EXCLUDED.meta_access_token,
		meta_verified = EXCLUDED.meta_verified,
		meta_pixel_enabled = EXCLUDED.meta_pixel_enabled,
		meta_test_event_code = EXCLUDED.meta_test_event_code,
		updated_at = EXCLUDED.updated_at`

	key := "settings:" + appID.String()
	unlock := db.keyLocks.lock(key)
	defer unlock()

	err = withConflictRetry(ctx, "app_settings", func(ctx context.Context) error {
		_, execErr := db.conn.ExecContext(ctx, query,
			appID.String(), s.AutoTrackPageviews, s.AutoTrackClicks, s.AutoTrackScroll,
			s.RecordIP, s.RecordLocation, s.RecordSession,
			nullString(s.MetaPixelID), nullString(s.MetaAccessToken), s.MetaVerified, s.MetaPixelEnabled,
			nullString(s.MetaTestEventCode), s.UpdatedAt,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// ownedTables lists every table holding rows owned by an app, children first.
var ownedTables = []string{
	"events",
	"analytics_sessions",
	"daily_stats",
	"custom_event_definitions",
	"app_settings",
}

// DeleteApp removes an app and everything it owns in one transaction.
// Returns ErrNotFound if the app does not exist.
func (db *DB) DeleteApp(ctx context.Context, appID uuid.UUID) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete", "apps", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id := appID.String()
	for _, table := range ownedTables {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE app_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM apps WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete app: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit app deletion: %w", err)
	}
	return nil
}

// CreateCustomEvent stores a custom event rule. DOMEvent defaults to click.
func (db *DB) CreateCustomEvent(ctx context.Context, def *models.CustomEventDefinition) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "custom_event_definitions", time.Since(start), err) }()

	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now().UTC()
	}
	if def.DOMEvent == "" {
		def.DOMEvent = "click"
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO custom_event_definitions (id, app_id, name, selector, dom_event, meta_event_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		def.ID.String(), def.AppID.String(), def.Name, def.Selector, def.DOMEvent, def.MetaEventName, def.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create custom event: %w", err)
	}
	return nil
}

// ListCustomEvents returns an app's custom event rules, oldest first.
func (db *DB) ListCustomEvents(ctx context.Context, appID uuid.UUID) (defs []models.CustomEventDefinition, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "custom_event_definitions", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT CAST(id AS VARCHAR), CAST(app_id AS VARCHAR), name, selector, dom_event, meta_event_name, created_at
		FROM custom_event_definitions WHERE app_id = ? ORDER BY created_at, name`,
		appID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom events: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var d models.CustomEventDefinition
		if err = rows.Scan(&d.ID, &d.AppID, &d.Name, &d.Selector, &d.DOMEvent, &d.MetaEventName, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan custom event: %w", err)
		}
		defs = append(defs, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate custom events: %w", err)
	}
	return defs, nil
}

// nullString maps "" to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
