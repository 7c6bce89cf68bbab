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

const statDateLayout = "2006-01-02"

const upsertDailyStatQuery = `INSERT INTO daily_stats (
	app_id, stat_date, pageviews, unique_users, sessions, purchases, revenue
) VALUES (?, CAST(? AS DATE), ?, ?, ?, ?, ?)
ON CONFLICT (app_id, stat_date) DO UPDATE SET
	pageviews = daily_stats.pageviews + EXCLUDED.pageviews,
	unique_users = daily_stats.unique_users + EXCLUDED.unique_users,
	sessions = daily_stats.sessions + EXCLUDED.sessions,
	purchases = daily_stats.purchases + EXCLUDED.purchases,
	revenue = daily_stats.revenue + EXCLUDED.revenue`

// UpsertDailyStat adds delta to the (appID, UTC day of date) row, creating
// it if needed. A zero delta still guarantees the row exists.
func (db *DB) UpsertDailyStat(ctx context.Context, appID uuid.UUID, date time.Time, delta models.DailyStatDelta) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "daily_stats", time.Since(start), err) }()

	day := date.UTC().Format(statDateLayout)

	unlock := db.keyLocks.lock("daily:" + appID.String() + ":" + day)
	defer unlock()

	err = withConflictRetry(ctx, "daily_stats", func(ctx context.Context) error {
		_, execErr := db.conn.ExecContext(ctx, upsertDailyStatQuery,
			appID.String(), day,
			delta.Pageviews, delta.UniqueUsers, delta.Sessions, delta.Purchases, delta.Revenue,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to upsert daily stat: %w", err)
	}
	return nil
}

// GetDailyStat loads the row for the UTC day of date.
func (db *DB) GetDailyStat(ctx context.Context, appID uuid.UUID, date time.Time) (*models.DailyStat, error) {
	var s models.DailyStat
	err := db.conn.QueryRowContext(ctx,
		`SELECT CAST(app_id AS VARCHAR), stat_date, pageviews, unique_users, sessions, purchases, revenue
		FROM daily_stats WHERE app_id = ? AND stat_date = CAST(? AS DATE)`,
		appID.String(), date.UTC().Format(statDateLayout),
	).Scan(&s.AppID, &s.StatDate, &s.Pageviews, &s.UniqueUsers, &s.Sessions, &s.Purchases, &s.Revenue)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stat: %w", err)
	}
	return &s, nil
}
