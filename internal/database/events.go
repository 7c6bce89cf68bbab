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
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/pixelgate/internal/metrics"
	"github.com/tomtom215/pixelgate/internal/models"
)

// eventColumns is the column order shared by InsertEvent and GetEvent.
var eventColumns = []string{
	"id", "app_id", "event_name",
	"url", "referrer", "page_title",
	"session_id", "visitor_id", "fingerprint",
	"ip_address", "user_agent",
	"browser", "browser_version", "os", "os_version",
	"device_type", "device_model", "device_vendor",
	"screen_width", "screen_height", "language",
	"country", "country_code", "region", "city", "zip",
	"latitude", "longitude", "timezone", "isp",
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"value", "currency", "product_id", "product_name", "quantity",
	"custom_data", "created_at",
}

var insertEventQuery = "INSERT INTO events (" + strings.Join(eventColumns, ", ") +
	") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(eventColumns)), ", ") + ")"

// selectEventColumns casts the UUID columns so they scan into uuid.UUID.
var selectEventColumns = "CAST(id AS VARCHAR), CAST(app_id AS VARCHAR), " +
	strings.Join(eventColumns[2:], ", ")

// InsertEvent writes ev and returns its id. ID and CreatedAt are assigned
// when unset.
func (db *DB) InsertEvent(ctx context.Context, ev *models.Event) (id string, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "events", time.Since(start), err) }()

	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	customData, err := encodeCustomData(ev.CustomData)
	if err != nil {
		return "", err
	}

	_, err = db.conn.ExecContext(ctx, insertEventQuery,
		ev.ID.String(), ev.AppID.String(), ev.EventName,
		ev.URL, ev.Referrer, ev.PageTitle,
		ev.SessionID, ev.VisitorID, ev.Fingerprint,
		ev.IPAddress, ev.UserAgent,
		ev.Browser, ev.BrowserVersion, ev.OS, ev.OSVersion,
		ev.DeviceType, ev.DeviceModel, ev.DeviceVendor,
		ev.ScreenWidth, ev.ScreenHeight, ev.Language,
		ev.Country, ev.CountryCode, ev.Region, ev.City, ev.Zip,
		ev.Latitude, ev.Longitude, ev.Timezone, ev.ISP,
		ev.UTMSource, ev.UTMMedium, ev.UTMCampaign, ev.UTMTerm, ev.UTMContent,
		ev.Value, ev.Currency, ev.ProductID, ev.ProductName, ev.Quantity,
		customData, ev.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}
	return ev.ID.String(), nil
}

// GetEvent loads one event by id.
func (db *DB) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var (
		ev         models.Event
		customData sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		"SELECT "+selectEventColumns+" FROM events WHERE id = ?", id.String(),
	).Scan(
		&ev.ID, &ev.AppID, &ev.EventName,
		&ev.URL, &ev.Referrer, &ev.PageTitle,
		&ev.SessionID, &ev.VisitorID, &ev.Fingerprint,
		&ev.IPAddress, &ev.UserAgent,
		&ev.Browser, &ev.BrowserVersion, &ev.OS, &ev.OSVersion,
		&ev.DeviceType, &ev.DeviceModel, &ev.DeviceVendor,
		&ev.ScreenWidth, &ev.ScreenHeight, &ev.Language,
		&ev.Country, &ev.CountryCode, &ev.Region, &ev.City, &ev.Zip,
		&ev.Latitude, &ev.Longitude, &ev.Timezone, &ev.ISP,
		&ev.UTMSource, &ev.UTMMedium, &ev.UTMCampaign, &ev.UTMTerm, &ev.UTMContent,
		&ev.Value, &ev.Currency, &ev.ProductID, &ev.ProductName, &ev.Quantity,
		&customData, &ev.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if customData.Valid && customData.String != "" {
		if err := json.Unmarshal([]byte(customData.String), &ev.CustomData); err != nil {
			return nil, fmt.Errorf("failed to decode custom_data: %w", err)
		}
	}
	return &ev, nil
}

// CountEvents returns the number of stored events for an app.
func (db *DB) CountEvents(ctx context.Context, appID uuid.UUID) (int64, error) {
	return db.count(ctx, "events", appID)
}

func (db *DB) count(ctx context.Context, table string, appID uuid.UUID) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+" WHERE app_id = ?", appID.String(),
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// encodeCustomData returns nil for an empty map so the column stays NULL.
func encodeCustomData(data map[string]any) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode custom_data: %w", err)
	}
	return string(b), nil
}
