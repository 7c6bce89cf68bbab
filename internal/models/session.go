// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalyticsSession rolls up events sharing (app, session id). The device
// and geo snapshot comes from the first event and is never rewritten.
type AnalyticsSession struct {
	AppID       uuid.UUID `json:"app_id"`
	SessionID   string    `json:"session_id"`
	Fingerprint *string   `json:"fingerprint,omitempty"`
	Browser     *string   `json:"browser,omitempty"`
	OS          *string   `json:"os,omitempty"`
	DeviceType  *string   `json:"device_type,omitempty"`
	Country     *string   `json:"country,omitempty"`
	City        *string   `json:"city,omitempty"`
	Pageviews   int64     `json:"pageviews"`
	EventCount  int64     `json:"event_count"`
	StartedAt   time.Time `json:"started_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// SessionUpdate is what one event contributes to its session.
type SessionUpdate struct {
	AppID       uuid.UUID
	SessionID   string
	Fingerprint *string
	Browser     *string
	OS          *string
	DeviceType  *string
	Country     *string
	City        *string
	Pageview    bool
	SeenAt      time.Time
}

// SessionUpdateFromEvent builds the update for ev. ev.SessionID must be set.
func SessionUpdateFromEvent(ev *Event) *SessionUpdate {
	return &SessionUpdate{
		AppID:       ev.AppID,
		SessionID:   Deref(ev.SessionID),
		Fingerprint: ev.Fingerprint,
		Browser:     ev.Browser,
		OS:          ev.OS,
		DeviceType:  ev.DeviceType,
		Country:     ev.Country,
		City:        ev.City,
		Pageview:    IsPageview(ev.EventName),
		SeenAt:      ev.CreatedAt,
	}
}
