// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackedApp is a merchant's tracking identity. PublicID is the opaque key
// embedded in the storefront snippet; ID never leaves the server.
type TrackedApp struct {
	ID        uuid.UUID `json:"id"`
	PublicID  string    `json:"public_id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Settings is nil when the merchant never saved any.
	Settings *AppSettings `json:"settings,omitempty"`
}

// EffectiveSettings returns the saved settings or the defaults.
func (a *TrackedApp) EffectiveSettings() AppSettings {
	if a.Settings == nil {
		return DefaultAppSettings()
	}
	return *a.Settings
}

// AppSettings holds per-app privacy toggles and Meta pixel credentials.
type AppSettings struct {
	AutoTrackPageviews bool `json:"auto_track_pageviews"`
	AutoTrackClicks    bool `json:"auto_track_clicks"`
	AutoTrackScroll    bool `json:"auto_track_scroll"`

	RecordIP       bool `json:"record_ip"`
	RecordLocation bool `json:"record_location"`
	RecordSession  bool `json:"record_session"`

	MetaPixelID       string `json:"meta_pixel_id,omitempty"`
	MetaAccessToken   string `json:"-"`
	MetaVerified      bool   `json:"meta_verified"`
	MetaPixelEnabled  bool   `json:"meta_pixel_enabled"`
	MetaTestEventCode string `json:"meta_test_event_code,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultAppSettings applies when an app has no settings row.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		AutoTrackPageviews: true,
		AutoTrackClicks:    true,
		AutoTrackScroll:    false,
		RecordIP:           true,
		RecordLocation:     true,
		RecordSession:      true,
	}
}

// MetaForwardingEnabled reports whether events may be sent to the
// Conversions API. All four conditions must hold.
func (s *AppSettings) MetaForwardingEnabled() bool {
	return s.MetaPixelEnabled && s.MetaVerified && s.MetaPixelID != "" && s.MetaAccessToken != ""
}

// CustomEventDefinition maps a CSS selector and DOM event to a named event.
// The snippet generator reads these; ingestion does not.
type CustomEventDefinition struct {
	ID            uuid.UUID `json:"id"`
	AppID         uuid.UUID `json:"app_id"`
	Name          string    `json:"name"`
	Selector      string    `json:"selector"`
	DOMEvent      string    `json:"dom_event"`
	MetaEventName *string   `json:"meta_event_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
