// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Well-known event names. Anything else is accepted as a custom name.
const (
	EventPageview    = "pageview"
	EventPageViewAlt = "page_view"
	EventPurchase    = "purchase"
)

// IsPageview reports whether name counts toward pageview totals.
func IsPageview(name string) bool {
	n := strings.ToLower(name)
	return n == EventPageview || n == EventPageViewAlt
}

// IsPurchase reports whether name counts toward purchase totals.
func IsPurchase(name string) bool {
	return strings.ToLower(name) == EventPurchase
}

// UserData is customer PII supplied by the snippet for Conversions API
// matching. It is hashed before leaving the process and never persisted
// or serialized.
type UserData struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
}

// IsEmpty reports whether no PII was supplied.
func (u UserData) IsEmpty() bool {
	return u.Email == "" && u.Phone == "" && u.FirstName == "" && u.LastName == ""
}

// CanonicalEvent is a beacon after normalization, before enrichment.
// Field limits here are enforced again after trimming in the normalizer.
type CanonicalEvent struct {
	AppID     string `json:"appId" validate:"required,publicid"`
	EventName string `json:"eventName" validate:"required,max=512"`

	URL       *string `json:"url,omitempty" validate:"omitempty,max=2048"`
	Referrer  *string `json:"referrer,omitempty" validate:"omitempty,max=2048"`
	PageTitle *string `json:"pageTitle,omitempty"`

	SessionID   *string `json:"sessionId,omitempty"`
	VisitorID   *string `json:"visitorId,omitempty"`
	Fingerprint *string `json:"fingerprint,omitempty"`

	// UserAgent is only used when the request carries none (server relays).
	UserAgent *string `json:"userAgent,omitempty"`
	Language  *string `json:"language,omitempty"`

	ScreenWidth  *int `json:"screenWidth,omitempty"`
	ScreenHeight *int `json:"screenHeight,omitempty"`

	UTMSource   *string `json:"utmSource,omitempty"`
	UTMMedium   *string `json:"utmMedium,omitempty"`
	UTMCampaign *string `json:"utmCampaign,omitempty"`
	UTMTerm     *string `json:"utmTerm,omitempty"`
	UTMContent  *string `json:"utmContent,omitempty"`

	Value       *float64 `json:"value,omitempty"`
	Currency    *string  `json:"currency,omitempty" validate:"omitempty,iso4217"`
	ProductID   *string  `json:"productId,omitempty"`
	ProductName *string  `json:"productName,omitempty"`
	Quantity    *int     `json:"quantity,omitempty" validate:"omitempty,gte=0"`

	CustomData map[string]any `json:"customData,omitempty"`

	UserData UserData `json:"-"`
}

// Event is the persisted record of one accepted beacon. Immutable.
type Event struct {
	ID        uuid.UUID `json:"id"`
	AppID     uuid.UUID `json:"app_id"`
	EventName string    `json:"event_name"`

	URL       *string `json:"url,omitempty"`
	Referrer  *string `json:"referrer,omitempty"`
	PageTitle *string `json:"page_title,omitempty"`

	SessionID   *string `json:"session_id,omitempty"`
	VisitorID   *string `json:"visitor_id,omitempty"`
	Fingerprint *string `json:"fingerprint,omitempty"`

	// IPAddress is set only when the app records IPs.
	IPAddress *string `json:"ip_address,omitempty"`
	UserAgent *string `json:"user_agent,omitempty"`

	DeviceInfo

	ScreenWidth  *int    `json:"screen_width,omitempty"`
	ScreenHeight *int    `json:"screen_height,omitempty"`
	Language     *string `json:"language,omitempty"`

	GeoInfo

	UTMSource   *string `json:"utm_source,omitempty"`
	UTMMedium   *string `json:"utm_medium,omitempty"`
	UTMCampaign *string `json:"utm_campaign,omitempty"`
	UTMTerm     *string `json:"utm_term,omitempty"`
	UTMContent  *string `json:"utm_content,omitempty"`

	Value       *float64 `json:"value,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	ProductID   *string  `json:"product_id,omitempty"`
	ProductName *string  `json:"product_name,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`

	CustomData map[string]any `json:"custom_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// StatDate is the UTC calendar day the event counts toward.
func (e *Event) StatDate() time.Time {
	y, m, d := e.CreatedAt.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
