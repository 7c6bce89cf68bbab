// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/pixelgate/internal/device"
	"github.com/tomtom215/pixelgate/internal/geo"
	"github.com/tomtom215/pixelgate/internal/models"
)

// NetContext is what the transport knows about the sender.
type NetContext struct {
	IP        string
	UserAgent string
}

// GeoResolver resolves an IP to location. Implementations never fail;
// unknown locations come back empty.
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) models.GeoInfo
}

// Enricher attaches device and geo context to canonical events under the
// owning app's privacy settings.
type Enricher struct {
	geo GeoResolver
	now func() time.Time
}

// NewEnricher creates an Enricher. A nil resolver disables geo lookups.
func NewEnricher(resolver GeoResolver) *Enricher {
	return &Enricher{geo: resolver, now: time.Now}
}

// Enrich builds the storable event.
//
// Device classification always runs. Geo lookup runs only when the app
// records location. The IP is kept only with recordIp; city, region, zip
// and coordinates only with recordLocation; the session id only with
// recordSession.
func (e *Enricher) Enrich(ctx context.Context, ce *models.CanonicalEvent, app *models.TrackedApp, nc NetContext) *models.Event {
	settings := app.EffectiveSettings()

	ua := strings.TrimSpace(nc.UserAgent)
	if ua == "" {
		ua = models.Deref(ce.UserAgent)
	}

	ev := &models.Event{
		ID:           uuid.New(),
		AppID:        app.ID,
		EventName:    ce.EventName,
		URL:          ce.URL,
		Referrer:     ce.Referrer,
		PageTitle:    ce.PageTitle,
		SessionID:    ce.SessionID,
		VisitorID:    ce.VisitorID,
		Fingerprint:  ce.Fingerprint,
		UserAgent:    models.StringPtr(ua),
		DeviceInfo:   device.Classify(ua, ce.ScreenWidth),
		ScreenWidth:  ce.ScreenWidth,
		ScreenHeight: ce.ScreenHeight,
		Language:     ce.Language,
		UTMSource:    ce.UTMSource,
		UTMMedium:    ce.UTMMedium,
		UTMCampaign:  ce.UTMCampaign,
		UTMTerm:      ce.UTMTerm,
		UTMContent:   ce.UTMContent,
		Value:        ce.Value,
		Currency:     ce.Currency,
		ProductID:    ce.ProductID,
		ProductName:  ce.ProductName,
		Quantity:     ce.Quantity,
		CustomData:   ce.CustomData,
		CreatedAt:    e.now().UTC(),
	}

	addr, validIP := geo.ParseIP(nc.IP)

	if settings.RecordIP && validIP {
		ev.IPAddress = models.StringPtr(addr.String())
	}

	if settings.RecordLocation && validIP && e.geo != nil {
		ev.GeoInfo = e.geo.Resolve(ctx, addr.String())
	}
	if !settings.RecordLocation {
		ev.GeoInfo = stripPreciseLocation(ev.GeoInfo)
	}

	if !settings.RecordSession {
		ev.SessionID = nil
	}

	return ev
}

// stripPreciseLocation keeps only the coarse fields.
func stripPreciseLocation(g models.GeoInfo) models.GeoInfo {
	return models.GeoInfo{
		Country:     g.Country,
		CountryCode: g.CountryCode,
		Timezone:    g.Timezone,
		ISP:         g.ISP,
	}
}
