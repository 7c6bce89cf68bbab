// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/pixelgate/internal/config"
	"github.com/tomtom215/pixelgate/internal/logging"
	"github.com/tomtom215/pixelgate/internal/models"
)

// SeedApps creates the configured apps that do not exist yet and returns
// how many were created. Settings are re-applied on every run so config
// changes (for example a rotated Meta token) take effect on restart.
// Custom events are only created together with their app.
func (db *DB) SeedApps(ctx context.Context, apps []config.BootstrapApp) (int, error) {
	created := 0

	for i := range apps {
		ba := &apps[i]
		settings := settingsFromBootstrap(&ba.Settings)

		existing, err := db.FindAppByPublicID(ctx, ba.PublicID)
		switch {
		case err == nil:
			if err := db.SaveSettings(ctx, existing.ID, &settings); err != nil {
				return created, fmt.Errorf("app %s: %w", ba.PublicID, err)
			}
			logging.Debug().Str("public_id", ba.PublicID).Msg("Bootstrap app exists, settings refreshed")
			continue
		case !errors.Is(err, ErrNotFound):
			return created, fmt.Errorf("app %s: %w", ba.PublicID, err)
		}

		app := &models.TrackedApp{
			PublicID: ba.PublicID,
			OwnerID:  ba.OwnerID,
			Name:     ba.Name,
			Settings: &settings,
		}
		if err := db.CreateApp(ctx, app); err != nil {
			return created, fmt.Errorf("app %s: %w", ba.PublicID, err)
		}

		for _, ce := range ba.CustomEvents {
			def := &models.CustomEventDefinition{
				AppID:         app.ID,
				Name:          ce.Name,
				Selector:      ce.Selector,
				DOMEvent:      ce.DOMEvent,
				MetaEventName: models.StringPtr(ce.MetaEventName),
			}
			if err := db.CreateCustomEvent(ctx, def); err != nil {
				return created, fmt.Errorf("app %s custom event %s: %w", ba.PublicID, ce.Name, err)
			}
		}

		created++
		logging.Info().
			Str("public_id", ba.PublicID).
			Int("custom_events", len(ba.CustomEvents)).
			Msg("Bootstrap app created")
	}

	return created, nil
}

// settingsFromBootstrap overlays the configured toggles on the defaults.
func settingsFromBootstrap(bs *config.BootstrapSettings) models.AppSettings {
	s := models.DefaultAppSettings()

	overlay := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	overlay(&s.AutoTrackPageviews, bs.AutoTrackPageviews)
	overlay(&s.AutoTrackClicks, bs.AutoTrackClicks)
	overlay(&s.AutoTrackScroll, bs.AutoTrackScroll)
	overlay(&s.RecordIP, bs.RecordIP)
	overlay(&s.RecordLocation, bs.RecordLocation)
	overlay(&s.RecordSession, bs.RecordSession)

	s.MetaPixelID = bs.MetaPixelID
	s.MetaAccessToken = bs.MetaAccessToken
	s.MetaVerified = bs.MetaVerified
	s.MetaPixelEnabled = bs.MetaPixelEnabled
	s.MetaTestEventCode = bs.MetaTestEventCode
	return s
}
