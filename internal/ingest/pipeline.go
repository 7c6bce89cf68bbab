// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

// Package ingest turns raw beacons into stored, enriched events.
//
// Process runs, in order: bot filter, normalize, store probe, app lookup,
// enrichment, event insert, session upsert, daily stat upsert and, when the
// app allows it, an asynchronous hand-off to the conversion forwarder.
// Only the steps up to and including the event insert can fail a request.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/pixelgate/internal/database"
	"github.com/tomtom215/pixelgate/internal/detection"
	"github.com/tomtom215/pixelgate/internal/logging"
	"github.com/tomtom215/pixelgate/internal/metrics"
	"github.com/tomtom215/pixelgate/internal/models"
)

// DefaultProbeTimeout bounds the connectivity check before writes.
const DefaultProbeTimeout = 2 * time.Second

// Store is the persistence the pipeline needs. *database.DB implements it.
type Store interface {
	Ping(ctx context.Context) error
	FindAppByPublicID(ctx context.Context, publicID string) (*models.TrackedApp, error)
	InsertEvent(ctx context.Context, ev *models.Event) (string, error)
	UpsertSession(ctx context.Context, u *models.SessionUpdate) (bool, error)
	UpsertDailyStat(ctx context.Context, appID uuid.UUID, date time.Time, delta models.DailyStatDelta) error
}

// Forwarder hands an accepted event to the conversion forwarder. It must
// not block and must not fail the caller.
type Forwarder interface {
	Forward(ctx context.Context, ev *models.Event, user models.UserData, settings models.AppSettings)
}

// Result is what the transport reports back.
type Result struct {
	EventID string
	Bot     bool
}

// PipelineConfig wires a Pipeline. Forwarder may be nil.
type PipelineConfig struct {
	Store        Store
	Enricher     *Enricher
	Bots         *detection.BotFilter
	Forwarder    Forwarder
	ProbeTimeout time.Duration
}

// Pipeline processes beacons. Safe for concurrent use.
type Pipeline struct {
	store        Store
	enricher     *Enricher
	bots         *detection.BotFilter
	forwarder    Forwarder
	probeTimeout time.Duration
}

// NewPipeline creates a Pipeline, defaulting the bot filter and probe timeout.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		store:        cfg.Store,
		enricher:     cfg.Enricher,
		bots:         cfg.Bots,
		forwarder:    cfg.Forwarder,
		probeTimeout: cfg.ProbeTimeout,
	}
	if p.bots == nil {
		p.bots = detection.NewBotFilter()
	}
	if p.enricher == nil {
		p.enricher = NewEnricher(nil)
	}
	if p.probeTimeout <= 0 {
		p.probeTimeout = DefaultProbeTimeout
	}
	return p
}

// Process runs one beacon through the pipeline.
func (p *Pipeline) Process(ctx context.Context, payload Payload, nc NetContext) (res Result, err error) {
	start := time.Now()
	defer func() {
		outcome := outcomeFor(err)
		if res.Bot {
			outcome = metrics.OutcomeBot
		}
		metrics.RecordIngest(outcome, time.Since(start))
	}()

	ua := nc.UserAgent
	if ua == "" {
		ua = firstString(payload.Fields, []string{"userAgent", "user_agent"}, maxStringLen)
	}
	if p.bots.IsBot(ua) {
		// Only dropped beacons pay for locating the signature.
		sig, _ := p.bots.Match(ua)
		metrics.BotFilterHits.WithLabelValues(sig).Inc()
		logging.Ctx(ctx).Debug().
			Str("signature", sig).
			Str("user_agent", logging.SanitizeString(ua)).
			Msg("Bot beacon dropped")
		return Result{Bot: true}, nil
	}

	ce, err := Normalize(payload)
	if err != nil {
		return Result{}, err
	}

	if err := p.probe(ctx); err != nil {
		logging.CtxErr(ctx, err).Msg("Event store probe failed")
		return Result{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	app, err := p.store.FindAppByPublicID(ctx, ce.AppID)
	if errors.Is(err, database.ErrNotFound) {
		return Result{}, fmt.Errorf("%w: %s", ErrAppNotFound, ce.AppID)
	}
	if err != nil {
		logging.CtxErr(ctx, err).Str("app_id", ce.AppID).Msg("App lookup failed")
		return Result{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ev := p.enricher.Enrich(ctx, ce, app, nc)

	eventID, err := p.store.InsertEvent(ctx, ev)
	if err != nil {
		logging.CtxErr(ctx, err).
			Str("app_id", ce.AppID).
			Str("event_name", logging.SanitizeString(ev.EventName)).
			Msg("Event insert failed")
		return Result{}, fmt.Errorf("%w: %v", ErrEventWrite, err)
	}

	settings := app.EffectiveSettings()
	p.writeAggregates(ctx, ev, settings)

	if p.forwarder != nil && settings.MetaForwardingEnabled() {
		p.forwarder.Forward(ctx, ev, ce.UserData, settings)
	}

	return Result{EventID: eventID}, nil
}

func (p *Pipeline) probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()
	return p.store.Ping(probeCtx)
}

// writeAggregates performs the best-effort session and daily stat upserts.
// Failures are logged and counted, never returned.
func (p *Pipeline) writeAggregates(ctx context.Context, ev *models.Event, settings models.AppSettings) {
	newSession := false
	if settings.RecordSession && ev.SessionID != nil {
		isNew, err := p.store.UpsertSession(ctx, models.SessionUpdateFromEvent(ev))
		if err != nil {
			metrics.SecondaryWriteFailures.WithLabelValues("session").Inc()
			logging.CtxErr(ctx, err).Str("event_id", ev.ID.String()).Msg("Session upsert failed")
		}
		newSession = isNew
	}

	delta := models.DailyStatDeltaFor(ev, newSession)
	if err := p.store.UpsertDailyStat(ctx, ev.AppID, ev.StatDate(), delta); err != nil {
		metrics.SecondaryWriteFailures.WithLabelValues("daily_stat").Inc()
		logging.CtxErr(ctx, err).Str("event_id", ev.ID.String()).Msg("Daily stat upsert failed")
	}
}
