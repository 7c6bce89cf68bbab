// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/pixelgate/internal/database"
	"github.com/tomtom215/pixelgate/internal/models"
)

type dailyCall struct {
	appID uuid.UUID
	date  time.Time
	delta models.DailyStatDelta
}

// fakeStore is an in-memory Store with injectable failures.
type fakeStore struct {
	mu sync.Mutex

	apps     map[string]*models.TrackedApp
	events   []*models.Event
	sessions map[string]int
	daily    []dailyCall
	calls    []string

	pingErr, findErr, insertErr, sessionErr, dailyErr error
}

func newFakeStore(apps ...*models.TrackedApp) *fakeStore {
	s := &fakeStore{apps: map[string]*models.TrackedApp{}, sessions: map[string]int{}}
	for _, a := range apps {
		s.apps[a.PublicID] = a
	}
	return s
}

func (s *fakeStore) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeStore) Ping(context.Context) error {
	s.record("ping")
	return s.pingErr
}

func (s *fakeStore) FindAppByPublicID(_ context.Context, publicID string) (*models.TrackedApp, error) {
	s.record("find")
	if s.findErr != nil {
		return nil, s.findErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[publicID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return app, nil
}

func (s *fakeStore) InsertEvent(_ context.Context, ev *models.Event) (string, error) {
	s.record("insert")
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return ev.ID.String(), nil
}

func (s *fakeStore) UpsertSession(_ context.Context, u *models.SessionUpdate) (bool, error) {
	s.record("session")
	if s.sessionErr != nil {
		return false, s.sessionErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := u.AppID.String() + "/" + u.SessionID
	s.sessions[key]++
	return s.sessions[key] == 1, nil
}

func (s *fakeStore) UpsertDailyStat(_ context.Context, appID uuid.UUID, date time.Time, delta models.DailyStatDelta) error {
	s.record("daily")
	if s.dailyErr != nil {
		return s.dailyErr
	}
	s.mu.Lock()
	s.daily = append(s.daily, dailyCall{appID: appID, date: date, delta: delta})
	s.mu.Unlock()
	return nil
}

// fakeGeo returns a fixed location and records the IPs it was asked about.
type fakeGeo struct {
	mu  sync.Mutex
	ips []string
	geo models.GeoInfo
}

func (g *fakeGeo) Resolve(_ context.Context, ip string) models.GeoInfo {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ips = append(g.ips, ip)
	return g.geo
}

func (g *fakeGeo) lookups() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.ips...)
}

func torontoGeo() models.GeoInfo {
	lat, lon := 43.65, -79.38
	return models.GeoInfo{
		Country:     models.StringPtr("Canada"),
		CountryCode: models.StringPtr("CA"),
		Region:      models.StringPtr("Ontario"),
		City:        models.StringPtr("Toronto"),
		Zip:         models.StringPtr("M5V"),
		Latitude:    &lat,
		Longitude:   &lon,
		Timezone:    models.StringPtr("America/Toronto"),
		ISP:         models.StringPtr("Example ISP"),
	}
}

type forwardCall struct {
	ev       *models.Event
	user     models.UserData
	settings models.AppSettings
}

type fakeForwarder struct {
	mu    sync.Mutex
	calls []forwardCall
}

func (f *fakeForwarder) Forward(_ context.Context, ev *models.Event, user models.UserData, settings models.AppSettings) {
	f.mu.Lock()
	f.calls = append(f.calls, forwardCall{ev: ev, user: user, settings: settings})
	f.mu.Unlock()
}

func (f *fakeForwarder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newApp(publicID string, settings *models.AppSettings) *models.TrackedApp {
	return &models.TrackedApp{ID: uuid.New(), PublicID: publicID, Settings: settings}
}

func settingsWith(mutate func(*models.AppSettings)) *models.AppSettings {
	s := models.DefaultAppSettings()
	mutate(&s)
	return &s
}
