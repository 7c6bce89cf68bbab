// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyStat holds counters for one app on one UTC day.
type DailyStat struct {
	AppID       uuid.UUID `json:"app_id"`
	StatDate    time.Time `json:"stat_date"`
	Pageviews   int64     `json:"pageviews"`
	UniqueUsers int64     `json:"unique_users"`
	Sessions    int64     `json:"sessions"`
	Purchases   int64     `json:"purchases"`
	Revenue     float64   `json:"revenue"`
}

// DailyStatDelta is added to a DailyStat row by an upsert.
type DailyStatDelta struct {
	Pageviews   int64
	UniqueUsers int64
	Sessions    int64
	Purchases   int64
	Revenue     float64
}

// DailyStatDeltaFor computes what ev contributes to its day.
// newSession is true when ev opened its session.
func DailyStatDeltaFor(ev *Event, newSession bool) DailyStatDelta {
	var d DailyStatDelta
	if IsPageview(ev.EventName) {
		d.Pageviews = 1
	}
	if newSession {
		d.Sessions = 1
		d.UniqueUsers = 1
	}
	if IsPurchase(ev.EventName) {
		d.Purchases = 1
		if ev.Value != nil {
			d.Revenue = *ev.Value
		}
	}
	return d
}
