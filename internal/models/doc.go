// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

/*
Package models defines the data structures shared across Pixelgate.

Key Components:

  - TrackedApp / AppSettings: a merchant's tracking identity and privacy toggles
  - CanonicalEvent / UserData: a browser beacon after normalization
  - Event: the immutable stored record, including enrichment
  - AnalyticsSession / SessionUpdate: per (app, session id) rollup
  - DailyStat / DailyStatDelta: per (app, UTC day) counters
  - CustomEventDefinition: merchant authored selector rules
  - DeviceInfo / GeoInfo: enrichment results

Optional columns are pointers; nil is stored as NULL and omitted from JSON.
*/
package models
