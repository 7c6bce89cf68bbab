// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

// Package services adapts Pixelgate components to suture.Service.
//
// Each wrapper depends on a small interface rather than the concrete type,
// so the supervisor package never imports capi, cache or net/http server
// setup directly, and tests can substitute fakes. Every wrapper implements
// fmt.Stringer; suture uses the name in its log events.
package services
