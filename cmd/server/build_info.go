// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package main

import (
	"runtime"

	"github.com/tomtom215/pixelgate/internal/metrics"
)

// Set at build time: -ldflags "-X main.version=v1.2.0"
var version = "dev"

func recordBuildInfo(v string) {
	metrics.AppInfo.WithLabelValues(v, runtime.Version()).Set(1)
}
