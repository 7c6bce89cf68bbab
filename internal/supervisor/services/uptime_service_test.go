// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/pixelgate/internal/metrics"
)

func TestUptimeService(t *testing.T) {
	start := time.Now().Add(-time.Hour)
	svc := NewUptimeService(start, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(metrics.AppUptime) < 3600 {
		if time.Now().After(deadline) {
			t.Fatalf("uptime gauge = %v, want >= 3600", testutil.ToFloat64(metrics.AppUptime))
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if svc.String() != "uptime-reporter" {
		t.Errorf("String() = %q", svc.String())
	}
}
