// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClassifyDBError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{fmt.Errorf("ping: %w", context.Canceled), "canceled"},
		{errors.New("TransactionContext Error: Catalog write-write conflict: Conflict on update"), "conflict"},
		{errors.New("Constraint Error: Duplicate key \"public_id: px_1\""), "constraint"},
		{errors.New("sql: database is closed"), "connection"},
		{errors.New("something odd"), "other"},
	}

	for _, tt := range tests {
		if got := classifyDBError(tt.err); got != tt.want {
			t.Errorf("classifyDBError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "events", "other"))

	RecordDBQuery("insert", "events", time.Millisecond, nil)
	RecordDBQuery("insert", "events", time.Millisecond, errors.New("boom"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "events", "other"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1", after-before)
	}
}

func TestRecordIngest(t *testing.T) {
	before := testutil.ToFloat64(IngestEvents.WithLabelValues(OutcomeBot))

	RecordIngest(OutcomeBot, 0)
	RecordIngest(OutcomeBot, 0)

	if got := testutil.ToFloat64(IngestEvents.WithLabelValues(OutcomeBot)) - before; got != 2 {
		t.Errorf("bot outcome delta = %v, want 2", got)
	}
}

func TestRecordGeoLookupAndCAPIForward(t *testing.T) {
	geoBefore := testutil.ToFloat64(GeoLookups.WithLabelValues(GeoPrivate))
	capiBefore := testutil.ToFloat64(CAPIForwards.WithLabelValues(CAPIQueueFull))

	RecordGeoLookup(GeoPrivate, 0)
	RecordCAPIForward(CAPIQueueFull, 0)

	if got := testutil.ToFloat64(GeoLookups.WithLabelValues(GeoPrivate)) - geoBefore; got != 1 {
		t.Errorf("geo private delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CAPIForwards.WithLabelValues(CAPIQueueFull)) - capiBefore; got != 1 {
		t.Errorf("capi queue_full delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}
