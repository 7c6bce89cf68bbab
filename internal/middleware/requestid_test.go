// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/pixelgate/internal/logging"
)

// serveRequestID runs one request through RequestID and returns the
// response header ID plus the IDs seen by the handler.
func serveRequestID(t *testing.T, upstream string) (header, ctxID, logID, corrID string) {
	t.Helper()

	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
		logID = logging.RequestIDFromContext(r.Context())
		corrID = logging.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/track", nil)
	if upstream != "" {
		req.Header.Set("X-Request-ID", upstream)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)

	return rec.Header().Get("X-Request-ID"), ctxID, logID, corrID
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	t.Parallel()

	header, ctxID, logID, corrID := serveRequestID(t, "")

	if _, err := uuid.Parse(header); err != nil {
		t.Errorf("Response X-Request-ID is not a valid UUID: %v", err)
	}
	if ctxID != header || logID != header {
		t.Errorf("context IDs (%q, %q) don't match header %q", ctxID, logID, header)
	}
	if corrID == "" {
		t.Error("expected a correlation ID in context")
	}
}

func TestRequestID_PreservesUpstreamID(t *testing.T) {
	t.Parallel()

	header, ctxID, _, _ := serveRequestID(t, "nginx-7f3a2b")
	if header != "nginx-7f3a2b" || ctxID != "nginx-7f3a2b" {
		t.Errorf("upstream ID not preserved: header=%q ctx=%q", header, ctxID)
	}
}

func TestRequestID_RejectsMalformedUpstreamID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
	}{
		{"too long", strings.Repeat("a", maxUpstreamIDLen+1)},
		{"control characters", "abc\x1b[31m"},
		{"spaces", "two words"},
		{"non-ascii", "idé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			header, _, _, _ := serveRequestID(t, tt.id)
			if header == tt.id {
				t.Errorf("malformed upstream ID %q was echoed", tt.id)
			}
			if _, err := uuid.Parse(header); err != nil {
				t.Errorf("replacement ID %q is not a UUID", header)
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, _, _, _ := serveRequestID(t, "")
		if seen[id] {
			t.Fatalf("duplicate request ID %q", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}
