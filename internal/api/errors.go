// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/pixelgate/internal/ingest"
)

// ErrBodyTooLarge is returned when a beacon exceeds the configured limit.
var ErrBodyTooLarge = errors.New("request body too large")

// statusForError maps the ingest error taxonomy to an HTTP status and the
// message shown to the browser. Server-side messages stay generic.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBodyTooLarge),
		errors.Is(err, ingest.ErrInvalidPayload),
		errors.Is(err, ingest.ErrMissingField):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ingest.ErrAppNotFound):
		return http.StatusNotFound, "unknown app"
	case errors.Is(err, ingest.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	case errors.Is(err, ingest.ErrEventWrite):
		return http.StatusInternalServerError, "failed to record event"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
