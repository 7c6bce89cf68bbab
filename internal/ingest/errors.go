// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package ingest

import (
	"errors"

	"github.com/tomtom215/pixelgate/internal/metrics"
)

// Client errors.
var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrMissingField   = errors.New("missing required field")
	ErrAppNotFound    = errors.New("app not found")
)

// Infrastructure errors.
var (
	ErrStoreUnavailable = errors.New("event store unavailable")
	ErrEventWrite       = errors.New("failed to store event")
)

// IsClientError reports whether err was caused by the beacon itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPayload) || errors.Is(err, ErrMissingField) || errors.Is(err, ErrAppNotFound)
}

// outcomeFor maps a Process error to its ingest metric label.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAccepted
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrMissingField):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrAppNotFound):
		return metrics.OutcomeUnknownApp
	case errors.Is(err, ErrStoreUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
