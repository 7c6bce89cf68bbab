// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tomtom215/pixelgate/internal/ingest"
	"github.com/tomtom215/pixelgate/internal/logging"
	"github.com/tomtom215/pixelgate/internal/metrics"
)

// TrackJSON handles POST /api/track.
//
// Bodies may be sent as application/json or, from navigator.sendBeacon,
// text/plain; the content type is not checked.
func (h *Handler) TrackJSON(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		metrics.RecordIngest(metrics.OutcomeInvalid, 0)
		respondTrackError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := ingest.DecodeBody(body)
	if err != nil {
		metrics.RecordIngest(metrics.OutcomeInvalid, 0)
		respondTrackError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.tracker.Process(r.Context(), payload, netContext(r))
	if err != nil {
		if errors.Is(err, ingest.ErrAppNotFound) && !h.strictApps {
			respondJSON(w, http.StatusOK, &trackResponse{Success: true})
			return
		}
		status, message := statusForError(err)
		h.logTrackError(r, err, status, payload.Shape)
		respondTrackError(w, status, message)
		return
	}

	if res.Bot {
		respondJSON(w, http.StatusOK, &trackResponse{Success: true})
		return
	}
	respondJSON(w, http.StatusOK, &trackResponse{Success: true, EventID: res.EventID})
}

// TrackGIF handles GET /api/track and /api/track.gif. The response is
// always the transparent GIF; failures are only logged and counted.
func (h *Handler) TrackGIF(w http.ResponseWriter, r *http.Request) {
	payload, err := ingest.DecodeBeacon(r.URL.Query())
	if err != nil {
		metrics.RecordIngest(metrics.OutcomeInvalid, 0)
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Discarding undecodable image beacon")
		respondGIF(w)
		return
	}

	if _, err := h.tracker.Process(r.Context(), payload, netContext(r)); err != nil {
		status, _ := statusForError(err)
		h.logTrackError(r, err, status, payload.Shape)
	}
	respondGIF(w)
}

// TrackOptions answers the CORS preflight for the track endpoints.
func (h *Handler) TrackOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: failed to read body", ingest.ErrInvalidPayload)
	}
	return body, nil
}

// logTrackError logs client errors at debug and infrastructure errors at
// error level, so a misconfigured snippet cannot flood the logs.
func (h *Handler) logTrackError(r *http.Request, err error, status int, shape ingest.Shape) {
	log := logging.Ctx(r.Context())
	evt := log.Error()
	if ingest.IsClientError(err) {
		evt = log.Debug()
	}
	evt.Err(err).
		Int("status", status).
		Str("shape", shape.String()).
		Str("path", r.URL.Path).
		Msg("Beacon rejected")
}

// netContext captures the request facts enrichment needs. RemoteAddr has
// already been rewritten by chi's RealIP middleware.
func netContext(r *http.Request) ingest.NetContext {
	return ingest.NetContext{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}
