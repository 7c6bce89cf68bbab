// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

// Package capi forwards accepted storefront events to the Meta Conversions
// API. Forwarding is fire-and-forget: the ingest pipeline hands events to a
// Dispatcher, which queues them in-process and sends them from a bounded
// pool of workers. Failures are logged and counted but never reach the
// browser.
package capi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pixelgate/internal/breaker"
)

// maxResponseBytes bounds how much of a Graph API response is read.
const maxResponseBytes = 64 << 10

// APIError is the error object returned by the Graph API.
type APIError struct {
	HTTPStatus   int    `json:"-"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FBTraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api error %d/%d (%s): %s", e.Code, e.ErrorSubcode, e.Type, e.Message)
}

// IsClientError reports whether Meta rejected the request itself (bad
// token, unknown pixel, malformed event) rather than failing to serve it.
func (e *APIError) IsClientError() bool {
	return e.HTTPStatus >= 400 && e.HTTPStatus < 500 && e.HTTPStatus != http.StatusTooManyRequests
}

// Response is the Graph API success body.
type Response struct {
	EventsReceived int      `json:"events_received"`
	Messages       []string `json:"messages,omitempty"`
	FBTraceID      string   `json:"fbtrace_id"`
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// ClientConfig configures a Client.
type ClientConfig struct {
	GraphURL   string
	APIVersion string
	HTTPClient *http.Client
	Breaker    breaker.Settings
}

// Client posts events to the Graph API through a circuit breaker.
type Client struct {
	http     *http.Client
	graphURL string
	version  string
	breaker  *breaker.Breaker[*Response]
}

// NewClient creates a client. Per-call deadlines come from the context.
func NewClient(cfg ClientConfig) *Client {
	if cfg.GraphURL == "" {
		cfg.GraphURL = "https://graph.facebook.com"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v19.0"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Breaker.IsSuccessful == nil {
		// A merchant's bad token must not open the breaker for everyone.
		cfg.Breaker.IsSuccessful = func(err error) bool {
			var apiErr *APIError
			return err == nil || (errors.As(err, &apiErr) && apiErr.IsClientError())
		}
	}

	return &Client{
		http:     cfg.HTTPClient,
		graphURL: strings.TrimRight(cfg.GraphURL, "/"),
		version:  cfg.APIVersion,
		breaker:  breaker.New[*Response]("meta-capi", cfg.Breaker),
	}
}

// Send posts req for pixelID. A rejected call returns an error wrapping
// breaker.ErrOpen; a Graph API error body returns *APIError.
func (c *Client) Send(ctx context.Context, pixelID, accessToken string, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal events: %w", err)
	}

	return c.breaker.Execute(func() (*Response, error) {
		return c.post(ctx, pixelID, accessToken, body)
	})
}

func (c *Client) endpoint(pixelID, accessToken string) string {
	return fmt.Sprintf("%s/%s/%s/events?access_token=%s",
		c.graphURL, c.version, url.PathEscape(pixelID), url.QueryEscape(accessToken))
}

func (c *Client) post(ctx context.Context, pixelID, accessToken string, body []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(pixelID, accessToken), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// url.Error repeats the URL, which carries the token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("failed to reach graph api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read graph api response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil && env.Error != nil {
			env.Error.HTTPStatus = resp.StatusCode
			return nil, env.Error
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode graph api response: %w", err)
	}
	return &out, nil
}

// HTTPError is a non-200 response without a Graph API error body.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("graph api returned status %d", e.StatusCode)
}
