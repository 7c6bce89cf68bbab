// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package capi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pixelgate/internal/breaker"
)

// graphFake is an httptest Graph API that records the last request.
type graphFake struct {
	srv    *httptest.Server
	calls  atomic.Int32
	status int
	body   string

	lastPath  atomic.Value
	lastToken atomic.Value
	lastBody  atomic.Value
}

func newGraphFake(t *testing.T, status int, body string) *graphFake {
	t.Helper()

	g := &graphFake{status: status, body: body}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		raw, _ := io.ReadAll(r.Body)
		g.lastPath.Store(r.URL.Path)
		g.lastToken.Store(r.URL.Query().Get("access_token"))
		g.lastBody.Store(raw)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(g.status)
		_, _ = io.WriteString(w, g.body)
	}))
	t.Cleanup(g.srv.Close)
	return g
}

func newTestClient(g *graphFake, s breaker.Settings) *Client {
	return NewClient(ClientConfig{
		GraphURL:   g.srv.URL + "/",
		APIVersion: "v19.0",
		HTTPClient: g.srv.Client(),
		Breaker:    s,
	})
}

func testRequest() *Request {
	return &Request{
		Data:          []ServerEvent{{EventName: "PageView", EventTime: 1, EventID: "e1", ActionSource: ActionSourceWebsite}},
		TestEventCode: "TEST123",
	}
}

func TestClient_Send_Success(t *testing.T) {
	t.Parallel()

	g := newGraphFake(t, http.StatusOK, `{"events_received":1,"messages":[],"fbtrace_id":"AbC"}`)
	c := newTestClient(g, breaker.Settings{})

	resp, err := c.Send(context.Background(), "px 1", "tok&en", testRequest())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.EventsReceived != 1 || resp.FBTraceID != "AbC" {
		t.Errorf("resp = %+v", resp)
	}

	if got := g.lastPath.Load().(string); got != "/v19.0/px 1/events" {
		t.Errorf("path = %q", got)
	}
	if got := g.lastToken.Load().(string); got != "tok&en" {
		t.Errorf("access_token = %q, want it query-escaped and intact", got)
	}

	var sent Request
	if err := json.Unmarshal(g.lastBody.Load().([]byte), &sent); err != nil {
		t.Fatalf("body: %v", err)
	}
	if sent.TestEventCode != "TEST123" || len(sent.Data) != 1 || sent.Data[0].EventID != "e1" {
		t.Errorf("sent = %+v", sent)
	}
}

func TestClient_Send_APIError(t *testing.T) {
	t.Parallel()

	g := newGraphFake(t, http.StatusBadRequest,
		`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190,"error_subcode":463,"fbtrace_id":"Xyz"}}`)
	c := newTestClient(g, breaker.Settings{})

	_, err := c.Send(context.Background(), "px", "bad", testRequest())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	want := APIError{HTTPStatus: 400, Message: "Invalid OAuth access token.", Type: "OAuthException", Code: 190, ErrorSubcode: 463, FBTraceID: "Xyz"}
	if *apiErr != want {
		t.Errorf("apiErr = %+v, want %+v", *apiErr, want)
	}
	if !apiErr.IsClientError() {
		t.Error("400 should be a client error")
	}
}

func TestClient_Send_HTTPError(t *testing.T) {
	t.Parallel()

	g := newGraphFake(t, http.StatusBadGateway, `<html>bad gateway</html>`)
	c := newTestClient(g, breaker.Settings{})

	_, err := c.Send(context.Background(), "px", "tok", testRequest())

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("err = %v, want HTTPError 502", err)
	}
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	t.Parallel()

	g := newGraphFake(t, http.StatusBadRequest, `{"error":{"message":"bad","type":"OAuthException","code":190}}`)
	c := newTestClient(g, breaker.Settings{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Hour})

	for i := 0; i < 5; i++ {
		_, err := c.Send(context.Background(), "px", "tok", testRequest())
		if errors.Is(err, breaker.ErrOpen) {
			t.Fatalf("call %d rejected by breaker", i)
		}
	}
	if got := g.calls.Load(); got != 5 {
		t.Errorf("server calls = %d, want 5", got)
	}
}

func TestClient_ServerErrorsTripBreaker(t *testing.T) {
	t.Parallel()

	g := newGraphFake(t, http.StatusInternalServerError, `{"error":{"message":"unknown","type":"OAuthException","code":2}}`)
	c := newTestClient(g, breaker.Settings{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Hour})

	for i := 0; i < 2; i++ {
		_, _ = c.Send(context.Background(), "px", "tok", testRequest())
	}

	_, err := c.Send(context.Background(), "px", "tok", testRequest())
	if !errors.Is(err, breaker.ErrOpen) {
		t.Fatalf("err = %v, want breaker.ErrOpen", err)
	}
	if got := g.calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}

func TestClient_TransportErrorHidesToken(t *testing.T) {
	t.Parallel()

	c := NewClient(ClientConfig{GraphURL: "http://127.0.0.1:1", APIVersion: "v19.0"})

	_, err := c.Send(context.Background(), "px", "secret-token-value", testRequest())
	if err == nil {
		t.Fatal("expected an error")
	}
	if strings.Contains(err.Error(), "secret-token-value") {
		t.Errorf("error leaks access token: %v", err)
	}
}
