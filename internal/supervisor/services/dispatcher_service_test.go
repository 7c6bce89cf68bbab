// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockDispatcher struct {
	runs    atomic.Int32
	err     error
	started chan struct{}
}

func (m *mockDispatcher) RunWithContext(ctx context.Context) error {
	m.runs.Add(1)
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestDispatcherService(t *testing.T) {
	t.Parallel()

	var _ suture.Service = (*DispatcherService)(nil)

	t.Run("runs until canceled", func(t *testing.T) {
		t.Parallel()

		d := &mockDispatcher{started: make(chan struct{}, 1)}
		svc := NewDispatcherService(d)
		if svc.String() != "capi-dispatcher" {
			t.Errorf("String() = %q", svc.String())
		}

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		select {
		case <-d.started:
		case <-time.After(time.Second):
			t.Fatal("dispatcher did not start")
		}
		cancel()

		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	})

	t.Run("propagates failure", func(t *testing.T) {
		t.Parallel()

		d := &mockDispatcher{started: make(chan struct{}, 1), err: errors.New("subscribe failed")}
		if err := NewDispatcherService(d).Serve(context.Background()); !errors.Is(err, d.err) {
			t.Errorf("Serve() = %v, want %v", err, d.err)
		}
	})
}
