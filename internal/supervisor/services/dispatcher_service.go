// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package services

import "context"

// Dispatcher consumes queued Conversions API forwards until ctx is
// canceled. Satisfied by *capi.Dispatcher.
type Dispatcher interface {
	RunWithContext(ctx context.Context) error
}

// DispatcherService supervises the Conversions API dispatcher. A restart
// resubscribes to the in-process queue; jobs queued while it was down
// are dropped and counted by the dispatcher.
type DispatcherService struct {
	dispatcher Dispatcher
	name       string
}

// NewDispatcherService wraps d.
func NewDispatcherService(d Dispatcher) *DispatcherService {
	return &DispatcherService{dispatcher: d, name: "capi-dispatcher"}
}

// Serve implements suture.Service.
func (s *DispatcherService) Serve(ctx context.Context) error {
	return s.dispatcher.RunWithContext(ctx)
}

func (s *DispatcherService) String() string {
	return s.name
}
