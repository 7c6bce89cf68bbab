// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package main

import (
	"github.com/tomtom215/pixelgate/internal/capi"
	"github.com/tomtom215/pixelgate/internal/config"
)

// initForwarding builds the Conversions API dispatcher, or nil when
// forwarding is disabled.
func initForwarding(cfg *config.MetaConfig) *capi.Dispatcher {
	if !cfg.Enabled {
		return nil
	}

	client := capi.NewClient(capi.ClientConfig{
		GraphURL:   cfg.GraphURL,
		APIVersion: cfg.APIVersion,
	})
	return capi.NewDispatcher(capi.DispatcherConfig{
		Sender:      client,
		Workers:     cfg.Workers,
		QueueBuffer: cfg.QueueBuffer,
		JobTimeout:  cfg.Timeout,
	})
}
