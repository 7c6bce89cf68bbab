// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

/*
Package supervisor runs Pixelgate's long-lived services under suture v4.

	RootSupervisor ("pixelgate")
	├── DataSupervisor ("data-layer")
	│   └── CacheJanitorService ("geo-cache-janitor")
	├── MessagingSupervisor ("messaging-layer")
	│   └── DispatcherService ("capi-dispatcher", if META_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService ("http-server")

Crashed services restart with suture's backoff; failures count per layer.
Lifecycle events go to slog through sutureslog, and slog is bridged to the
zerolog logger by logging.NewSlogLogger.

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor tree stopped")
	}

Service wrappers live in the services subpackage.
*/
package supervisor
