// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

/*
Package main is the entry point for the Pixelgate server.

Pixelgate receives tracking beacons from storefront snippets, enriches them
with device and location context, stores them in DuckDB and forwards
conversion events to the Meta Conversions API.

# Application Architecture

	RootSupervisor ("pixelgate")
	├── DataSupervisor ("data-layer")
	│   ├── Geo cache janitor
	│   └── Uptime reporter
	├── MessagingSupervisor ("messaging-layer")
	│   └── Conversions API dispatcher (optional)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog with JSON/console output
 3. Database: DuckDB schema plus bootstrap apps from config
 4. Geo resolver: ip-api.com behind a TTL cache and circuit breaker
 5. Forwarding: Conversions API client and dispatcher
 6. Ingest pipeline and Chi router
 7. Supervisor Tree: Suture v4 process supervision

# Configuration

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	HTTP_PORT=8080
	DUCKDB_PATH=/data/pixelgate.duckdb
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	GEOIP_ENABLED=true
	META_ENABLED=true
	CONFIG_PATH=/etc/pixelgate/config.yaml

Tracked apps are declared under bootstrap.apps in the YAML file.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, the dispatcher drops whatever is still queued, and the
database is checkpointed and closed.
*/
package main
