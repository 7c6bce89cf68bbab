// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/pixelgate/internal/api"
	"github.com/tomtom215/pixelgate/internal/config"
	"github.com/tomtom215/pixelgate/internal/database"
	"github.com/tomtom215/pixelgate/internal/detection"
	"github.com/tomtom215/pixelgate/internal/ingest"
	"github.com/tomtom215/pixelgate/internal/logging"
	"github.com/tomtom215/pixelgate/internal/supervisor"
	"github.com/tomtom215/pixelgate/internal/supervisor/services"
)

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet; the default logger still works.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("geoip_enabled", cfg.GeoIP.Enabled).
		Bool("meta_enabled", cfg.Meta.Enabled).
		Msg("Starting Pixelgate")
	recordBuildInfo(version)

	if err := run(cfg, startTime); err != nil {
		logging.Fatal().Err(err).Msg("Pixelgate stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config, startTime time.Time) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if len(cfg.Bootstrap.Apps) > 0 {
		seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		created, err := db.SeedApps(seedCtx, cfg.Bootstrap.Apps)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to seed bootstrap apps: %w", err)
		}
		logging.Info().
			Int("configured", len(cfg.Bootstrap.Apps)).
			Int("created", created).
			Msg("Bootstrap apps applied")
	}

	resolver, geoCache := initGeo(&cfg.GeoIP)
	dispatcher := initForwarding(&cfg.Meta)

	pipelineCfg := ingest.PipelineConfig{
		Store:        db,
		Enricher:     ingest.NewEnricher(resolver),
		Bots:         detection.NewBotFilter(),
		ProbeTimeout: cfg.Database.ProbeTimeout,
	}
	if dispatcher != nil {
		pipelineCfg.Forwarder = dispatcher
		defer func() {
			if err := dispatcher.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing dispatcher")
			}
		}()
	}
	pipeline := ingest.NewPipeline(pipelineCfg)

	handler := api.NewHandler(pipeline, db, cfg, version)
	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security))
	router := api.NewRouter(handler, mw)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})

	// Data layer
	tree.AddDataService(services.NewUptimeService(startTime, 15*time.Second))
	if geoCache != nil {
		tree.AddDataService(services.NewCacheJanitorService(geoCache, services.DefaultJanitorInterval))
	}

	// Messaging layer
	if dispatcher != nil {
		tree.AddMessagingService(services.NewDispatcherService(dispatcher))
		logging.Info().
			Int("workers", cfg.Meta.Workers).
			Int("queue_buffer", cfg.Meta.QueueBuffer).
			Msg("Conversions API dispatcher added to supervisor tree")
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// ServeBackground sends exactly one value and never closes the channel.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			serveErr = fmt.Errorf("supervisor tree: %w", err)
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if err := db.Checkpoint(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Final checkpoint failed")
	}
	return serveErr
}
