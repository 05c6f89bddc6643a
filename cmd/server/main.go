// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/sitepulse/internal/api"
	"github.com/tomtom215/sitepulse/internal/cache"
	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/database"
	"github.com/tomtom215/sitepulse/internal/logging"
	"github.com/tomtom215/sitepulse/internal/supervisor"
	"github.com/tomtom215/sitepulse/internal/supervisor/services"
	ws "github.com/tomtom215/sitepulse/internal/websocket"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("SitePulse failed")
	}
}

// run wires and serves the application until a shutdown signal arrives.
// Setup failures are returned so every deferred close still runs.
//
//nolint:gocyclo // sequential setup
func run(cfg *config.Config) error {
	logging.Info().
		Str("driver", cfg.Database.Driver).
		Str("db_path", cfg.Database.Path).
		Bool("eventbus", cfg.EventBus.Enabled).
		Msg("Starting SitePulse")

	store, storeService, err := openStore(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer database.CloseStore(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	handler := api.NewHandler(store, cfg)

	if storeService != nil {
		tree.AddDataService(storeService)
	}

	var queryCache *cache.QueryCache
	if cfg.Cache.Enabled {
		queryCache = cache.New(cfg.Cache.TTL)
		handler.SetCache(queryCache)
		tree.AddDataService(queryCache)
		logging.Info().Dur("ttl", cfg.Cache.TTL).Msg("Analytics query cache enabled")
	}

	if limiter := api.NewSiteLimiter(cfg.RateLimit.PerSiteRPS, cfg.RateLimit.PerSiteBurst); limiter != nil {
		handler.SetSiteLimiter(limiter)
		tree.AddDataService(limiter)
		logging.Info().
			Float64("rps", cfg.RateLimit.PerSiteRPS).
			Int("burst", cfg.RateLimit.PerSiteBurst).
			Msg("Per-site ingest limit enabled")
	}
	if cfg.RateLimit.Disabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	var hub *ws.Hub
	if cfg.WebSocket.Enabled {
		hub = ws.NewHub()
		handler.SetHub(hub)
		tree.AddMessagingService(services.NewLiveFeedService(hub))
	}

	busComponents, err := InitEventBus(&cfg.EventBus)
	if err != nil {
		return fmt.Errorf("initialize event bus: %w", err)
	}
	defer func() {
		if err := busComponents.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	if busComponents != nil {
		handler.SetEventPublisher(busComponents.Publisher())
		if hub != nil {
			busComponents.AddSink(sinkLiveFeed, hub)
		}
		if queryCache != nil {
			busComponents.AddSink(sinkCacheInvalidate, cacheInvalidationSink(queryCache))
		}
		tree.AddMessagingService(services.NewEventRouterService(busComponents.RouterFactory()))
	} else if hub != nil {
		logging.Warn().Msg("Live feed enabled without the event bus; no events will be streamed")
	}

	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.RateLimit))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("SitePulse stopped")
	return nil
}
