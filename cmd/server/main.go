// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

// Package main is the entry point for the Terrastac server.
//
// Terrastac exposes a STAC API (landing page, conformance, collections,
// items, search, queryables, transactions) backed entirely by PgSTAC
// stored procedures. The Go process holds no catalog state: every request
// is a thin translation between HTTP and a pgstac.* function call.
//
// # Startup
//
// The server initializes in the following order:
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Logging: zerolog, JSON by default
//  3. Database pools: split read/write pools against PgSTAC (lazy; no
//     connection is attempted yet)
//  4. Event publisher: NATS JetStream when built with -tags nats and
//     enabled, otherwise a no-op
//  5. Admin guard: bcrypt token and/or one-time JWTs with a BadgerDB
//     replay store
//  6. Supervision tree: bootstrap, pool monitor, HTTP server and event
//     publisher under suture v4
//
// Database bootstrap runs under supervision, in parallel with the HTTP
// listener: the API comes up immediately and reports not-ready on
// /readyz until PgSTAC answers. If the database never appears within the
// retry budget the process keeps serving in that degraded state rather
// than exiting, so an orchestrator sees probe failures instead of crash
// loops.
//
// # Configuration
//
// Environment variables follow the names the service has always been
// deployed with, for example:
//
//	POSTGRES_HOST_READER=replica.db POSTGRES_HOST_WRITER=primary.db \
//	POSTGRES_USER=pgstac POSTGRES_PASS=secret POSTGRES_DBNAME=pgstac \
//	STAC_FASTAPI_TITLE="My Catalog" ROUTER_PREFIX=/stac ./terrastac
//
// Admin endpoints stay open unless ADMIN_TOKEN_HASH (bcrypt) or
// ADMIN_JWT_SECRET is set. STAC_DEFAULT_QUERYABLES=1 and
// STAC_DEFAULT_SUMMARIES=1 disable the discovery scripts and their
// refresh routes.
//
// # Build Tags
//
//	go build ./cmd/server              # no event stream
//	go build -tags nats ./cmd/server   # NATS JetStream transaction events
//
// # Signals
//
// SIGINT and SIGTERM trigger a graceful stop: the listener drains
// in-flight requests within server.shutdown_timeout, the supervision
// tree winds down its services, and any service that failed to stop in
// time is reported before exit.
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

	"github.com/mlavoie-cs/terrastac/internal/api"
	"github.com/mlavoie-cs/terrastac/internal/auth"
	"github.com/mlavoie-cs/terrastac/internal/config"
	"github.com/mlavoie-cs/terrastac/internal/events"
	"github.com/mlavoie-cs/terrastac/internal/logging"
	"github.com/mlavoie-cs/terrastac/internal/pgstac"
	"github.com/mlavoie-cs/terrastac/internal/supervisor"
	"github.com/mlavoie-cs/terrastac/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The init-time logger is usable before Init.
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.App.Environment).
		Str("title", cfg.App.Title).
		Str("router_prefix", cfg.App.RouterPrefix).
		Msg("starting terrastac")

	// Pools are lazy; the bootstrap service establishes connectivity under
	// supervision so a slow database does not block the listener.
	db, err := pgstac.Open(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database pools")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing database pools")
		}
	}()

	// Transaction events are best-effort: a broken stream degrades to the
	// no-op publisher instead of blocking the catalog.
	var publisher events.Publisher = events.NewNop()
	if cfg.Events.Enabled {
		p, err := events.NewPublisher(cfg.Events)
		if err != nil {
			logging.Warn().Err(err).Msg("event stream unavailable, transactions will not be published")
		} else {
			publisher = p
			logging.Info().
				Str("url", cfg.Events.URL).
				Str("subject_prefix", cfg.Events.SubjectPrefix).
				Msg("transaction event stream enabled")
		}
	}

	// JWT admin credentials need the replay store; without it a one-time
	// token could be accepted twice, so failure to open it is fatal.
	var replay auth.ReplayStore
	if cfg.Admin.JWTSecret != "" {
		store, err := auth.OpenBadgerReplayStore(cfg.Admin.ReplayDir)
		if err != nil {
			logging.Fatal().Err(err).Str("dir", cfg.Admin.ReplayDir).Msg("failed to open admin replay store")
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("error closing admin replay store")
			}
		}()
		replay = store
	}
	guard := auth.NewGuard(cfg.Admin, replay)
	if !guard.Enabled() {
		logging.Warn().Msg("admin refresh endpoints are unprotected (no ADMIN_TOKEN_HASH or ADMIN_JWT_SECRET)")
	}

	handler := api.NewHandler(db, cfg, publisher)
	router := api.NewRouter(handler, cfg, guard)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewBootstrapService(db, cfg.Bootstrap))
	tree.AddDataService(services.NewDBMonitorService(db, 15*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddMessagingService(services.NewPublisherService(publisher))

	// Hot log-level adjustment when running from an explicit config file.
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := config.WatchConfigFile(path, func(next *config.Config) {
			logging.SetLevel(next.Logging.Level)
		}); err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("config watch unavailable")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("starting supervision tree")
	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervision tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
	}

	logging.Info().Msg("terrastac stopped")
}
