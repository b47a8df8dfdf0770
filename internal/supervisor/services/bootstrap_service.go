// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/mlavoie-cs/terrastac/internal/config"
	"github.com/mlavoie-cs/terrastac/internal/logging"
)

// CatalogBootstrapper is the slice of the pgstac client the bootstrap
// sequence needs.
type CatalogBootstrapper interface {
	WaitReady(ctx context.Context, retries int, delay time.Duration) error
	ApplyFunctionScripts(ctx context.Context, dir string, skipQueryables, skipSummaries bool)
}

// BootstrapService runs the startup sequence against the database: wait
// for it to answer within the bounded retry budget, then install the SQL
// function scripts. It runs once; the service removes itself from the
// supervisor when done.
//
// Exhausting the retry budget does not stop the process. The server keeps
// running degraded: data-backed routes fail per request and the readiness
// probe reports the database down.
type BootstrapService struct {
	db  CatalogBootstrapper
	cfg config.BootstrapConfig
	log zerolog.Logger
}

// NewBootstrapService builds the one-shot bootstrap sequence.
func NewBootstrapService(db CatalogBootstrapper, cfg config.BootstrapConfig) *BootstrapService {
	return &BootstrapService{
		db:  db,
		cfg: cfg,
		log: logging.Component("bootstrap"),
	}
}

// Serve implements suture.Service.
func (s *BootstrapService) Serve(ctx context.Context) error {
	if err := s.db.WaitReady(ctx, s.cfg.ConnectRetries, s.cfg.RetryDelay); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Error().Err(err).Msg("database bootstrap failed, serving degraded")
		return suture.ErrDoNotRestart
	}

	// Script failures are logged inside and never abort startup.
	s.db.ApplyFunctionScripts(ctx, s.cfg.ScriptsDir, s.cfg.DefaultQueryables, s.cfg.DefaultSummaries)
	return suture.ErrDoNotRestart
}

func (s *BootstrapService) String() string { return "bootstrap" }
