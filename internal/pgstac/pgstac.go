// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package pgstac

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/mlavoie-cs/terrastac/internal/config"
	"github.com/mlavoie-cs/terrastac/internal/logging"
	"github.com/mlavoie-cs/terrastac/internal/metrics"
)

const slowQueryThreshold = 2 * time.Second

// Client executes PgSTAC procedures over separate read and write pools.
type Client struct {
	read  *bun.DB
	write *bun.DB

	breaker *gobreaker.CircuitBreaker[json.RawMessage]
	log     zerolog.Logger
}

// Open builds both pools from configuration. No connection is attempted
// here; call WaitReady (startup) or Ping (probes) for that.
func Open(cfg *config.DatabaseConfig) (*Client, error) {
	log := logging.Component("pgstac")

	read, err := openPool(cfg, cfg.ReaderDSN(), log)
	if err != nil {
		return nil, fmt.Errorf("open read pool: %w", err)
	}
	write, err := openPool(cfg, cfg.WriterDSN(), log)
	if err != nil {
		_ = read.Close()
		return nil, fmt.Errorf("open write pool: %w", err)
	}

	c := &Client{
		read:  read,
		write: write,
		log:   log,
	}
	c.breaker = newReadBreaker(log)
	return c, nil
}

func openPool(cfg *config.DatabaseConfig, dsn string, log zerolog.Logger) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := bun.NewDB(sqlDB, pgdialect.New())
	if cfg.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	db.AddQueryHook(&slowQueryHook{threshold: slowQueryThreshold, log: log})
	return db, nil
}

// Close releases both pools.
func (c *Client) Close() error {
	var firstErr error
	if err := c.read.Close(); err != nil {
		firstErr = err
	}
	if err := c.write.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Ping verifies both pools answer, and publishes the result for the
// readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	err := c.read.PingContext(ctx)
	if err == nil {
		err = c.write.PingContext(ctx)
	}
	metrics.SetReady(err == nil)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitReady blocks until the database answers, retrying up to retries
// times with a fixed delay between attempts, the way the service has
// always started up behind slow-provisioning databases. The last error is
// returned when the budget is exhausted.
func (c *Client) WaitReady(ctx context.Context, retries int, delay time.Duration) error {
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, delay)
		lastErr = c.Ping(pingCtx)
		cancel()

		metrics.RecordConnectAttempt(lastErr == nil)
		if lastErr == nil {
			c.log.Info().Int("attempt", attempt).Msg("database connection established")
			return nil
		}

		c.log.Warn().
			Err(lastErr).
			Str("attempt", fmt.Sprintf("(%d/%d)", attempt, retries)).
			Msg("could not connect to database")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("unable to connect to database after %d retries: %w", retries, lastErr)
}

// MonitorPools publishes pool gauges and probes connectivity until the
// context ends. Run under the supervision tree.
func (c *Client) MonitorPools(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			metrics.SetPoolStats("read", c.read.DB.Stats())
			metrics.SetPoolStats("write", c.write.DB.Stats())

			probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := c.Ping(probeCtx); err != nil {
				c.log.Warn().Err(err).Msg("database health probe failed")
			}
			cancel()
		}
	}
}

// slowQueryHook logs statements that exceed the threshold. Failed queries
// are logged where the error is handled.
type slowQueryHook struct {
	threshold time.Duration
	log       zerolog.Logger
}

func (h *slowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if event.Err != nil {
		return
	}
	if d := time.Since(event.StartTime); d > h.threshold {
		h.log.Warn().
			Dur("duration", d).
			Dur("threshold", h.threshold).
			Str("query", event.Query).
			Msg("slow query detected")
	}
}
