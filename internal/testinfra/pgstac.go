// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mlavoie-cs/terrastac/internal/config"
)

const (
	// DefaultPgstacImage ships PostgreSQL with the PgSTAC schema and
	// functions installed by its init scripts.
	DefaultPgstacImage = "ghcr.io/stac-utils/pgstac:v0.9.1"

	// DefaultPgstacPort is the PostgreSQL listener port inside the container.
	DefaultPgstacPort = "5432"
)

// PgstacContainer is a running PgSTAC database for integration tests.
type PgstacContainer struct {
	testcontainers.Container
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// PgstacOption configures the PgSTAC container.
type PgstacOption func(*pgstacConfig)

type pgstacConfig struct {
	image        string
	user         string
	password     string
	database     string
	startTimeout time.Duration
}

// WithPgstacImage sets a custom PgSTAC Docker image. The PGSTAC_IMAGE
// environment variable overrides the built-in default the same way.
func WithPgstacImage(image string) PgstacOption {
	return func(c *pgstacConfig) {
		c.image = image
	}
}

// WithCredentials sets the database superuser and database name.
func WithCredentials(user, password, database string) PgstacOption {
	return func(c *pgstacConfig) {
		c.user = user
		c.password = password
		c.database = database
	}
}

// WithPgstacStartTimeout bounds the wait for the database to come up.
// First boot runs initdb plus the PgSTAC migration, which takes a while.
func WithPgstacStartTimeout(timeout time.Duration) PgstacOption {
	return func(c *pgstacConfig) {
		c.startTimeout = timeout
	}
}

// NewPgstacContainer creates and starts a PgSTAC container.
//
// Example:
//
//	ctx := context.Background()
//	db, err := testinfra.NewPgstacContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer db.Terminate(ctx)
//
//	client, err := pgstac.Open(db.DatabaseConfig())
func NewPgstacContainer(ctx context.Context, opts ...PgstacOption) (*PgstacContainer, error) {
	cfg := &pgstacConfig{
		image:        DefaultPgstacImage,
		user:         "pgstac",
		password:     "pgstac",
		database:     "pgstac",
		startTimeout: 2 * time.Minute,
	}
	if image := os.Getenv("PGSTAC_IMAGE"); image != "" {
		cfg.image = image
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultPgstacPort + "/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     cfg.user,
			"POSTGRES_PASSWORD": cfg.password,
			"POSTGRES_DB":       cfg.database,
			// For psql invocations through Exec.
			"PGUSER":     cfg.user,
			"PGPASSWORD": cfg.password,
			"PGDATABASE": cfg.database,
		},
		WaitingFor: wait.ForAll(
			// initdb starts a temporary server first, so the ready line
			// appears twice before the database accepts outside traffic.
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(DefaultPgstacPort+"/tcp"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create pgstac container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, DefaultPgstacPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &PgstacContainer{
		Container: container,
		Host:      host,
		Port:      port.Port(),
		User:      cfg.user,
		Password:  cfg.password,
		Database:  cfg.database,
	}, nil
}

// DSN returns a connection string for the containerized database.
func (c *PgstacContainer) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=pgstac,public",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// DatabaseConfig returns settings pointed at the container, ready for
// pgstac.Open.
func (c *PgstacContainer) DatabaseConfig() *config.DatabaseConfig {
	cfg := config.Defaults().Database
	cfg.DSN = c.DSN()
	cfg.MaxOpenConns = 4
	cfg.MaxIdleConns = 1
	return &cfg
}

// ExecSQL runs a statement through psql inside the container, for seeding
// and assertions that bypass the API under test.
func (c *PgstacContainer) ExecSQL(ctx context.Context, sql string) error {
	code, out, err := c.Container.Exec(ctx, []string{"psql", "-v", "ON_ERROR_STOP=1", "-c", sql})
	if err != nil {
		return fmt.Errorf("exec psql: %w", err)
	}
	if code != 0 {
		output, _ := io.ReadAll(out)
		return fmt.Errorf("psql exited %d: %s", code, string(output))
	}
	return nil
}

// PgstacVersion reads the installed PgSTAC migration version.
func (c *PgstacContainer) PgstacVersion(ctx context.Context) (string, error) {
	code, out, err := c.Container.Exec(ctx, []string{
		"psql", "-t", "-A", "-c", "SELECT pgstac.get_version();",
	})
	if err != nil {
		return "", fmt.Errorf("exec psql: %w", err)
	}
	output, _ := io.ReadAll(out)
	if code != 0 {
		return "", fmt.Errorf("psql exited %d: %s", code, string(output))
	}
	return string(output), nil
}

// Terminate stops and removes the container.
func (c *PgstacContainer) Terminate(ctx context.Context) error {
	return c.Container.Terminate(ctx)
}

// Logs returns the container logs for debugging.
func (c *PgstacContainer) Logs(ctx context.Context) (string, error) {
	reader, err := c.Container.Logs(ctx)
	if err != nil {
		return "", fmt.Errorf("get logs: %w", err)
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read logs: %w", err)
	}
	return string(logs), nil
}
