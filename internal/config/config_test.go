// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.App.OpenAPIURL != "/api" {
		t.Errorf("OpenAPIURL = %q, want /api", cfg.App.OpenAPIURL)
	}
	if cfg.App.DocsURL != "/api.html" {
		t.Errorf("DocsURL = %q, want /api.html", cfg.App.DocsURL)
	}
	if cfg.Bootstrap.ConnectRetries != 60 {
		t.Errorf("ConnectRetries = %d, want 60", cfg.Bootstrap.ConnectRetries)
	}
	if cfg.Bootstrap.RetryDelay != 3*time.Second {
		t.Errorf("RetryDelay = %v, want 3s", cfg.Bootstrap.RetryDelay)
	}
	if !strings.Contains(cfg.App.Title, "STAC API") {
		t.Errorf("unexpected default title %q", cfg.App.Title)
	}
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.App.Environment = "qa"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}

func TestValidateRejectsRelativeDocURLs(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.App.OpenAPIURL = "api"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for openapi_url without leading slash")
	}

	cfg = Defaults()
	cfg.App.DocsURL = "docs"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for docs_url without leading slash")
	}
}

func TestValidateRejectsEqualDocURLs(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.App.DocsURL = cfg.App.OpenAPIURL
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when docs_url equals openapi_url")
	}
}

func TestValidateRejectsIdleOverOpen(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Database.MaxIdleConns = cfg.Database.MaxOpenConns + 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when idle conns exceed open conns")
	}
}

func TestValidateEventsRequireURL(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Events.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when events enabled without URL")
	}

	cfg.Events.URL = "nats://localhost:4222"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with URL set: %v", err)
	}
}

func TestReaderWriterDSNHosts(t *testing.T) {
	t.Parallel()

	db := DatabaseConfig{
		User:           "stac",
		Password:       "secret",
		Host:           "db",
		Port:           5432,
		Name:           "pgstac",
		SSLMode:        "disable",
		ConnectTimeout: 10 * time.Second,
	}

	reader := db.ReaderDSN()
	writer := db.WriterDSN()
	if reader != writer {
		t.Errorf("single host should produce equal DSNs:\n%s\n%s", reader, writer)
	}
	if !strings.Contains(reader, "db:5432") {
		t.Errorf("DSN missing host: %s", reader)
	}
	if !strings.Contains(reader, "search_path=pgstac%2Cpublic") {
		t.Errorf("DSN missing pgstac search_path: %s", reader)
	}

	db.ReadHost = "replica"
	db.WriteHost = "primary"
	if got := db.ReaderDSN(); !strings.Contains(got, "replica:5432") {
		t.Errorf("reader DSN should use replica host: %s", got)
	}
	if got := db.WriterDSN(); !strings.Contains(got, "primary:5432") {
		t.Errorf("writer DSN should use primary host: %s", got)
	}
}

func TestDSNOverrideWinsOverFields(t *testing.T) {
	t.Parallel()

	db := DatabaseConfig{
		DSN:  "postgres://u:p@elsewhere:5433/other",
		Host: "ignored",
		Port: 5432,
	}
	if got := db.ReaderDSN(); got != db.DSN {
		t.Errorf("ReaderDSN = %s, want explicit DSN", got)
	}
	if got := db.WriterDSN(); got != db.DSN {
		t.Errorf("WriterDSN = %s, want explicit DSN", got)
	}
}

func TestDSNEscapesCredentials(t *testing.T) {
	t.Parallel()

	db := DatabaseConfig{
		User:     "st@c",
		Password: "p ss:word",
		Host:     "db",
		Port:     5432,
		Name:     "pgstac",
		SSLMode:  "require",
	}
	dsn := db.WriterDSN()
	if strings.Contains(dsn, "p ss:word") {
		t.Errorf("password not escaped in DSN: %s", dsn)
	}
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("unexpected scheme: %s", dsn)
	}
}
