// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/mlavoie-cs/terrastac/internal/logging"
	"github.com/mlavoie-cs/terrastac/internal/validation"
)

// DefaultConfigPaths are checked in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config/config.yaml",
	"/etc/terrastac/config.yaml",
}

// envToPath maps accepted environment variables to config paths. Variables
// not listed here are ignored, so unrelated environment noise never leaks
// into settings. STAC_DEFAULT_* are flags; the deployed convention is the
// value "1".
var envToPath = map[string]string{
	"APP_HOST":    "server.host",
	"APP_PORT":    "server.port",
	"ENVIRONMENT": "app.environment",

	"OPENAPI_URL":              "app.openapi_url",
	"DOCS_URL":                 "app.docs_url",
	"ROUTER_PREFIX":            "app.router_prefix",
	"STAC_FASTAPI_TITLE":       "app.title",
	"STAC_FASTAPI_DESCRIPTION": "app.description",

	"STAC_DEFAULT_QUERYABLES":  "bootstrap.default_queryables",
	"STAC_DEFAULT_SUMMARIES":   "bootstrap.default_summaries",
	"STAC_SCRIPTS_DIR":         "bootstrap.scripts_dir",
	"STAC_CONNECT_RETRIES":     "bootstrap.connect_retries",
	"STAC_CONNECT_RETRY_DELAY": "bootstrap.retry_delay",

	"POSTGRES_USER":        "database.user",
	"POSTGRES_PASS":        "database.password",
	"POSTGRES_PASSWORD":    "database.password",
	"POSTGRES_HOST":        "database.host",
	"POSTGRES_HOST_READER": "database.read_host",
	"POSTGRES_HOST_WRITER": "database.write_host",
	"POSTGRES_PORT":        "database.port",
	"POSTGRES_DBNAME":      "database.name",
	"POSTGRES_SSLMODE":     "database.ssl_mode",
	"DATABASE_URL":         "database.dsn",
	"DB_MIN_CONN_SIZE":     "database.max_idle_conns",
	"DB_MAX_CONN_SIZE":     "database.max_open_conns",

	"LOG_LEVEL":  "logging.level",
	"LOG_FORMAT": "logging.format",

	"NATS_URL":            "events.url",
	"STAC_EVENTS_ENABLED": "events.enabled",

	"ADMIN_TOKEN_HASH":     "admin.token_hash",
	"ADMIN_JWT_SECRET":     "admin.jwt_secret",
	"ADMIN_REPLAY_DIR":     "admin.replay_dir",
	"CORS_ALLOWED_ORIGINS": "cors.allowed_origins",
}

// Load builds the runtime configuration: defaults, then the config file if
// one is found, then environment variables. The result is validated.
func Load() (*Config, error) {
	// A .env file is a development convenience; in production the
	// orchestrator owns the environment.
	if os.Getenv("ENVIRONMENT") != EnvProduction {
		if err := godotenv.Load(); err == nil {
			logging.Debug().Msg("loaded .env file")
		}
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		logging.Info().Str("path", path).Msg("loaded config file")
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	normalize(cfg)

	if verr := validation.ValidateStruct(cfg); verr != nil {
		return nil, fmt.Errorf("invalid config: %w", verr)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func envTransform(key string) string {
	return envToPath[key]
}

// normalize applies the same trimming the service has always done on its
// environment inputs.
func normalize(cfg *Config) {
	cfg.App.RouterPrefix = strings.TrimRight(cfg.App.RouterPrefix, "/")
	cfg.App.Environment = strings.ToLower(strings.TrimSpace(cfg.App.Environment))
	if cfg.App.Environment == "" {
		cfg.App.Environment = EnvProduction
	}
}

// findConfigFile returns the first existing config file, preferring an
// explicit CONFIG_PATH.
func findConfigFile() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		logging.Warn().Str("path", path).Msg("CONFIG_PATH set but file not found")
		return ""
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// WatchConfigFile re-reads path on change and invokes onChange with the
// freshly loaded configuration. Invalid intermediate states are logged and
// skipped. Used for runtime log-level adjustment.
func WatchConfigFile(path string, onChange func(*Config)) error {
	f := file.Provider(path)
	return f.Watch(func(_ interface{}, err error) {
		if err != nil {
			logging.Err(err).Str("path", path).Msg("config watch error")
			return
		}
		cfg, err := Load()
		if err != nil {
			logging.Err(err).Str("path", path).Msg("ignoring config reload")
			return
		}
		logging.Info().Str("path", path).Msg("config reloaded")
		onChange(cfg)
	})
}
