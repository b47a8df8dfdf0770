// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

// Package config loads and validates application settings.
//
// Settings are layered: struct defaults, then an optional YAML file, then
// environment variables. The environment names match the ones the service
// has always been deployed with (STAC_FASTAPI_TITLE, POSTGRES_HOST_READER,
// STAC_DEFAULT_QUERYABLES, ...), so existing deployment manifests keep
// working unchanged.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Environment names recognized in AppConfig.Environment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config is the root of all runtime settings.
type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Bootstrap BootstrapConfig `koanf:"bootstrap"`
	Admin     AdminConfig     `koanf:"admin"`
	Events    EventsConfig    `koanf:"events"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// AppConfig describes the catalog identity and document routes.
type AppConfig struct {
	// Title is the catalog title shown on the landing page and in the
	// OpenAPI document.
	Title string `koanf:"title"`

	// Description is the catalog description for the same two places.
	Description string `koanf:"description"`

	// OpenAPIURL is the path serving the OpenAPI JSON document.
	OpenAPIURL string `koanf:"openapi_url"`

	// DocsURL is the path serving the interactive API documentation.
	DocsURL string `koanf:"docs_url"`

	// RouterPrefix mounts every STAC route under a path prefix. Empty
	// means the API root is "/". A trailing slash is stripped on load.
	RouterPrefix string `koanf:"router_prefix"`

	// Environment is development, staging or production. In development a
	// .env file next to the binary is read before anything else.
	Environment string `koanf:"environment"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// ShutdownTimeout bounds graceful drain on SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds PgSTAC connection settings. Reader and writer hosts
// may differ (primary/replica split); when only Host is set it serves both.
type DatabaseConfig struct {
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Host     string `koanf:"host"`

	// ReadHost and WriteHost override Host per pool when set.
	ReadHost  string `koanf:"read_host"`
	WriteHost string `koanf:"write_host"`

	Port    int    `koanf:"port" validate:"min=1,max=65535"`
	Name    string `koanf:"name"`
	SSLMode string `koanf:"ssl_mode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// DSN, when set, is used verbatim for both pools and the fields above
	// are ignored.
	DSN string `koanf:"dsn"`

	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`

	// EnableQueryLog turns on the bun query hook (also via BUNDEBUG env).
	EnableQueryLog bool `koanf:"enable_query_log"`
}

// BootstrapConfig controls startup behavior against the database.
type BootstrapConfig struct {
	// ConnectRetries is the bounded attempt count; the delay between
	// attempts is fixed, with no backoff.
	ConnectRetries int           `koanf:"connect_retries" validate:"min=1"`
	RetryDelay     time.Duration `koanf:"retry_delay"`

	// ScriptsDir holds the SQL function scripts loaded after connecting.
	ScriptsDir string `koanf:"scripts_dir"`

	// DefaultQueryables skips loading discover_queryables.sql and disables
	// the PATCH /queryables refresh route, leaving PgSTAC's stock
	// queryables in place. DefaultSummaries is the same for summaries.
	DefaultQueryables bool `koanf:"default_queryables"`
	DefaultSummaries  bool `koanf:"default_summaries"`
}

// AdminConfig protects the administrative refresh endpoints. With neither
// TokenHash nor JWTSecret set the endpoints are open, which matches how the
// service behaved historically behind a private ingress.
type AdminConfig struct {
	// TokenHash is a bcrypt hash of the static bearer token.
	TokenHash string `koanf:"token_hash"`

	// JWTSecret enables HS256 bearer JWTs as an alternative credential.
	// Tokens must carry a jti claim; each jti is accepted once.
	JWTSecret string `koanf:"jwt_secret"`

	// ReplayDir is the on-disk store remembering used jti values.
	ReplayDir string `koanf:"replay_dir"`

	// RefreshInterval rate-limits the refresh endpoints; the procedures
	// they trigger scan whole item tables.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	RefreshBurst    int           `koanf:"refresh_burst" validate:"min=1"`
}

// EventsConfig configures the optional transaction event stream. It only
// takes effect in binaries built with the nats tag.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`

	// Stream and SubjectPrefix name the JetStream stream and the subject
	// root events are published under (<prefix>.<entity>.<action>).
	Stream        string `koanf:"stream"`
	SubjectPrefix string `koanf:"subject_prefix"`

	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age" validate:"min=0"`
}

// RateLimitConfig bounds per-client request rates. Reads and writes get
// separate budgets: searches are cheap and frequent, transactions are
// not.
type RateLimitConfig struct {
	Disabled      bool          `koanf:"disabled"`
	ReadRequests  int           `koanf:"read_requests" validate:"min=1"`
	WriteRequests int           `koanf:"write_requests" validate:"min=1"`
	Window        time.Duration `koanf:"window"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Defaults returns the built-in configuration. Catalog identity defaults
// match the deployment this service was written for.
func Defaults() *Config {
	return &Config{
		App: AppConfig{
			Title:       "Data Analytics for Canadian Climate Services STAC API",
			Description: "Searchable spatiotemporal metadata describing climate and Earth observation datasets.",
			OpenAPIURL:  "/api",
			DocsURL:     "/api.html",
			Environment: EnvProduction,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			User:            "pgstac",
			Password:        "pgstac",
			Host:            "localhost",
			Port:            5432,
			Name:            "pgstac",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnectTimeout:  10 * time.Second,
		},
		Bootstrap: BootstrapConfig{
			ConnectRetries: 60,
			RetryDelay:     3 * time.Second,
			ScriptsDir:     "scripts",
		},
		Admin: AdminConfig{
			ReplayDir:       "data/admin-replay",
			RefreshInterval: 30 * time.Second,
			RefreshBurst:    1,
		},
		Events: EventsConfig{
			Stream:        "STAC_TX",
			SubjectPrefix: "stac.tx",
			MaxReconnects: 10,
			ReconnectWait: 2 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
			MaxAge:         300,
		},
		RateLimit: RateLimitConfig{
			ReadRequests:  600,
			WriteRequests: 120,
			Window:        time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks cross-field constraints the struct tags cannot express.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("app.environment: unknown environment %q", c.App.Environment)
	}

	for name, p := range map[string]string{
		"app.openapi_url": c.App.OpenAPIURL,
		"app.docs_url":    c.App.DocsURL,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s: must start with /", name)
		}
	}
	if c.App.OpenAPIURL == c.App.DocsURL {
		return fmt.Errorf("app.docs_url: must differ from app.openapi_url")
	}

	if c.App.RouterPrefix != "" && !strings.HasPrefix(c.App.RouterPrefix, "/") {
		return fmt.Errorf("app.router_prefix: must start with /")
	}

	if c.Database.DSN != "" {
		if _, err := url.Parse(c.Database.DSN); err != nil {
			return fmt.Errorf("database.dsn: %w", err)
		}
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns: exceeds max_open_conns")
	}

	if c.Bootstrap.RetryDelay <= 0 {
		return fmt.Errorf("bootstrap.retry_delay: must be positive")
	}

	if c.Events.Enabled && c.Events.URL == "" {
		return fmt.Errorf("events.url: required when events are enabled")
	}

	if !c.RateLimit.Disabled && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window: must be positive")
	}

	return nil
}

// ReaderDSN returns the connection string for the read pool.
func (c *DatabaseConfig) ReaderDSN() string {
	return c.dsn(c.hostFor(c.ReadHost))
}

// WriterDSN returns the connection string for the write pool.
func (c *DatabaseConfig) WriterDSN() string {
	return c.dsn(c.hostFor(c.WriteHost))
}

func (c *DatabaseConfig) hostFor(override string) string {
	if override != "" {
		return override
	}
	return c.Host
}

func (c *DatabaseConfig) dsn(host string) string {
	if c.DSN != "" {
		return c.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", host, c.Port),
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	q.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	// PgSTAC functions live in the pgstac schema.
	q.Set("search_path", "pgstac,public")
	q.Set("application_name", "terrastac")
	u.RawQuery = q.Encode()
	return u.String()
}

// IsDevelopment reports whether the development environment is configured.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}
