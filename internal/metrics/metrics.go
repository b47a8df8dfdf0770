// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stac_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stac_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stac_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Search Metrics
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stac_search_requests_total",
			Help: "Total number of search executions by surface",
		},
		[]string{"surface"}, // "search", "items", "collections"
	)

	// PgSTAC Metrics
	PgstacQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pgstac_query_duration_seconds",
			Help:    "Duration of PgSTAC procedure calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"function"},
	)

	PgstacQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgstac_query_errors_total",
			Help: "Total number of PgSTAC procedure errors",
		},
		[]string{"function", "error_type"},
	)

	PgstacPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pgstac_pool_connections",
			Help: "Connection pool utilization by pool and state",
		},
		[]string{"pool", "state"}, // pool: "read", "write"; state: "open", "in_use", "idle"
	)

	PgstacBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pgstac_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	PgstacConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgstac_connect_attempts_total",
			Help: "Total number of startup connection attempts",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	PgstacReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pgstac_ready",
			Help: "Whether the database answered the last readiness probe (1=ready)",
		},
	)

	ScriptLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgstac_script_loads_total",
			Help: "Total number of SQL function script loads",
		},
		[]string{"script", "outcome"},
	)

	// Transaction Metrics
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stac_transactions_total",
			Help: "Total number of transaction operations",
		},
		[]string{"operation", "outcome"}, // operation: "create_item", "update_collection", ...
	)

	// Admin Metrics
	AdminRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stac_admin_refresh_total",
			Help: "Total number of queryables/summaries refresh procedures",
		},
		[]string{"procedure", "outcome"},
	)

	// Event Metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stac_events_published_total",
			Help: "Total number of transaction events published",
		},
		[]string{"outcome"},
	)
)

// Error type labels for PgSTAC query errors, aligned with the domain error
// taxonomy so dashboards can separate client mistakes from outages.
const (
	ErrTypeNone       = ""
	ErrTypeNotFound   = "not_found"
	ErrTypeConflict   = "conflict"
	ErrTypeForeignKey = "foreign_key"
	ErrTypeInvalid    = "invalid_query"
	ErrTypeTimeout    = "timeout"
	ErrTypeOther      = "other"
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSearch counts a search execution on one of the three surfaces.
func RecordSearch(surface string) {
	SearchRequestsTotal.WithLabelValues(surface).Inc()
}

// RecordQuery records a PgSTAC procedure call. errType is one of the
// ErrType constants; ErrTypeNone means success.
func RecordQuery(function string, duration time.Duration, errType string) {
	PgstacQueryDuration.WithLabelValues(function).Observe(duration.Seconds())
	if errType != ErrTypeNone {
		PgstacQueryErrors.WithLabelValues(function, errType).Inc()
	}
}

// RecordConnectAttempt counts one bootstrap connection attempt.
func RecordConnectAttempt(success bool) {
	if success {
		PgstacConnectAttempts.WithLabelValues("success").Inc()
	} else {
		PgstacConnectAttempts.WithLabelValues("failure").Inc()
	}
}

// SetReady publishes the readiness probe result.
func SetReady(ready bool) {
	if ready {
		PgstacReady.Set(1)
	} else {
		PgstacReady.Set(0)
	}
}

// RecordScriptLoad counts one SQL script application.
func RecordScriptLoad(script string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ScriptLoadsTotal.WithLabelValues(script, outcome).Inc()
}

// SetBreakerState publishes a circuit breaker state change. The state
// string comes from gobreaker's State.String.
func SetBreakerState(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	PgstacBreakerState.WithLabelValues(name).Set(v)
}

// SetPoolStats publishes connection pool gauges from database/sql stats.
func SetPoolStats(pool string, stats sql.DBStats) {
	PgstacPoolConnections.WithLabelValues(pool, "open").Set(float64(stats.OpenConnections))
	PgstacPoolConnections.WithLabelValues(pool, "in_use").Set(float64(stats.InUse))
	PgstacPoolConnections.WithLabelValues(pool, "idle").Set(float64(stats.Idle))
}

// RecordTransaction counts one transaction operation.
func RecordTransaction(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	TransactionsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordAdminRefresh counts one admin refresh procedure run.
func RecordAdminRefresh(procedure string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AdminRefreshTotal.WithLabelValues(procedure, outcome).Inc()
}

// RecordEventPublished counts one transaction event publish attempt.
func RecordEventPublished(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	EventsPublishedTotal.WithLabelValues(outcome).Inc()
}
