// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

/*
Package metrics provides Prometheus metrics collection and export for
observability.

This package instruments the service with the Prometheus client library,
exposing metrics for monitoring performance, errors and system health.

# Overview

The package provides metrics for:
  - HTTP request latency, throughput and in-flight count
  - PgSTAC procedure latency and error rates per function
  - Read/write connection pool utilization
  - Circuit breaker state transitions
  - Database bootstrap progress and SQL script loading
  - Transaction outcomes and admin refresh procedures
  - Event publishing

# Usage

Metrics register themselves on the default registry at package load via
promauto. The HTTP handler from promhttp serves them on /metrics, outside
the API router prefix.

Record helpers keep label handling in one place. Callers fold their error
into one of the ErrType constants first:

	start := time.Now()
	raw, err := run(ctx)
	metrics.RecordQuery("search", time.Since(start), label(err))

Label cardinality is bounded: route labels use the chi route pattern, not
the raw URL, and error labels use the domain taxonomy, not error text.
*/
package metrics
