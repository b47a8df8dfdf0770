// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

/*
Package supervisor runs the server's long-lived parts under a suture v4
supervision tree.

# Overview

The tree groups services into three layers so a failure in one cannot
take down the others:

	root ("terrastac")
	├── data-layer
	│   ├── bootstrap (database connect retry + SQL function scripts, one-shot)
	│   └── db-monitor (pool gauges and connectivity probe)
	├── api-layer
	│   └── http-server
	└── messaging-layer
	    └── event-publisher (transaction event stream lifecycle)

The split encodes the service's fail-open posture: the HTTP server starts
immediately and keeps serving while the data layer is still connecting or
reconnecting. Requests that need the database fail individually and the
readiness probe reports degraded; nothing restarts the API layer for a
database problem.

# Restart behavior

Crashed services restart with suture's failure accounting: each failure
bumps a per-supervisor score that decays over FailureDecay seconds, and
once it passes FailureThreshold the supervisor backs off for
FailureBackoff before trying again. One-shot services (bootstrap) end with
suture.ErrDoNotRestart so completion is not treated as a crash.

# Shutdown

Canceling the context passed to Serve stops every service, bounded by
ShutdownTimeout per service. UnstoppedServiceReport names anything that
ignored cancellation, which main logs before exiting.

Lifecycle events (start, stop, failure, backoff) are emitted through a
log/slog logger via sutureslog; wire it to logging.NewSlogLogger so they
join the zerolog stream.
*/
package supervisor
