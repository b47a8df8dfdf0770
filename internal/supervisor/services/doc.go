// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

/*
Package services provides suture.Service wrappers for Terrastac components.

Each wrapper translates a component lifecycle (ListenAndServe, bounded
retry loops, run-until-canceled monitors) into suture's context-aware
Serve pattern and identifies itself through fmt.Stringer so supervisor
logs name the child rather than its type.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Drains in-flight requests under a bounded shutdown timeout

Bootstrap (BootstrapService):
  - One-shot: waits for PgSTAC, then applies the discovery functions
  - Returns suture.ErrDoNotRestart in every terminal outcome so a
    database that never comes up leaves the API serving degraded
    instead of crash-looping the tree

DB Monitor (DBMonitorService):
  - Runs the pgstac pool monitor for the life of the process
  - Feeds the readiness probe and the pool gauges

Event Publisher (PublisherService):
  - Holds the transaction event publisher open until shutdown
  - Closes it on cancellation so buffered events flush

# Error Handling

Return values determine supervisor behavior:

	nil                      -> stopped cleanly, restarts
	error                    -> crashed, restarts with backoff
	ctx.Err()                -> shutdown requested, normal termination
	suture.ErrDoNotRestart   -> one-shot complete, removed from tree
*/
package services
