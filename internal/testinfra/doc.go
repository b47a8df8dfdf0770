// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

// Package testinfra manages Docker containers for integration tests.
//
// The PgstacContainer runs the same PgSTAC image the service is deployed
// against, so integration tests exercise real pgstac.* stored procedures
// instead of mocks:
//
//	func TestSearch(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//
//	    ctx := context.Background()
//	    db, err := testinfra.NewPgstacContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, db.Container)
//
//	    client, err := pgstac.Open(db.DatabaseConfig())
//	    // ...
//	}
//
// Everything here sits behind the integration build tag; the default
// test run never touches Docker. Tests skip, rather than fail, when no
// daemon is reachable.
package testinfra
