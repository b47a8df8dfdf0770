// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

/*
Package pgstac is the client layer for a PostgreSQL database running the
PgSTAC schema. All catalog logic lives in the database as SQL functions;
this package passes jsonb in, gets jsonb out, and turns driver errors into
the domain taxonomy the API layer maps to status codes.

Two pools are held: reads go to the reader host (which may be a replica),
writes and admin procedures to the writer. The read path runs behind a
circuit breaker so a dead database sheds load quickly instead of stacking
timeouts.

The DSN pins search_path to "pgstac, public", so functions are called
unqualified.
*/
package pgstac
