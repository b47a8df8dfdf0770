// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package pgstac

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// GetQueryables returns the JSON Schema of queryable properties, for one
// collection or, with an empty id, the whole catalog.
func (c *Client) GetQueryables(ctx context.Context, collectionID string) (json.RawMessage, error) {
	var raw json.RawMessage
	var err error
	if collectionID == "" {
		raw, err = c.readJSON(ctx, "get_queryables", "SELECT get_queryables()")
	} else {
		raw, err = c.readJSON(ctx, "get_queryables", "SELECT get_queryables(?::text)", collectionID)
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("get_queryables: collection %q: %w", collectionID, ErrNotFound)
	}
	return raw, nil
}

// UpdateQueryables rebuilds the queryables metadata from the discovery
// functions. minimal restricts discovery to the most common properties,
// which is much cheaper on large catalogs.
func (c *Client) UpdateQueryables(ctx context.Context, minimal bool) error {
	if minimal {
		return c.writeExec(ctx, "update_queryables", "SELECT update_queryables(TRUE)")
	}
	return c.writeExec(ctx, "update_queryables", "SELECT update_queryables()")
}

// UpdateSummariesAndExtents recomputes collection summaries and the
// spatial/temporal extents from item data.
func (c *Client) UpdateSummariesAndExtents(ctx context.Context) error {
	return c.writeExec(ctx, "update_summaries_and_extents", "SELECT update_summaries_and_extents()")
}
