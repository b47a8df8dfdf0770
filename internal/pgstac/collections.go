// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package pgstac

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/mlavoie-cs/terrastac/internal/stac"
)

// CollectionPage is the jsonb returned by collection_search(): matching
// collections plus relational links whose bodies carry limit/offset for
// the neighboring pages.
type CollectionPage struct {
	Collections    []json.RawMessage `json:"collections"`
	Links          []stac.Link       `json:"links"`
	NumberMatched  *int64            `json:"numberMatched,omitempty"`
	NumberReturned *int              `json:"numberReturned,omitempty"`
}

// CollectionSearch runs a collection search. The body is the PgSTAC
// collection_search request.
func (c *Client) CollectionSearch(ctx context.Context, body json.RawMessage) (*CollectionPage, error) {
	raw, err := c.readJSON(ctx, "collection_search", "SELECT collection_search(?::text::jsonb)", string(body))
	if err != nil {
		return nil, err
	}
	var page CollectionPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode collection search result: %w", err)
	}
	if page.Collections == nil {
		page.Collections = []json.RawMessage{}
	}
	return &page, nil
}

// AllCollections returns every collection without paging.
func (c *Client) AllCollections(ctx context.Context) ([]json.RawMessage, error) {
	raw, err := c.readJSON(ctx, "all_collections", "SELECT all_collections()")
	if err != nil {
		return nil, err
	}
	var collections []json.RawMessage
	if err := json.Unmarshal(raw, &collections); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}
	return collections, nil
}

// GetCollection fetches one collection document. A NULL result means the
// collection does not exist.
func (c *Client) GetCollection(ctx context.Context, id string) (json.RawMessage, error) {
	raw, err := c.readJSON(ctx, "get_collection", "SELECT get_collection(?::text)", id)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("get_collection: collection %q: %w", id, ErrNotFound)
	}
	return raw, nil
}

// CreateCollection inserts a collection document.
func (c *Client) CreateCollection(ctx context.Context, collection json.RawMessage) error {
	return c.writeExec(ctx, "create_collection", "SELECT create_collection(?::text::jsonb)", string(collection))
}

// UpdateCollection replaces a collection document.
func (c *Client) UpdateCollection(ctx context.Context, collection json.RawMessage) error {
	return c.writeExec(ctx, "update_collection", "SELECT update_collection(?::text::jsonb)", string(collection))
}

// DeleteCollection removes a collection and, through PgSTAC's partition
// handling, every item in it.
func (c *Client) DeleteCollection(ctx context.Context, id string) error {
	return c.writeExec(ctx, "delete_collection", "SELECT delete_collection(?::text)", id)
}
