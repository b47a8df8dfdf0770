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

// GetItem fetches one item. PgSTAC has no single-item getter, so this is
// an exact-id search scoped to the collection.
func (c *Client) GetItem(ctx context.Context, collectionID, itemID string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]interface{}{
		"ids":         []string{itemID},
		"collections": []string{collectionID},
		"limit":       1,
	})
	if err != nil {
		return nil, fmt.Errorf("encode item lookup: %w", err)
	}
	result, err := c.Search(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(result.Features) == 0 {
		return nil, fmt.Errorf("item %s/%s: %w", collectionID, itemID, ErrNotFound)
	}
	return result.Features[0], nil
}

// CreateItem inserts a single item document.
func (c *Client) CreateItem(ctx context.Context, item json.RawMessage) error {
	return c.writeExec(ctx, "create_item", "SELECT create_item(?::text::jsonb)", string(item))
}

// CreateItems inserts a batch of item documents in one call.
func (c *Client) CreateItems(ctx context.Context, items []json.RawMessage) error {
	batch, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode item batch: %w", err)
	}
	return c.writeExec(ctx, "create_items", "SELECT create_items(?::text::jsonb)", string(batch))
}

// UpdateItem replaces an item document.
func (c *Client) UpdateItem(ctx context.Context, item json.RawMessage) error {
	return c.writeExec(ctx, "update_item", "SELECT update_item(?::text::jsonb)", string(item))
}

// DeleteItem removes one item from a collection.
func (c *Client) DeleteItem(ctx context.Context, collectionID, itemID string) error {
	return c.writeExec(ctx, "delete_item", "SELECT delete_item(?::text, ?::text)", itemID, collectionID)
}
