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

// ResultContext is the paging context PgSTAC attaches to search results.
// Matched is absent when counting was skipped.
type ResultContext struct {
	Limit    int    `json:"limit,omitempty"`
	Matched  *int64 `json:"matched,omitempty"`
	Returned int    `json:"returned"`
}

// SearchResult is the jsonb returned by search(): a FeatureCollection with
// bare paging tokens. Token direction prefixes are applied by the caller.
type SearchResult struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
	Next     string            `json:"next,omitempty"`
	Prev     string            `json:"prev,omitempty"`
	Context  *ResultContext    `json:"context,omitempty"`
}

// Search runs an item search. The body is the full PgSTAC search request.
func (c *Client) Search(ctx context.Context, body json.RawMessage) (*SearchResult, error) {
	raw, err := c.readJSON(ctx, "search", "SELECT search(?::text::jsonb)", string(body))
	if err != nil {
		return nil, err
	}
	return ParseSearchResult(raw)
}

// ParseSearchResult decodes a search() response.
func ParseSearchResult(raw json.RawMessage) (*SearchResult, error) {
	var result SearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode search result: %w", err)
	}
	if result.Features == nil {
		result.Features = []json.RawMessage{}
	}
	return &result, nil
}
