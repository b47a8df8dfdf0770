// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package pgstac

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/mlavoie-cs/terrastac/internal/metrics"
)

// readJSON calls a jsonb-returning function on the read pool through the
// circuit breaker. A SQL NULL result comes back as a nil RawMessage.
func (c *Client) readJSON(ctx context.Context, function, query string, args ...interface{}) (json.RawMessage, error) {
	start := time.Now()
	raw, err := c.breaker.Execute(func() (json.RawMessage, error) {
		var out []byte
		if err := c.read.QueryRowContext(ctx, query, args...).Scan(&out); err != nil {
			return nil, err
		}
		return json.RawMessage(out), nil
	})
	err = mapError(err)
	metrics.RecordQuery(function, time.Since(start), ErrorLabel(err))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", function, err)
	}
	return raw, nil
}

// writeJSON calls a jsonb-returning function on the write pool. Writes
// bypass the breaker: a failed write must surface, not shed.
func (c *Client) writeJSON(ctx context.Context, function, query string, args ...interface{}) (json.RawMessage, error) {
	start := time.Now()
	var out []byte
	err := mapError(c.write.QueryRowContext(ctx, query, args...).Scan(&out))
	metrics.RecordQuery(function, time.Since(start), ErrorLabel(err))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", function, err)
	}
	return json.RawMessage(out), nil
}

// writeExec calls a void function on the write pool.
func (c *Client) writeExec(ctx context.Context, function, query string, args ...interface{}) error {
	start := time.Now()
	_, err := c.write.ExecContext(ctx, query, args...)
	err = mapError(err)
	metrics.RecordQuery(function, time.Since(start), ErrorLabel(err))
	if err != nil {
		return fmt.Errorf("%s: %w", function, err)
	}
	return nil
}
