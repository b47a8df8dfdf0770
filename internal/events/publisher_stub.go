// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

//go:build !nats

package events

import (
	"fmt"

	"github.com/mlavoie-cs/terrastac/internal/config"
)

// NewPublisher reports that this binary was built without event support.
// Callers fall back to NewNop.
func NewPublisher(config.EventsConfig) (Publisher, error) {
	return nil, fmt.Errorf("event stream not available: build with -tags=nats")
}
