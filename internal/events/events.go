// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

// Package events streams catalog transactions to NATS JetStream. The
// stream is optional twice over: binaries need the nats build tag, and
// tagged binaries still need events.enabled in config. Everything else
// talks to the Publisher interface, so the API layer has no build-tag
// awareness.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions recorded on the stream.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entity kinds recorded on the stream.
const (
	EntityItem       = "item"
	EntityCollection = "collection"
)

// Event describes one committed catalog transaction.
type Event struct {
	// ID deduplicates redeliveries; it becomes the Nats-Msg-Id.
	ID string `json:"id"`

	Entity string `json:"entity"`
	Action string `json:"action"`

	// Collection is always set; Item only for item transactions.
	Collection string `json:"collection"`
	Item       string `json:"item,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds a transaction event with a fresh ID.
func NewEvent(entity, action, collection, item string) Event {
	return Event{
		ID:         uuid.New().String(),
		Entity:     entity,
		Action:     action,
		Collection: collection,
		Item:       item,
		Timestamp:  time.Now().UTC(),
	}
}

// Publisher delivers transaction events. Implementations must tolerate
// being called after the transaction committed: publishing failure is
// logged, never surfaced to the API client.
type Publisher interface {
	PublishTransaction(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. It backs deployments without the nats
// build tag or with events disabled.
type NopPublisher struct{}

// NewNop returns a publisher that discards events.
func NewNop() NopPublisher { return NopPublisher{} }

func (NopPublisher) PublishTransaction(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
