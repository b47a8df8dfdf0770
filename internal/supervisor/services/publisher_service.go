// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mlavoie-cs/terrastac/internal/events"
	"github.com/mlavoie-cs/terrastac/internal/logging"
)

// PublisherService ties the transaction event publisher's lifetime to the
// supervision tree: it holds the publisher open until shutdown and then
// closes it so buffered events flush before the process exits.
type PublisherService struct {
	publisher events.Publisher
	log       zerolog.Logger
}

// NewPublisherService wraps an event publisher for supervision.
func NewPublisherService(publisher events.Publisher) *PublisherService {
	return &PublisherService{
		publisher: publisher,
		log:       logging.Component("events"),
	}
}

// Serve implements suture.Service. The publisher itself is driven by the
// transaction handlers; this service only manages its shutdown.
func (s *PublisherService) Serve(ctx context.Context) error {
	<-ctx.Done()
	if err := s.publisher.Close(); err != nil {
		s.log.Warn().Err(err).Msg("event publisher close failed")
	}
	return ctx.Err()
}

func (s *PublisherService) String() string { return "event-publisher" }
