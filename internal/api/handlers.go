// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package api

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mlavoie-cs/terrastac/internal/config"
	"github.com/mlavoie-cs/terrastac/internal/events"
	"github.com/mlavoie-cs/terrastac/internal/logging"
	"github.com/mlavoie-cs/terrastac/internal/pgstac"
	"github.com/mlavoie-cs/terrastac/internal/stac"
)

// maxBodyBytes bounds transaction and search bodies. Bulk inserts are the
// largest legitimate payloads; anything bigger than this should go through
// pypgstac loading instead of the HTTP API.
const maxBodyBytes = 64 << 20

// Catalog is the PgSTAC surface the handlers call. *pgstac.Client
// implements it; handler tests substitute an in-memory fake.
type Catalog interface {
	Search(ctx context.Context, body json.RawMessage) (*pgstac.SearchResult, error)

	CollectionSearch(ctx context.Context, body json.RawMessage) (*pgstac.CollectionPage, error)
	AllCollections(ctx context.Context) ([]json.RawMessage, error)
	GetCollection(ctx context.Context, id string) (json.RawMessage, error)
	CreateCollection(ctx context.Context, collection json.RawMessage) error
	UpdateCollection(ctx context.Context, collection json.RawMessage) error
	DeleteCollection(ctx context.Context, id string) error

	GetItem(ctx context.Context, collectionID, itemID string) (json.RawMessage, error)
	CreateItem(ctx context.Context, item json.RawMessage) error
	CreateItems(ctx context.Context, items []json.RawMessage) error
	UpdateItem(ctx context.Context, item json.RawMessage) error
	DeleteItem(ctx context.Context, collectionID, itemID string) error

	GetQueryables(ctx context.Context, collectionID string) (json.RawMessage, error)
	UpdateQueryables(ctx context.Context, minimal bool) error
	UpdateSummariesAndExtents(ctx context.Context) error

	Ping(ctx context.Context) error
}

// Handler owns the request handlers for every route group.
type Handler struct {
	catalog Catalog
	cfg     *config.Config
	events  events.Publisher
	log     zerolog.Logger

	conformsTo []string
	openapi    []byte
	started    time.Time

	// noCollectionSearch flips when the database reports that
	// collection_search() does not exist (PgSTAC older than 0.8). From
	// then on /collections degrades to the unfiltered listing.
	noCollectionSearch atomic.Bool
}

// NewHandler wires the handlers to their collaborators. publisher may be
// nil when the event stream is disabled.
func NewHandler(catalog Catalog, cfg *config.Config, publisher events.Publisher) *Handler {
	h := &Handler{
		catalog:    catalog,
		cfg:        cfg,
		events:     publisher,
		log:        logging.Component("api"),
		conformsTo: stac.AllConformance(),
		started:    time.Now(),
	}
	h.openapi = BuildOpenAPI(cfg)
	return h
}

// linker builds absolute hrefs for the requesting client.
func (h *Handler) linker(r *http.Request) stac.Linker {
	return stac.NewLinker(stac.BaseURL(r, h.cfg.App.RouterPrefix))
}

// Route parameter accessors. chi guarantees these are set on matched
// routes; empty values only show up in handler unit tests that skip the
// router, and those surface as not-found from the database.
func routeCollectionID(r *http.Request) string {
	return chi.URLParam(r, "collectionId")
}

func routeItemID(r *http.Request) string {
	return chi.URLParam(r, "itemId")
}

// decodeBodyDocument reads a bounded request body into a Document.
func decodeBodyDocument(w http.ResponseWriter, r *http.Request) (stac.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var doc stac.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return doc, nil
}

// publishTransaction emits a transaction event. Publishing is best
// effort: the database commit already happened, so failures are logged
// and the client still gets its success response.
func (h *Handler) publishTransaction(ctx context.Context, entity, action, collectionID, itemID string) {
	if h.events == nil {
		return
	}
	event := events.NewEvent(entity, action, collectionID, itemID)
	if err := h.events.PublishTransaction(ctx, event); err != nil {
		h.log.Warn().
			Err(err).
			Str("entity", entity).
			Str("action", action).
			Str("collection", collectionID).
			Msg("transaction event publish failed")
	}
}
