// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package api

import (
	"net/http"

	"github.com/mlavoie-cs/terrastac/internal/metrics"
	"github.com/mlavoie-cs/terrastac/internal/search"
	"github.com/mlavoie-cs/terrastac/internal/stac"
)

// ListItems serves GET /collections/{collectionId}/items: a search scoped
// to one collection, with token paging.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	collectionID := routeCollectionID(r)

	// An unknown collection is a 404, not an empty result.
	if _, err := h.catalog.GetCollection(r.Context(), collectionID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	req, err := search.FromItemsQuery(collectionID, r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	metrics.RecordSearch("items")

	l := h.linker(r)
	links := []stac.Link{
		{Rel: stac.RelSelf, Href: stac.BaseURL(r, "") + r.URL.RequestURI(), Type: stac.MediaTypeGeoJSON},
		{Rel: stac.RelParent, Href: l.Href("collections", collectionID), Type: stac.MediaTypeJSON},
		{Rel: stac.RelCollection, Href: l.Href("collections", collectionID), Type: stac.MediaTypeJSON},
		l.Root(),
	}
	h.executeSearch(w, r, req, nil, links)
}

// GetItem serves GET /collections/{collectionId}/items/{itemId}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	raw, err := h.catalog.GetItem(r.Context(), routeCollectionID(r), routeItemID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	doc, err := stac.DecodeDocument(raw)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.linker(r).HydrateItem(doc)
	writeJSON(w, http.StatusOK, stac.MediaTypeGeoJSON, doc)
}
