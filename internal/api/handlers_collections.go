// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mlavoie-cs/terrastac/internal/metrics"
	"github.com/mlavoie-cs/terrastac/internal/pgstac"
	"github.com/mlavoie-cs/terrastac/internal/search"
	"github.com/mlavoie-cs/terrastac/internal/stac"
)

// ListCollections serves GET /collections: the collection listing with
// the collection-search filters and limit/offset paging.
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	req, err := search.FromCollectionsQuery(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	metrics.RecordSearch("collections")

	l := h.linker(r)
	if h.noCollectionSearch.Load() {
		h.listAllCollections(w, r, l)
		return
	}

	body, err := req.ToPgstac()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	page, err := h.catalog.CollectionSearch(r.Context(), body)
	if err != nil {
		if missingCollectionSearch(err) {
			// PgSTAC older than 0.8. Remember and degrade to the
			// unfiltered listing for the rest of the process lifetime.
			h.noCollectionSearch.Store(true)
			h.log.Warn().Err(err).
				Msg("collection_search unavailable, serving unfiltered collection list")
			h.listAllCollections(w, r, l)
			return
		}
		writeDomainError(w, r, err)
		return
	}

	collections, err := hydrateCollections(l, page.Collections)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	links := []stac.Link{
		{Rel: stac.RelSelf, Href: stac.BaseURL(r, "") + r.URL.RequestURI(), Type: stac.MediaTypeJSON},
		l.Root(),
	}
	links = append(links, offsetPagingLinks(r, l, page.Links)...)

	returned := len(collections)
	out := stac.Collections{
		Collections:    collections,
		Links:          links,
		NumberMatched:  page.NumberMatched,
		NumberReturned: &returned,
	}
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON, out)
}

// listAllCollections is the degraded listing used when the database has
// no collection_search function. Search parameters are ignored, matching
// what the service historically did on old PgSTAC versions.
func (h *Handler) listAllCollections(w http.ResponseWriter, r *http.Request, l stac.Linker) {
	raws, err := h.catalog.AllCollections(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	collections, err := hydrateCollections(l, raws)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	returned := len(collections)
	matched := int64(returned)
	out := stac.Collections{
		Collections: collections,
		Links: []stac.Link{
			{Rel: stac.RelSelf, Href: l.Href("collections"), Type: stac.MediaTypeJSON},
			l.Root(),
		},
		NumberMatched:  &matched,
		NumberReturned: &returned,
	}
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON, out)
}

// GetCollection serves GET /collections/{collectionId}.
func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request) {
	raw, err := h.catalog.GetCollection(r.Context(), routeCollectionID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	doc, err := stac.DecodeDocument(raw)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.linker(r).HydrateCollection(doc)
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON, doc)
}

func hydrateCollections(l stac.Linker, raws []json.RawMessage) ([]stac.Document, error) {
	out := make([]stac.Document, 0, len(raws))
	for _, raw := range raws {
		doc, err := stac.DecodeDocument(raw)
		if err != nil {
			return nil, err
		}
		l.HydrateCollection(doc)
		out = append(out, doc)
	}
	return out, nil
}

// missingCollectionSearch matches the undefined-function error Postgres
// raises when collection_search() is absent.
func missingCollectionSearch(err error) bool {
	return errors.Is(err, pgstac.ErrInvalidQuery) &&
		strings.Contains(err.Error(), "collection_search")
}

// offsetPagingLinks converts the database's next/prev entries, which
// carry limit and offset in a body object, into GET links that restate
// the current query with the page position swapped in.
func offsetPagingLinks(r *http.Request, l stac.Linker, dbLinks []stac.Link) []stac.Link {
	var out []stac.Link
	for _, link := range dbLinks {
		if link.Rel != stac.RelNext && link.Rel != stac.RelPrev && link.Rel != "prev" {
			continue
		}
		rel := link.Rel
		if rel == "prev" {
			rel = stac.RelPrev
		}
		q := cloneQuery(r.URL.Query())
		q.Del("offset")
		if v, ok := paginationValue(link.Body, "offset"); ok {
			q.Set("offset", v)
		}
		if v, ok := paginationValue(link.Body, "limit"); ok {
			q.Set("limit", v)
		}
		href := l.Href("collections")
		if enc := q.Encode(); enc != "" {
			href += "?" + enc
		}
		out = append(out, stac.Link{
			Rel:    rel,
			Href:   href,
			Type:   stac.MediaTypeJSON,
			Method: http.MethodGet,
		})
	}
	return out
}

func cloneQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// paginationValue reads a numeric field out of a paging link body. The
// database serializes them as JSON numbers.
func paginationValue(body map[string]interface{}, key string) (string, bool) {
	v, ok := body[key]
	if !ok {
		return "", false
	}
	switch n := v.(type) {
	case float64:
		return strconv.FormatInt(int64(n), 10), true
	case string:
		return n, true
	default:
		return "", false
	}
}
