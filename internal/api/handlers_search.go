// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mlavoie-cs/terrastac/internal/metrics"
	"github.com/mlavoie-cs/terrastac/internal/pgstac"
	"github.com/mlavoie-cs/terrastac/internal/search"
	"github.com/mlavoie-cs/terrastac/internal/stac"
)

// SearchGET serves GET /search.
func (h *Handler) SearchGET(w http.ResponseWriter, r *http.Request) {
	req, err := search.FromItemSearchQuery(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	metrics.RecordSearch("search")
	h.executeSearch(w, r, req, nil, nil)
}

// SearchPOST serves POST /search. The decoded body is kept around so
// paging links can restate it with the token swapped in.
func (h *Handler) SearchPOST(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidation, "read body: "+err.Error())
		return
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	req, err := search.DecodeBody(bytes.NewReader(raw))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	postBody := map[string]interface{}{}
	if err := json.Unmarshal(raw, &postBody); err != nil {
		postBody = map[string]interface{}{}
	}
	metrics.RecordSearch("search")
	h.executeSearch(w, r, req, postBody, nil)
}

// executeSearch runs the search and writes the FeatureCollection.
// postBody is nil for GET requests. extraLinks, when set, lead the links
// array in place of the default search self link.
func (h *Handler) executeSearch(w http.ResponseWriter, r *http.Request, req *search.Request, postBody map[string]interface{}, extraLinks []stac.Link) {
	body, err := req.ToPgstac()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := h.catalog.Search(r.Context(), body)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	l := h.linker(r)
	features := make([]json.RawMessage, 0, len(result.Features))
	for _, rawFeature := range result.Features {
		hydrated, err := hydrateFeature(l, rawFeature)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		features = append(features, hydrated)
	}

	links := extraLinks
	if links == nil {
		links = []stac.Link{
			{Rel: stac.RelSelf, Href: stac.BaseURL(r, "") + r.URL.RequestURI(), Type: stac.MediaTypeGeoJSON},
			l.Root(),
		}
	}
	links = append(links, tokenPagingLinks(r, result, postBody)...)

	returned := len(features)
	out := stac.ItemCollection{
		Type:           "FeatureCollection",
		Features:       features,
		Links:          links,
		NumberReturned: &returned,
	}
	if result.Context != nil {
		out.NumberMatched = result.Context.Matched
	}
	writeJSON(w, http.StatusOK, stac.MediaTypeGeoJSON, out)
}

// hydrateFeature injects canonical links into one search result feature.
// Features stripped of id or collection by the fields extension pass
// through untouched, since their links cannot be computed.
func hydrateFeature(l stac.Linker, raw json.RawMessage) (json.RawMessage, error) {
	doc, err := stac.DecodeDocument(raw)
	if err != nil {
		return nil, err
	}
	if doc.ID() == "" || doc.CollectionID() == "" {
		return raw, nil
	}
	l.HydrateItem(doc)
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return encoded, nil
}

// tokenPagingLinks converts the bare next/prev tokens of a search result
// into paging links. GET links restate the query string with the
// direction-prefixed token merged in; POST links carry the original body
// with the token swapped, the way the toolkit this service replaced
// shaped them.
func tokenPagingLinks(r *http.Request, result *pgstac.SearchResult, postBody map[string]interface{}) []stac.Link {
	var out []stac.Link

	add := func(rel, prefix, token string) {
		if token == "" {
			return
		}
		full := prefix + ":" + token
		if postBody == nil {
			q := cloneQuery(r.URL.Query())
			q.Set("token", full)
			out = append(out, stac.Link{
				Rel:    rel,
				Href:   stac.BaseURL(r, "") + r.URL.Path + "?" + q.Encode(),
				Type:   stac.MediaTypeGeoJSON,
				Method: http.MethodGet,
			})
			return
		}
		body := make(map[string]interface{}, len(postBody)+1)
		for k, v := range postBody {
			body[k] = v
		}
		body["token"] = full
		out = append(out, stac.Link{
			Rel:    rel,
			Href:   stac.BaseURL(r, "") + r.URL.Path,
			Type:   stac.MediaTypeGeoJSON,
			Method: http.MethodPost,
			Body:   body,
		})
	}

	add(stac.RelNext, "next", result.Next)
	add(stac.RelPrev, "prev", result.Prev)
	return out
}
