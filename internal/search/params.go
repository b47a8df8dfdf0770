// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package search

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mlavoie-cs/terrastac/internal/search/cql2"
)

// Filter language identifiers. GET requests default to text, POST bodies
// to JSON; both are normalized to cql2-json before reaching the database.
const (
	FilterLangText = "cql2-text"
	FilterLangJSON = "cql2-json"
)

// FromItemSearchQuery parses GET /search parameters. Parameters outside
// the item-search surface are ignored.
func FromItemSearchQuery(q url.Values) (*Request, error) {
	req := &Request{}
	req.Collections = splitParam(q.Get("collections"))
	req.IDs = splitParam(q.Get("ids"))

	if err := parseSharedQuery(req, q); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(q.Get("intersects")); raw != "" {
		geom := json.RawMessage(raw)
		if err := ValidateIntersects(geom); err != nil {
			return nil, err
		}
		req.Intersects = geom
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// FromItemsQuery parses GET /collections/{id}/items parameters. The
// collection is fixed by the path, so collections, ids and intersects are
// not read.
func FromItemsQuery(collectionID string, q url.Values) (*Request, error) {
	req := &Request{Collections: []string{collectionID}}
	if err := parseSharedQuery(req, q); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// FromCollectionsQuery parses GET /collections parameters for collection
// search. The surface matches item search minus item-only parameters,
// plus offset: collection_search pages by row count, not by token.
func FromCollectionsQuery(q url.Values) (*Request, error) {
	req := &Request{}
	if err := parseSharedQuery(req, q); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(q.Get("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return nil, errParam("offset", "must be a non-negative integer, got %q", raw)
		}
		req.Offset = offset
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// parseSharedQuery handles the parameters common to all three GET
// surfaces: bbox, datetime, limit, query, sortby, fields, q, filter and
// token.
func parseSharedQuery(req *Request, q url.Values) error {
	var err error

	if req.BBox, err = ParseBBox(q.Get("bbox")); err != nil {
		return err
	}
	if req.Datetime, err = ParseDatetime(q.Get("datetime")); err != nil {
		return err
	}

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return errParam("limit", "must be a positive integer, got %q", raw)
		}
		req.Limit = limit
	}

	if raw := strings.TrimSpace(q.Get("query")); raw != "" {
		if !isJSONObject(raw) {
			return errParam("query", "must be a JSON object")
		}
		req.Query = json.RawMessage(raw)
	}

	if req.SortBy, err = ParseSortBy(q.Get("sortby")); err != nil {
		return err
	}
	if req.Fields, err = ParseFields(q.Get("fields")); err != nil {
		return err
	}
	req.FreeText = parseFreeTextParam(q.Get("q"))

	if raw := strings.TrimSpace(q.Get("filter")); raw != "" {
		lang := strings.TrimSpace(q.Get("filter-lang"))
		if lang == "" {
			lang = FilterLangText
		}
		switch lang {
		case FilterLangText:
			encoded, err := cql2.TextToJSON(raw)
			if err != nil {
				return errParam("filter", "invalid cql2-text: %v", err)
			}
			req.Filter = encoded
		case FilterLangJSON:
			if err := cql2.ValidateJSON(json.RawMessage(raw)); err != nil {
				return errParam("filter", "invalid cql2-json: %v", err)
			}
			req.Filter = json.RawMessage(raw)
		default:
			return errParam("filter-lang", "unsupported language %q", lang)
		}
		req.FilterLang = FilterLangJSON
	}

	req.Token = strings.TrimSpace(q.Get("token"))
	return nil
}

// splitParam splits a comma-separated parameter, dropping empty entries.
func splitParam(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isJSONObject(raw string) bool {
	var probe map[string]json.RawMessage
	return json.Unmarshal([]byte(raw), &probe) == nil
}
