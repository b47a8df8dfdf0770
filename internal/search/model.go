// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

// Package search defines the STAC search request model shared by the
// /search, /collections and /collections/{id}/items endpoints, and its
// normalization into the jsonb body PgSTAC's search() function accepts.
//
// Parsing is strict about structure (types, ranges, mutual exclusions) and
// hands everything semantic (CQL2 evaluation, free-text matching, sort
// execution) to the database.
package search

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Limits mirror the framework the service replaced: 10 results by default,
// hard cap of 10000 per page.
const (
	DefaultLimit = 10
	MaxLimit     = 10000
)

// Error is a request-model violation; handlers map it to a 400 with the
// offending parameter named.
type Error struct {
	Param  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

func errParam(param, format string, args ...interface{}) *Error {
	return &Error{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// SortField is one sortby entry.
type SortField struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// Fields selects which item fields search responses include or omit.
type Fields struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Request is the normalized search request. Zero values mean "absent".
type Request struct {
	Collections []string        `json:"collections,omitempty"`
	IDs         []string        `json:"ids,omitempty"`
	BBox        []float64       `json:"bbox,omitempty"`
	Intersects  json.RawMessage `json:"intersects,omitempty"`
	Datetime    string          `json:"datetime,omitempty"`
	Limit       int             `json:"limit,omitempty"`
	Query       json.RawMessage `json:"query,omitempty"`
	SortBy      []SortField     `json:"sortby,omitempty"`
	Fields      *Fields         `json:"fields,omitempty"`
	Filter      json.RawMessage `json:"filter,omitempty"`
	FilterLang  string          `json:"filter-lang,omitempty"`
	FreeText    FreeText        `json:"q,omitempty"`
	Token       string          `json:"token,omitempty"`

	// Offset pages collection search, which counts rows instead of using
	// item-style tokens. Item surfaces never set it.
	Offset int `json:"offset,omitempty"`
}

// Validate checks cross-field constraints after parsing.
func (r *Request) Validate() error {
	if len(r.BBox) > 0 && len(r.Intersects) > 0 {
		return errParam("bbox", "bbox and intersects are mutually exclusive")
	}
	if r.Limit < 0 {
		return errParam("limit", "must be a positive integer")
	}
	if r.Limit > MaxLimit {
		return errParam("limit", "must not exceed %d", MaxLimit)
	}
	if r.Offset < 0 {
		return errParam("offset", "must not be negative")
	}
	for _, s := range r.SortBy {
		if s.Field == "" {
			return errParam("sortby", "sort field must not be empty")
		}
		if s.Direction != "asc" && s.Direction != "desc" {
			return errParam("sortby", "direction must be asc or desc, got %q", s.Direction)
		}
	}
	if r.Token != "" {
		if err := ValidateToken(r.Token); err != nil {
			return err
		}
	}
	return nil
}

// ToPgstac renders the request as the search() jsonb body. Only present
// fields appear; limit is defaulted here so the database sees an explicit
// page size.
func (r *Request) ToPgstac() (json.RawMessage, error) {
	body := map[string]interface{}{}

	if len(r.Collections) > 0 {
		body["collections"] = r.Collections
	}
	if len(r.IDs) > 0 {
		body["ids"] = r.IDs
	}
	if len(r.BBox) > 0 {
		body["bbox"] = r.BBox
	}
	if len(r.Intersects) > 0 {
		body["intersects"] = r.Intersects
	}
	if r.Datetime != "" {
		body["datetime"] = r.Datetime
	}

	limit := r.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	body["limit"] = limit

	if len(r.Query) > 0 {
		body["query"] = r.Query
	}
	if len(r.SortBy) > 0 {
		body["sortby"] = r.SortBy
	}
	if r.Fields != nil {
		body["fields"] = r.Fields
	}
	if len(r.Filter) > 0 {
		body["filter"] = r.Filter
		lang := r.FilterLang
		if lang == "" {
			lang = FilterLangJSON
		}
		body["filter-lang"] = lang
	}
	if len(r.FreeText) > 0 {
		body["q"] = r.FreeText.Serialize()
	}
	if r.Token != "" {
		body["token"] = r.Token
	}
	if r.Offset > 0 {
		body["offset"] = r.Offset
	}

	out, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}
	return out, nil
}

// ValidateToken checks the opaque paging token shape. Tokens come from
// PgSTAC's search responses and always carry a direction prefix.
func ValidateToken(token string) error {
	if len(token) > 5 && token[:5] == "next:" {
		return nil
	}
	if len(token) > 5 && token[:5] == "prev:" {
		return nil
	}
	return errParam("token", "must start with next: or prev:")
}
