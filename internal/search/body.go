// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package search

import (
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mlavoie-cs/terrastac/internal/search/cql2"
)

var geometryTypes = map[string]bool{
	"Point":              true,
	"MultiPoint":         true,
	"LineString":         true,
	"MultiLineString":    true,
	"Polygon":            true,
	"MultiPolygon":       true,
	"GeometryCollection": true,
}

// DecodeBody parses a POST /search body. Unknown members are preserved by
// ToPgstac only when they belong to the model; everything else is ignored,
// matching permissive request handling on the read path.
func DecodeBody(r io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errParam("body", "invalid JSON: %v", err)
	}

	var err error
	if req.Datetime, err = ParseDatetime(req.Datetime); err != nil {
		return nil, err
	}
	if err := ValidateBBox(req.BBox); err != nil {
		return nil, err
	}
	if len(req.Intersects) > 0 {
		if err := ValidateIntersects(req.Intersects); err != nil {
			return nil, err
		}
	}
	if len(req.Query) > 0 && !isJSONObject(string(req.Query)) {
		return nil, errParam("query", "must be a JSON object")
	}
	if err := normalizeFilter(&req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// normalizeFilter converts a cql2-text filter carried in a JSON body (a
// string value) into cql2-json, and validates cql2-json structure.
func normalizeFilter(req *Request) error {
	if len(req.Filter) == 0 {
		req.FilterLang = ""
		return nil
	}
	lang := req.FilterLang
	if lang == "" {
		lang = FilterLangJSON
	}
	switch lang {
	case FilterLangJSON:
		if err := cql2.ValidateJSON(req.Filter); err != nil {
			return errParam("filter", "invalid cql2-json: %v", err)
		}
	case FilterLangText:
		var text string
		if err := json.Unmarshal(req.Filter, &text); err != nil {
			return errParam("filter", "cql2-text filter must be a string")
		}
		encoded, err := cql2.TextToJSON(text)
		if err != nil {
			return errParam("filter", "invalid cql2-text: %v", err)
		}
		req.Filter = encoded
	default:
		return errParam("filter-lang", "unsupported language %q", lang)
	}
	req.FilterLang = FilterLangJSON
	return nil
}

// ValidateIntersects checks that the value is a GeoJSON geometry object.
// Full coordinate validation is left to the database.
func ValidateIntersects(raw json.RawMessage) error {
	var geom struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &geom); err != nil {
		return errParam("intersects", "must be a GeoJSON geometry object")
	}
	if !geometryTypes[geom.Type] {
		return errParam("intersects", "unsupported geometry type %q", strings.TrimSpace(geom.Type))
	}
	return nil
}
