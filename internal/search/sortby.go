// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package search

import "strings"

// ParseSortBy parses the GET sortby syntax: a comma-separated field list
// where a leading "-" selects descending order and an optional "+" (or no
// prefix) ascending.
func ParseSortBy(raw string) ([]SortField, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sf := SortField{Direction: "asc"}
		switch part[0] {
		case '-':
			sf.Direction = "desc"
			sf.Field = part[1:]
		case '+':
			sf.Field = part[1:]
		default:
			sf.Field = part
		}
		// a raw "+" arrives as a space after URL decoding
		sf.Field = strings.TrimSpace(sf.Field)
		if sf.Field == "" {
			return nil, errParam("sortby", "sort field must not be empty")
		}
		out = append(out, sf)
	}
	return out, nil
}
