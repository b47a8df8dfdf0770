// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package search

import "strings"

// ParseFields parses the GET fields syntax: a comma-separated list where a
// leading "-" excludes a field and an optional "+" (or no prefix) includes
// it.
func ParseFields(raw string) (*Fields, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f := &Fields{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part[0] {
		case '-':
			name := strings.TrimSpace(part[1:])
			if name == "" {
				return nil, errParam("fields", "field name must not be empty")
			}
			f.Exclude = append(f.Exclude, name)
		case '+':
			name := strings.TrimSpace(part[1:])
			if name == "" {
				return nil, errParam("fields", "field name must not be empty")
			}
			f.Include = append(f.Include, name)
		default:
			f.Include = append(f.Include, part)
		}
	}
	return f, nil
}
