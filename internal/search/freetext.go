// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package search

import (
	"strings"

	"github.com/goccy/go-json"
)

// FreeText holds the q parameter. POST bodies may send either a single
// expression string or a list of terms; a list is serialized for PgSTAC as
// the terms joined with " OR ". GET requests always arrive as one string
// and pass through untouched, so quoted phrases and advanced operators
// survive.
type FreeText []string

// UnmarshalJSON accepts "term" or ["term", ...].
func (ft *FreeText) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*ft = nil
			return nil
		}
		*ft = FreeText{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := list[:0]
	for _, term := range list {
		if term != "" {
			out = append(out, term)
		}
	}
	*ft = FreeText(out)
	return nil
}

// MarshalJSON re-emits the stored form: one element round-trips as a
// string, several as a list.
func (ft FreeText) MarshalJSON() ([]byte, error) {
	if len(ft) == 1 {
		return json.Marshal(ft[0])
	}
	return json.Marshal([]string(ft))
}

// Serialize renders the value sent to the database.
func (ft FreeText) Serialize() string {
	return strings.Join(ft, " OR ")
}

// parseFreeTextParam keeps the raw GET value as a single expression.
func parseFreeTextParam(raw string) FreeText {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return FreeText{raw}
}
