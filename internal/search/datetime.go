// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package search

import (
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// ParseDatetime validates a STAC datetime parameter and returns it in
// normalized form. Accepted shapes are a single RFC 3339 instant, a closed
// interval "start/end", and half-open intervals where one side is ".." or
// empty. The value is passed to PgSTAC verbatim, so normalization only
// trims whitespace and canonicalizes open ends to "..".
func ParseDatetime(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	parts := strings.Split(raw, "/")
	switch len(parts) {
	case 1:
		if _, err := parseInstant(parts[0]); err != nil {
			return "", err
		}
		return strings.TrimSpace(parts[0]), nil
	case 2:
		start, end := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		openStart := start == ".." || start == ""
		openEnd := end == ".." || end == ""
		if openStart && openEnd {
			return "", errParam("datetime", "interval must be bounded on at least one side")
		}
		var startT, endT time.Time
		var err error
		if !openStart {
			if startT, err = parseInstant(start); err != nil {
				return "", err
			}
		} else {
			start = ".."
		}
		if !openEnd {
			if endT, err = parseInstant(end); err != nil {
				return "", err
			}
		} else {
			end = ".."
		}
		if !openStart && !openEnd && startT.After(endT) {
			return "", errParam("datetime", "interval start %s is after end %s", start, end)
		}
		return start + "/" + end, nil
	default:
		return "", errParam("datetime", "must be an instant or a start/end interval")
	}
}

func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !strfmt.IsDateTime(s) {
		return time.Time{}, errParam("datetime", "%q is not an RFC 3339 date-time", s)
	}
	dt, err := strfmt.ParseDateTime(s)
	if err != nil {
		return time.Time{}, errParam("datetime", "%q is not an RFC 3339 date-time", s)
	}
	return time.Time(dt), nil
}
