// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package search

import (
	"strconv"
	"strings"
)

// ParseBBox parses a comma-separated bounding box. Four numbers are
// [west, south, east, north]; six add min/max elevation. West > east is
// legal and means the box crosses the antimeridian.
func ParseBBox(raw string) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 && len(parts) != 6 {
		return nil, errParam("bbox", "must have 4 or 6 coordinates, got %d", len(parts))
	}
	box := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errParam("bbox", "coordinate %d is not a number: %q", i+1, strings.TrimSpace(p))
		}
		box[i] = v
	}
	if err := ValidateBBox(box); err != nil {
		return nil, err
	}
	return box, nil
}

// ValidateBBox checks coordinate ranges and south/north ordering.
func ValidateBBox(box []float64) error {
	if len(box) == 0 {
		return nil
	}
	if len(box) != 4 && len(box) != 6 {
		return errParam("bbox", "must have 4 or 6 coordinates, got %d", len(box))
	}
	var west, south, east, north float64
	if len(box) == 4 {
		west, south, east, north = box[0], box[1], box[2], box[3]
	} else {
		west, south, east, north = box[0], box[1], box[3], box[4]
	}
	if west < -180 || west > 180 || east < -180 || east > 180 {
		return errParam("bbox", "longitudes must be within [-180, 180]")
	}
	if south < -90 || south > 90 || north < -90 || north > 90 {
		return errParam("bbox", "latitudes must be within [-90, 90]")
	}
	if south > north {
		return errParam("bbox", "southern latitude %v exceeds northern latitude %v", south, north)
	}
	if len(box) == 6 && box[2] > box[5] {
		return errParam("bbox", "minimum elevation %v exceeds maximum elevation %v", box[2], box[5])
	}
	return nil
}
