// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package pgstac

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/sony/gobreaker/v2"

	"github.com/mlavoie-cs/terrastac/internal/metrics"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"breaker open", gobreaker.ErrOpenState, ErrUnavailable},
		{"breaker saturated", gobreaker.ErrTooManyRequests, ErrUnavailable},
		{"deadline exceeded", context.DeadlineExceeded, ErrUnavailable},
		{"canceled", context.Canceled, ErrUnavailable},
		{"unique violation", &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}, ErrConflict},
		{"foreign key violation", &pq.Error{Code: "23503", Message: "violates foreign key constraint"}, ErrForeignKey},
		{"raise does not exist", &pq.Error{Code: "P0001", Message: "Collection sentinel-2 does not exist"}, ErrNotFound},
		{"raise not found", &pq.Error{Code: "P0001", Message: "Item S2A_0001 in sentinel-2 not found"}, ErrNotFound},
		{"raise already exists", &pq.Error{Code: "P0001", Message: "Collection sentinel-2 already exists"}, ErrConflict},
		{"raise other", &pq.Error{Code: "P0001", Message: "Sort direction must be asc or desc"}, ErrInvalidQuery},
		{"data exception", &pq.Error{Code: "22P02", Message: "invalid input syntax for type json"}, ErrInvalidQuery},
		{"syntax error", &pq.Error{Code: "42601", Message: "syntax error at or near \"FORM\""}, ErrInvalidQuery},
		{"undefined function", &pq.Error{Code: "42883", Message: "function search(jsonb) does not exist"}, ErrInvalidQuery},
		{"other sqlstate", &pq.Error{Code: "57014", Message: "canceling statement due to statement timeout"}, ErrDatabase},
		{"wrapped pq error", fmt.Errorf("search: %w", &pq.Error{Code: "23505", Message: "duplicate key"}), ErrConflict},
		{"plain error", errors.New("connection refused"), ErrDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mapError(tt.err)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("mapError(nil) = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("mapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapErrorKeepsMessage(t *testing.T) {
	t.Parallel()

	got := mapError(&pq.Error{Code: "P0001", Message: "Collection sentinel-2 does not exist"})
	if got == nil || !strings.Contains(got.Error(), "sentinel-2") {
		t.Errorf("mapped error %v lost the database message", got)
	}
}

func TestErrorLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, metrics.ErrTypeNone},
		{"not found", ErrNotFound, metrics.ErrTypeNotFound},
		{"wrapped conflict", fmt.Errorf("duplicate: %w", ErrConflict), metrics.ErrTypeConflict},
		{"foreign key", ErrForeignKey, metrics.ErrTypeForeignKey},
		{"invalid query", ErrInvalidQuery, metrics.ErrTypeInvalid},
		{"unavailable", ErrUnavailable, metrics.ErrTypeTimeout},
		{"unclassified", errors.New("boom"), metrics.ErrTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ErrorLabel(tt.err); got != tt.want {
				t.Errorf("ErrorLabel(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
