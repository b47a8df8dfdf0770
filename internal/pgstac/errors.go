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

	"github.com/lib/pq"
	"github.com/sony/gobreaker/v2"

	"github.com/mlavoie-cs/terrastac/internal/metrics"
)

// Domain errors. The API layer maps these to response status codes, so
// every path out of this package wraps one of them (or ErrDatabase as the
// catch-all).
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForeignKey   = errors.New("foreign key violation")
	ErrInvalidQuery = errors.New("invalid query")
	ErrUnavailable  = errors.New("database unavailable")
	ErrDatabase     = errors.New("database error")
)

// mapError folds driver, breaker and context errors into the domain
// taxonomy. PgSTAC signals catalog conditions with RAISE (SQLSTATE P0001),
// so those messages are inspected for the not-found and already-exists
// phrasings its functions use.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		msg := pqErr.Message
		switch {
		case pqErr.Code == "23505": // unique_violation
			return fmt.Errorf("%s: %w", msg, ErrConflict)
		case pqErr.Code == "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", msg, ErrForeignKey)
		case pqErr.Code == "P0001": // raise_exception
			lower := strings.ToLower(msg)
			switch {
			case strings.Contains(lower, "does not exist"), strings.Contains(lower, "not found"):
				return fmt.Errorf("%s: %w", msg, ErrNotFound)
			case strings.Contains(lower, "already exists"):
				return fmt.Errorf("%s: %w", msg, ErrConflict)
			default:
				return fmt.Errorf("%s: %w", msg, ErrInvalidQuery)
			}
		case pqErr.Code.Class() == "22", pqErr.Code.Class() == "42":
			// data exception, syntax error: a request the database
			// could not make sense of
			return fmt.Errorf("%s: %w", msg, ErrInvalidQuery)
		}
		return fmt.Errorf("%s: %w", msg, ErrDatabase)
	}

	return fmt.Errorf("%w: %v", ErrDatabase, err)
}

// ErrorLabel converts a domain error into its metrics label.
func ErrorLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ErrTypeNone
	case errors.Is(err, ErrNotFound):
		return metrics.ErrTypeNotFound
	case errors.Is(err, ErrConflict):
		return metrics.ErrTypeConflict
	case errors.Is(err, ErrForeignKey):
		return metrics.ErrTypeForeignKey
	case errors.Is(err, ErrInvalidQuery):
		return metrics.ErrTypeInvalid
	case errors.Is(err, ErrUnavailable):
		return metrics.ErrTypeTimeout
	default:
		return metrics.ErrTypeOther
	}
}
