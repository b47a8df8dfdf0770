// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package pgstac

import (
	"database/sql"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/mlavoie-cs/terrastac/internal/metrics"
)

const breakerName = "pgstac-read"

// newReadBreaker guards the read path. Only transport-level failures count
// toward tripping: if Postgres answers at all, even with an error, the
// database is up and the caller's request was simply wrong.
func newReadBreaker(log zerolog.Logger) *gobreaker.CircuitBreaker[json.RawMessage] {
	metrics.SetBreakerState(breakerName, "closed")

	return gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,           // trial requests in half-open state
		Interval:    time.Minute, // reset counts while closed
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},

		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if errors.Is(err, sql.ErrNoRows) {
				return true
			}
			var pqErr *pq.Error
			return errors.As(err, &pqErr)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("circuit breaker state transition")
			metrics.SetBreakerState(name, stateToString(to))
		},
	})
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
