// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

// Package api serves the STAC API surface over chi: landing page and
// conformance, collection and item reads, item search, transactions, the
// queryable schemas and the administrative refresh endpoints.
//
// Handlers normalize requests into the search model, hand the heavy
// lifting to PgSTAC through the pgstac client, and own exactly two pieces
// of response shaping: link hydration and error translation.
package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mlavoie-cs/terrastac/internal/logging"
	"github.com/mlavoie-cs/terrastac/internal/middleware"
	"github.com/mlavoie-cs/terrastac/internal/pgstac"
	"github.com/mlavoie-cs/terrastac/internal/search"
	"github.com/mlavoie-cs/terrastac/internal/search/cql2"
	"github.com/mlavoie-cs/terrastac/internal/stac"
	"github.com/mlavoie-cs/terrastac/internal/validation"
)

// Error codes carried in the {"code", "description"} error body. The
// names follow the framework this service replaced, so existing clients
// can keep matching on them.
const (
	CodeNotFound         = "NotFoundError"
	CodeConflict         = "ConflictError"
	CodeForeignKey       = "ForeignKeyError"
	CodeDatabase         = "DatabaseError"
	CodeInvalidQuery     = "InvalidQueryParameter"
	CodeValidation       = "RequestValidationError"
	CodeMethodNotAllowed = "MethodNotAllowedError"
	CodeInternal         = "InternalServerError"
	CodeUnavailable      = "ServiceUnavailableError"
)

// errorBody is the wire shape of every non-2xx response outside the
// admin endpoints.
type errorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// writeJSON encodes v with the given content type. Encoding failures at
// this point cannot be reported to the client anymore, only logged.
func writeJSON(w http.ResponseWriter, status int, contentType string, v interface{}) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("encode response")
	}
}

// writeRaw sends pre-encoded JSON as-is.
func writeRaw(w http.ResponseWriter, status int, contentType string, raw []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		logging.Error().Err(err).Msg("write response")
	}
}

// writeError emits the error body. Server-side failures are logged with
// the request ID so a client report can be matched to a log line.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, description string) {
	if status >= http.StatusInternalServerError {
		logging.Error().
			Str("code", code).
			Str("description", description).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	writeJSON(w, status, stac.MediaTypeJSON, errorBody{Code: code, Description: description})
}

// writeDomainError translates errors from the parsing and database layers
// into their response status. Anything unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var paramErr *search.Error
	var validationErr *validation.RequestValidationError
	var syntaxErr *cql2.SyntaxError

	switch {
	case errors.As(err, &paramErr):
		writeError(w, r, http.StatusBadRequest, CodeInvalidQuery, paramErr.Error())
	case errors.As(err, &syntaxErr):
		writeError(w, r, http.StatusBadRequest, CodeInvalidQuery, syntaxErr.Error())
	case errors.As(err, &validationErr):
		writeError(w, r, http.StatusBadRequest, CodeValidation, validationErr.Error())
	case errors.Is(err, pgstac.ErrNotFound):
		writeError(w, r, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, pgstac.ErrConflict):
		writeError(w, r, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, pgstac.ErrForeignKey):
		writeError(w, r, http.StatusFailedDependency, CodeForeignKey, err.Error())
	case errors.Is(err, pgstac.ErrInvalidQuery):
		writeError(w, r, http.StatusBadRequest, CodeInvalidQuery, err.Error())
	case errors.Is(err, pgstac.ErrUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, CodeUnavailable, err.Error())
	case errors.Is(err, pgstac.ErrDatabase):
		writeError(w, r, http.StatusFailedDependency, CodeDatabase, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

// notFoundHandler covers unmatched routes.
func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, CodeNotFound, "route not found")
}

// methodNotAllowedHandler keeps 405s in the error body shape.
func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed,
		r.Method+" is not allowed on "+r.URL.Path)
}
