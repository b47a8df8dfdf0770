// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mlavoie-cs/terrastac/internal/metrics"
	"github.com/mlavoie-cs/terrastac/internal/stac"
)

// detailBody is the response shape of the administrative endpoints. It
// predates the {"code","description"} error contract and stays for the
// operators' tooling that parses it.
type detailBody struct {
	Detail string `json:"detail"`
}

// UpdateQueryables serves PATCH {prefix}/queryables: rediscover the
// queryable properties from item data. minimal=true restricts discovery
// to the common properties, which is far cheaper on large catalogs.
func (h *Handler) UpdateQueryables(w http.ResponseWriter, r *http.Request) {
	minimal := false
	if raw := r.URL.Query().Get("minimal"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, CodeInvalidQuery,
				fmt.Sprintf("minimal must be a boolean, got %q", raw))
			return
		}
		minimal = parsed
	}

	err := h.catalog.UpdateQueryables(r.Context(), minimal)
	metrics.RecordAdminRefresh("update_queryables", err)
	if err != nil {
		h.log.Error().Err(err).Bool("minimal", minimal).Msg("queryables refresh failed")
		writeJSON(w, http.StatusInternalServerError, stac.MediaTypeJSON,
			detailBody{Detail: fmt.Sprintf("Unable to update queryables: %v", err)})
		return
	}

	detail := "Updated queryables"
	if minimal {
		detail = "Updated minimal queryables"
	}
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON, detailBody{Detail: detail})
}

// UpdateSummaries serves PATCH {prefix}/summaries: recompute collection
// summaries and extents from item data.
func (h *Handler) UpdateSummaries(w http.ResponseWriter, r *http.Request) {
	err := h.catalog.UpdateSummariesAndExtents(r.Context())
	metrics.RecordAdminRefresh("update_summaries_and_extents", err)
	if err != nil {
		h.log.Error().Err(err).Msg("summaries refresh failed")
		writeJSON(w, http.StatusInternalServerError, stac.MediaTypeJSON,
			detailBody{Detail: fmt.Sprintf("Unable to update summaries: %v", err)})
		return
	}
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON, detailBody{Detail: "Updated summaries"})
}
