// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mlavoie-cs/terrastac/internal/stac"
)

// landingPageID is the catalog id on the landing page. Clients written
// against the previous deployment match on this value, so it stays.
const landingPageID = "stac-fastapi"

// LandingPage serves the catalog document at the API root with links to
// every service the deployment offers.
func (h *Handler) LandingPage(w http.ResponseWriter, r *http.Request) {
	l := h.linker(r)
	// The OpenAPI document and the interactive docs are mounted at the
	// application level, outside the router prefix.
	appBase := stac.BaseURL(r, "")

	page := stac.LandingPage{
		Type:        "Catalog",
		ID:          landingPageID,
		StacVersion: stac.Version,
		Title:       h.cfg.App.Title,
		Description: h.cfg.App.Description,
		ConformsTo:  h.conformsTo,
		Links: []stac.Link{
			{Rel: stac.RelSelf, Href: l.Href(), Type: stac.MediaTypeJSON},
			l.Root(),
			{Rel: stac.RelData, Href: l.Href("collections"), Type: stac.MediaTypeJSON},
			{
				Rel:   stac.RelConformance,
				Href:  l.Href("conformance"),
				Type:  stac.MediaTypeJSON,
				Title: "STAC/OGC conformance classes implemented by this server",
			},
			{
				Rel:    stac.RelSearch,
				Href:   l.Href("search"),
				Type:   stac.MediaTypeGeoJSON,
				Title:  "STAC search",
				Method: http.MethodGet,
			},
			{
				Rel:    stac.RelSearch,
				Href:   l.Href("search"),
				Type:   stac.MediaTypeGeoJSON,
				Title:  "STAC search",
				Method: http.MethodPost,
			},
			{
				Rel:    stac.RelQueryables,
				Href:   l.Href("queryables"),
				Type:   stac.MediaTypeJSONSchema,
				Title:  "Queryables",
				Method: http.MethodGet,
			},
			{
				Rel:   stac.RelServiceDesc,
				Href:  appBase + h.cfg.App.OpenAPIURL,
				Type:  stac.MediaTypeOpenAPI,
				Title: "OpenAPI service description",
			},
			{
				Rel:   stac.RelServiceDoc,
				Href:  appBase + h.cfg.App.DocsURL,
				Type:  stac.MediaTypeHTML,
				Title: "OpenAPI service documentation",
			},
		},
	}
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON, page)
}

// Conformance serves the conformance declaration.
func (h *Handler) Conformance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON,
		stac.ConformanceDeclaration{ConformsTo: h.conformsTo})
}

// Queryables serves the catalog-wide queryable properties as JSON Schema.
func (h *Handler) Queryables(w http.ResponseWriter, r *http.Request) {
	h.serveQueryables(w, r, "")
}

// CollectionQueryables serves the queryables of one collection.
func (h *Handler) CollectionQueryables(w http.ResponseWriter, r *http.Request) {
	h.serveQueryables(w, r, routeCollectionID(r))
}

func (h *Handler) serveQueryables(w http.ResponseWriter, r *http.Request, collectionID string) {
	raw, err := h.catalog.GetQueryables(r.Context(), collectionID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	doc, err := stac.DecodeDocument(raw)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	// The schema's $id is the URL it was fetched from.
	doc["$id"] = stac.BaseURL(r, "") + r.URL.Path
	writeJSON(w, http.StatusOK, stac.MediaTypeJSONSchema, doc)
}

// Ping answers the management ping with the historical payload.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON,
		map[string]string{"message": "PONG"})
}

// Livez reports process liveness. It never checks dependencies, so a
// database outage does not get the pod restarted.
func (h *Handler) Livez(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON, map[string]interface{}{
		"status": "alive",
		"uptime": time.Since(h.started).Seconds(),
	})
}

// Readyz reports readiness to serve traffic, which means the database
// answers within a short deadline.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.catalog.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, stac.MediaTypeJSON, map[string]interface{}{
			"status":             "not_ready",
			"database_connected": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON, map[string]interface{}{
		"status":             "ready",
		"database_connected": true,
	})
}
