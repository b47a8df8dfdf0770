// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/mlavoie-cs/terrastac/internal/auth"
	"github.com/mlavoie-cs/terrastac/internal/config"
	"github.com/mlavoie-cs/terrastac/internal/middleware"
	"github.com/mlavoie-cs/terrastac/internal/stac"
)

// NewRouter assembles the full chi tree: the STAC surface under the
// router prefix, and the ambient routes (metrics, probes, OpenAPI, docs)
// at the application root, where the previous deployment served them.
func NewRouter(h *Handler, cfg *config.Config, guard *auth.Guard) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Prometheus)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.SecurityHeaders)

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	// Observability and the API documents.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/livez", h.Livez)
	r.Get("/readyz", h.Readyz)
	r.Get(cfg.App.OpenAPIURL, h.ServeOpenAPI)
	registerDocs(r, cfg)

	if prefix := cfg.App.RouterPrefix; prefix != "" {
		r.Route(prefix, func(r chi.Router) {
			h.registerSTACRoutes(r, cfg, guard)
		})
	} else {
		h.registerSTACRoutes(r, cfg, guard)
	}

	return r
}

// registerDocs mounts the interactive documentation under DOCS_URL. The
// swagger UI wants a subtree for its assets, so the bare docs path
// redirects into it.
func registerDocs(r chi.Router, cfg *config.Config) {
	docsURL := cfg.App.DocsURL
	ui := httpSwagger.Handler(
		httpSwagger.URL(cfg.App.OpenAPIURL),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	)
	r.Get(docsURL, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, docsURL+"/index.html", http.StatusMovedPermanently)
	})
	r.Get(docsURL+"/*", ui)
}

// registerSTACRoutes wires the STAC surface. Reads and writes sit in
// separate rate-limit groups; the admin refresh routes additionally go
// through the guard, and only exist when their discovery scripts are in
// play.
func (h *Handler) registerSTACRoutes(r chi.Router, cfg *config.Config, guard *auth.Guard) {
	readLimit := rateLimiter(cfg.RateLimit, cfg.RateLimit.ReadRequests)
	writeLimit := rateLimiter(cfg.RateLimit, cfg.RateLimit.WriteRequests)

	r.Group(func(r chi.Router) {
		r.Use(readLimit)

		r.Get("/", h.LandingPage)
		r.Get("/conformance", h.Conformance)
		r.Get("/collections", h.ListCollections)
		r.Get("/collections/{collectionId}", h.GetCollection)
		r.Get("/collections/{collectionId}/items", h.ListItems)
		r.Get("/collections/{collectionId}/items/{itemId}", h.GetItem)
		r.Get("/search", h.SearchGET)
		r.Post("/search", h.SearchPOST)
		r.Get("/queryables", h.Queryables)
		r.Get("/collections/{collectionId}/queryables", h.CollectionQueryables)
		r.Get("/_mgmt/ping", h.Ping)
	})

	r.Group(func(r chi.Router) {
		r.Use(writeLimit)

		r.Post("/collections", h.CreateCollection)
		r.Put("/collections/{collectionId}", h.UpdateCollection)
		r.Patch("/collections/{collectionId}", h.PatchCollection)
		r.Delete("/collections/{collectionId}", h.DeleteCollection)
		r.Post("/collections/{collectionId}/items", h.CreateItem)
		r.Put("/collections/{collectionId}/items/{itemId}", h.UpdateItem)
		r.Patch("/collections/{collectionId}/items/{itemId}", h.PatchItem)
		r.Delete("/collections/{collectionId}/items/{itemId}", h.DeleteItem)
	})

	if !cfg.Bootstrap.DefaultQueryables || !cfg.Bootstrap.DefaultSummaries {
		r.Group(func(r chi.Router) {
			r.Use(writeLimit)
			r.Use(guard.Middleware)

			if !cfg.Bootstrap.DefaultQueryables {
				r.Patch("/queryables", h.UpdateQueryables)
			}
			if !cfg.Bootstrap.DefaultSummaries {
				r.Patch("/summaries", h.UpdateSummaries)
			}
		})
	}
}

// rateLimiter builds a per-IP httprate limiter answering over-limit
// requests in the API error shape.
func rateLimiter(cfg config.RateLimitConfig, requests int) func(http.Handler) http.Handler {
	if cfg.Disabled {
		return func(next http.Handler) http.Handler { return next }
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, stac.MediaTypeJSON, errorBody{
				Code:        "TooManyRequests",
				Description: "request rate limit exceeded, slow down",
			})
		}),
	)
}
