// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mlavoie-cs/terrastac/internal/config"
	"github.com/mlavoie-cs/terrastac/internal/logging"
	"github.com/mlavoie-cs/terrastac/internal/stac"
)

// BuildOpenAPI assembles the OpenAPI 3.0 document for the deployment's
// route set. It is built once at startup; paths include the router
// prefix, so they match what clients actually call. The STAC surface is
// fixed, which keeps a hand-assembled document honest without a
// generation step in the build.
func BuildOpenAPI(cfg *config.Config) []byte {
	prefix := cfg.App.RouterPrefix

	collectionParam := pathParam("collectionId", "Collection identifier")
	itemParam := pathParam("itemId", "Item identifier")

	paths := map[string]interface{}{
		prefix + "/": obj{
			"get": operation("landing_page", "Landing Page", "Core", stac.MediaTypeJSON),
		},
		prefix + "/conformance": obj{
			"get": operation("conformance", "Conformance Classes", "Core", stac.MediaTypeJSON),
		},
		prefix + "/collections": obj{
			"get":  operation("all_collections", "List Collections", "Collections", stac.MediaTypeJSON),
			"post": operation("create_collection", "Create Collection", "Transactions", stac.MediaTypeJSON),
		},
		prefix + "/collections/{collectionId}": obj{
			"parameters": []interface{}{collectionParam},
			"get":        operation("get_collection", "Get Collection", "Collections", stac.MediaTypeJSON),
			"put":        operation("update_collection", "Replace Collection", "Transactions", stac.MediaTypeJSON),
			"patch":      operation("patch_collection", "Merge-Patch Collection", "Transactions", stac.MediaTypeJSON),
			"delete":     operation("delete_collection", "Delete Collection", "Transactions", stac.MediaTypeJSON),
		},
		prefix + "/collections/{collectionId}/items": obj{
			"parameters": []interface{}{collectionParam},
			"get":        operation("item_collection", "List Items", "Items", stac.MediaTypeGeoJSON),
			"post":       operation("create_item", "Create Item", "Transactions", stac.MediaTypeGeoJSON),
		},
		prefix + "/collections/{collectionId}/items/{itemId}": obj{
			"parameters": []interface{}{collectionParam, itemParam},
			"get":        operation("get_item", "Get Item", "Items", stac.MediaTypeGeoJSON),
			"put":        operation("update_item", "Replace Item", "Transactions", stac.MediaTypeGeoJSON),
			"patch":      operation("patch_item", "Merge-Patch Item", "Transactions", stac.MediaTypeGeoJSON),
			"delete":     operation("delete_item", "Delete Item", "Transactions", stac.MediaTypeGeoJSON),
		},
		prefix + "/search": obj{
			"get":  operation("get_search", "Item Search", "Search", stac.MediaTypeGeoJSON),
			"post": operation("post_search", "Item Search", "Search", stac.MediaTypeGeoJSON),
		},
		prefix + "/queryables": obj{
			"get": operation("queryables", "Queryables", "Queryables", stac.MediaTypeJSONSchema),
		},
		prefix + "/collections/{collectionId}/queryables": obj{
			"parameters": []interface{}{collectionParam},
			"get":        operation("collection_queryables", "Collection Queryables", "Queryables", stac.MediaTypeJSONSchema),
		},
		prefix + "/_mgmt/ping": obj{
			"get": operation("ping", "Liveness Ping", "Core", stac.MediaTypeJSON),
		},
	}

	// The admin refreshes only exist as routes while their discovery
	// scripts are in play, and the document mirrors the routes.
	if !cfg.Bootstrap.DefaultQueryables {
		paths[prefix+"/queryables"].(obj)["patch"] =
			operation("update_queryables", "Refresh Queryables", "Admin", stac.MediaTypeJSON)
	}
	if !cfg.Bootstrap.DefaultSummaries {
		paths[prefix+"/summaries"] = obj{
			"patch": operation("update_summaries", "Refresh Summaries", "Admin", stac.MediaTypeJSON),
		}
	}

	doc := obj{
		"openapi": "3.0.2",
		"info": obj{
			"title":       cfg.App.Title,
			"description": cfg.App.Description,
			"version":     stac.Version,
			"license": obj{
				"name": "AGPL-3.0-or-later",
				"url":  "https://www.gnu.org/licenses/agpl-3.0.html",
			},
		},
		"paths": paths,
	}

	out, err := json.Marshal(doc)
	if err != nil {
		logging.Error().Err(err).Msg("encode openapi document")
		return []byte(`{"openapi":"3.0.2","info":{"title":"unavailable"},"paths":{}}`)
	}
	return out
}

type obj = map[string]interface{}

func operation(id, summary, tag, contentType string) obj {
	return obj{
		"operationId": id,
		"summary":     summary,
		"tags":        []interface{}{tag},
		"responses": obj{
			"200": obj{
				"description": "Successful response",
				"content": obj{
					contentType: obj{"schema": obj{"type": "object"}},
				},
			},
		},
	}
}

func pathParam(name, description string) obj {
	return obj{
		"name":        name,
		"in":          "path",
		"required":    true,
		"description": description,
		"schema":      obj{"type": "string"},
	}
}

// ServeOpenAPI serves the prebuilt document at OPENAPI_URL.
func (h *Handler) ServeOpenAPI(w http.ResponseWriter, r *http.Request) {
	writeRaw(w, http.StatusOK, stac.MediaTypeOpenAPI, h.openapi)
}
