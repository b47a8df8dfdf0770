// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mlavoie-cs/terrastac/internal/events"
	"github.com/mlavoie-cs/terrastac/internal/metrics"
	"github.com/mlavoie-cs/terrastac/internal/search"
	"github.com/mlavoie-cs/terrastac/internal/stac"
	"github.com/mlavoie-cs/terrastac/internal/validation"
)

// itemEnvelope is the structural slice of an item payload checked before
// the document reaches the database. PgSTAC validates the rest.
type itemEnvelope struct {
	Type       string `json:"type" validate:"required,eq=Feature"`
	ID         string `json:"id" validate:"required"`
	Collection string `json:"collection"`
}

// collectionEnvelope is the same for collection payloads.
type collectionEnvelope struct {
	Type string `json:"type" validate:"omitempty,eq=Collection"`
	ID   string `json:"id" validate:"required"`
}

// CreateItem serves POST /collections/{collectionId}/items. The body is
// either a single Feature, answered with the stored item, or a
// FeatureCollection inserted as a batch and answered with a bare 201.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	collectionID := routeCollectionID(r)
	doc, err := decodeBodyDocument(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	switch {
	case doc.IsItemCollection():
		h.createItemBatch(w, r, collectionID, doc)
	case doc.IsItem():
		h.createSingleItem(w, r, collectionID, doc)
	default:
		writeError(w, r, http.StatusBadRequest, CodeValidation,
			"item body type must be 'Feature' or 'FeatureCollection'")
	}
}

func (h *Handler) createSingleItem(w http.ResponseWriter, r *http.Request, collectionID string, doc stac.Document) {
	if err := validateItemDocument(doc, collectionID, ""); err != nil {
		writeDomainError(w, r, err)
		return
	}
	doc["collection"] = collectionID

	raw, err := json.Marshal(doc)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	err = h.catalog.CreateItem(r.Context(), raw)
	metrics.RecordTransaction("create_item", err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.publishTransaction(r.Context(), events.EntityItem, events.ActionCreate, collectionID, doc.ID())
	h.linker(r).HydrateItem(doc)
	writeJSON(w, http.StatusCreated, stac.MediaTypeGeoJSON, doc)
}

func (h *Handler) createItemBatch(w http.ResponseWriter, r *http.Request, collectionID string, doc stac.Document) {
	features := doc.Features()
	if len(features) == 0 {
		writeError(w, r, http.StatusBadRequest, CodeValidation,
			"FeatureCollection has no features")
		return
	}

	raws := make([]json.RawMessage, 0, len(features))
	for _, feature := range features {
		if err := validateItemDocument(feature, collectionID, ""); err != nil {
			writeDomainError(w, r, err)
			return
		}
		feature["collection"] = collectionID
		raw, err := json.Marshal(feature)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		raws = append(raws, raw)
	}

	err := h.catalog.CreateItems(r.Context(), raws)
	metrics.RecordTransaction("create_items", err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	for _, feature := range features {
		h.publishTransaction(r.Context(), events.EntityItem, events.ActionCreate, collectionID, feature.ID())
	}
	w.WriteHeader(http.StatusCreated)
}

// UpdateItem serves PUT /collections/{collectionId}/items/{itemId},
// replacing the stored item wholesale.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	collectionID := routeCollectionID(r)
	itemID := routeItemID(r)

	doc, err := decodeBodyDocument(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	if err := validateItemDocument(doc, collectionID, itemID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	doc["collection"] = collectionID

	raw, err := json.Marshal(doc)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	err = h.catalog.UpdateItem(r.Context(), raw)
	metrics.RecordTransaction("update_item", err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.publishTransaction(r.Context(), events.EntityItem, events.ActionUpdate, collectionID, itemID)
	h.linker(r).HydrateItem(doc)
	writeJSON(w, http.StatusOK, stac.MediaTypeGeoJSON, doc)
}

// PatchItem serves PATCH /collections/{collectionId}/items/{itemId} as an
// RFC 7386 merge patch against the stored item.
func (h *Handler) PatchItem(w http.ResponseWriter, r *http.Request) {
	collectionID := routeCollectionID(r)
	itemID := routeItemID(r)

	patch, err := decodeBodyDocument(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	current, err := h.catalog.GetItem(r.Context(), collectionID, itemID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	doc, err := stac.DecodeDocument(current)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	doc = stac.MergePatch(doc, patch)
	if err := validateItemDocument(doc, collectionID, itemID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	doc["collection"] = collectionID

	raw, err := json.Marshal(doc)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	err = h.catalog.UpdateItem(r.Context(), raw)
	metrics.RecordTransaction("patch_item", err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.publishTransaction(r.Context(), events.EntityItem, events.ActionUpdate, collectionID, itemID)
	h.linker(r).HydrateItem(doc)
	writeJSON(w, http.StatusOK, stac.MediaTypeGeoJSON, doc)
}

// DeleteItem serves DELETE /collections/{collectionId}/items/{itemId}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	collectionID := routeCollectionID(r)
	itemID := routeItemID(r)

	err := h.catalog.DeleteItem(r.Context(), collectionID, itemID)
	metrics.RecordTransaction("delete_item", err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.publishTransaction(r.Context(), events.EntityItem, events.ActionDelete, collectionID, itemID)
	w.WriteHeader(http.StatusNoContent)
}

// CreateCollection serves POST /collections.
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeBodyDocument(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	if err := validateCollectionDocument(doc, ""); err != nil {
		writeDomainError(w, r, err)
		return
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	err = h.catalog.CreateCollection(r.Context(), raw)
	metrics.RecordTransaction("create_collection", err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.publishTransaction(r.Context(), events.EntityCollection, events.ActionCreate, doc.ID(), "")
	h.linker(r).HydrateCollection(doc)
	writeJSON(w, http.StatusCreated, stac.MediaTypeJSON, doc)
}

// UpdateCollection serves PUT /collections/{collectionId}.
func (h *Handler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := routeCollectionID(r)

	doc, err := decodeBodyDocument(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	if err := validateCollectionDocument(doc, collectionID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	err = h.catalog.UpdateCollection(r.Context(), raw)
	metrics.RecordTransaction("update_collection", err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.publishTransaction(r.Context(), events.EntityCollection, events.ActionUpdate, collectionID, "")
	h.linker(r).HydrateCollection(doc)
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON, doc)
}

// PatchCollection serves PATCH /collections/{collectionId} as an RFC 7386
// merge patch against the stored collection.
func (h *Handler) PatchCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := routeCollectionID(r)

	patch, err := decodeBodyDocument(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	current, err := h.catalog.GetCollection(r.Context(), collectionID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	doc, err := stac.DecodeDocument(current)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	doc = stac.MergePatch(doc, patch)
	if err := validateCollectionDocument(doc, collectionID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	err = h.catalog.UpdateCollection(r.Context(), raw)
	metrics.RecordTransaction("patch_collection", err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.publishTransaction(r.Context(), events.EntityCollection, events.ActionUpdate, collectionID, "")
	h.linker(r).HydrateCollection(doc)
	writeJSON(w, http.StatusOK, stac.MediaTypeJSON, doc)
}

// DeleteCollection serves DELETE /collections/{collectionId}.
func (h *Handler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := routeCollectionID(r)

	err := h.catalog.DeleteCollection(r.Context(), collectionID)
	metrics.RecordTransaction("delete_collection", err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.publishTransaction(r.Context(), events.EntityCollection, events.ActionDelete, collectionID, "")
	w.WriteHeader(http.StatusNoContent)
}

// validateItemDocument checks the structural identity of an item payload
// against the route it was sent to.
func validateItemDocument(doc stac.Document, collectionID, itemID string) error {
	env := itemEnvelope{}
	env.Type, _ = doc["type"].(string)
	env.ID = doc.ID()
	env.Collection = doc.CollectionID()

	if verr := validation.ValidateStruct(env); verr != nil {
		return verr
	}
	if env.Collection != "" && env.Collection != collectionID {
		return errIdentityMismatch("collection", collectionID, env.Collection)
	}
	if itemID != "" && env.ID != itemID {
		return errIdentityMismatch("item", itemID, env.ID)
	}
	return nil
}

// validateCollectionDocument checks a collection payload the same way.
func validateCollectionDocument(doc stac.Document, collectionID string) error {
	env := collectionEnvelope{ID: doc.ID()}
	env.Type, _ = doc["type"].(string)

	if verr := validation.ValidateStruct(env); verr != nil {
		return verr
	}
	if collectionID != "" && env.ID != collectionID {
		return errIdentityMismatch("collection", collectionID, env.ID)
	}
	return nil
}

// errIdentityMismatch reports a path/body identity conflict as an invalid
// query parameter, turning into a 400.
func errIdentityMismatch(kind, fromPath, fromBody string) error {
	return &search.Error{
		Param: kind,
		Reason: fmt.Sprintf("%s ID from path parameter (%s) does not match %s ID from body (%s)",
			kind, fromPath, kind, fromBody),
	}
}
