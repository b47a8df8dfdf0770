// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

// Package stac holds the SpatioTemporal Asset Catalog wire types served by
// the API: the landing page, collections, items and their link relations.
//
// Items and collections are stored and searched by PgSTAC as complete JSON
// documents. The server does not remodel them field by field; it carries
// them as documents and rewrites only the parts it owns, which is the links
// array and, on write, structural identity fields (id, collection). The
// typed structs below cover the envelopes this service itself authors.
package stac

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Version is the STAC specification version this API serves.
const Version = "1.0.0"

// Media types used across the API surface.
const (
	MediaTypeJSON       = "application/json"
	MediaTypeGeoJSON    = "application/geo+json"
	MediaTypeJSONSchema = "application/schema+json"
	MediaTypeOpenAPI    = "application/vnd.oai.openapi+json;version=3.0"
	MediaTypeHTML       = "text/html"
)

// Link relations.
const (
	RelSelf        = "self"
	RelRoot        = "root"
	RelParent      = "parent"
	RelChild       = "child"
	RelItem        = "item"
	RelItems       = "items"
	RelCollection  = "collection"
	RelData        = "data"
	RelConformance = "conformance"
	RelSearch      = "search"
	RelServiceDesc = "service-desc"
	RelServiceDoc  = "service-doc"
	RelNext        = "next"
	RelPrev        = "previous"
	RelQueryables  = "http://www.opengis.net/def/rel/ogc/1.0/queryables"
)

// Link is a STAC link object. Method and Body appear on paging links for
// POST endpoints, where the token travels in the request body.
type Link struct {
	Rel    string                 `json:"rel"`
	Href   string                 `json:"href"`
	Type   string                 `json:"type,omitempty"`
	Title  string                 `json:"title,omitempty"`
	Method string                 `json:"method,omitempty"`
	Body   map[string]interface{} `json:"body,omitempty"`
}

// LandingPage is the catalog document at the API root.
type LandingPage struct {
	Type        string   `json:"type"`
	ID          string   `json:"id"`
	StacVersion string   `json:"stac_version"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description"`
	ConformsTo  []string `json:"conformsTo"`
	Links       []Link   `json:"links"`
}

// ConformanceDeclaration is the /conformance document.
type ConformanceDeclaration struct {
	ConformsTo []string `json:"conformsTo"`
}

// ItemCollection is a GeoJSON FeatureCollection of items plus the OGC
// numbered-results fields.
type ItemCollection struct {
	Type           string            `json:"type"`
	Features       []json.RawMessage `json:"features"`
	Links          []Link            `json:"links,omitempty"`
	NumberMatched  *int64            `json:"numberMatched,omitempty"`
	NumberReturned *int              `json:"numberReturned,omitempty"`
}

// Collections is the /collections response envelope.
type Collections struct {
	Collections    []Document `json:"collections"`
	Links          []Link     `json:"links"`
	NumberMatched  *int64     `json:"numberMatched,omitempty"`
	NumberReturned *int       `json:"numberReturned,omitempty"`
}

// Document is a STAC entity carried as parsed JSON. PgSTAC owns the
// authoritative shape; handlers reach into the handful of fields the API
// layer needs.
type Document map[string]interface{}

// DecodeDocument parses raw JSON into a Document.
func DecodeDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// ID returns the document's id, or "".
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// CollectionID returns an item document's collection, or "".
func (d Document) CollectionID() string {
	c, _ := d["collection"].(string)
	return c
}

// IsItem reports whether the document declares the GeoJSON Feature type
// used by STAC items.
func (d Document) IsItem() bool {
	t, _ := d["type"].(string)
	return t == "Feature"
}

// IsItemCollection reports whether the document is a FeatureCollection.
func (d Document) IsItemCollection() bool {
	t, _ := d["type"].(string)
	return t == "FeatureCollection"
}

// Features returns the nested feature documents of an ItemCollection
// payload, for bulk transaction handling.
func (d Document) Features() []Document {
	raw, _ := d["features"].([]interface{})
	out := make([]Document, 0, len(raw))
	for _, f := range raw {
		if m, ok := f.(map[string]interface{}); ok {
			out = append(out, Document(m))
		}
	}
	return out
}

// Links returns the document's links array, decoding loosely typed entries.
func (d Document) Links() []Link {
	raw, ok := d["links"].([]interface{})
	if !ok {
		return nil
	}
	links := make([]Link, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		link := Link{}
		link.Rel, _ = m["rel"].(string)
		link.Href, _ = m["href"].(string)
		link.Type, _ = m["type"].(string)
		link.Title, _ = m["title"].(string)
		link.Method, _ = m["method"].(string)
		if body, ok := m["body"].(map[string]interface{}); ok {
			link.Body = body
		}
		links = append(links, link)
	}
	return links
}

// SetLinks replaces the document's links array.
func (d Document) SetLinks(links []Link) {
	arr := make([]interface{}, len(links))
	for i, l := range links {
		entry := map[string]interface{}{
			"rel":  l.Rel,
			"href": l.Href,
		}
		if l.Type != "" {
			entry["type"] = l.Type
		}
		if l.Title != "" {
			entry["title"] = l.Title
		}
		if l.Method != "" {
			entry["method"] = l.Method
		}
		if l.Body != nil {
			entry["body"] = l.Body
		}
		arr[i] = entry
	}
	d["links"] = arr
}
