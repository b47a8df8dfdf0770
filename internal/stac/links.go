// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package stac

import (
	"net/http"
	"net/url"
	"strings"
)

// BaseURL resolves the absolute URL the API is reachable at from the
// client's perspective. The service historically ran behind proxies with
// forwarded headers enabled, so X-Forwarded-Proto and X-Forwarded-Host win
// over the socket-level values. The router prefix is part of the base.
func BaseURL(r *http.Request, prefix string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fp := r.Header.Get("X-Forwarded-Proto"); fp != "" {
		scheme = strings.TrimSpace(strings.Split(fp, ",")[0])
	}

	host := r.Host
	if fh := r.Header.Get("X-Forwarded-Host"); fh != "" {
		host = strings.TrimSpace(strings.Split(fh, ",")[0])
	}

	return scheme + "://" + host + prefix
}

// Linker builds absolute hrefs under one base URL.
type Linker struct {
	base string
}

// NewLinker creates a Linker for the given base URL (no trailing slash).
func NewLinker(base string) Linker {
	return Linker{base: strings.TrimRight(base, "/")}
}

// Base returns the base URL.
func (l Linker) Base() string { return l.base }

// Href joins path segments under the base, escaping each segment.
func (l Linker) Href(segments ...string) string {
	var b strings.Builder
	b.WriteString(l.base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	if len(segments) == 0 {
		b.WriteByte('/')
	}
	return b.String()
}

// Root returns the root link.
func (l Linker) Root() Link {
	return Link{Rel: RelRoot, Href: l.Href(), Type: MediaTypeJSON}
}

// CollectionLinks returns the canonical links for one collection document.
func (l Linker) CollectionLinks(collectionID string) []Link {
	return []Link{
		{Rel: RelSelf, Href: l.Href("collections", collectionID), Type: MediaTypeJSON},
		{Rel: RelParent, Href: l.Href(), Type: MediaTypeJSON},
		l.Root(),
		{Rel: RelItems, Href: l.Href("collections", collectionID, "items"), Type: MediaTypeGeoJSON},
		{Rel: RelQueryables, Href: l.Href("collections", collectionID, "queryables"), Type: MediaTypeJSONSchema},
	}
}

// ItemLinks returns the canonical links for one item document.
func (l Linker) ItemLinks(collectionID, itemID string) []Link {
	collectionHref := l.Href("collections", collectionID)
	return []Link{
		{Rel: RelSelf, Href: l.Href("collections", collectionID, "items", itemID), Type: MediaTypeGeoJSON},
		{Rel: RelParent, Href: collectionHref, Type: MediaTypeJSON},
		{Rel: RelCollection, Href: collectionHref, Type: MediaTypeJSON},
		l.Root(),
	}
}

// canonicalRels are the relations HydrateItem and HydrateCollection
// own; relations outside the set (derived_from, license, ...) survive
// untouched from the stored document.
var canonicalRels = map[string]bool{
	RelSelf:       true,
	RelParent:     true,
	RelCollection: true,
	RelRoot:       true,
	RelItems:      true,
	RelQueryables: true,
}

// HydrateItem injects canonical links into an item document, keeping any
// additional relations the stored document carries.
func (l Linker) HydrateItem(doc Document) {
	collectionID := doc.CollectionID()
	links := l.ItemLinks(collectionID, doc.ID())
	doc.SetLinks(mergeLinks(links, doc.Links()))
}

// HydrateCollection injects canonical links into a collection document.
func (l Linker) HydrateCollection(doc Document) {
	links := l.CollectionLinks(doc.ID())
	doc.SetLinks(mergeLinks(links, doc.Links()))
}

func mergeLinks(canonical, existing []Link) []Link {
	out := make([]Link, 0, len(canonical)+len(existing))
	out = append(out, canonical...)
	for _, link := range existing {
		if !canonicalRels[link.Rel] {
			out = append(out, link)
		}
	}
	return out
}
