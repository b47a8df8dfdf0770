// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package stac

// Extension is one request-model extension enabled on a route group,
// carrying the conformance classes it contributes there. The same
// extension contributes different classes depending on the surface it is
// mounted on, so each group declares its own set.
type Extension struct {
	Name        string
	Conformance []string
}

// SearchExtensions is the set mounted on GET and POST /search.
func SearchExtensions() []Extension {
	return []Extension{
		{Name: "query", Conformance: []string{ConformanceQuerySearch}},
		{Name: "sort", Conformance: []string{ConformanceSortSearch}},
		{Name: "fields", Conformance: []string{ConformanceFieldsSearch}},
		{Name: "free-text", Conformance: []string{
			ConformanceFreeTextSearch,
			ConformanceFreeTextSearchAdvanced,
		}},
		{Name: "filter", Conformance: []string{
			ConformanceFilter,
			ConformanceItemSearchFilter,
			ConformanceBasicCQL2,
			ConformanceBasicSpatialFunctions,
			ConformanceCQL2Text,
			ConformanceCQL2JSON,
		}},
		{Name: "pagination"},
	}
}

// TransactionExtensions is the set enabling write routes on items and
// collections.
func TransactionExtensions() []Extension {
	return []Extension{
		{Name: "transaction", Conformance: []string{
			ConformanceTransaction,
			ConformanceCollectionTransaction,
		}},
	}
}

// CollectionSearchExtensions is the GET-only set mounted on /collections.
func CollectionSearchExtensions() []Extension {
	return []Extension{
		{Name: "collection-search", Conformance: []string{
			ConformanceCollectionSearch,
			ConformanceOGCCommonSimpleQuery,
		}},
		{Name: "query", Conformance: []string{ConformanceQueryCollections}},
		{Name: "sort", Conformance: []string{ConformanceSortCollections}},
		{Name: "fields", Conformance: []string{ConformanceFieldsCollections}},
		{Name: "free-text", Conformance: []string{
			ConformanceFreeTextCollections,
			ConformanceFreeTextCollectionsAdvanced,
		}},
		{Name: "filter", Conformance: []string{ConformanceCollectionSearchFilter}},
		{Name: "pagination"},
	}
}

// ItemsExtensions is the set mounted on /collections/{id}/items.
func ItemsExtensions() []Extension {
	return []Extension{
		{Name: "query", Conformance: []string{ConformanceQueryItems}},
		{Name: "sort", Conformance: []string{ConformanceSortItems}},
		{Name: "fields", Conformance: []string{ConformanceFieldsItems}},
		{Name: "free-text", Conformance: []string{
			ConformanceFreeTextItems,
			ConformanceFreeTextItemsAdvanced,
		}},
		{Name: "filter", Conformance: []string{ConformanceFeaturesFilter}},
		{Name: "pagination"},
	}
}

// ConformsTo flattens the core classes plus every group's contributions,
// deduplicated in first-seen order.
func ConformsTo(groups ...[]Extension) []string {
	out := CoreConformance()
	seen := make(map[string]bool, len(out))
	for _, uri := range out {
		seen[uri] = true
	}
	for _, group := range groups {
		for _, ext := range group {
			for _, uri := range ext.Conformance {
				if !seen[uri] {
					seen[uri] = true
					out = append(out, uri)
				}
			}
		}
	}
	return out
}

// AllConformance is the full declaration for a deployment with every
// route group enabled.
func AllConformance() []string {
	return ConformsTo(
		SearchExtensions(),
		TransactionExtensions(),
		CollectionSearchExtensions(),
		ItemsExtensions(),
	)
}
