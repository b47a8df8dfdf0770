// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package stac

// Conformance class URIs. Core classes are always advertised; the rest are
// contributed by whichever extensions a route group registers.
const (
	ConformanceCore        = "https://api.stacspec.org/v1.0.0/core"
	ConformanceCollections = "https://api.stacspec.org/v1.0.0/collections"
	ConformanceItemSearch  = "https://api.stacspec.org/v1.0.0/item-search"

	ConformanceOGCFeaturesCore    = "http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/core"
	ConformanceOGCFeaturesOAS30   = "http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/oas30"
	ConformanceOGCFeaturesGeoJSON = "http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/geojson"

	// Query extension.
	ConformanceQuerySearch      = "https://api.stacspec.org/v1.0.0/item-search#query"
	ConformanceQueryItems       = "https://api.stacspec.org/v1.0.0/ogcapi-features#query"
	ConformanceQueryCollections = "https://api.stacspec.org/v1.0.0-rc.1/collection-search#query"

	// Sort extension.
	ConformanceSortSearch      = "https://api.stacspec.org/v1.0.0/item-search#sort"
	ConformanceSortItems       = "https://api.stacspec.org/v1.0.0/ogcapi-features#sort"
	ConformanceSortCollections = "https://api.stacspec.org/v1.0.0-rc.1/collection-search#sortby"

	// Fields extension.
	ConformanceFieldsSearch      = "https://api.stacspec.org/v1.0.0/item-search#fields"
	ConformanceFieldsItems       = "https://api.stacspec.org/v1.0.0/ogcapi-features#fields"
	ConformanceFieldsCollections = "https://api.stacspec.org/v1.0.0-rc.1/collection-search#fields"

	// Free-text extension, basic and advanced variants.
	ConformanceFreeTextSearch              = "https://api.stacspec.org/v1.0.0-rc.1/item-search#free-text"
	ConformanceFreeTextSearchAdvanced      = "https://api.stacspec.org/v1.0.0-rc.1/item-search#advanced-free-text"
	ConformanceFreeTextItems               = "https://api.stacspec.org/v1.0.0-rc.1/ogcapi-features#free-text"
	ConformanceFreeTextItemsAdvanced       = "https://api.stacspec.org/v1.0.0-rc.1/ogcapi-features#advanced-free-text"
	ConformanceFreeTextCollections         = "https://api.stacspec.org/v1.0.0-rc.1/collection-search#free-text"
	ConformanceFreeTextCollectionsAdvanced = "https://api.stacspec.org/v1.0.0-rc.1/collection-search#advanced-free-text"

	// Filter extension and its CQL2 building blocks.
	ConformanceFilter                 = "http://www.opengis.net/spec/ogcapi-features-3/1.0/conf/filter"
	ConformanceFeaturesFilter         = "http://www.opengis.net/spec/ogcapi-features-3/1.0/conf/features-filter"
	ConformanceItemSearchFilter       = "https://api.stacspec.org/v1.0.0-rc.2/item-search#filter"
	ConformanceCollectionSearchFilter = "https://api.stacspec.org/v1.0.0-rc.1/collection-search#filter"
	ConformanceBasicCQL2              = "http://www.opengis.net/spec/cql2/1.0/conf/basic-cql2"
	ConformanceBasicSpatialFunctions  = "http://www.opengis.net/spec/cql2/1.0/conf/basic-spatial-functions"
	ConformanceCQL2JSON               = "http://www.opengis.net/spec/cql2/1.0/conf/cql2-json"
	ConformanceCQL2Text               = "http://www.opengis.net/spec/cql2/1.0/conf/cql2-text"

	// Transaction extension.
	ConformanceTransaction           = "https://api.stacspec.org/v1.0.0/ogcapi-features/extensions/transaction"
	ConformanceCollectionTransaction = "https://api.stacspec.org/v1.0.0/collections/extensions/transaction"

	// Collection search.
	ConformanceCollectionSearch     = "https://api.stacspec.org/v1.0.0-rc.1/collection-search"
	ConformanceOGCCommonSimpleQuery = "http://www.opengis.net/spec/ogcapi-common-2/1.0/conf/simple-query"
)

// CoreConformance returns the classes every deployment advertises before
// extension contributions.
func CoreConformance() []string {
	return []string{
		ConformanceCore,
		ConformanceCollections,
		ConformanceItemSearch,
		ConformanceOGCFeaturesCore,
		ConformanceOGCFeaturesOAS30,
		ConformanceOGCFeaturesGeoJSON,
	}
}
