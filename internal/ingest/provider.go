// Package ingest is the data-collection collaborator: it hands the
// engine already materialized ProductRecords and HistoryResponses. The
// engine never reaches back into this package; a failed history fetch
// degrades to an empty history (SIN_DATOS downstream) at the boundary,
// it never propagates as an error into the pure pipeline.
package ingest

import (
	"context"

	"catalogengine/internal/model"
)

// Provider is satisfied by anything that can hand over a page of product
// records for a country/platform and, separately, daily sales histories
// keyed by product uuid. Real implementations talk to the vendor
// dashboard (HTTPProvider); the demo implementation fabricates
// deterministic data for offline runs.
type Provider interface {
	FetchProducts(ctx context.Context, opts FetchOptions) ([]model.ProductRecord, error)
	FetchHistories(ctx context.Context, uuids []string) (map[string]model.HistoryResponse, error)

	// FetchCompetitors searches the vendor catalog for suppliers listing
	// products matching query, returning one snapshot per supplier. The
	// snapshots carry no TrendAnalysis yet; the market aggregator
	// attaches trends after fetching each competitor's history.
	FetchCompetitors(ctx context.Context, query, country string) ([]model.Competitor, error)
}

// FetchOptions mirrors the vendor dashboard's product-listing query
// parameters: country, pagination, and the same bounds the viability
// filter applies later. Requesting pre-filtered pages reduces
// downstream work, it doesn't replace the filter.
type FetchOptions struct {
	Country  string
	Platform string
	MinSales int
	MinStock int
	MinPrice int
	MaxPrice int
	Page     int
	PageSize int
}
