package model

import "time"

// ProductRecord is a single product as handed over by the ingest adapter.
type ProductRecord struct {
	UUID          string
	Name          string
	ProviderPrice int
	Profit        int
	Stock         int
	Sales7d       int
	Sales30d      int
}

// HistoryResponse is the ingest adapter's per-product history payload.
// CreatedAt, Category, and ProviderName are optional: a nil pointer
// means "not reported by the collaborator", not "zero value observed".
type HistoryResponse struct {
	CreatedAt    *time.Time
	Category     *string
	ProviderName *string
	History      []DailyPoint
}

// AnalyzedProduct is a pure composition of a ProductRecord with
// everything the pipeline derived from it. The record itself is never
// mutated; each stage's output lives in its own field.
type AnalyzedProduct struct {
	Product ProductRecord
	Trend   TrendAnalysis
	Margin  MarginData
	Filter  FilterResult
}

// PersistedAnalysis is the flat record the upsert collaborator writes
// per analyzed product.
type PersistedAnalysis struct {
	UUID           string
	Name           string
	ProviderPrice  int
	OptimalPrice   int
	Sales7d        int
	Sales30d       int
	Stock          int
	TrendPattern   PatternVariant
	TrendScore     int
	WowGrowthPct   []float64
	ConsistencyPct float64
	Passed         bool
	DiscardReasons []string
	MarketVerdict  *MarketVerdict
	AnalyzedAt     time.Time
}
