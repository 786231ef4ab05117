package api

import "catalogengine/internal/model"

// scanRequest is the body POST /api/scan and the GET /api/scan/ws
// handshake message both accept.
type scanRequest struct {
	Country         string `json:"country"`
	Platform        string `json:"platform"`
	MinSales        int    `json:"min_sales"`
	MaxProducts     int    `json:"max_products"`
	MaxPages        int    `json:"max_pages"`
	Top             int    `json:"top"`
	NoAI            bool   `json:"no_ai"`
	ShowDescartados bool   `json:"show_descartados"`
}

// scanResponse is the JSON envelope POST /api/scan returns: the ranked
// result plus the population-level stats a caller needs to render a
// results page without recomputing anything client-side.
type scanResponse struct {
	Ranked    []rankedEntry    `json:"ranked"`
	Discarded []rankedEntry    `json:"discarded,omitempty"`
	Stats     statsPayload     `json:"stats"`
	Patterns  []patternPayload `json:"patterns"`
	RunID     int64            `json:"run_id"`
}

type rankedEntry struct {
	UUID           string               `json:"uuid"`
	Name           string               `json:"name"`
	Pattern        model.PatternVariant `json:"pattern"`
	PatternReason  string               `json:"pattern_reason"`
	Score          int                  `json:"score"`
	OptimalPrice   int                  `json:"optimal_price"`
	ROIPct         float64              `json:"roi_pct"`
	NetMargin      int                  `json:"net_margin"`
	Passed         bool                 `json:"passed"`
	DiscardReasons []string             `json:"discard_reasons,omitempty"`
	Advisor        string               `json:"advisor,omitempty"`
}

type statsPayload struct {
	Total            int            `json:"total"`
	Passed           int            `json:"passed"`
	Discarded        int            `json:"discarded"`
	DiscardHistogram map[string]int `json:"discard_histogram"`
}

type patternPayload struct {
	Pattern  model.PatternVariant `json:"pattern"`
	Count    int                  `json:"count"`
	TopNames []string             `json:"top_names"`
}

// marketRequest is the body POST /api/market accepts: a product query
// to aggregate competing suppliers for.
type marketRequest struct {
	Query   string `json:"query"`
	Country string `json:"country"`
}

// marketResponse flattens a model.MarketAnalysis for transport.
type marketResponse struct {
	Query           string              `json:"query"`
	TotalSales7d    int                 `json:"total_sales_7d"`
	TotalSales30d   int                 `json:"total_sales_30d"`
	CompetitorCount int                 `json:"competitor_count"`
	LeaderSharePct  float64             `json:"leader_share_pct"`
	MarketGrowthPct float64             `json:"market_growth_pct"`
	MarketTrend     model.MarketTrend   `json:"market_trend"`
	Verdict         model.MarketVerdict `json:"verdict"`
	VerdictReason   string              `json:"verdict_reason"`
	Competitors     []competitorPayload `json:"competitors"`
}

type competitorPayload struct {
	ID             string               `json:"id"`
	Provider       string               `json:"provider"`
	Sales7d        int                  `json:"sales_7d"`
	Sales30d       int                  `json:"sales_30d"`
	Price          int                  `json:"price"`
	Stock          int                  `json:"stock"`
	MarketSharePct float64              `json:"market_share_pct"`
	Pattern        model.PatternVariant `json:"pattern,omitempty"`
	TrendScore     int                  `json:"trend_score,omitempty"`
}

// progressMsg is one line of human-readable progress streamed over
// GET /api/scan/ws; the final message carries the scan result in Data.
type progressMsg struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
