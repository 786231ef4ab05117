package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"catalogengine/internal/advisor"
	"catalogengine/internal/config"
	"catalogengine/internal/engine"
	"catalogengine/internal/ingest"
	"catalogengine/internal/logger"
	"catalogengine/internal/model"
	"catalogengine/internal/store"
)

const logTag = "API"

// Server is the HTTP surface connecting the ingest adapter, the pure
// engine pipeline, the persisted store, and the optional AI advisor.
type Server struct {
	cfg      *config.Config
	provider ingest.Provider
	db       *store.DB
	advisor  advisor.Advisor

	mu             sync.RWMutex
	maxConcurrency int

	upgrader websocket.Upgrader
}

// NewServer wires a Server from its collaborators. advisor may be
// advisor.NullAdvisor{} when -no-ai is set or no API key is configured.
func NewServer(cfg *config.Config, provider ingest.Provider, db *store.DB, adv advisor.Advisor, maxConcurrency int) *Server {
	return &Server{
		cfg:            cfg,
		provider:       provider,
		db:             db,
		advisor:        adv,
		maxConcurrency: maxConcurrency,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler with all API routes and CORS
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/scan/ws", s.handleScanWS)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	mux.HandleFunc("GET /api/scan/history", s.handleGetHistory)
	mux.HandleFunc("POST /api/market", s.handleMarket)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func fetchOptionsFor(req scanRequest, cfg *config.Config) ingest.FetchOptions {
	country := req.Country
	if country == "" {
		country = cfg.Country
	}
	pageSize := req.MaxProducts
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	return ingest.FetchOptions{
		Country:  country,
		Platform: req.Platform,
		MinSales: req.MinSales,
		MinStock: cfg.MinStock,
		MinPrice: cfg.MinPrice,
		MaxPrice: cfg.MaxPrice,
		Page:     1,
		PageSize: pageSize,
	}
}

// runScan executes one end-to-end pipeline pass (fetch → analyze → rank
// → advise → persist), reporting each stage to progress.
func (s *Server) runScan(ctx context.Context, req scanRequest, progress func(string)) (scanResponse, error) {
	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}
	maxProducts := req.MaxProducts
	if maxProducts <= 0 {
		maxProducts = 500
	}

	progress("fetching product listing")
	opts := fetchOptionsFor(req, s.cfg)
	var products []model.ProductRecord
	for page := 1; page <= maxPages && len(products) < maxProducts; page++ {
		opts.Page = page
		batch, err := s.provider.FetchProducts(ctx, opts)
		if err != nil {
			return scanResponse{}, fmt.Errorf("fetch products: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		products = append(products, batch...)
	}
	if len(products) > maxProducts {
		products = products[:maxProducts]
	}
	progress(fmt.Sprintf("fetched %d products", len(products)))

	uuids := make([]string, len(products))
	for i, p := range products {
		uuids[i] = p.UUID
	}

	progress("fetching sales histories")
	histories, err := s.provider.FetchHistories(ctx, uuids)
	if err != nil {
		return scanResponse{}, fmt.Errorf("fetch histories: %w", err)
	}

	items := make([]engine.ProductWithHistory, len(products))
	for i, p := range products {
		items[i] = engine.ProductWithHistory{Product: p, History: histories[p.UUID]}
	}

	progress(fmt.Sprintf("analyzing %d products", len(items)))
	cfg := s.effectiveConfig(req)
	analyzed, err := engine.AnalyzeBatch(ctx, cfg, items, s.maxConcurrency)
	if err != nil {
		return scanResponse{}, fmt.Errorf("analyze batch: %w", err)
	}

	progress("ranking")
	ranked := engine.Rank(analyzed)

	resp := scanResponse{
		Stats: statsPayload{
			Total:            ranked.Stats.Total,
			Passed:           ranked.Stats.Passed,
			Discarded:        ranked.Stats.Discarded,
			DiscardHistogram: ranked.Stats.DiscardHistogram,
		},
	}
	for _, pat := range ranked.Patterns {
		resp.Patterns = append(resp.Patterns, patternPayload{
			Pattern:  pat.Pattern,
			Count:    pat.Count,
			TopNames: pat.TopNames,
		})
	}

	top := req.Top
	if top <= 0 || top > len(ranked.Ranked) {
		top = len(ranked.Ranked)
	}
	for _, p := range ranked.Ranked[:top] {
		entry := toRankedEntry(p)
		if !req.NoAI {
			if comment, err := s.advisor.Comment(ctx, p); err == nil {
				entry.Advisor = comment
			} else {
				logger.Warn(logTag, fmt.Sprintf("advisor failed for %s: %v", p.Product.UUID, err))
			}
		}
		resp.Ranked = append(resp.Ranked, entry)
	}

	if req.ShowDescartados {
		for _, p := range analyzed {
			if !p.Filter.Passed {
				resp.Discarded = append(resp.Discarded, toRankedEntry(p))
			}
		}
	}

	progress("persisting run")
	if s.db != nil {
		runID, err := s.db.StartRun(opts.Country, ranked.Stats.Total, ranked.Stats.Passed, ranked.Stats.Discarded, time.Now().Format(time.RFC3339))
		if err != nil {
			logger.Warn(logTag, fmt.Sprintf("StartRun failed: %v", err))
		} else {
			resp.RunID = runID
			s.db.SaveAnalyzed(runID, toPersisted(analyzed))
		}
	}

	progress("done")
	return resp, nil
}

func (s *Server) effectiveConfig(req scanRequest) *config.Config {
	s.mu.RLock()
	cfg := *s.cfg
	s.mu.RUnlock()
	if req.Country != "" {
		preset, ok := config.CountryPresetFor(req.Country)
		if ok {
			cfg.Country = preset.Code
			cfg.ShippingCost = preset.ShippingCost
			cfg.CPA = preset.CPA
		}
	}
	return &cfg
}

func toRankedEntry(p model.AnalyzedProduct) rankedEntry {
	return rankedEntry{
		UUID:           p.Product.UUID,
		Name:           p.Product.Name,
		Pattern:        p.Trend.Pattern,
		PatternReason:  p.Trend.PatternReason,
		Score:          p.Trend.Score,
		OptimalPrice:   p.Margin.OptimalPrice,
		ROIPct:         p.Margin.ROIPct,
		NetMargin:      p.Margin.NetMargin,
		Passed:         p.Filter.Passed,
		DiscardReasons: p.Filter.DiscardReasons,
	}
}

func toPersisted(analyzed []model.AnalyzedProduct) []model.PersistedAnalysis {
	out := make([]model.PersistedAnalysis, len(analyzed))
	for i, p := range analyzed {
		out[i] = model.PersistedAnalysis{
			UUID:           p.Product.UUID,
			Name:           p.Product.Name,
			ProviderPrice:  p.Product.ProviderPrice,
			OptimalPrice:   p.Margin.OptimalPrice,
			Sales7d:        p.Product.Sales7d,
			Sales30d:       p.Product.Sales30d,
			Stock:          p.Product.Stock,
			TrendPattern:   p.Trend.Pattern,
			TrendScore:     p.Trend.Score,
			WowGrowthPct:   p.Trend.WowGrowthPct,
			ConsistencyPct: consistencyOf(p),
			Passed:         p.Filter.Passed,
			DiscardReasons: p.Filter.DiscardReasons,
			AnalyzedAt:     time.Now(),
		}
	}
	return out
}

func consistencyOf(p model.AnalyzedProduct) float64 {
	if len(p.Trend.Weeks) == 0 {
		return 0
	}
	return p.Trend.Weeks[0].ConsistencyPct
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}

	resp, err := s.runScan(r.Context(), req, func(string) {})
	if err != nil {
		logger.Error(logTag, fmt.Sprintf("scan failed: %v", err))
		writeError(w, 502, err.Error())
		return
	}
	writeJSON(w, resp)
}

// handleScanWS streams one progress line per pipeline stage over a
// websocket connection before sending a final {"type":"result",...}
// message.
func (s *Server) handleScanWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn(logTag, fmt.Sprintf("websocket upgrade failed: %v", err))
		return
	}
	defer conn.Close()

	var req scanRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(progressMsg{Type: "error", Message: "invalid request"})
		return
	}

	var writeMu sync.Mutex
	progress := func(msg string) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.WriteJSON(progressMsg{Type: "progress", Message: msg})
	}

	resp, err := s.runScan(r.Context(), req, progress)
	if err != nil {
		conn.WriteJSON(progressMsg{Type: "error", Message: err.Error()})
		return
	}
	conn.WriteJSON(progressMsg{Type: "result", Data: resp})
}

// runMarket fetches the competing suppliers for a query, attaches each
// one's own trend, and aggregates them into a market verdict.
func (s *Server) runMarket(ctx context.Context, req marketRequest) (marketResponse, error) {
	country := req.Country
	if country == "" {
		s.mu.RLock()
		country = s.cfg.Country
		s.mu.RUnlock()
	}

	competitors, err := s.provider.FetchCompetitors(ctx, req.Query, country)
	if err != nil {
		return marketResponse{}, fmt.Errorf("fetch competitors: %w", err)
	}

	ids := make([]string, len(competitors))
	for i, c := range competitors {
		ids[i] = c.ID
	}
	histories, err := s.provider.FetchHistories(ctx, ids)
	if err != nil {
		return marketResponse{}, fmt.Errorf("fetch competitor histories: %w", err)
	}

	entries := make([]engine.CompetitorHistory, len(competitors))
	for i, c := range competitors {
		entries[i] = engine.CompetitorHistory{
			Competitor: c,
			History:    histories[c.ID].History,
		}
	}

	s.mu.RLock()
	cfg := *s.cfg
	s.mu.RUnlock()
	analysis := engine.AnalyzeMarket(&cfg, req.Query, entries, s.maxConcurrency)
	return toMarketResponse(analysis), nil
}

func toMarketResponse(m model.MarketAnalysis) marketResponse {
	resp := marketResponse{
		Query:           m.Query,
		TotalSales7d:    m.TotalSales7d,
		TotalSales30d:   m.TotalSales30d,
		CompetitorCount: m.CompetitorCount,
		LeaderSharePct:  m.LeaderSharePct,
		MarketGrowthPct: m.MarketGrowthPct,
		MarketTrend:     m.MarketTrend,
		Verdict:         m.Verdict,
		VerdictReason:   m.VerdictReason,
	}
	for _, c := range m.Competitors {
		entry := competitorPayload{
			ID:             c.ID,
			Provider:       c.Provider,
			Sales7d:        c.Sales7d,
			Sales30d:       c.Sales30d,
			Price:          c.Price,
			Stock:          c.Stock,
			MarketSharePct: c.MarketSharePct,
		}
		if c.Trend != nil {
			entry.Pattern = c.Trend.Pattern
			entry.TrendScore = c.Trend.Score
		}
		resp.Competitors = append(resp.Competitors, entry)
	}
	return resp
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	var req marketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, 400, "invalid json: query is required")
		return
	}

	resp, err := s.runMarket(r.Context(), req)
	if err != nil {
		logger.Error(logTag, fmt.Sprintf("market analysis failed: %v", err))
		writeError(w, 502, err.Error())
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()
	writeJSON(w, cfg)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var patch config.Config
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, 400, "invalid json")
		return
	}

	s.mu.Lock()
	s.cfg = &patch
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.SaveConfig(&patch); err != nil {
			logger.Warn(logTag, fmt.Sprintf("SaveConfig failed: %v", err))
		}
	}
	writeJSON(w, &patch)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, []store.RunRecord{})
		return
	}
	writeJSON(w, s.db.GetRuns(50))
}
