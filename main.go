//go:debug httpmuxgo121=0

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"catalogengine/internal/advisor"
	"catalogengine/internal/api"
	"catalogengine/internal/config"
	"catalogengine/internal/engine"
	"catalogengine/internal/ingest"
	"catalogengine/internal/logger"
	"catalogengine/internal/model"
	"catalogengine/internal/store"
)

func main() {
	minSales := flag.Int("min-sales", 50, "minimum sales_7d a product must have to be fetched")
	maxProducts := flag.Int("max-products", 200, "maximum products to pull from the listing")
	maxPages := flag.Int("max-pages", 3, "maximum listing pages to walk")
	country := flag.String("country", "CO", "country preset (CO, MX, EC)")
	top := flag.Int("top", 20, "how many ranked products to print")
	visible := flag.Bool("visible", false, "print progress as it happens instead of only the final table")
	debug := flag.Bool("debug", false, "enable debug-only invariant assertions")
	noAI := flag.Bool("no-ai", false, "skip the AI advisor commentary pass")
	showDescartados := flag.Bool("show-descartados", false, "also print a histogram of discard reasons by gate")
	demo := flag.Bool("demo", false, "use the deterministic demo provider instead of the live dashboard")
	market := flag.String("market", "", "analyze the competitive market for this product query instead of scanning the catalog")
	serve := flag.Int("serve", 0, "if set, run the HTTP API on this port instead of a one-shot scan")
	flag.Parse()

	logger.Banner("catalogctl")

	db, err := store.Open()
	if err != nil {
		logger.Error("MAIN", fmt.Sprintf("store open failed: %v", err))
		os.Exit(1)
	}
	defer db.Close()

	cfg := db.LoadConfig()
	cfg.Debug = *debug
	if preset, ok := config.CountryPresetFor(*country); ok {
		cfg.Country = preset.Code
		cfg.ShippingCost = preset.ShippingCost
		cfg.CPA = preset.CPA
	}

	var provider ingest.Provider
	if *demo {
		provider = ingest.NewDemoProvider(*maxProducts)
	} else {
		jwt := os.Getenv("DROPKILLER_JWT")
		if jwt == "" {
			logger.Error("MAIN", "DROPKILLER_JWT is not set and -demo was not passed")
			os.Exit(1)
		}
		provider = ingest.NewHTTPProvider(jwt, 4, 250*time.Millisecond)
	}

	var adv advisor.Advisor = advisor.NullAdvisor{}
	if !*noAI {
		if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
			if claudeAdv, ok := advisor.NewClaudeAdvisor(apiKey); ok {
				adv = claudeAdv
			}
		} else {
			logger.Warn("MAIN", "ANTHROPIC_API_KEY not set, AI advisor disabled for this run")
		}
	}

	if *serve > 0 {
		runServer(cfg, provider, db, adv, *serve)
		return
	}

	if *market != "" {
		os.Exit(runMarket(cfg, provider, *market))
	}

	os.Exit(runScan(cfg, provider, db, adv, scanArgs{
		minSales:        *minSales,
		maxProducts:     *maxProducts,
		maxPages:        *maxPages,
		top:             *top,
		visible:         *visible,
		noAI:            *noAI,
		showDescartados: *showDescartados,
	}))
}

func runServer(cfg *config.Config, provider ingest.Provider, db *store.DB, adv advisor.Advisor, port int) {
	srv := api.NewServer(cfg, provider, db, adv, 8)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("MAIN", fmt.Sprintf("server error: %v", err))
		os.Exit(1)
	}
}

type scanArgs struct {
	minSales        int
	maxProducts     int
	maxPages        int
	top             int
	visible         bool
	noAI            bool
	showDescartados bool
}

// runScan executes one fetch → analyze → rank → advise → persist pass
// and prints a summary table, returning the process exit code: 0 on any
// run that produced a ranked result, even empty; 1 when no product
// could be fetched at all.
func runScan(cfg *config.Config, provider ingest.Provider, db *store.DB, adv advisor.Advisor, args scanArgs) int {
	ctx := context.Background()
	progress := func(msg string) {
		if args.visible {
			logger.Info("SCAN", msg)
		}
	}

	progress("fetching product listing")
	opts := ingest.FetchOptions{
		Country:  cfg.Country,
		MinSales: args.minSales,
		MinStock: cfg.MinStock,
		MinPrice: cfg.MinPrice,
		MaxPrice: cfg.MaxPrice,
		PageSize: 100,
	}

	all, err := fetchAll(ctx, provider, opts, args.maxPages, args.maxProducts)
	if err != nil {
		logger.Error("SCAN", fmt.Sprintf("fetch products: %v", err))
		return 1
	}
	if len(all) == 0 {
		logger.Warn("SCAN", "no products fetched")
		return 1
	}
	progress(fmt.Sprintf("fetched %d products", len(all)))

	uuids := make([]string, len(all))
	for i, p := range all {
		uuids[i] = p.UUID
	}

	progress("fetching sales histories")
	histories, err := provider.FetchHistories(ctx, uuids)
	if err != nil {
		logger.Error("SCAN", fmt.Sprintf("fetch histories: %v", err))
		return 1
	}

	items := make([]engine.ProductWithHistory, len(all))
	for i, p := range all {
		items[i] = engine.ProductWithHistory{Product: p, History: histories[p.UUID]}
	}

	progress(fmt.Sprintf("analyzing %d products", len(items)))
	analyzed, err := engine.AnalyzeBatch(ctx, cfg, items, 8)
	if err != nil {
		logger.Error("SCAN", fmt.Sprintf("analyze batch: %v", err))
		return 1
	}

	progress("ranking")
	ranked := engine.Rank(analyzed)

	logger.Section(fmt.Sprintf("%s: %d analyzed, %d passed, %d discarded", cfg.Country, ranked.Stats.Total, ranked.Stats.Passed, ranked.Stats.Discarded))

	top := args.top
	if top <= 0 || top > len(ranked.Ranked) {
		top = len(ranked.Ranked)
	}
	for i, p := range ranked.Ranked[:top] {
		line := fmt.Sprintf("%2d. %-30s score=%-3d pattern=%-22s roi=%.1f%% price=$%s",
			i+1, truncate(p.Product.Name, 30), p.Trend.Score, p.Trend.Pattern, p.Margin.ROIPct, humanize.Comma(int64(p.Margin.OptimalPrice)))
		if !args.noAI {
			if comment, err := adv.Comment(ctx, p); err == nil && comment != "" {
				line += "\n    " + comment
			}
		}
		fmt.Println(line)
	}

	if args.showDescartados {
		logger.Section("discarded")
		hist := ranked.Stats.DiscardHistogram
		keys := make([]string, 0, len(hist))
		for k := range hist {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-40s %d\n", k, hist[k])
		}
	}

	if db != nil {
		runID, err := db.StartRun(cfg.Country, ranked.Stats.Total, ranked.Stats.Passed, ranked.Stats.Discarded, time.Now().Format(time.RFC3339))
		if err != nil {
			logger.Warn("SCAN", fmt.Sprintf("StartRun failed: %v", err))
		} else {
			db.SaveAnalyzed(runID, persistedFrom(analyzed))
		}
	}

	logger.Success("SCAN", fmt.Sprintf("%d ranked", len(ranked.Ranked)))
	return 0
}

// runMarket aggregates the competing suppliers for a product query and
// prints the market verdict with a per-competitor share table.
func runMarket(cfg *config.Config, provider ingest.Provider, query string) int {
	ctx := context.Background()

	competitors, err := provider.FetchCompetitors(ctx, query, cfg.Country)
	if err != nil {
		logger.Error("MARKET", fmt.Sprintf("fetch competitors: %v", err))
		return 1
	}

	ids := make([]string, len(competitors))
	for i, c := range competitors {
		ids[i] = c.ID
	}
	histories, err := provider.FetchHistories(ctx, ids)
	if err != nil {
		logger.Error("MARKET", fmt.Sprintf("fetch competitor histories: %v", err))
		return 1
	}

	entries := make([]engine.CompetitorHistory, len(competitors))
	for i, c := range competitors {
		entries[i] = engine.CompetitorHistory{Competitor: c, History: histories[c.ID].History}
	}

	m := engine.AnalyzeMarket(cfg, query, entries, 8)

	logger.Section(fmt.Sprintf("mercado %q: %s (%s)", m.Query, m.Verdict, m.VerdictReason))
	fmt.Printf("ventas 7d: %s | ventas 30d: %s | crecimiento: %.1f%% (%s)\n",
		humanize.Comma(int64(m.TotalSales7d)), humanize.Comma(int64(m.TotalSales30d)), m.MarketGrowthPct, m.MarketTrend)
	for i, c := range m.Competitors {
		line := fmt.Sprintf("%2d. %-26s share=%5.1f%% ventas7d=%-5d precio=$%s",
			i+1, truncate(c.Provider, 26), c.MarketSharePct, c.Sales7d, humanize.Comma(int64(c.Price)))
		if c.Trend != nil {
			line += fmt.Sprintf(" patrón=%s", c.Trend.Pattern)
		}
		fmt.Println(line)
	}
	return 0
}

func fetchAll(ctx context.Context, provider ingest.Provider, opts ingest.FetchOptions, maxPages, maxProducts int) ([]model.ProductRecord, error) {
	if maxPages <= 0 {
		maxPages = 1
	}
	var out []model.ProductRecord
	for page := 1; page <= maxPages && len(out) < maxProducts; page++ {
		opts.Page = page
		batch, err := provider.FetchProducts(ctx, opts)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		out = append(out, batch...)
	}
	if len(out) > maxProducts {
		out = out[:maxProducts]
	}
	return out, nil
}

func persistedFrom(analyzed []model.AnalyzedProduct) []model.PersistedAnalysis {
	out := make([]model.PersistedAnalysis, len(analyzed))
	for i, p := range analyzed {
		consistency := 0.0
		if len(p.Trend.Weeks) > 0 {
			consistency = p.Trend.Weeks[0].ConsistencyPct
		}
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
			ConsistencyPct: consistency,
			Passed:         p.Filter.Passed,
			DiscardReasons: p.Filter.DiscardReasons,
			AnalyzedAt:     time.Now(),
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
