package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"catalogengine/internal/config"
	"catalogengine/internal/model"
)

// AnalyzeTrend runs decompose → classify over one daily series and
// assembles the full TrendAnalysis. A nil or empty history degrades to
// SIN_DATOS rather than failing; the engine exposes no error channel.
func AnalyzeTrend(cfg *config.Config, history []model.DailyPoint) model.TrendAnalysis {
	weeks := Decompose(history, 12)
	growth := WowGrowth(weeks)
	weeksWithThreshold := WeeksWithThresholdSales(weeks, cfg.MinSalesPerWeek)

	pattern, reason, alerts, score := Classify(cfg, weeks, growth, history, weeksWithThreshold)

	// A SIN_DATOS result reports zero totals even when older raw days
	// carried sales: total_sold = 0 and score = 0 go together.
	totalSold := 0
	if pattern != model.PatternSinDatos {
		for _, d := range history {
			totalSold += d.SoldUnits
		}
	}

	peakWeek, peakVsCurrent := peakWeekAndRatio(weeks)

	return model.TrendAnalysis{
		Weeks:                   weeks,
		TotalSold:               totalSold,
		TotalDays:               len(history),
		WowGrowthPct:            growth,
		Pattern:                 pattern,
		PatternReason:           reason,
		Alerts:                  alerts,
		Score:                   score,
		PeakWeek:                peakWeek,
		PeakVsCurrent:           peakVsCurrent,
		WeeksWithThresholdSales: weeksWithThreshold,
		HasSolidHistory:         weeksWithThreshold >= cfg.MinWeeksWithThresholdSales,
	}
}

// AnalyzeOne runs the full per-product pipeline (decompose, classify,
// margin, filter), pure and side-effect free.
func AnalyzeOne(cfg *config.Config, product model.ProductRecord, history []model.DailyPoint) model.AnalyzedProduct {
	trend := AnalyzeTrend(cfg, history)
	margin := ComputeMargin(cfg, product.ProviderPrice-product.Profit)
	filter := ApplyFilter(cfg, product, trend, margin)

	result := model.AnalyzedProduct{
		Product: product,
		Trend:   trend,
		Margin:  margin,
		Filter:  filter,
	}
	if cfg.Debug {
		assertInvariants(result)
	}
	return result
}

// assertInvariants defends the engine's construction invariants. Only
// debug runs pay for this; production trusts its own derivation.
func assertInvariants(p model.AnalyzedProduct) {
	if p.Trend.Pattern == model.PatternSinDatos && p.Trend.Score != 0 {
		panic(fmt.Sprintf("engine: SIN_DATOS with score %d for %s", p.Trend.Score, p.Product.UUID))
	}
	if p.Trend.Pattern == model.PatternSinDatos && p.Trend.TotalSold != 0 {
		panic(fmt.Sprintf("engine: SIN_DATOS with total_sold %d for %s", p.Trend.TotalSold, p.Product.UUID))
	}
	if p.Trend.Score < 0 || p.Trend.Score > 100 {
		panic(fmt.Sprintf("engine: score %d out of range for %s", p.Trend.Score, p.Product.UUID))
	}
	if p.Margin.OptimalPrice%1000 != 900 {
		panic(fmt.Sprintf("engine: optimal price %d breaks the XX,900 ending for %s", p.Margin.OptimalPrice, p.Product.UUID))
	}
	if p.Margin.OptimalPrice < p.Margin.BreakEvenPrice {
		panic(fmt.Sprintf("engine: optimal price %d below break-even %d for %s", p.Margin.OptimalPrice, p.Margin.BreakEvenPrice, p.Product.UUID))
	}
	if p.Filter.Passed != (len(p.Filter.DiscardReasons) == 0) {
		panic(fmt.Sprintf("engine: passed=%v with %d discard reasons for %s", p.Filter.Passed, len(p.Filter.DiscardReasons), p.Product.UUID))
	}
}

// ProductWithHistory pairs an ingest adapter's ProductRecord with its
// HistoryResponse by uuid, the unit of work AnalyzeBatch fans out over.
type ProductWithHistory struct {
	Product model.ProductRecord
	History model.HistoryResponse
}

// AnalyzeBatch fans AnalyzeOne out across a work queue, bounded by
// maxConcurrency, with cooperative cancellation at product boundaries:
// no single product's analysis is ever interrupted mid-way, since it is
// pure and takes microseconds, so ctx is only checked between products.
func AnalyzeBatch(ctx context.Context, cfg *config.Config, items []ProductWithHistory, maxConcurrency int) ([]model.AnalyzedProduct, error) {
	results := make([]model.AnalyzedProduct, len(items))

	g, ctx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = AnalyzeOne(cfg, item.Product, item.History.History)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
