package engine

import (
	"fmt"
	"sort"
	"sync"

	"catalogengine/internal/config"
	"catalogengine/internal/model"
)

// weeksToMonthProjection scales a 7-day total to a 30-day projection
// when computing market growth. Kept at 4.28 for output parity with the
// upstream dashboard's own projection.
const weeksToMonthProjection = 4.28

// AggregateMarket combines the competitors selling under a given query
// label into totals, shares, a growth projection, and a verdict.
// Competitors are expected to already carry their own TrendAnalysis.
func AggregateMarket(query string, competitors []model.Competitor) model.MarketAnalysis {
	if len(competitors) == 0 {
		return model.MarketAnalysis{
			Query:         query,
			MarketTrend:   model.MarketTrendEstable,
			Verdict:       model.VerdictSinDatos,
			VerdictReason: "sin competidores registrados para esta búsqueda",
		}
	}

	var total7d, total30d int
	for _, c := range competitors {
		total7d += c.Sales7d
		total30d += c.Sales30d
	}

	out := make([]model.Competitor, len(competitors))
	copy(out, competitors)
	for i := range out {
		if total7d > 0 {
			out[i].MarketSharePct = float64(out[i].Sales7d) / float64(total7d) * 100
		} else {
			out[i].MarketSharePct = 0
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sales7d > out[j].Sales7d
	})

	competitorCount := 0
	for _, c := range out {
		if c.Sales7d > 0 {
			competitorCount++
		}
	}

	var leaderShare float64
	if len(out) > 0 {
		leaderShare = out[0].MarketSharePct
	}

	var growthPct float64
	if total30d > 0 {
		growthPct = (float64(total7d)*weeksToMonthProjection - float64(total30d)) / float64(total30d) * 100
	}

	marketTrend := model.MarketTrendEstable
	switch {
	case growthPct > 15:
		marketTrend = model.MarketTrendCreciendo
	case growthPct < -15:
		marketTrend = model.MarketTrendDecayendo
	}

	verdict, reason := marketVerdict(competitorCount, leaderShare, growthPct)

	return model.MarketAnalysis{
		Query:           query,
		TotalSales7d:    total7d,
		TotalSales30d:   total30d,
		CompetitorCount: competitorCount,
		Competitors:     out,
		LeaderSharePct:  leaderShare,
		MarketGrowthPct: growthPct,
		MarketTrend:     marketTrend,
		Verdict:         verdict,
		VerdictReason:   reason,
	}
}

// CompetitorHistory pairs a competitor snapshot with its own daily sales
// series, the unit AnalyzeMarket fans out over.
type CompetitorHistory struct {
	Competitor model.Competitor
	History    []model.DailyPoint
}

// AnalyzeMarket classifies each competitor's own trend concurrently,
// then aggregates the annotated competitors into a market verdict. Each
// classification is pure and independent, so the fan-out is a plain
// bounded WaitGroup; a competitor with no history keeps a nil Trend and
// still participates in the share/verdict math.
func AnalyzeMarket(cfg *config.Config, query string, entries []CompetitorHistory, maxConcurrency int) model.MarketAnalysis {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}

	competitors := make([]model.Competitor, len(entries))
	slots := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup
	for i, e := range entries {
		i, e := i, e
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()

			c := e.Competitor
			if len(e.History) > 0 {
				trend := AnalyzeTrend(cfg, e.History)
				c.Trend = &trend
			}
			competitors[i] = c
		}()
	}
	wg.Wait()

	return AggregateMarket(query, competitors)
}

// marketVerdict applies the ordered verdict decision tree: decline is
// checked before competition tiers, first match wins.
func marketVerdict(competitorCount int, leaderShare, growthPct float64) (model.MarketVerdict, string) {
	switch {
	case growthPct < -40:
		return model.VerdictDecayendo, fmt.Sprintf("mercado en caída: crecimiento %.1f%%", growthPct)

	case competitorCount <= 2:
		return model.VerdictOportunidadAlta, fmt.Sprintf("baja competencia: %d competidores activos", competitorCount)

	case competitorCount <= 4:
		switch {
		case growthPct > 10:
			return model.VerdictOportunidadAlta, fmt.Sprintf("%d competidores con crecimiento %.1f%%", competitorCount, growthPct)
		case growthPct > -15:
			return model.VerdictOportunidadMedia, fmt.Sprintf("%d competidores, crecimiento moderado %.1f%%", competitorCount, growthPct)
		default:
			return model.VerdictDecayendo, fmt.Sprintf("%d competidores, crecimiento %.1f%%", competitorCount, growthPct)
		}

	case competitorCount <= 7:
		switch {
		case leaderShare > 50:
			return model.VerdictDominado, fmt.Sprintf("líder concentra %.1f%% del mercado", leaderShare)
		case growthPct > 0:
			return model.VerdictOportunidadMedia, fmt.Sprintf("%d competidores, crecimiento %.1f%%", competitorCount, growthPct)
		default:
			return model.VerdictSaturado, fmt.Sprintf("%d competidores sin crecimiento", competitorCount)
		}

	default:
		if leaderShare > 40 {
			return model.VerdictDominado, fmt.Sprintf("líder concentra %.1f%% del mercado", leaderShare)
		}
		return model.VerdictSaturado, fmt.Sprintf("%d competidores, mercado saturado", competitorCount)
	}
}
