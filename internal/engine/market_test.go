package engine

import (
	"fmt"
	"math"
	"testing"
	"time"

	"catalogengine/internal/config"
	"catalogengine/internal/model"
)

func TestAggregateMarket_Empty(t *testing.T) {
	m := AggregateMarket("widget", nil)
	if m.Verdict != model.VerdictSinDatos {
		t.Fatalf("verdict = %s, want SIN_DATOS", m.Verdict)
	}
}

func TestAggregateMarket_SharesSumTo100(t *testing.T) {
	competitors := []model.Competitor{
		{ID: "a", Sales7d: 100, Sales30d: 400},
		{ID: "b", Sales7d: 200, Sales30d: 800},
		{ID: "c", Sales7d: 50, Sales30d: 200},
	}
	m := AggregateMarket("widget", competitors)
	var sum float64
	for _, c := range m.Competitors {
		sum += c.MarketSharePct
	}
	if math.Abs(sum-100) > 0.1 {
		t.Fatalf("sum of market shares = %v, want ~100", sum)
	}
}

func TestAggregateMarket_SharesZeroWhenNoSales(t *testing.T) {
	competitors := []model.Competitor{
		{ID: "a", Sales7d: 0, Sales30d: 0},
		{ID: "b", Sales7d: 0, Sales30d: 0},
	}
	m := AggregateMarket("widget", competitors)
	for _, c := range m.Competitors {
		if c.MarketSharePct != 0 {
			t.Fatalf("expected zero share with zero total sales, got %v", c.MarketSharePct)
		}
	}
}

func TestAggregateMarket_OrderedBySales7dDesc(t *testing.T) {
	competitors := []model.Competitor{
		{ID: "a", Sales7d: 10},
		{ID: "b", Sales7d: 90},
		{ID: "c", Sales7d: 40},
	}
	m := AggregateMarket("widget", competitors)
	if m.Competitors[0].ID != "b" || m.Competitors[1].ID != "c" || m.Competitors[2].ID != "a" {
		t.Fatalf("unexpected order: %+v", m.Competitors)
	}
}

func TestAggregateMarket_OneCompetitorHighGrowth(t *testing.T) {
	competitors := []model.Competitor{
		{ID: "solo", Sales7d: 400, Sales30d: 1120}, // growth ~= (400*4.28-1120)/1120*100 ~= 52.8%
	}
	m := AggregateMarket("widget", competitors)
	if m.Verdict != model.VerdictOportunidadAlta {
		t.Fatalf("verdict = %s, want OPORTUNIDAD_ALTA", m.Verdict)
	}
}

func TestAggregateMarket_TenCompetitorsDominatedLeader(t *testing.T) {
	competitors := make([]model.Competitor, 10)
	competitors[0] = model.Competitor{ID: "leader", Sales7d: 620, Sales30d: 2000}
	for i := 1; i < 10; i++ {
		competitors[i] = model.Competitor{ID: fmt.Sprintf("c%d", i), Sales7d: (1000 - 620) / 9, Sales30d: 100}
	}
	m := AggregateMarket("widget", competitors)
	if m.LeaderSharePct < 50 {
		t.Fatalf("leader share = %v, want >= 50 for this fixture", m.LeaderSharePct)
	}
	if m.Verdict != model.VerdictDominado {
		t.Fatalf("verdict = %s, want DOMINADO", m.Verdict)
	}
}

func TestAnalyzeMarket_AttachesTrendsAndAggregates(t *testing.T) {
	cfg := config.Default()
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	stable := make([]model.DailyPoint, 84)
	for i := range stable {
		stable[i] = model.DailyPoint{Date: now.AddDate(0, 0, -i), SoldUnits: 8}
	}

	entries := []CompetitorHistory{
		{Competitor: model.Competitor{ID: "a", Provider: "Prov A", Sales7d: 56, Sales30d: 240}, History: stable},
		{Competitor: model.Competitor{ID: "b", Provider: "Prov B", Sales7d: 120, Sales30d: 500}, History: stable},
		{Competitor: model.Competitor{ID: "c", Provider: "Prov C", Sales7d: 30, Sales30d: 100}}, // no history
	}

	m := AnalyzeMarket(cfg, "widget", entries, 2)
	if m.Query != "widget" {
		t.Fatalf("query = %q, want widget", m.Query)
	}
	if m.Competitors[0].ID != "b" {
		t.Fatalf("expected competitors ordered by sales_7d, got %+v", m.Competitors)
	}
	for _, c := range m.Competitors {
		if c.ID == "c" {
			if c.Trend != nil {
				t.Fatalf("competitor without history must keep a nil trend")
			}
			continue
		}
		if c.Trend == nil {
			t.Fatalf("competitor %s missing trend", c.ID)
		}
		if c.Trend.Pattern != model.PatternEstable {
			t.Fatalf("competitor %s pattern = %s, want ESTABLE", c.ID, c.Trend.Pattern)
		}
	}
	if m.Verdict == model.VerdictSinDatos {
		t.Fatalf("expected a real verdict with competitors present, got SIN_DATOS")
	}
}

func TestAggregateMarket_SixCompetitorsNegativeGrowthDecaying(t *testing.T) {
	competitors := make([]model.Competitor, 6)
	for i := range competitors {
		competitors[i] = model.Competitor{ID: fmt.Sprintf("c%d", i), Sales7d: 50, Sales30d: 1000}
	}
	m := AggregateMarket("widget", competitors)
	if m.MarketGrowthPct >= -15 {
		t.Fatalf("expected strongly negative growth fixture, got %v", m.MarketGrowthPct)
	}
	if m.Verdict != model.VerdictDecayendo {
		t.Fatalf("verdict = %s, want DECAYENDO", m.Verdict)
	}
}

