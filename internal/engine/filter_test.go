package engine

import (
	"testing"

	"catalogengine/internal/config"
	"catalogengine/internal/model"
)

func TestApplyFilter_Completeness(t *testing.T) {
	cfg := config.Default()
	product := model.ProductRecord{Stock: 100}
	trend := model.TrendAnalysis{
		Weeks:                   weeksFromTotals([]int{0}),
		Pattern:                 model.PatternSinDatos,
		WeeksWithThresholdSales: 0,
	}
	margin := model.MarginData{OptimalPrice: 25900, CostPrice: 10000}

	result := ApplyFilter(cfg, product, trend, margin)
	if result.Passed != (len(result.DiscardReasons) == 0) {
		t.Fatalf("passed=%v but discard_reasons=%v", result.Passed, result.DiscardReasons)
	}
	if result.Passed {
		t.Fatalf("expected SIN_DATOS pattern to fail the filter")
	}
}

func TestApplyFilter_AllGatesPass(t *testing.T) {
	cfg := config.Default()
	weeks := make([]model.WeeklyMetrics, 12)
	for i := range weeks {
		weeks[i] = model.WeeklyMetrics{WeekIndex: i, TotalSales: 60, DaysWithSales: 6, ObservedDays: 7}
	}
	trend := model.TrendAnalysis{
		Weeks:                   weeks,
		WowGrowthPct:            []float64{0, 0, 0},
		Pattern:                 model.PatternEstable,
		WeeksWithThresholdSales: 12,
	}
	margin := model.MarginData{CostPrice: 25000, OptimalPrice: 64900, ROIPct: 35}
	product := model.ProductRecord{ProviderPrice: 30000, Stock: 50}

	result := ApplyFilter(cfg, product, trend, margin)
	if !result.Passed {
		t.Fatalf("expected pass, got discard_reasons=%v", result.DiscardReasons)
	}
	if len(result.DiscardReasons) != 0 {
		t.Fatalf("passed but discard_reasons is non-empty: %v", result.DiscardReasons)
	}
}

func TestApplyFilter_BlacklistedPatternFails(t *testing.T) {
	cfg := config.Default()
	weeks := make([]model.WeeklyMetrics, 12)
	for i := range weeks {
		weeks[i] = model.WeeklyMetrics{WeekIndex: i, TotalSales: 60, DaysWithSales: 6, ObservedDays: 7}
	}
	trend := model.TrendAnalysis{
		Weeks:                   weeks,
		WowGrowthPct:            []float64{0},
		Pattern:                 model.PatternViralMuerto,
		WeeksWithThresholdSales: 12,
	}
	margin := model.MarginData{CostPrice: 25000, OptimalPrice: 64900, ROIPct: 35}
	product := model.ProductRecord{ProviderPrice: 30000, Stock: 50}

	result := ApplyFilter(cfg, product, trend, margin)
	if result.Passed {
		t.Fatalf("expected VIRAL_MUERTO to be blacklisted")
	}
	found := false
	for _, r := range result.DiscardReasons {
		if r == "Patrón descartado: VIRAL_MUERTO" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a blacklist reason, got %v", result.DiscardReasons)
	}
}

func TestApplyFilter_GrossMarginGate(t *testing.T) {
	cfg := config.Default()
	weeks := make([]model.WeeklyMetrics, 12)
	for i := range weeks {
		weeks[i] = model.WeeklyMetrics{WeekIndex: i, TotalSales: 60, DaysWithSales: 6, ObservedDays: 7}
	}
	trend := model.TrendAnalysis{
		Weeks:                   weeks,
		WowGrowthPct:            []float64{0, 0, 0},
		Pattern:                 model.PatternEstable,
		WeeksWithThresholdSales: 12,
	}
	// Gross margin (optimal - cost)/optimal ≈ 21%, below the 30% floor;
	// the cost/pvp ceiling is loosened so only the margin gate fires.
	cfgLoose := *cfg
	cfgLoose.MaxCostOverPVP = 0.90
	margin := model.MarginData{CostPrice: 80000, OptimalPrice: 100900, ROIPct: 35}
	product := model.ProductRecord{ProviderPrice: 90000, Stock: 50}

	result := ApplyFilter(&cfgLoose, product, trend, margin)
	if result.Passed {
		t.Fatalf("expected gross-margin gate to fail, got pass")
	}
	found := false
	for _, r := range result.DiscardReasons {
		if len(r) >= len("Margen bruto bajo") && r[:len("Margen bruto bajo")] == "Margen bruto bajo" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a gross-margin reason, got %v", result.DiscardReasons)
	}
	if result.Metrics["gross_margin_pct"] == 0 {
		t.Fatalf("expected gross_margin_pct metric to be reported")
	}
}

func TestApplyFilter_DoesNotShortCircuit(t *testing.T) {
	cfg := config.Default()
	// Nearly everything fails at once: no history, blacklisted pattern,
	// no sales, collapsing wow, bad roi, overpriced cost, negative gross
	// margin, zero stock, below min price. (weeksFromTotals gives week 0
	// six active days, so the active-days gate passes.)
	trend := model.TrendAnalysis{
		Weeks:                   weeksFromTotals([]int{0}),
		WowGrowthPct:            []float64{-90},
		Pattern:                 model.PatternSinDatos,
		WeeksWithThresholdSales: 0,
	}
	margin := model.MarginData{CostPrice: 10000, OptimalPrice: 900, ROIPct: -10}
	product := model.ProductRecord{Stock: 0}

	result := ApplyFilter(cfg, product, trend, margin)
	if len(result.DiscardReasons) < 6 {
		t.Fatalf("expected many simultaneous discard reasons, got %d: %v", len(result.DiscardReasons), result.DiscardReasons)
	}
}

func TestDiscardHistogram_Buckets(t *testing.T) {
	results := []model.FilterResult{
		{DiscardReasons: []string{"Pocas ventas: 5 (mínimo 50)"}},
		{DiscardReasons: []string{"Pocas ventas: 10 (mínimo 50)", "ROI bajo: 5.0% (mínimo 20.0%)"}},
	}
	hist := DiscardHistogram(results)
	if hist["Pocas ventas"] != 2 {
		t.Fatalf("Pocas ventas count = %d, want 2", hist["Pocas ventas"])
	}
	if hist["ROI bajo"] != 1 {
		t.Fatalf("ROI bajo count = %d, want 1", hist["ROI bajo"])
	}
}
