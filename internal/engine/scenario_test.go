package engine

import (
	"testing"
	"time"

	"catalogengine/internal/config"
	"catalogengine/internal/model"
)

// End-to-end scenarios over AnalyzeOne: a full daily series plus a cost
// price in, pattern/score/filter verdict out.

var scenarioNow = time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

// weeklySeries builds a daily series where each listed week total is
// spread over 6 active days (and one zero day), most recent week first.
func weeklySeries(totals []int) []model.DailyPoint {
	var units []int
	for _, total := range totals {
		base := total / 6
		rem := total % 6
		for d := 0; d < 7; d++ {
			switch {
			case d >= 6:
				units = append(units, 0)
			case d < rem:
				units = append(units, base+1)
			default:
				units = append(units, base)
			}
		}
	}
	return dailySeries(scenarioNow, units)
}

func productCosting(cost int) model.ProductRecord {
	return model.ProductRecord{
		UUID:          "scenario",
		Name:          "Producto de prueba",
		ProviderPrice: cost,
		Stock:         100,
	}
}

func hasReasonPrefix(reasons []string, prefix string) bool {
	for _, r := range reasons {
		if len(r) >= len(prefix) && r[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

func TestScenario_StableSeller(t *testing.T) {
	cfg := config.Default()
	units := make([]int, 84)
	for i := range units {
		units[i] = 8
	}
	result := AnalyzeOne(cfg, productCosting(30000), dailySeries(scenarioNow, units))

	if result.Trend.Pattern != model.PatternEstable {
		t.Fatalf("pattern = %s, want ESTABLE", result.Trend.Pattern)
	}
	if result.Trend.Score < 65 || result.Trend.Score > 85 {
		t.Fatalf("score = %d, want in [65,85]", result.Trend.Score)
	}
	if result.Trend.WeeksWithThresholdSales != 12 {
		t.Fatalf("weeks_with_threshold_sales = %d, want 12", result.Trend.WeeksWithThresholdSales)
	}
	if result.Margin.ROIPct < 20 {
		t.Fatalf("roi = %v, want >= 20", result.Margin.ROIPct)
	}
	if !result.Filter.Passed {
		t.Fatalf("expected pass, got %v", result.Filter.DiscardReasons)
	}
}

func TestScenario_DeadViral(t *testing.T) {
	cfg := config.Default()
	units := make([]int, 84)
	for i := range units {
		switch {
		case i < 21:
			units[i] = i % 3 // trickle of 0-2 sales/day
		case i >= 56 && i <= 70:
			units[i] = 50
		default:
			units[i] = 0
		}
	}
	result := AnalyzeOne(cfg, productCosting(30000), dailySeries(scenarioNow, units))

	if result.Trend.Pattern != model.PatternViralMuerto {
		t.Fatalf("pattern = %s, want VIRAL_MUERTO", result.Trend.Pattern)
	}
	if result.Trend.PeakWeek < 8 || result.Trend.PeakWeek > 10 {
		t.Fatalf("peak_week = %d, want in [8,10]", result.Trend.PeakWeek)
	}
	if result.Trend.PeakVsCurrent < 2.5 {
		t.Fatalf("peak_vs_current = %v, want >= 2.5", result.Trend.PeakVsCurrent)
	}
	if result.Trend.Score > 30 {
		t.Fatalf("score = %d, want <= 30", result.Trend.Score)
	}
	if !hasReasonPrefix(result.Filter.DiscardReasons, "Patrón descartado: VIRAL_MUERTO") {
		t.Fatalf("expected blacklist reason, got %v", result.Filter.DiscardReasons)
	}
}

func TestScenario_SingleDaySpike(t *testing.T) {
	cfg := config.Default()
	units := make([]int, 30)
	for i := range units {
		units[i] = 1
	}
	units[3] = 500
	result := AnalyzeOne(cfg, productCosting(30000), dailySeries(scenarioNow, units))

	if result.Trend.Pattern != model.PatternPicoUnico {
		t.Fatalf("pattern = %s, want PICO_UNICO", result.Trend.Pattern)
	}
	if result.Trend.Score != 25 {
		t.Fatalf("score = %d, want 25", result.Trend.Score)
	}
	if result.Filter.Passed {
		t.Fatalf("expected filter fail for PICO_UNICO")
	}
}

func TestScenario_SuddenAppearance(t *testing.T) {
	cfg := config.Default()
	units := make([]int, 21)
	copy(units, []int{6, 6, 6, 6, 6, 5, 5}) // 40 units this week
	units[7] = 1                            // 2 units across the prior two weeks
	units[14] = 1
	result := AnalyzeOne(cfg, productCosting(30000), dailySeries(scenarioNow, units))

	if result.Trend.Pattern != model.PatternAparicionSubita {
		t.Fatalf("pattern = %s, want APARICION_SUBITA", result.Trend.Pattern)
	}
	if result.Trend.Score != 45 {
		t.Fatalf("score = %d, want 45", result.Trend.Score)
	}
	if !hasReasonPrefix(result.Filter.DiscardReasons, "Sin historial") {
		t.Fatalf("expected missing-history reason, got %v", result.Filter.DiscardReasons)
	}
}

func TestScenario_LauncherFailsHistoryGate(t *testing.T) {
	cfg := config.Default()
	result := AnalyzeOne(cfg, productCosting(28000), weeklySeries([]int{80, 55, 40, 25}))

	if result.Trend.Pattern != model.PatternDespegando {
		t.Fatalf("pattern = %s, want DESPEGANDO", result.Trend.Pattern)
	}
	if result.Trend.Score < 85 {
		t.Fatalf("score = %d, want >= 85", result.Trend.Score)
	}
	// Gate precedence: a strong launcher with only 4 weeks of history is
	// still discarded on the solid-history gate.
	if result.Filter.Passed {
		t.Fatalf("expected fail on solid-history gate")
	}
	if !hasReasonPrefix(result.Filter.DiscardReasons, "Sin historial") {
		t.Fatalf("expected missing-history reason, got %v", result.Filter.DiscardReasons)
	}
}

func TestScenario_IdealPass(t *testing.T) {
	cfg := config.Default()
	totals := []int{60, 62, 58, 65, 70, 68, 72, 66, 64, 61, 63, 67}
	cfgDebug := *cfg
	cfgDebug.Debug = true
	result := AnalyzeOne(&cfgDebug, productCosting(25000), weeklySeries(totals))

	if result.Trend.Pattern != model.PatternEstable && result.Trend.Pattern != model.PatternCrecimientoSostenido {
		t.Fatalf("pattern = %s, want ESTABLE or CRECIMIENTO_SOSTENIDO", result.Trend.Pattern)
	}
	if !result.Filter.Passed {
		t.Fatalf("expected pass, got %v", result.Filter.DiscardReasons)
	}

	ranked := Rank([]model.AnalyzedProduct{result})
	if len(ranked.Ranked) != 1 {
		t.Fatalf("expected the product in the ranked output, got %d", len(ranked.Ranked))
	}
}
