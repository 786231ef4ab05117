package engine

import (
	"fmt"

	"catalogengine/internal/config"
	"catalogengine/internal/model"
)

// blacklistedPatterns are the trend variants that never pass the filter
// regardless of other metrics.
var blacklistedPatterns = map[model.PatternVariant]bool{
	model.PatternPicoUnico:       true,
	model.PatternViralMuerto:     true,
	model.PatternAparicionSubita: true,
	model.PatternSinDatos:        true,
	model.PatternInconsistente:   true,
}

// ApplyFilter runs the viability gates over one product's trend +
// margin results, plus the stock, price-band, and gross-margin gates.
// Every gate is evaluated, none short-circuits, so a caller can see
// every reason a product was discarded.
func ApplyFilter(cfg *config.Config, product model.ProductRecord, trend model.TrendAnalysis, margin model.MarginData) model.FilterResult {
	var reasons []string
	metrics := make(map[string]float64, 10)

	currentWeek := model.WeeklyMetrics{}
	if len(trend.Weeks) > 0 {
		currentWeek = trend.Weeks[0]
	}
	var wow0 float64
	if len(trend.WowGrowthPct) > 0 {
		wow0 = trend.WowGrowthPct[0]
	}

	metrics["sales_7d"] = float64(currentWeek.TotalSales)
	metrics["active_days"] = float64(currentWeek.DaysWithSales)
	metrics["wow_change_pct"] = wow0
	metrics["roi_pct"] = margin.ROIPct
	var costOverPVP float64
	if margin.OptimalPrice > 0 {
		costOverPVP = float64(margin.CostPrice) / float64(margin.OptimalPrice)
	}
	metrics["cost_over_pvp_ratio"] = costOverPVP
	var grossMarginPct float64
	if margin.OptimalPrice > 0 {
		grossMarginPct = float64(margin.OptimalPrice-margin.CostPrice) / float64(margin.OptimalPrice) * 100
	}
	metrics["gross_margin_pct"] = grossMarginPct
	metrics["weeks_with_threshold_sales"] = float64(trend.WeeksWithThresholdSales)
	metrics["pattern"] = 0 // patterns aren't numeric; reported for shape parity only

	if trend.WeeksWithThresholdSales < cfg.MinWeeksWithThresholdSales {
		reasons = append(reasons, fmt.Sprintf("Sin historial %d sem (tiene %d/%d)", cfg.MinWeeksWithThresholdSales, trend.WeeksWithThresholdSales, cfg.MinWeeksWithThresholdSales))
	}

	if blacklistedPatterns[trend.Pattern] {
		reasons = append(reasons, fmt.Sprintf("Patrón descartado: %s", trend.Pattern))
	}

	if currentWeek.TotalSales < cfg.MinSales7d {
		reasons = append(reasons, fmt.Sprintf("Pocas ventas: %d (mínimo %d)", currentWeek.TotalSales, cfg.MinSales7d))
	}

	if currentWeek.DaysWithSales < cfg.MinActiveDays {
		reasons = append(reasons, fmt.Sprintf("Pocos días activos: %d (mínimo %d)", currentWeek.DaysWithSales, cfg.MinActiveDays))
	}

	if wow0 < cfg.MaxWowDropPct {
		reasons = append(reasons, fmt.Sprintf("Venta en caída: %.1f%%", wow0))
	}

	if margin.ROIPct < cfg.MinROIPct {
		reasons = append(reasons, fmt.Sprintf("ROI bajo: %.1f%% (mínimo %.1f%%)", margin.ROIPct, cfg.MinROIPct))
	}

	if costOverPVP > cfg.MaxCostOverPVP {
		reasons = append(reasons, fmt.Sprintf("Costo muy alto frente al precio: %.2f (máximo %.2f)", costOverPVP, cfg.MaxCostOverPVP))
	}

	if grossMarginPct < cfg.MinMarginPct {
		reasons = append(reasons, fmt.Sprintf("Margen bruto bajo: %.1f%% (mínimo %.1f%%)", grossMarginPct, cfg.MinMarginPct))
	}

	if product.Stock < cfg.MinStock {
		reasons = append(reasons, fmt.Sprintf("Stock insuficiente: %d (mínimo %d)", product.Stock, cfg.MinStock))
	}

	if product.ProviderPrice < cfg.MinPrice {
		reasons = append(reasons, fmt.Sprintf("Precio muy bajo: %d (mínimo %d)", product.ProviderPrice, cfg.MinPrice))
	}

	if product.ProviderPrice > cfg.MaxPrice {
		reasons = append(reasons, fmt.Sprintf("Precio muy alto: %d (máximo %d)", product.ProviderPrice, cfg.MaxPrice))
	}

	return model.FilterResult{
		Passed:         len(reasons) == 0,
		DiscardReasons: reasons,
		Metrics:        metrics,
	}
}

// DiscardHistogram aggregates discard reasons across a population into
// a per-gate count. Reasons are bucketed by their leading phrase
// (before the first colon) so differing numeric suffixes still group
// together.
func DiscardHistogram(results []model.FilterResult) map[string]int {
	hist := make(map[string]int)
	for _, r := range results {
		for _, reason := range r.DiscardReasons {
			hist[reasonBucket(reason)]++
		}
	}
	return hist
}

func reasonBucket(reason string) string {
	for i, r := range reason {
		if r == ':' {
			return reason[:i]
		}
	}
	return reason
}
