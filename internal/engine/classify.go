package engine

import (
	"fmt"
	"math"

	"catalogengine/internal/config"
	"catalogengine/internal/model"
)

// priorWeekSalesFloor is the "real prior history" threshold of the
// growth branches: a prior week counts only if its total exceeds 10
// units. Independent of the filter's weekly-sales gate, which asks a
// different question with a much higher bar.
const priorWeekSalesFloor = 10

// Classify assigns one trend pattern to a product's weekly windows via
// an ordered decision tree, first match wins: degenerate and
// manipulation patterns are checked before any growth claim. It cannot
// fail: missing or degenerate inputs fall through to SIN_DATOS, never
// an error.
func Classify(cfg *config.Config, weeks []model.WeeklyMetrics, wowGrowth []float64, dailySeries []model.DailyPoint, weeksWithThreshold int) (pattern model.PatternVariant, reason string, alerts []string, score int) {
	alerts = append(alerts, fmt.Sprintf("solid history: %d/%d weeks ≥ threshold", weeksWithThreshold, len(weeks)))

	if len(weeks) == 0 || weeks[0].TotalSales == 0 {
		return model.PatternSinDatos, "sin ventas en la semana actual", alerts, 0
	}

	current := weeks[0]
	consistency := current.ConsistencyPct

	growth0 := growthAt(wowGrowth, 0)
	growth1, haveGrowth1 := growthAtOK(wowGrowth, 1)

	// APARICION_SUBITA: sales now but effectively none two weeks ago.
	if priorTwoWeeksTotal(weeks) <= cfg.AppearancePriorWeeksMax && current.TotalSales > cfg.AppearanceCurrentMin {
		alerts = append(alerts, fmt.Sprintf("aparición súbita: semanas -1/-2 suman %d, semana actual %d", priorTwoWeeksTotal(weeks), current.TotalSales))
		return model.PatternAparicionSubita, "historial insuficiente: producto sin ventas previas relevantes", alerts, 45
	}

	peakWeek, peakVsCurrent := peakWeekAndRatio(weeks)

	// VIRAL_MUERTO: peak was far above the current week.
	if peakWeek > 0 && peakVsCurrent > cfg.PeakRatioThreshold {
		s := 40 - peakWeek*10
		if s < 10 {
			s = 10
		}
		alerts = append(alerts, fmt.Sprintf("pico en semana -%d, %.1fx la venta actual", peakWeek, peakVsCurrent))
		return model.PatternViralMuerto, "patrón viral muerto: pico histórico muy superior a la venta actual", alerts, s
	}

	// PICO_UNICO: a single day dominates the most recent 14-day window.
	if maxDayShare := maxDayShareLast14(dailySeries); maxDayShare > cfg.SingleDaySharePct {
		alerts = append(alerts, fmt.Sprintf("un solo día concentra %.1f%% de las ventas recientes", maxDayShare))
		return model.PatternPicoUnico, "pico único: un día concentra más de la mitad de las ventas", alerts, 25
	}

	// DESPEGANDO
	if hasRealPriorHistory(weeks, priorWeekSalesFloor) && growth0 > cfg.GrowthCutoffHigh && (!haveGrowth1 || growth1 >= 0) && consistency >= cfg.ConsistencyCutoffHigh {
		s := 70 + int(math.Floor(growth0/5)) + int(math.Floor(consistency/10))
		if s > 95 {
			s = 95
		}
		alerts = append(alerts, fmt.Sprintf("crecimiento semanal %.1f%%, consistencia %.1f%%", growth0, consistency))
		return model.PatternDespegando, "despegando: crecimiento fuerte y sostenido con buena consistencia", alerts, s
	}

	// CRECIMIENTO_SOSTENIDO
	if len(weeks) > 1 && weeks[1].TotalSales > priorWeekSalesFloor && growth0 > cfg.GrowthCutoffLow && consistency >= cfg.ConsistencyCutoffMid {
		s := 60 + int(math.Floor(growth0/3))
		if s > 85 {
			s = 85
		}
		alerts = append(alerts, fmt.Sprintf("crecimiento semanal %.1f%%, consistencia %.1f%%", growth0, consistency))
		return model.PatternCrecimientoSostenido, "crecimiento sostenido semana a semana", alerts, s
	}

	// ESTABLE
	if math.Abs(growth0) <= cfg.GrowthCutoffHigh && consistency >= cfg.ConsistencyCutoffMid {
		s := 55 + int(math.Floor(consistency/5))
		alerts = append(alerts, fmt.Sprintf("venta estable, variación semanal %.1f%%", growth0))
		return model.PatternEstable, "venta estable semana a semana", alerts, s
	}

	// DECAYENDO
	if growth0 < -cfg.GrowthCutoffHigh {
		s := 50 + int(growth0/2)
		if s < 20 {
			s = 20
		}
		alerts = append(alerts, fmt.Sprintf("caída semanal de %.1f%%", growth0))
		return model.PatternDecayendo, "decayendo: caída sostenida en ventas", alerts, s
	}

	// VOLATIL
	if math.Abs(growth0) > 60 && consistency < cfg.ConsistencyCutoffHigh {
		alerts = append(alerts, fmt.Sprintf("variación errática de %.1f%%, consistencia %.1f%%", growth0, consistency))
		return model.PatternVolatil, "volátil: variación sin dirección clara", alerts, 35
	}

	// INCONSISTENTE
	if consistency < cfg.ConsistencyCutoffLow {
		alerts = append(alerts, fmt.Sprintf("consistencia de %.1f%% en la semana actual", consistency))
		return model.PatternInconsistente, "inconsistente: pocos días activos por semana", alerts, 35
	}

	s := 50 + int(math.Floor(consistency/4))
	alerts = append(alerts, "patrón sin clasificación clara")
	return model.PatternEvaluar, "evaluar manualmente: no encaja en un patrón definido", alerts, s
}

func growthAt(growth []float64, i int) float64 {
	if i < 0 || i >= len(growth) {
		return 0
	}
	return growth[i]
}

func growthAtOK(growth []float64, i int) (float64, bool) {
	if i < 0 || i >= len(growth) {
		return 0, false
	}
	return growth[i], true
}

func priorTwoWeeksTotal(weeks []model.WeeklyMetrics) int {
	total := 0
	if len(weeks) > 1 {
		total += weeks[1].TotalSales
	}
	if len(weeks) > 2 {
		total += weeks[2].TotalSales
	}
	return total
}

// peakWeekAndRatio finds the week with the highest total_sales and its
// ratio against the current (week 0) total.
func peakWeekAndRatio(weeks []model.WeeklyMetrics) (peakWeek int, ratio float64) {
	if len(weeks) == 0 {
		return 0, 0
	}
	peak := weeks[0]
	for i, w := range weeks {
		if w.TotalSales > peak.TotalSales {
			peak = w
			peakWeek = i
		}
	}
	if weeks[0].TotalSales == 0 {
		return peakWeek, 0
	}
	return peakWeek, float64(peak.TotalSales) / float64(weeks[0].TotalSales)
}

// maxDayShareLast14 returns the share (0-100) of the single highest-selling
// day within the most recent 14 days of the series.
func maxDayShareLast14(series []model.DailyPoint) float64 {
	sorted := model.SortedDescending(series)
	if len(sorted) > 14 {
		sorted = sorted[:14]
	}
	total := 0
	maxDay := 0
	for _, d := range sorted {
		total += d.SoldUnits
		if d.SoldUnits > maxDay {
			maxDay = d.SoldUnits
		}
	}
	if total == 0 {
		return 0
	}
	return float64(maxDay) / float64(total) * 100
}

// hasRealPriorHistory reports whether at least two weeks prior to the
// current one have total_sales above the given floor.
func hasRealPriorHistory(weeks []model.WeeklyMetrics, floor int) bool {
	count := 0
	for i := 1; i < len(weeks); i++ {
		if weeks[i].TotalSales > floor {
			count++
		}
	}
	return count >= 2
}
