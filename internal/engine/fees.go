package engine

import (
	"math"

	"catalogengine/internal/config"
	"catalogengine/internal/model"
)

// ComputeMargin derives the unit economics for a single cost price,
// pure and side-effect free.
func ComputeMargin(cfg *config.Config, costPrice int) model.MarginData {
	substituted := false
	if costPrice <= 0 {
		costPrice = cfg.DefaultCostWhenMissing
		substituted = true
	}

	returnShippingCost := float64(cfg.ShippingCost) * cfg.ReturnRate * cfg.ReturnShippingFraction
	fixedCosts := cfg.ShippingCost + cfg.CPA + int(math.Round(returnShippingCost))
	totalCost := costPrice + fixedCosts

	effectiveRate := 1 - cfg.ReturnRate - cfg.CancelRate

	var breakEven int
	if effectiveRate > 0 {
		breakEven = int(math.Ceil(float64(totalCost) / effectiveRate))
	}

	optimalPrice := roundToPriceEnding(int(math.Round(float64(breakEven) * 1.30)))

	effectiveRevenue := float64(optimalPrice) * effectiveRate
	netMargin := int(math.Round(effectiveRevenue - float64(totalCost)))

	var roi float64
	if totalCost > 0 {
		roi = float64(netMargin) / float64(totalCost) * 100
	}

	return model.MarginData{
		CostPrice:            costPrice,
		FixedCosts:           fixedCosts,
		TotalCost:            totalCost,
		BreakEvenPrice:       breakEven,
		OptimalPrice:         optimalPrice,
		NetMargin:            netMargin,
		ROIPct:               roi,
		CostPriceSubstituted: substituted,
		IsProfitable:         netMargin > 0,
		MarginPer100Sales:    netMargin * 100,
	}
}

// roundToPriceEnding rounds x down to the nearest market-conventional
// "XX,900" price point: floor(x/1000)*1000 + 900.
func roundToPriceEnding(x int) int {
	return (x/1000)*1000 + 900
}
