// Package config holds the tuning thresholds and cost assumptions the
// engine is parameterized by. It carries no secrets: API keys, tokens,
// and other collaborator credentials live with the collaborators that
// use them (internal/ingest, internal/advisor), never here.
package config

import "strings"

// Config is the full set of tuning options the engine recognizes. Every
// field has a working default for the Colombian dropshipping model;
// callers override only what they need to.
type Config struct {
	// Cost model
	ShippingCost           int
	CPA                    int
	ReturnRate             float64
	CancelRate             float64
	ReturnShippingFraction float64
	DefaultCostWhenMissing int

	// Viability filter thresholds
	MinWeeksWithThresholdSales int
	MinSalesPerWeek            int
	MinSales7d                 int
	MinActiveDays              int
	MaxWowDropPct              float64
	MinROIPct                  float64
	MaxCostOverPVP             float64
	MinMarginPct               float64

	// Stock and price-band gates, additive to the thresholds above.
	MinStock int
	MinPrice int
	MaxPrice int

	// Classifier thresholds. The weekly-sales threshold behind the
	// solid-history week count is MinSalesPerWeek above, shared with
	// the filter's solid-history gate.
	PeakRatioThreshold      float64
	SingleDaySharePct       float64
	AppearancePriorWeeksMax int
	AppearanceCurrentMin    int
	GrowthCutoffHigh        float64
	GrowthCutoffLow         float64
	ConsistencyCutoffHigh   float64
	ConsistencyCutoffMid    float64
	ConsistencyCutoffLow    float64

	// Debug gates the engine's defensive invariant assertions.
	Debug bool

	// Country is the active preset code (e.g. "CO"), set by ForCountry or
	// by callers that apply a CountryPreset.
	Country string
}

// Default returns the standard tuning, equivalent to running with no
// -country flag (the Colombia preset).
func Default() *Config {
	return &Config{
		ShippingCost:           18000,
		CPA:                    25000,
		ReturnRate:             0.22,
		CancelRate:             0.15,
		ReturnShippingFraction: 0.5,
		DefaultCostWhenMissing: 35000,

		MinWeeksWithThresholdSales: 12,
		MinSalesPerWeek:            50,
		MinSales7d:                 50,
		MinActiveDays:              4,
		MaxWowDropPct:              -30,
		MinROIPct:                  20,
		MaxCostOverPVP:             0.40,
		MinMarginPct:               30,

		MinStock: 30,
		MinPrice: 20000,
		MaxPrice: 200000,

		PeakRatioThreshold:      2.5,
		SingleDaySharePct:       50,
		AppearancePriorWeeksMax: 5,
		AppearanceCurrentMin:    20,
		GrowthCutoffHigh:        20,
		GrowthCutoffLow:         10,
		ConsistencyCutoffHigh:   50,
		ConsistencyCutoffMid:    40,
		ConsistencyCutoffLow:    30,

		Country: "CO",
	}
}

// CountryPreset carries the per-market cost assumptions that differ
// between supported countries.
type CountryPreset struct {
	Code         string
	Name         string
	Currency     string
	ShippingCost int
	CPA          int
}

var countryPresets = map[string]CountryPreset{
	"CO": {Code: "CO", Name: "Colombia", Currency: "COP", ShippingCost: 18000, CPA: 25000},
	"MX": {Code: "MX", Name: "México", Currency: "MXN", ShippingCost: 150, CPA: 200},
	"EC": {Code: "EC", Name: "Ecuador", Currency: "USD", ShippingCost: 5, CPA: 8},
}

// ForCountry returns a copy of Default() with the given country's
// shipping/CPA substituted in. Unknown codes fall back to the Colombia
// preset rather than erroring.
func ForCountry(code string) *Config {
	cfg := Default()
	preset, ok := countryPresets[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return cfg
	}
	cfg.Country = preset.Code
	cfg.ShippingCost = preset.ShippingCost
	cfg.CPA = preset.CPA
	return cfg
}

// CountryPresetFor returns the preset for a country code and whether it
// was recognized.
func CountryPresetFor(code string) (CountryPreset, bool) {
	preset, ok := countryPresets[strings.ToUpper(strings.TrimSpace(code))]
	return preset, ok
}
