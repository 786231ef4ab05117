package model

// PatternVariant is the closed set of trend classifications a product's
// weekly decomposition can be assigned. Exactly one variant is produced
// per classification.
type PatternVariant string

const (
	PatternDespegando           PatternVariant = "DESPEGANDO"
	PatternCrecimientoSostenido PatternVariant = "CRECIMIENTO_SOSTENIDO"
	PatternEstable              PatternVariant = "ESTABLE"
	PatternDecayendo            PatternVariant = "DECAYENDO"
	PatternViralMuerto          PatternVariant = "VIRAL_MUERTO"
	PatternPicoUnico            PatternVariant = "PICO_UNICO"
	PatternAparicionSubita      PatternVariant = "APARICION_SUBITA"
	PatternInconsistente        PatternVariant = "INCONSISTENTE"
	PatternVolatil              PatternVariant = "VOLATIL"
	PatternSinDatos             PatternVariant = "SIN_DATOS"
	PatternEvaluar              PatternVariant = "EVALUAR"
)

// TrendAnalysis is the full output of the weekly decomposition + classifier
// stages for one product's daily series.
type TrendAnalysis struct {
	Weeks                   []WeeklyMetrics
	TotalSold               int
	TotalDays               int
	WowGrowthPct            []float64
	Pattern                 PatternVariant
	PatternReason           string
	Alerts                  []string
	Score                   int
	PeakWeek                int
	PeakVsCurrent           float64
	WeeksWithThresholdSales int
	HasSolidHistory         bool
}
