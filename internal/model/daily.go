package model

import (
	"sort"
	"time"
)

// DailyPoint is a single day of sales for one product/competitor series.
type DailyPoint struct {
	Date              time.Time
	SoldUnits         int
	Stock             *int
	ExternalProductID string
}

// SortedDescending returns a copy of series ordered most-recent-first.
// Callers may hand series in either order; the engine normalizes on
// entry.
func SortedDescending(series []DailyPoint) []DailyPoint {
	out := make([]DailyPoint, len(series))
	copy(out, series)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
