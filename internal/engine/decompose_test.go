package engine

import (
	"testing"
	"time"

	"catalogengine/internal/model"
)

func dailySeries(start time.Time, units []int) []model.DailyPoint {
	out := make([]model.DailyPoint, len(units))
	for i, u := range units {
		out[i] = model.DailyPoint{Date: start.AddDate(0, 0, -i), SoldUnits: u}
	}
	return out
}

func TestDecompose_ReturnsExactlyNumWeeks(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	units := make([]int, 84)
	for i := range units {
		units[i] = 8
	}
	series := dailySeries(now, units)

	weeks := Decompose(series, 12)
	if len(weeks) != 12 {
		t.Fatalf("len(weeks) = %d, want 12", len(weeks))
	}
	for i, w := range weeks {
		if w.WeekIndex != i {
			t.Fatalf("weeks[%d].WeekIndex = %d, want %d", i, w.WeekIndex, i)
		}
		if w.DaysWithSales > 7 {
			t.Fatalf("weeks[%d].DaysWithSales = %d, want <= 7", i, w.DaysWithSales)
		}
	}
}

func TestDecompose_FullWeekTotalsMatch(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	units := []int{1, 2, 3, 4, 5, 6, 7, 10, 10, 10, 10, 10, 10, 10}
	series := dailySeries(now, units)

	weeks := Decompose(series, 2)
	wantWeek0 := 1 + 2 + 3 + 4 + 5 + 6 + 7
	wantWeek1 := 70
	if weeks[0].TotalSales != wantWeek0 {
		t.Fatalf("week0 total = %d, want %d", weeks[0].TotalSales, wantWeek0)
	}
	if weeks[1].TotalSales != wantWeek1 {
		t.Fatalf("week1 total = %d, want %d", weeks[1].TotalSales, wantWeek1)
	}
}

func TestDecompose_ShortTailChunkZeroed(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	units := []int{5, 5, 5, 5, 5, 5, 5, 9, 9, 9} // 10 days: week0 full, week1 has only 3
	series := dailySeries(now, units)

	weeks := Decompose(series, 2)
	if weeks[1].TotalSales != 0 || weeks[1].ObservedDays != 0 {
		t.Fatalf("expected short tail week zeroed, got %+v", weeks[1])
	}
	if weeks[1].WeekIndex != 1 {
		t.Fatalf("zeroed week must keep its index, got %d", weeks[1].WeekIndex)
	}
}

func TestDecompose_ConsistencyFormula(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	units := []int{1, 0, 1, 0, 1, 0, 1} // 4 of 7 days with sales
	series := dailySeries(now, units)

	weeks := Decompose(series, 1)
	want := float64(4) / float64(7) * 100
	if weeks[0].ConsistencyPct != want {
		t.Fatalf("consistency_pct = %v, want %v", weeks[0].ConsistencyPct, want)
	}
}

func TestDecompose_NoPanicOnEmptySeries(t *testing.T) {
	weeks := Decompose(nil, 12)
	if len(weeks) != 12 {
		t.Fatalf("len(weeks) = %d, want 12", len(weeks))
	}
	for _, w := range weeks {
		if w.TotalSales != 0 {
			t.Fatalf("expected all-zero weeks for empty series, got %+v", w)
		}
	}
}

func TestWowGrowth_LengthCapped(t *testing.T) {
	weeks := make([]model.WeeklyMetrics, 12)
	for i := range weeks {
		weeks[i] = model.WeeklyMetrics{WeekIndex: i, TotalSales: 100 - i*5}
	}
	growth := WowGrowth(weeks)
	if len(growth) != 3 {
		t.Fatalf("len(growth) = %d, want 3", len(growth))
	}
}

func TestWowGrowth_ZeroBaseYieldsZero(t *testing.T) {
	weeks := []model.WeeklyMetrics{
		{WeekIndex: 0, TotalSales: 50},
		{WeekIndex: 1, TotalSales: 0},
	}
	growth := WowGrowth(weeks)
	if growth[0] != 0 {
		t.Fatalf("growth[0] = %v, want 0 for zero prior base", growth[0])
	}
}

func TestWeeksWithThresholdSales_SkipsZeroedTail(t *testing.T) {
	weeks := []model.WeeklyMetrics{
		{WeekIndex: 0, TotalSales: 60, ObservedDays: 7},
		{WeekIndex: 1, TotalSales: 0, ObservedDays: 0}, // zeroed tail, must not count
		{WeekIndex: 2, TotalSales: 10, ObservedDays: 7},
	}
	got := WeeksWithThresholdSales(weeks, 50)
	if got != 1 {
		t.Fatalf("WeeksWithThresholdSales = %d, want 1", got)
	}
}
