package engine

import (
	"catalogengine/internal/model"
)

// Decompose splits a daily series into fixed 7-day windows, sorting on
// entry so index 0 is the most recent day. numWeeks is always 12 for
// the filter gate; display callers may request 4.
func Decompose(series []model.DailyPoint, numWeeks int) []model.WeeklyMetrics {
	sorted := model.SortedDescending(series)

	weeks := make([]model.WeeklyMetrics, numWeeks)
	for i := 0; i < numWeeks; i++ {
		start := i * 7
		end := start + 7
		if start >= len(sorted) {
			weeks[i] = model.WeeklyMetrics{WeekIndex: i}
			continue
		}
		if end > len(sorted) {
			end = len(sorted)
		}
		chunk := sorted[start:end]

		observed := len(chunk)
		if observed < 5 {
			// Short tail chunk: zeroed week, original index kept.
			weeks[i] = model.WeeklyMetrics{WeekIndex: i}
			continue
		}

		weeks[i] = summarizeWeek(i, chunk, observed)
	}
	return weeks
}

func summarizeWeek(index int, chunk []model.DailyPoint, observedDays int) model.WeeklyMetrics {
	total := 0
	daysWithSales := 0
	maxDaily := 0
	minDaily := chunk[0].SoldUnits
	for _, d := range chunk {
		total += d.SoldUnits
		if d.SoldUnits > 0 {
			daysWithSales++
		}
		if d.SoldUnits > maxDaily {
			maxDaily = d.SoldUnits
		}
		if d.SoldUnits < minDaily {
			minDaily = d.SoldUnits
		}
	}

	avgDaily := float64(total) / float64(len(chunk))

	consistency := 0.0
	if observedDays > 0 {
		consistency = float64(daysWithSales) / float64(observedDays) * 100
	}

	return model.WeeklyMetrics{
		WeekIndex:      index,
		TotalSales:     total,
		DaysWithSales:  daysWithSales,
		AvgDaily:       avgDaily,
		MaxDaily:       maxDaily,
		MinDaily:       minDaily,
		ConsistencyPct: consistency,
		ObservedDays:   observedDays,
	}
}

// WowGrowth computes week-over-week growth percentages for up to the
// three leading weeks, comparing week i to week i+1. Growth is 0 when
// the prior week had no sales, since a percentage change off a zero
// base is undefined rather than infinite.
func WowGrowth(weeks []model.WeeklyMetrics) []float64 {
	n := 3
	if len(weeks) < n+1 {
		n = len(weeks) - 1
	}
	if n <= 0 {
		return nil
	}
	growth := make([]float64, n)
	for i := 0; i < n; i++ {
		prior := weeks[i+1].TotalSales
		if prior == 0 {
			growth[i] = 0
			continue
		}
		growth[i] = float64(weeks[i].TotalSales-prior) / float64(prior) * 100
	}
	return growth
}

// WeeksWithThresholdSales counts weeks whose total meets the configured
// threshold. Weeks with fewer than 5 observed days are skipped outright
// rather than counted as failures: a history that doesn't end on an
// exact 7-day boundary must not drag the count down.
func WeeksWithThresholdSales(weeks []model.WeeklyMetrics, threshold int) int {
	count := 0
	for _, w := range weeks {
		if w.ObservedDays < 5 {
			continue
		}
		if w.TotalSales >= threshold {
			count++
		}
	}
	return count
}
