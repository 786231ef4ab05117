package engine

import (
	"sort"

	"github.com/samber/lo"

	"catalogengine/internal/model"
)

// PatternSummary is one row of the population-level pattern grouping: a
// pattern, how many analyzed products fell into it, and up to 5
// representative names.
type PatternSummary struct {
	Pattern  model.PatternVariant
	Count    int
	TopNames []string
}

// FilterStats is the population-level filter outcome record: total
// analyzed, how many passed, how many were discarded, and a histogram
// of discard reasons by gate.
type FilterStats struct {
	Total            int
	Passed           int
	Discarded        int
	DiscardHistogram map[string]int
}

// RankedResult is the Ranker/Summarizer's full output.
type RankedResult struct {
	Ranked   []model.AnalyzedProduct
	Stats    FilterStats
	Patterns []PatternSummary
}

// Rank orders an analyzed population: stable-sorts passed products by
// trend score descending, groups the whole population by pattern, and
// emits filter statistics. No further derived score is computed; the
// trend score is the rank key.
func Rank(products []model.AnalyzedProduct) RankedResult {
	var passed []model.AnalyzedProduct
	filterResults := make([]model.FilterResult, 0, len(products))
	for _, p := range products {
		filterResults = append(filterResults, p.Filter)
		if p.Filter.Passed {
			passed = append(passed, p)
		}
	}

	sort.SliceStable(passed, func(i, j int) bool {
		return passed[i].Trend.Score > passed[j].Trend.Score
	})

	grouped := lo.GroupBy(products, func(p model.AnalyzedProduct) model.PatternVariant {
		return p.Trend.Pattern
	})

	patterns := make([]PatternSummary, 0, len(grouped))
	for pattern, group := range grouped {
		names := make([]string, 0, 5)
		for i, p := range group {
			if i >= 5 {
				break
			}
			names = append(names, p.Product.Name)
		}
		patterns = append(patterns, PatternSummary{
			Pattern:  pattern,
			Count:    len(group),
			TopNames: names,
		})
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Count > patterns[j].Count
	})

	return RankedResult{
		Ranked: passed,
		Stats: FilterStats{
			Total:            len(products),
			Passed:           len(passed),
			Discarded:        len(products) - len(passed),
			DiscardHistogram: DiscardHistogram(filterResults),
		},
		Patterns: patterns,
	}
}
