package engine

import (
	"testing"

	"catalogengine/internal/model"
)

func analyzedWithScore(name string, score int, passed bool) model.AnalyzedProduct {
	return model.AnalyzedProduct{
		Product: model.ProductRecord{Name: name},
		Trend:   model.TrendAnalysis{Score: score, Pattern: model.PatternEstable},
		Filter:  model.FilterResult{Passed: passed},
	}
}

func TestRank_SortsPassedByScoreDescending(t *testing.T) {
	products := []model.AnalyzedProduct{
		analyzedWithScore("a", 50, true),
		analyzedWithScore("b", 90, true),
		analyzedWithScore("c", 70, true),
	}
	result := Rank(products)
	if len(result.Ranked) != 3 {
		t.Fatalf("len(Ranked) = %d, want 3", len(result.Ranked))
	}
	if result.Ranked[0].Product.Name != "b" || result.Ranked[1].Product.Name != "c" || result.Ranked[2].Product.Name != "a" {
		t.Fatalf("unexpected order: %v, %v, %v", result.Ranked[0].Product.Name, result.Ranked[1].Product.Name, result.Ranked[2].Product.Name)
	}
}

func TestRank_StableOnTies(t *testing.T) {
	products := []model.AnalyzedProduct{
		analyzedWithScore("first", 60, true),
		analyzedWithScore("second", 60, true),
		analyzedWithScore("third", 60, true),
	}
	result := Rank(products)
	if result.Ranked[0].Product.Name != "first" || result.Ranked[1].Product.Name != "second" || result.Ranked[2].Product.Name != "third" {
		t.Fatalf("tie-break not stable: %v", result.Ranked)
	}
}

func TestRank_ExcludesFailedFromRanking(t *testing.T) {
	products := []model.AnalyzedProduct{
		analyzedWithScore("pass", 80, true),
		analyzedWithScore("fail", 95, false),
	}
	result := Rank(products)
	if len(result.Ranked) != 1 || result.Ranked[0].Product.Name != "pass" {
		t.Fatalf("expected only passed product in Ranked, got %v", result.Ranked)
	}
	if result.Stats.Total != 2 || result.Stats.Passed != 1 || result.Stats.Discarded != 1 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}
}

func TestRank_GroupsByPattern(t *testing.T) {
	products := []model.AnalyzedProduct{
		{Product: model.ProductRecord{Name: "a"}, Trend: model.TrendAnalysis{Pattern: model.PatternDespegando}, Filter: model.FilterResult{Passed: true}},
		{Product: model.ProductRecord{Name: "b"}, Trend: model.TrendAnalysis{Pattern: model.PatternDespegando}, Filter: model.FilterResult{Passed: true}},
		{Product: model.ProductRecord{Name: "c"}, Trend: model.TrendAnalysis{Pattern: model.PatternEstable}, Filter: model.FilterResult{Passed: false}},
	}
	result := Rank(products)
	var despegandoCount, estableCount int
	for _, p := range result.Patterns {
		switch p.Pattern {
		case model.PatternDespegando:
			despegandoCount = p.Count
		case model.PatternEstable:
			estableCount = p.Count
		}
	}
	if despegandoCount != 2 {
		t.Fatalf("DESPEGANDO count = %d, want 2", despegandoCount)
	}
	if estableCount != 1 {
		t.Fatalf("ESTABLE count = %d, want 1", estableCount)
	}
}
