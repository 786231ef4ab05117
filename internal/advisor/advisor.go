// Package advisor is the optional LLM-based qualitative commentary
// collaborator. Its output is strictly commentary: nothing it returns
// ever feeds back into the viability filter or the ranking. The
// engine's gates and scores are already final by the time an Advisor is
// consulted.
package advisor

import (
	"context"

	"catalogengine/internal/model"
)

// Advisor annotates an already-ranked product with a short qualitative
// note. Implementations must never fail the caller's run: a
// collaborator outage degrades to a fallback commentary, not an error.
type Advisor interface {
	Comment(ctx context.Context, product model.AnalyzedProduct) (string, error)
}

// NullAdvisor is the default Advisor: no commentary, no network calls.
// Selected whenever no API key is configured, or the caller passes
// -no-ai.
type NullAdvisor struct{}

func (NullAdvisor) Comment(ctx context.Context, product model.AnalyzedProduct) (string, error) {
	return "", nil
}
