// Package insight provides requirement insight: the qualitative analysis of a
// project (phases, material hints, challenges, assumptions) that seeds the
// complexity factor and the estimate's assumption list.
package insight

import (
	"context"

	"construction-cost/core/types"
)

// Analyzer produces an insight for a project
type Analyzer interface {
	Analyze(ctx context.Context, p *types.Project) (*types.Insight, error)
}

// AnalyzerFunc adapts a function to Analyzer
type AnalyzerFunc func(ctx context.Context, p *types.Project) (*types.Insight, error)

// Analyze calls f
func (f AnalyzerFunc) Analyze(ctx context.Context, p *types.Project) (*types.Insight, error) {
	return f(ctx, p)
}

// DefaultPhases is the phase list used when no analysis is available
var DefaultPhases = []string{
	"Site Preparation",
	"Foundation",
	"Framing",
	"MEP Rough-in",
	"Finishes",
	"Final Inspection",
}

// Fallback returns the fixed insight used whenever analysis is unavailable
func Fallback() *types.Insight {
	return &types.Insight{
		Phases:     append([]string(nil), DefaultPhases...),
		Materials:  []string{},
		Labor:      []string{},
		Challenges: []string{},
		Assumptions: []string{
			"Standard construction methods and materials",
			"Normal site conditions with no unforeseen subsurface issues",
			"Permits obtained without significant delay",
		},
		Source: types.InsightFromFallback,
	}
}

// Static always returns a copy of the same insight
type Static struct {
	Insight *types.Insight
}

// NewStatic creates a static analyzer. A nil insight means Fallback.
func NewStatic(i *types.Insight) *Static {
	if i == nil {
		i = Fallback()
		i.Source = types.InsightFromStatic
	}
	return &Static{Insight: i}
}

// Analyze returns a copy of the configured insight
func (s *Static) Analyze(ctx context.Context, p *types.Project) (*types.Insight, error) {
	out := Clone(s.Insight)
	if out.Source == "" {
		out.Source = types.InsightFromStatic
	}
	return out, nil
}

// Clone deep-copies an insight
func Clone(i *types.Insight) *types.Insight {
	if i == nil {
		return nil
	}
	return &types.Insight{
		Phases:      append([]string(nil), i.Phases...),
		Materials:   append([]string(nil), i.Materials...),
		Labor:       append([]string(nil), i.Labor...),
		Challenges:  append([]string(nil), i.Challenges...),
		Assumptions: append([]string(nil), i.Assumptions...),
		Source:      i.Source,
	}
}
