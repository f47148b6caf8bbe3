// Package confidence scores how much an estimate can be trusted.
//
// The score is a bounded heuristic, not a probability: a base of 50, a data
// completeness bonus of up to 25 and a comparable-quality bonus of up to 20,
// capped at 95. A score of 100 is never emitted.
package confidence

import (
	"math"
	"strings"

	"construction-cost/core/comparables"
	"construction-cost/core/types"
)

// Score bounds and weights
const (
	Base    = 50
	Ceiling = 95
	Floor   = 0

	SquareFootageBonus = 10
	AddressBonus       = 5
	StoriesBonus       = 5
	StartDateBonus     = 5

	MaxComparableBonus = 20
	similarityDivisor  = 5.0
)

// Factor is one contribution to the score
type Factor struct {
	Source string  `json:"source"`
	Points float64 `json:"points"`
}

// Breakdown explains a score
type Breakdown struct {
	Factors []Factor `json:"factors"`
	Raw     float64  `json:"raw"`
	Score   int      `json:"score"`
}

// Score returns the confidence (0-95) for a project and its ranked
// comparables. Completeness is judged on the fields the caller supplied, so
// a defaulted square footage earns nothing.
func Score(p *types.Project, ranked []types.ComparableProject) int {
	return Explain(p, ranked).Score
}

// Explain returns the score with its contributing factors
func Explain(p *types.Project, ranked []types.ComparableProject) Breakdown {
	b := Breakdown{Factors: []Factor{{Source: "base", Points: Base}}}
	add := func(source string, points float64) {
		b.Factors = append(b.Factors, Factor{Source: source, Points: points})
	}

	if p != nil {
		if p.Specifications.SquareFootage > 0 {
			add("square_footage", SquareFootageBonus)
		}
		if strings.TrimSpace(p.Location.Address) != "" {
			add("address", AddressBonus)
		}
		if p.Specifications.Stories > 0 {
			add("stories", StoriesBonus)
		}
		if p.Timeline.EstimatedStart != nil {
			add("start_date", StartDateBonus)
		}
	}

	if len(ranked) > 0 {
		// whole points only; fractions are dropped
		bonus := math.Min(MaxComparableBonus, math.Floor(comparables.AverageSimilarity(ranked)/similarityDivisor))
		add("comparables", bonus)
	}

	for _, f := range b.Factors {
		b.Raw += f.Points
	}
	b.Score = int(Clamp(b.Raw))
	return b
}

// Clamp bounds a raw score to [Floor, Ceiling]
func Clamp(raw float64) float64 {
	return math.Max(Floor, math.Min(Ceiling, raw))
}

// Level returns a human-readable band for a score
func Level(score int) types.Level {
	switch {
	case score >= 80:
		return types.LevelHigh
	case score >= 60:
		return types.LevelMedium
	default:
		return types.LevelLow
	}
}
