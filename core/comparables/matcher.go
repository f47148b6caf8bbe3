// Package comparables ranks historical projects by similarity to the project
// being estimated.
package comparables

import (
	"math"
	"time"

	"construction-cost/core/determinism"
	"construction-cost/core/types"
)

// DefaultLimit is how many comparables an estimate carries
const DefaultLimit = 5

const (
	maxSizePenalty    = 30.0
	locationPenalty   = 20.0
	maxAgePenalty     = 10.0
	agePenaltyPerYear = 2.0
	hoursPerYear      = 24 * 365.25
	perfectSimilarity = 100.0
)

// Target is the part of a project the matcher compares against
type Target struct {
	Category types.Category
	Location string

	// Size must be positive; callers pass the effective square footage
	Size float64
}

// Matcher scores and ranks comparables. Scores depend on Now, so a Matcher
// never caches them between requests.
type Matcher struct {
	Limit int
	Now   func() time.Time
}

// NewMatcher creates a matcher returning the top DefaultLimit comparables
func NewMatcher(now func() time.Time) *Matcher {
	if now == nil {
		now = time.Now
	}
	return &Matcher{Limit: DefaultLimit, Now: now}
}

// Score returns the similarity (0-100) of c to target
func (m *Matcher) Score(target Target, c types.ComparableProject) int {
	score := perfectSimilarity

	if target.Size > 0 {
		penalty := maxSizePenalty
		// an unknown size costs the full penalty
		if diff := math.Abs(c.Size - target.Size); !math.IsNaN(diff) {
			penalty = math.Min(maxSizePenalty, diff/target.Size*100)
		}
		score -= penalty
	}

	if c.Location != target.Location {
		score -= locationPenalty
	}

	years := m.Now().Sub(c.CompletedAt).Hours() / hoursPerYear
	if years > 0 {
		score -= math.Min(maxAgePenalty, years*agePenaltyPerYear)
	}

	if score < 0 {
		score = 0
	}
	return int(math.Round(score))
}

// Rank scores the candidates of the target's category and returns the top
// Limit by descending similarity. Ties keep store order. An empty result is
// not an error.
func (m *Matcher) Rank(target Target, candidates []types.ComparableProject) []types.ComparableProject {
	ranked := make([]types.ComparableProject, 0, len(candidates))
	for _, c := range candidates {
		if c.Category != target.Category {
			continue
		}
		c.Similarity = m.Score(target, c)
		ranked = append(ranked, c)
	}

	determinism.SortSlice(ranked, func(a, b types.ComparableProject) bool {
		return a.Similarity > b.Similarity
	})

	limit := m.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// AverageSimilarity is the mean similarity of a ranked list, 0 when empty
func AverageSimilarity(ranked []types.ComparableProject) float64 {
	if len(ranked) == 0 {
		return 0
	}
	total := 0
	for _, c := range ranked {
		total += c.Similarity
	}
	return float64(total) / float64(len(ranked))
}
