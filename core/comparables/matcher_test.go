package comparables

import (
	"math"
	"testing"
	"time"

	"construction-cost/core/types"
)

var fixedNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func comparable(id string, cat types.Category, loc string, size float64, completed time.Time) types.ComparableProject {
	return types.ComparableProject{
		ID:          id,
		Title:       "Project " + id,
		Category:    cat,
		Location:    loc,
		Size:        size,
		CompletedAt: completed,
	}
}

func TestScore(t *testing.T) {
	m := NewMatcher(func() time.Time { return fixedNow })
	target := Target{Category: types.CategoryCommercial, Location: "Oakland, CA", Size: 15000}

	tests := []struct {
		name string
		c    types.ComparableProject
		want int
	}{
		{"exact match", comparable("a", types.CategoryCommercial, "Oakland, CA", 15000, fixedNow), 100},
		{"other location", comparable("b", types.CategoryCommercial, "Denver, CO", 15000, fixedNow), 80},
		{"ten percent larger", comparable("c", types.CategoryCommercial, "Oakland, CA", 16500, fixedNow), 90},
		{"size penalty capped", comparable("d", types.CategoryCommercial, "Oakland, CA", 150000, fixedNow), 70},
		{"two years old", comparable("e", types.CategoryCommercial, "Oakland, CA", 15000, fixedNow.AddDate(-2, 0, 0)), 96},
		{"age penalty capped", comparable("f", types.CategoryCommercial, "Oakland, CA", 15000, fixedNow.AddDate(-20, 0, 0)), 90},
		{"future completion", comparable("g", types.CategoryCommercial, "Oakland, CA", 15000, fixedNow.AddDate(1, 0, 0)), 100},
		{"worst case", comparable("h", types.CategoryCommercial, "Miami, FL", 1, fixedNow.AddDate(-30, 0, 0)), 40},
		{"infinite size", comparable("i", types.CategoryCommercial, "Oakland, CA", math.Inf(1), fixedNow), 70},
		{"unknown size", comparable("j", types.CategoryCommercial, "Oakland, CA", math.NaN(), fixedNow), 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Score(target, tt.c); got != tt.want {
				t.Errorf("Score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreMonotonicInSizeDifference(t *testing.T) {
	m := NewMatcher(func() time.Time { return fixedNow })
	target := Target{Category: types.CategoryResidential, Location: "Austin, TX", Size: 2000}

	prev := 101
	for size := 2000.0; size <= 4000; size += 100 {
		got := m.Score(target, comparable("x", types.CategoryResidential, "Austin, TX", size, fixedNow))
		if got > prev {
			t.Fatalf("score rose from %d to %d as size moved to %.0f", prev, got, size)
		}
		if got < 0 || got > 100 {
			t.Fatalf("score %d out of range", got)
		}
		prev = got
	}
}

func TestRank(t *testing.T) {
	m := NewMatcher(func() time.Time { return fixedNow })
	target := Target{Category: types.CategoryCommercial, Location: "Oakland, CA", Size: 15000}

	candidates := []types.ComparableProject{
		comparable("far", types.CategoryCommercial, "Denver, CO", 15000, fixedNow),
		comparable("house", types.CategoryResidential, "Oakland, CA", 15000, fixedNow),
		comparable("best", types.CategoryCommercial, "Oakland, CA", 15000, fixedNow),
		comparable("tie-1", types.CategoryCommercial, "Oakland, CA", 16500, fixedNow),
		comparable("tie-2", types.CategoryCommercial, "Oakland, CA", 13500, fixedNow),
	}

	ranked := m.Rank(target, candidates)
	want := []string{"best", "tie-1", "tie-2", "far"}
	if len(ranked) != len(want) {
		t.Fatalf("Rank returned %d comparables, want %d", len(ranked), len(want))
	}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].ID, id)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Similarity > ranked[i-1].Similarity {
			t.Errorf("ranking not descending at %d", i)
		}
	}
	for _, c := range candidates {
		if c.Similarity != 0 {
			t.Errorf("Rank mutated candidate %s", c.ID)
		}
	}
}

func TestRankLimit(t *testing.T) {
	m := NewMatcher(func() time.Time { return fixedNow })
	target := Target{Category: types.CategoryIndustrial, Location: "Phoenix, AZ", Size: 50000}

	var candidates []types.ComparableProject
	for i := 0; i < 12; i++ {
		candidates = append(candidates, comparable(string(rune('a'+i)), types.CategoryIndustrial, "Phoenix, AZ", 50000+float64(i)*1000, fixedNow))
	}

	ranked := m.Rank(target, candidates)
	if len(ranked) != DefaultLimit {
		t.Fatalf("Rank returned %d, want %d", len(ranked), DefaultLimit)
	}
	if ranked[0].ID != "a" {
		t.Errorf("best match = %s, want a", ranked[0].ID)
	}

	m.Limit = 2
	if got := len(m.Rank(target, candidates)); got != 2 {
		t.Errorf("custom limit returned %d", got)
	}
}

func TestRankEmpty(t *testing.T) {
	m := NewMatcher(nil)
	ranked := m.Rank(Target{Category: types.CategoryResidential, Size: 2000}, nil)
	if len(ranked) != 0 {
		t.Errorf("expected no comparables, got %d", len(ranked))
	}
	if AverageSimilarity(ranked) != 0 {
		t.Errorf("AverageSimilarity of empty list should be 0")
	}
}

func TestAverageSimilarity(t *testing.T) {
	ranked := []types.ComparableProject{{Similarity: 100}, {Similarity: 80}, {Similarity: 75}}
	if got := AverageSimilarity(ranked); got != 85 {
		t.Errorf("AverageSimilarity = %v, want 85", got)
	}
}
