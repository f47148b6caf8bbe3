package confidence

import (
	"testing"
	"time"

	"construction-cost/core/types"
)

func ranked(similarities ...int) []types.ComparableProject {
	out := make([]types.ComparableProject, len(similarities))
	for i, s := range similarities {
		out[i].Similarity = s
	}
	return out
}

func TestScore(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	full := &types.Project{
		Specifications: types.Specifications{SquareFootage: 3000, Stories: 2},
		Location:       types.Location{Address: "1 Main St", City: "Austin", State: "TX"},
		Timeline:       types.Timeline{EstimatedStart: &start},
	}

	tests := []struct {
		name    string
		project *types.Project
		ranked  []types.ComparableProject
		want    int
	}{
		{"nil project", nil, nil, 50},
		{"empty project", &types.Project{}, nil, 50},
		{"square footage only", &types.Project{Specifications: types.Specifications{SquareFootage: 1200}}, nil, 60},
		{
			"commercial scenario",
			&types.Project{
				Specifications: types.Specifications{SquareFootage: 15000, Stories: 6},
				Location:       types.Location{City: "Oakland", State: "CA"},
			},
			nil,
			65,
		},
		{
			"commercial scenario with perfect comparable",
			&types.Project{
				Specifications: types.Specifications{SquareFootage: 15000, Stories: 6},
				Location:       types.Location{City: "Oakland", State: "CA"},
			},
			ranked(100),
			85,
		},
		{"full data", full, nil, 75},
		{"full data capped", full, ranked(100, 100, 100), 95},
		{"partial comparable bonus", &types.Project{}, ranked(80, 70), 65},
		{"blank address ignored", &types.Project{Location: types.Location{Address: "   "}}, nil, 50},
		{"fractional bonus truncated", &types.Project{}, ranked(77), 65},
		{"bonus truncated not rounded", &types.Project{}, ranked(98), 69},
		{"bonus truncated below cap", &types.Project{}, ranked(99, 100), 69},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.project, tt.ranked); got != tt.want {
				t.Errorf("Score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	start := time.Now()
	projects := []*types.Project{
		nil,
		{},
		{
			Specifications: types.Specifications{SquareFootage: 1, Stories: 1},
			Location:       types.Location{Address: "x"},
			Timeline:       types.Timeline{EstimatedStart: &start},
		},
	}
	for _, p := range projects {
		for sim := 0; sim <= 100; sim += 10 {
			got := Score(p, ranked(sim, sim))
			if got < Floor || got > Ceiling {
				t.Fatalf("Score = %d out of [%d, %d]", got, Floor, Ceiling)
			}
		}
	}
}

func TestExplain(t *testing.T) {
	b := Explain(&types.Project{Specifications: types.Specifications{Stories: 3}}, ranked(50))
	want := []string{"base", "stories", "comparables"}
	if len(b.Factors) != len(want) {
		t.Fatalf("factors = %+v", b.Factors)
	}
	for i, source := range want {
		if b.Factors[i].Source != source {
			t.Errorf("factor %d = %s, want %s", i, b.Factors[i].Source, source)
		}
	}
	if b.Raw != 65 || b.Score != 65 {
		t.Errorf("raw %v score %d, want 65", b.Raw, b.Score)
	}
}

func TestLevel(t *testing.T) {
	tests := map[int]types.Level{95: types.LevelHigh, 80: types.LevelHigh, 65: types.LevelMedium, 50: types.LevelLow}
	for score, want := range tests {
		if got := Level(score); got != want {
			t.Errorf("Level(%d) = %s, want %s", score, got, want)
		}
	}
}
