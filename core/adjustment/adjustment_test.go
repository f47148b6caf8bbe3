package adjustment

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"construction-cost/core/breakdown"
	"construction-cost/core/rates"
	"construction-cost/core/types"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestResolveRegional(t *testing.T) {
	table := rates.Default()
	tests := []struct {
		name string
		loc  types.Location
		want string
	}{
		{"exact city", types.Location{City: "Oakland", State: "CA"}, "1.38"},
		{"state fallback", types.Location{City: "Fresno", State: "CA"}, "1.20"},
		{"state only", types.Location{State: "NY"}, "1.25"},
		{"unknown state", types.Location{City: "Boise", State: "ID"}, "1.00"},
		{"empty", types.Location{}, "1.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRegional(table, tt.loc); !got.Equal(d(tt.want)) {
				t.Errorf("ResolveRegional = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSeasonOf(t *testing.T) {
	want := map[time.Month]types.Season{
		time.January: types.SeasonWinter, time.February: types.SeasonWinter, time.December: types.SeasonWinter,
		time.March: types.SeasonSpring, time.April: types.SeasonSpring, time.May: types.SeasonSpring,
		time.June: types.SeasonSummer, time.July: types.SeasonSummer, time.August: types.SeasonSummer,
		time.September: types.SeasonFall, time.October: types.SeasonFall, time.November: types.SeasonFall,
	}
	for month, season := range want {
		at := time.Date(2026, month, 15, 12, 0, 0, 0, time.UTC)
		if got := SeasonOf(at); got != season {
			t.Errorf("SeasonOf(%s) = %s, want %s", month, got, season)
		}
	}
}

func TestResolveComplexity(t *testing.T) {
	tests := []struct {
		name     string
		specs    types.Specifications
		insight  *types.Insight
		expected string
	}{
		{"plain", types.Specifications{}, nil, "1"},
		{"three stories", types.Specifications{Stories: 3}, nil, "1"},
		{"four stories", types.Specifications{Stories: 4}, nil, "1.1"},
		{"six stories cumulative", types.Specifications{Stories: 6}, nil, "1.3"},
		{
			"seismic six stories",
			types.Specifications{Stories: 6, SpecialRequirements: []string{"seismic retrofit"}},
			nil,
			"1.35",
		},
		{
			"green and challenges",
			types.Specifications{GreenCertifications: []string{"LEED Gold"}},
			&types.Insight{Challenges: []string{"tight urban site", "high water table"}},
			"1.16",
		},
		{
			"clamped",
			types.Specifications{
				Stories:             40,
				SpecialRequirements: make([]string, 10),
				GreenCertifications: make([]string, 5),
			},
			&types.Insight{Challenges: make([]string, 20)},
			"2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveComplexity(tt.specs, tt.insight); !got.Equal(d(tt.expected)) {
				t.Errorf("ResolveComplexity = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestComplexityNeverExceedsBounds(t *testing.T) {
	for stories := 0; stories <= 12; stories++ {
		for reqs := 0; reqs <= 25; reqs += 5 {
			for certs := 0; certs <= 12; certs += 3 {
				specs := types.Specifications{
					Stories:             stories,
					SpecialRequirements: make([]string, reqs),
					GreenCertifications: make([]string, certs),
				}
				f := ResolveComplexity(specs, &types.Insight{Challenges: make([]string, reqs)})
				if f.LessThan(MinComplexity) || f.GreaterThan(MaxComplexity) {
					t.Fatalf("complexity %s out of bounds for %+v", f, specs)
				}
				if !Clamp(f).Equal(f) {
					t.Fatalf("Clamp not idempotent at %s", f)
				}
			}
		}
	}
}

func TestApplyScalesDirectCostsOnly(t *testing.T) {
	base := breakdown.Calculate(&types.Project{}, nil, rates.Default()).Breakdown
	f := Factors{Regional: d("1.38"), Seasonal: d("1.15"), Complexity: d("1.35"), Season: types.SeasonWinter}
	adj := Apply(base, f)
	total := f.Total()

	if !adj.MaterialsTotal().Equal(base.MaterialsTotal().Mul(total)) {
		t.Errorf("materials = %s, want base * %s", adj.MaterialsTotal(), total)
	}
	if !adj.SubcontractorTotal().Equal(base.SubcontractorTotal().Mul(total)) {
		t.Errorf("subcontractors not scaled by total factor")
	}
	if !adj.LaborTotal().Equal(base.LaborTotal().Mul(f.Regional)) {
		t.Errorf("labor = %s, want base * regional", adj.LaborTotal())
	}
	if !adj.EquipmentTotal().Equal(base.EquipmentTotal().Mul(f.Regional)) {
		t.Errorf("equipment = %s, want base * regional", adj.EquipmentTotal())
	}
	if !adj.IndirectTotal().Equal(base.IndirectTotal()) {
		t.Errorf("indirect costs were rescaled: %s vs %s", adj.IndirectTotal(), base.IndirectTotal())
	}
	if !adj.Subtotal.Equal(adj.DirectTotal().Add(adj.IndirectTotal())) {
		t.Errorf("subtotal not recomputed")
	}
	if !adj.Total.Equal(adj.Subtotal.Add(adj.Contingency).Add(adj.ProfitMargin)) {
		t.Errorf("total invariant broken")
	}

	// the input breakdown is untouched
	if !base.Total.Equal(d("264111")) {
		t.Errorf("Apply mutated its input: total %s", base.Total)
	}
}

func TestFactorsPercent(t *testing.T) {
	f := Factors{Regional: d("1.38"), Seasonal: d("1.15"), Complexity: d("1")}
	if got := f.RegionalPercent(); !got.Equal(d("38")) {
		t.Errorf("RegionalPercent = %s", got)
	}
	if got := f.SeasonalPercent(); !got.Equal(d("15")) {
		t.Errorf("SeasonalPercent = %s", got)
	}
	if got := fmt.Sprint(f.Total()); got != "1.587" {
		t.Errorf("Total = %s, want 1.587", got)
	}
}
