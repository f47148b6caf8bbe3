package breakdown

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"construction-cost/core/rates"
	"construction-cost/core/types"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// TestCalculateDefaultProject pins the built-in table at the 2,000 sq ft default
func TestCalculateDefaultProject(t *testing.T) {
	res := Calculate(&types.Project{}, nil, rates.Default())
	b := res.Breakdown

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"square footage", res.SquareFootage, "2000"},
		{"materials", b.MaterialsTotal(), "80640"},
		{"labor", b.LaborTotal(), "61800"},
		{"equipment", b.EquipmentTotal(), "7150"},
		{"subcontractors", b.SubcontractorTotal(), "45000"},
		{"permits", b.Permits, "3000"},
		{"insurance", b.Insurance, "1000"},
		{"bonding", b.Bonding, "2848.8"},
		{"overhead", b.Overhead, "10000"},
		{"subtotal", b.Subtotal, "211288.8"},
		{"contingency", b.Contingency, "21128.88"},
		{"profit", b.ProfitMargin, "31693.32"},
		{"total", b.Total, "264111"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}

	if len(res.Assumptions) != 1 || res.Assumptions[0] != AssumedSizeNote {
		t.Errorf("assumptions = %v, want default size note", res.Assumptions)
	}
}

func TestCalculateSubstitutesUnusableSize(t *testing.T) {
	tests := []struct {
		name string
		size float64
	}{
		{"zero", 0},
		{"negative", -500},
		{"not a number", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &types.Project{Specifications: types.Specifications{SquareFootage: tt.size}}
			if _, given := EffectiveSquareFootage(p); given {
				t.Errorf("EffectiveSquareFootage(%v) reported a given size", tt.size)
			}
			res := Calculate(p, nil, rates.Default())
			if !res.SquareFootage.Equal(d("2000")) {
				t.Errorf("size %v priced as %s, want 2000", tt.size, res.SquareFootage)
			}
			if len(res.Assumptions) == 0 || res.Assumptions[0] != AssumedSizeNote {
				t.Errorf("assumptions = %v, want default size note", res.Assumptions)
			}
		})
	}
}

func TestCalculateScalesWithSize(t *testing.T) {
	p := &types.Project{
		Category:       types.CategoryCommercial,
		Specifications: types.Specifications{SquareFootage: 15000},
	}
	res := Calculate(p, nil, rates.Default())
	b := res.Breakdown

	if len(res.Assumptions) != 0 {
		t.Errorf("unexpected assumptions: %v", res.Assumptions)
	}
	if !b.Permits.Equal(d("37500")) {
		t.Errorf("commercial permits = %s, want 2.50 * 15000", b.Permits)
	}
	if !b.Subcontractors[0].Amount.Equal(d("127500")) {
		t.Errorf("HVAC = %s, want 8.50 * 15000", b.Subcontractors[0].Amount)
	}
	// Carpentry: 3 workers * (0.06 * 15000) h * $55
	if !b.Labor[1].Total.Equal(d("148500")) {
		t.Errorf("carpentry = %s, want 148500", b.Labor[1].Total)
	}
	wantBonding := b.MaterialsTotal().Add(b.LaborTotal()).Mul(d("0.02"))
	if !b.Bonding.Equal(wantBonding) {
		t.Errorf("bonding = %s, want %s", b.Bonding, wantBonding)
	}
}

func TestCalculateRecordsMaterialHints(t *testing.T) {
	insight := &types.Insight{Materials: []string{"cross-laminated timber", "low-e glazing"}}
	res := Calculate(&types.Project{Specifications: types.Specifications{SquareFootage: 3000}}, insight, rates.Default())

	want := "Material selection informed by: cross-laminated timber, low-e glazing"
	if len(res.Assumptions) != 1 || res.Assumptions[0] != want {
		t.Errorf("assumptions = %v", res.Assumptions)
	}
}

func TestCalculateSubtotalInvariant(t *testing.T) {
	for _, size := range []float64{850, 2000, 12345.67, 60000} {
		res := Calculate(&types.Project{Specifications: types.Specifications{SquareFootage: size}}, nil, rates.Default())
		b := res.Breakdown
		if !b.Subtotal.Equal(b.DirectTotal().Add(b.IndirectTotal())) {
			t.Errorf("size %v: subtotal %s != direct + indirect", size, b.Subtotal)
		}
		if !b.Total.Equal(b.Subtotal.Add(b.Contingency).Add(b.ProfitMargin)) {
			t.Errorf("size %v: total %s != subtotal + contingency + profit", size, b.Total)
		}
	}
}
