// Package breakdown computes the unadjusted cost breakdown of a project from
// its specifications and the active rate table.
package breakdown

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"construction-cost/core/rates"
	"construction-cost/core/types"
)

// DefaultSquareFootage is assumed when a project gives no usable size
const DefaultSquareFootage = 2000

// AssumedSizeNote is recorded whenever DefaultSquareFootage is substituted
const AssumedSizeNote = "Square footage not provided; assumed 2,000 sq ft"

// Result is the calculator output
type Result struct {
	// Breakdown is the unadjusted breakdown with derived totals computed
	Breakdown *types.CostBreakdown

	// SquareFootage is the size actually priced
	SquareFootage decimal.Decimal

	// Assumptions made while pricing, in the order they were made
	Assumptions []string
}

// EffectiveSquareFootage returns the project size, or the default when the
// size is absent, zero, negative or not finite.
func EffectiveSquareFootage(p *types.Project) (decimal.Decimal, bool) {
	if p == nil || !usableSize(p.Specifications.SquareFootage) {
		return decimal.NewFromInt(DefaultSquareFootage), false
	}
	return decimal.NewFromFloat(p.Specifications.SquareFootage), true
}

func usableSize(sqft float64) bool {
	return sqft > 0 && !math.IsInf(sqft, 0)
}

// Calculate prices the project. It never fails: missing optional inputs are
// replaced by documented defaults and recorded as assumptions.
func Calculate(p *types.Project, insight *types.Insight, table *rates.Table) Result {
	sqft, given := EffectiveSquareFootage(p)

	var assumptions []string
	if !given {
		assumptions = append(assumptions, AssumedSizeNote)
	}
	if insight != nil && len(insight.Materials) > 0 {
		assumptions = append(assumptions, "Material selection informed by: "+strings.Join(insight.Materials, ", "))
	}

	category := types.CategoryResidential
	if p != nil && p.Category != "" {
		category = p.Category
	}

	b := &types.CostBreakdown{Currency: types.CurrencyUSD}
	b.Materials = materials(table, sqft)
	b.Labor = labor(table, sqft)
	b.Equipment = equipment(table)
	b.Subcontractors = subcontractors(table, sqft)

	b.Permits = table.PermitRate(category).Mul(sqft)
	b.Insurance = table.InsurancePerSqft.Mul(sqft)
	b.Bonding = table.BondingRate.Mul(b.MaterialsTotal().Add(b.LaborTotal()))
	b.Overhead = table.OverheadPerSqft.Mul(sqft)

	b.Recompute()

	return Result{
		Breakdown:     b,
		SquareFootage: sqft,
		Assumptions:   assumptions,
	}
}

func materials(table *rates.Table, sqft decimal.Decimal) []types.MaterialCategory {
	out := make([]types.MaterialCategory, 0, len(table.MaterialCategories))
	for _, rc := range table.MaterialCategories {
		cat := types.MaterialCategory{Name: rc.Name}
		for _, r := range rc.Items {
			qty := r.PerSqft.Mul(sqft).Add(r.Fixed)
			cat.Add(types.MaterialItem{
				Name:     r.Name,
				Unit:     r.Unit,
				Quantity: qty,
				UnitCost: r.UnitCost,
				Total:    qty.Mul(r.UnitCost),
			})
		}
		out = append(out, cat)
	}
	return out
}

// labor: hours are per worker, so a line costs workers * hours * rate
func labor(table *rates.Table, sqft decimal.Decimal) []types.LaborLine {
	out := make([]types.LaborLine, 0, len(table.Trades))
	for _, tr := range table.Trades {
		hours := tr.HoursPerSqft.Mul(sqft)
		out = append(out, types.LaborLine{
			Trade:      tr.Name,
			Workers:    tr.Workers,
			Hours:      hours,
			HourlyRate: tr.HourlyRate,
			Total:      decimal.NewFromInt(int64(tr.Workers)).Mul(hours).Mul(tr.HourlyRate),
		})
	}
	return out
}

func equipment(table *rates.Table) []types.EquipmentLine {
	out := make([]types.EquipmentLine, 0, len(table.Equipment))
	for _, e := range table.Equipment {
		out = append(out, types.EquipmentLine{
			Name:     e.Name,
			Type:     e.Type,
			Duration: e.Duration,
			Unit:     e.Unit,
			Rate:     e.Rate,
			Total:    decimal.NewFromInt(int64(e.Duration)).Mul(e.Rate),
		})
	}
	return out
}

func subcontractors(table *rates.Table, sqft decimal.Decimal) []types.SubcontractorLine {
	out := make([]types.SubcontractorLine, 0, len(table.Subcontractors))
	for _, s := range table.Subcontractors {
		out = append(out, types.SubcontractorLine{
			Trade:             s.Trade,
			Scope:             s.Scope,
			Amount:            sqft.Mul(s.PerSqft),
			MaterialsIncluded: s.MaterialsIncluded,
		})
	}
	return out
}
