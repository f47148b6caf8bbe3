// Package rates holds the static lookup data the estimator prices against:
// regional and seasonal multipliers, trade labor rates, material, equipment
// and subcontractor unit rates, and indirect-cost constants.
package rates

import (
	"fmt"

	"github.com/shopspring/decimal"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// Trade is a labor crew definition
type Trade struct {
	Name         string
	Workers      int
	HoursPerSqft decimal.Decimal
	HourlyRate   decimal.Decimal
}

// MaterialRate prices one material. Quantity = PerSqft * sqft + Fixed.
type MaterialRate struct {
	Name     string
	Unit     string
	PerSqft  decimal.Decimal
	Fixed    decimal.Decimal
	UnitCost decimal.Decimal
}

// MaterialCategoryRate groups material rates under a cost category
type MaterialCategoryRate struct {
	Name  string
	Items []MaterialRate
}

// EquipmentRate is a fixed-duration rental
type EquipmentRate struct {
	Name     string
	Type     string
	Duration int
	Unit     string
	Rate     decimal.Decimal
}

// SubcontractorRate is a per-square-foot subcontract
type SubcontractorRate struct {
	Trade             string
	Scope             string
	PerSqft           decimal.Decimal
	MaterialsIncluded bool
}

// Table is one complete, immutable set of rates. Tables are replaced whole.
type Table struct {
	// Name identifies the source (built-in or file path)
	Name string

	// Regional multipliers keyed by "City, ST"
	Regional map[string]decimal.Decimal

	// States multipliers keyed by "ST"
	States map[string]decimal.Decimal

	// DefaultRegional applies when neither city nor state is known
	DefaultRegional decimal.Decimal

	Seasonal map[types.Season]decimal.Decimal

	Trades             []Trade
	MaterialCategories []MaterialCategoryRate
	Equipment          []EquipmentRate
	Subcontractors     []SubcontractorRate

	// Permits is the per-square-foot permit base rate by category
	Permits map[types.Category]decimal.Decimal

	InsurancePerSqft decimal.Decimal
	BondingRate      decimal.Decimal
	OverheadPerSqft  decimal.Decimal
}

// PermitRate returns the permit base rate for a category, falling back to residential
func (t *Table) PermitRate(c types.Category) decimal.Decimal {
	if r, ok := t.Permits[c]; ok {
		return r
	}
	return t.Permits[types.CategoryResidential]
}

// Validate checks that the table can price any project
func (t *Table) Validate() error {
	if t == nil {
		return errors.Config("rate table is nil", nil)
	}
	if t.DefaultRegional.LessThan(decimal.NewFromInt(1)) {
		return errors.Config("default regional multiplier must be at least 1.00, got "+t.DefaultRegional.String(), nil)
	}

	// most to least expensive
	seasons := []types.Season{types.SeasonWinter, types.SeasonSummer, types.SeasonFall, types.SeasonSpring}
	for i, s := range seasons {
		m, ok := t.Seasonal[s]
		if !ok || !m.IsPositive() {
			return errors.Config(fmt.Sprintf("seasonal multiplier for %s missing or not positive", s), nil)
		}
		if i > 0 {
			prev := seasons[i-1]
			if !t.Seasonal[prev].GreaterThan(m) {
				return errors.Config(fmt.Sprintf("seasonal multiplier for %s (%s) must exceed %s (%s)",
					prev, t.Seasonal[prev], s, m), nil)
			}
		}
	}
	for key, m := range t.Regional {
		if !m.IsPositive() {
			return errors.Config("regional multiplier not positive: "+key, nil)
		}
	}
	for key, m := range t.States {
		if !m.IsPositive() {
			return errors.Config("state multiplier not positive: "+key, nil)
		}
	}
	if _, ok := t.Permits[types.CategoryResidential]; !ok {
		return errors.Config("permit rate for residential is required", nil)
	}
	for c, r := range t.Permits {
		if !c.Valid() {
			return errors.Config("permit rate for unknown category: "+string(c), nil)
		}
		if r.IsNegative() {
			return errors.Config("permit rate is negative: "+string(c), nil)
		}
	}
	for _, tr := range t.Trades {
		if tr.Workers <= 0 {
			return errors.Config("trade needs at least one worker: "+tr.Name, nil)
		}
	}
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Default returns the built-in rate table
func Default() *Table {
	return &Table{
		Name: "built-in",
		Regional: map[string]decimal.Decimal{
			"San Francisco, CA": dec("1.45"),
			"Oakland, CA":       dec("1.38"),
			"Los Angeles, CA":   dec("1.30"),
			"San Diego, CA":     dec("1.22"),
			"New York, NY":      dec("1.50"),
			"Boston, MA":        dec("1.32"),
			"Seattle, WA":       dec("1.25"),
			"Chicago, IL":       dec("1.18"),
			"Denver, CO":        dec("1.08"),
			"Miami, FL":         dec("1.06"),
			"Austin, TX":        dec("1.04"),
			"Phoenix, AZ":       dec("1.02"),
		},
		States: map[string]decimal.Decimal{
			"CA": dec("1.20"),
			"NY": dec("1.25"),
			"MA": dec("1.18"),
			"WA": dec("1.12"),
			"IL": dec("1.08"),
			"CO": dec("1.04"),
			"FL": dec("1.03"),
			"TX": dec("1.01"),
			"AZ": dec("1.00"),
		},
		DefaultRegional: dec("1.00"),
		Seasonal: map[types.Season]decimal.Decimal{
			types.SeasonWinter: dec("1.15"),
			types.SeasonSummer: dec("1.05"),
			types.SeasonFall:   dec("1.02"),
			types.SeasonSpring: dec("1.00"),
		},
		Trades: []Trade{
			{Name: "General Labor", Workers: 4, HoursPerSqft: dec("0.050"), HourlyRate: dec("45")},
			{Name: "Carpentry", Workers: 3, HoursPerSqft: dec("0.060"), HourlyRate: dec("55")},
			{Name: "Electrical", Workers: 2, HoursPerSqft: dec("0.030"), HourlyRate: dec("75")},
			{Name: "Plumbing", Workers: 2, HoursPerSqft: dec("0.025"), HourlyRate: dec("70")},
			{Name: "Masonry", Workers: 2, HoursPerSqft: dec("0.020"), HourlyRate: dec("60")},
			{Name: "Painting", Workers: 2, HoursPerSqft: dec("0.020"), HourlyRate: dec("40")},
		},
		MaterialCategories: []MaterialCategoryRate{
			{Name: "Foundation", Items: []MaterialRate{
				{Name: "Concrete", Unit: "cy", PerSqft: dec("0.012"), UnitCost: dec("150")},
				{Name: "Rebar", Unit: "ton", PerSqft: dec("0.0005"), UnitCost: dec("1100")},
				{Name: "Waterproofing", Unit: "sqft", PerSqft: dec("1.0"), UnitCost: dec("1.25")},
			}},
			{Name: "Framing", Items: []MaterialRate{
				{Name: "Lumber", Unit: "bf", PerSqft: dec("6.5"), UnitCost: dec("0.85")},
				{Name: "Sheathing", Unit: "sheet", PerSqft: dec("0.09"), UnitCost: dec("28")},
				{Name: "Fasteners & Hardware", Unit: "sqft", PerSqft: dec("1.0"), UnitCost: dec("0.35")},
			}},
			{Name: "MEP", Items: []MaterialRate{
				{Name: "Electrical Wire & Fixtures", Unit: "sqft", PerSqft: dec("1.0"), UnitCost: dec("4.50")},
				{Name: "Plumbing Pipe & Fixtures", Unit: "sqft", PerSqft: dec("1.0"), UnitCost: dec("3.75")},
				{Name: "HVAC Ductwork", Unit: "sqft", PerSqft: dec("1.0"), UnitCost: dec("3.25")},
			}},
			{Name: "Finishes", Items: []MaterialRate{
				{Name: "Drywall", Unit: "sheet", PerSqft: dec("0.11"), UnitCost: dec("15")},
				{Name: "Paint", Unit: "gal", PerSqft: dec("0.02"), UnitCost: dec("45")},
				{Name: "Trim & Millwork", Unit: "lf", PerSqft: dec("0.25"), UnitCost: dec("4.50")},
			}},
			{Name: "Exterior", Items: []MaterialRate{
				{Name: "Siding", Unit: "sqft", PerSqft: dec("0.8"), UnitCost: dec("6.50")},
				{Name: "Windows", Unit: "each", PerSqft: dec("0.008"), Fixed: dec("2"), UnitCost: dec("550")},
				{Name: "Doors", Unit: "each", PerSqft: dec("0.003"), Fixed: dec("2"), UnitCost: dec("750")},
			}},
		},
		Equipment: []EquipmentRate{
			{Name: "Excavator", Type: "heavy", Duration: 5, Unit: "day", Rate: dec("450")},
			{Name: "Concrete Mixer", Type: "heavy", Duration: 3, Unit: "day", Rate: dec("250")},
			{Name: "Scaffolding", Type: "access", Duration: 30, Unit: "day", Rate: dec("35")},
			{Name: "Dumpster", Type: "waste", Duration: 4, Unit: "week", Rate: dec("400")},
			{Name: "Generator", Type: "power", Duration: 20, Unit: "day", Rate: dec("75")},
		},
		Subcontractors: []SubcontractorRate{
			{Trade: "HVAC", Scope: "Heating, ventilation and air conditioning", PerSqft: dec("8.50"), MaterialsIncluded: true},
			{Trade: "Roofing", Scope: "Roof system installation", PerSqft: dec("4.25"), MaterialsIncluded: true},
			{Trade: "Flooring", Scope: "Floor finishes", PerSqft: dec("6.00"), MaterialsIncluded: true},
			{Trade: "Insulation", Scope: "Thermal insulation", PerSqft: dec("1.75"), MaterialsIncluded: true},
			{Trade: "Landscaping", Scope: "Site landscaping", PerSqft: dec("2.00"), MaterialsIncluded: false},
		},
		Permits: map[types.Category]decimal.Decimal{
			types.CategoryResidential: dec("1.50"),
			types.CategoryCommercial:  dec("2.50"),
			types.CategoryIndustrial:  dec("3.00"),
		},
		InsurancePerSqft: dec("0.50"),
		BondingRate:      dec("0.02"),
		OverheadPerSqft:  dec("5"),
	}
}
