// Package adjustment resolves the regional, seasonal and complexity
// multipliers for a project and applies them to a breakdown's direct costs.
package adjustment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"construction-cost/core/rates"
	"construction-cost/core/types"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// MinComplexity and MaxComplexity bound the complexity factor
	MinComplexity = decimal.NewFromInt(1)
	MaxComplexity = decimal.NewFromInt(2)

	storiesOver3Bonus  = decimal.RequireFromString("0.1")
	storiesOver5Bonus  = decimal.RequireFromString("0.2")
	specialReqBonus    = decimal.RequireFromString("0.05")
	greenCertBonus     = decimal.RequireFromString("0.10")
	insightChallengeBn = decimal.RequireFromString("0.03")
)

// Factors are the resolved multipliers for one request
type Factors struct {
	Regional   decimal.Decimal `json:"regional"`
	Seasonal   decimal.Decimal `json:"seasonal"`
	Complexity decimal.Decimal `json:"complexity"`
	Season     types.Season    `json:"season"`
}

// Total is regional * seasonal * complexity
func (f Factors) Total() decimal.Decimal {
	return f.Regional.Mul(f.Seasonal).Mul(f.Complexity)
}

// RegionalPercent is the regional adjustment relative to 1.00, in percent
func (f Factors) RegionalPercent() decimal.Decimal {
	return f.Regional.Sub(one).Mul(hundred)
}

// SeasonalPercent is the seasonal adjustment relative to 1.00, in percent
func (f Factors) SeasonalPercent() decimal.Decimal {
	return f.Seasonal.Sub(one).Mul(hundred)
}

// Resolve runs the three resolvers
func Resolve(table *rates.Table, p *types.Project, insight *types.Insight, now time.Time) Factors {
	seasonal, season := ResolveSeasonal(table, now)
	var loc types.Location
	var specs types.Specifications
	if p != nil {
		loc = p.Location
		specs = p.Specifications
	}
	return Factors{
		Regional:   ResolveRegional(table, loc),
		Seasonal:   seasonal,
		Complexity: ResolveComplexity(specs, insight),
		Season:     season,
	}
}

// ResolveRegional looks up "City, ST", then "ST", then the table default.
// Unknown locations are not an error.
func ResolveRegional(table *rates.Table, loc types.Location) decimal.Decimal {
	city := strings.TrimSpace(loc.City)
	state := strings.TrimSpace(loc.State)

	if city != "" && state != "" {
		if m, ok := table.Regional[loc.Key()]; ok {
			return m
		}
	}
	if state != "" {
		if m, ok := table.States[state]; ok {
			return m
		}
	}
	return table.DefaultRegional
}

// SeasonOf buckets a month: Dec-Feb winter, Mar-May spring, Jun-Aug summer,
// Sep-Nov fall.
func SeasonOf(t time.Time) types.Season {
	switch t.Month() {
	case time.December, time.January, time.February:
		return types.SeasonWinter
	case time.March, time.April, time.May:
		return types.SeasonSpring
	case time.June, time.July, time.August:
		return types.SeasonSummer
	default:
		return types.SeasonFall
	}
}

// ResolveSeasonal returns the multiplier for the season containing now
func ResolveSeasonal(table *rates.Table, now time.Time) (decimal.Decimal, types.Season) {
	season := SeasonOf(now)
	return table.Seasonal[season], season
}

// ResolveComplexity derives the complexity factor, clamped to [1.0, 2.0].
// The two story bonuses are cumulative: a six-story building gets both.
func ResolveComplexity(specs types.Specifications, insight *types.Insight) decimal.Decimal {
	f := one
	if specs.Stories > 3 {
		f = f.Add(storiesOver3Bonus)
	}
	if specs.Stories > 5 {
		f = f.Add(storiesOver5Bonus)
	}
	f = f.Add(specialReqBonus.Mul(decimal.NewFromInt(int64(len(specs.SpecialRequirements)))))
	f = f.Add(greenCertBonus.Mul(decimal.NewFromInt(int64(len(specs.GreenCertifications)))))
	if insight != nil {
		f = f.Add(insightChallengeBn.Mul(decimal.NewFromInt(int64(len(insight.Challenges)))))
	}
	return Clamp(f)
}

// Clamp bounds a complexity factor to [MinComplexity, MaxComplexity]
func Clamp(f decimal.Decimal) decimal.Decimal {
	if f.LessThan(MinComplexity) {
		return MinComplexity
	}
	if f.GreaterThan(MaxComplexity) {
		return MaxComplexity
	}
	return f
}

// Apply returns an adjusted copy of b. Materials and subcontractors scale by
// the total factor; labor and equipment by the regional factor only. Indirect
// costs are left as computed. Aggregates are recomputed from the lines.
func Apply(b *types.CostBreakdown, f Factors) *types.CostBreakdown {
	out := b.Clone()
	total := f.Total()

	for i := range out.Materials {
		items := out.Materials[i].Items
		for j := range items {
			items[j].UnitCost = items[j].UnitCost.Mul(total)
			items[j].Total = items[j].Total.Mul(total)
		}
	}
	for i := range out.Subcontractors {
		out.Subcontractors[i].Amount = out.Subcontractors[i].Amount.Mul(total)
	}
	for i := range out.Labor {
		out.Labor[i].HourlyRate = out.Labor[i].HourlyRate.Mul(f.Regional)
		out.Labor[i].Total = out.Labor[i].Total.Mul(f.Regional)
	}
	for i := range out.Equipment {
		out.Equipment[i].Rate = out.Equipment[i].Rate.Mul(f.Regional)
		out.Equipment[i].Total = out.Equipment[i].Total.Mul(f.Regional)
	}

	out.Recompute()
	return out
}
