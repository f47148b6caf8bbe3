// Package risk evaluates rule lists over an adjusted estimate and produces
// risks and recommendations.
//
// Every rule is a pure function of the Context. Rules never see each other's
// output except recommendation rules, which receive the finished risk list.
// Evaluation order is the slice order, so output is deterministic.
package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"construction-cost/core/types"
)

// Thresholds used by the default rules
const (
	LargeProjectSqft   = 10000
	ShortTimelineDays  = 90
	ValueEngineerTotal = 1000000
)

// materials share of the subtotal above which bulk purchasing is suggested
var materialsShareBulk = decimal.RequireFromString("0.4")

// Context is what rules read. It is built once per estimate.
type Context struct {
	Project       *types.Project
	SquareFootage decimal.Decimal
	Breakdown     *types.CostBreakdown
	Season        types.Season
	Insight       *types.Insight
}

// RiskRule emits zero or more risks
type RiskRule func(c *Context) []types.Risk

// RecommendationRule emits at most one recommendation
type RecommendationRule func(c *Context, risks []types.Risk) (string, bool)

// DefaultRiskRules in evaluation order
var DefaultRiskRules = []RiskRule{
	LargeProjectRisk,
	WinterScheduleRisk,
	GreenCertificationRisk,
	ChallengeRisks,
}

// DefaultRecommendationRules in evaluation order
var DefaultRecommendationRules = []RecommendationRule{
	ValueEngineering,
	BulkPurchasing,
	PreOrderLongLead,
	RiskManagementPlan,
}

// Result holds the evaluated lists
type Result struct {
	Risks           []types.Risk
	Recommendations []string
}

// Evaluator runs a fixed set of rules
type Evaluator struct {
	RiskRules           []RiskRule
	RecommendationRules []RecommendationRule
}

// NewEvaluator returns an evaluator with the default rules
func NewEvaluator() *Evaluator {
	return &Evaluator{
		RiskRules:           DefaultRiskRules,
		RecommendationRules: DefaultRecommendationRules,
	}
}

// Evaluate runs all risk rules, then all recommendation rules, concatenating
// their output in rule order. Lists are never nil.
func (e *Evaluator) Evaluate(c *Context) Result {
	res := Result{
		Risks:           []types.Risk{},
		Recommendations: []string{},
	}
	for _, rule := range e.RiskRules {
		res.Risks = append(res.Risks, rule(c)...)
	}
	for _, rule := range e.RecommendationRules {
		if rec, ok := rule(c, res.Risks); ok {
			res.Recommendations = append(res.Recommendations, rec)
		}
	}
	return res
}

// Evaluate runs the default rules
func Evaluate(c *Context) Result {
	return NewEvaluator().Evaluate(c)
}

// LargeProjectRisk flags price exposure on projects over 10,000 sq ft
func LargeProjectRisk(c *Context) []types.Risk {
	if !c.SquareFootage.GreaterThan(decimal.NewFromInt(LargeProjectSqft)) {
		return nil
	}
	return []types.Risk{{
		Category:    types.RiskCost,
		Description: fmt.Sprintf("Large project (%s sq ft) is exposed to material price volatility", c.SquareFootage.String()),
		Probability: types.LevelMedium,
		Impact:      types.LevelHigh,
		Mitigation:  "Lock in material prices early",
	}}
}

// WinterScheduleRisk flags weather delays when estimating in winter
func WinterScheduleRisk(c *Context) []types.Risk {
	if c.Season != types.SeasonWinter {
		return nil
	}
	return []types.Risk{{
		Category:    types.RiskSchedule,
		Description: "Winter conditions may delay outdoor work",
		Probability: types.LevelHigh,
		Impact:      types.LevelMedium,
		Mitigation:  "Add weather contingency days and protect materials on site",
	}}
}

// GreenCertificationRisk flags certification requirements
func GreenCertificationRisk(c *Context) []types.Risk {
	if c.Project == nil || len(c.Project.Specifications.GreenCertifications) == 0 {
		return nil
	}
	return []types.Risk{{
		Category:    types.RiskRegulatory,
		Description: "Green certification requirements add documentation and inspection steps",
		Probability: types.LevelMedium,
		Impact:      types.LevelMedium,
		Mitigation:  "Engage a certification consultant during design",
	}}
}

// ChallengeRisks turns every insight challenge into a quality risk
func ChallengeRisks(c *Context) []types.Risk {
	if c.Insight == nil {
		return nil
	}
	var out []types.Risk
	for _, challenge := range c.Insight.Challenges {
		out = append(out, types.Risk{
			Category:    types.RiskQuality,
			Description: challenge,
			Probability: types.LevelMedium,
			Impact:      types.LevelMedium,
		})
	}
	return out
}

// ValueEngineering fires on totals over $1,000,000
func ValueEngineering(c *Context, _ []types.Risk) (string, bool) {
	if c.Breakdown == nil || !c.Breakdown.Total.GreaterThan(decimal.NewFromInt(ValueEngineerTotal)) {
		return "", false
	}
	return "Consider value engineering to reduce costs on this large project", true
}

// BulkPurchasing fires when materials exceed 40% of the subtotal
func BulkPurchasing(c *Context, _ []types.Risk) (string, bool) {
	if c.Breakdown == nil || !c.Breakdown.Subtotal.IsPositive() {
		return "", false
	}
	share := c.Breakdown.MaterialsTotal().Div(c.Breakdown.Subtotal)
	if !share.GreaterThan(materialsShareBulk) {
		return "", false
	}
	return "Materials are a large share of cost; negotiate bulk purchasing with suppliers", true
}

// PreOrderLongLead fires when both timeline dates are known and the span is
// under 90 days
func PreOrderLongLead(c *Context, _ []types.Risk) (string, bool) {
	if c.Project == nil {
		return "", false
	}
	days, ok := c.Project.Timeline.DurationDays()
	if !ok || days >= ShortTimelineDays {
		return "", false
	}
	return "Short timeline: pre-order long-lead materials", true
}

// RiskManagementPlan fires when any risk has high impact
func RiskManagementPlan(_ *Context, risks []types.Risk) (string, bool) {
	for _, r := range risks {
		if r.Impact == types.LevelHigh {
			return "High-impact risks identified; prepare a formal risk management plan", true
		}
	}
	return "", false
}
