package estimate

import (
	"time"

	"github.com/shopspring/decimal"

	"construction-cost/core/adjustment"
	"construction-cost/core/breakdown"
	"construction-cost/core/comparables"
	"construction-cost/core/confidence"
	"construction-cost/core/rates"
	"construction-cost/core/risk"
	"construction-cost/core/types"
)

// Context carries one request through the pipeline. It is created per
// Generate call and never shared, so stages may write to it freely.
type Context struct {
	Project *types.Project
	Now     time.Time
	Table   *rates.Table

	// Filled by the insight and comparables stages
	Insight    *types.Insight
	Candidates []types.ComparableProject

	// Filled by the calculation stages
	SquareFootage decimal.Decimal
	Base          *types.CostBreakdown
	Factors       adjustment.Factors
	Adjusted      *types.CostBreakdown
	Comparables   []types.ComparableProject
	Evaluation    risk.Result
	Confidence    int
	Assumptions   []string
}

func newContext(p *types.Project, table *rates.Table, now time.Time) *Context {
	return &Context{Project: p, Now: now, Table: table}
}

// category is the project category, residential when unset
func (c *Context) category() types.Category {
	if c.Project.Category == "" {
		return types.CategoryResidential
	}
	return c.Project.Category
}

func (c *Context) calculate() {
	res := breakdown.Calculate(c.Project, c.Insight, c.Table)
	c.Base = res.Breakdown
	c.SquareFootage = res.SquareFootage
	c.Assumptions = append(append([]string{}, c.Insight.Assumptions...), res.Assumptions...)
}

func (c *Context) adjust() {
	c.Factors = adjustment.Resolve(c.Table, c.Project, c.Insight, c.Now)
	c.Adjusted = adjustment.Apply(c.Base, c.Factors)
}

func (c *Context) rank(m *comparables.Matcher) {
	target := comparables.Target{
		Category: c.category(),
		Location: c.Project.Location.Key(),
		Size:     c.SquareFootage.InexactFloat64(),
	}
	c.Comparables = m.Rank(target, c.Candidates)
}

func (c *Context) evaluate(e *risk.Evaluator) {
	c.Evaluation = e.Evaluate(&risk.Context{
		Project:       c.Project,
		SquareFootage: c.SquareFootage,
		Breakdown:     c.Adjusted,
		Season:        c.Factors.Season,
		Insight:       c.Insight,
	})
}

func (c *Context) score() {
	c.Confidence = confidence.Score(c.Project, c.Comparables)
}
