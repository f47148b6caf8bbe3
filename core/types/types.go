// Package types defines core domain types shared across all layers.
// This package contains NO estimation logic - only type definitions and
// the arithmetic needed to keep a breakdown internally consistent.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Season is a calendar bucket used for seasonal pricing
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

// Level is a low/medium/high rating
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// RiskCategory classifies a risk
type RiskCategory string

const (
	RiskCost       RiskCategory = "cost"
	RiskSchedule   RiskCategory = "schedule"
	RiskRegulatory RiskCategory = "regulatory"
	RiskQuality    RiskCategory = "quality"
)

// Risk is a flagged estimation risk
type Risk struct {
	Category    RiskCategory `json:"category"`
	Description string       `json:"description"`
	Probability Level        `json:"probability"`
	Impact      Level        `json:"impact"`
	Mitigation  string       `json:"mitigation,omitempty"`
}

// ComparableProject is a completed historical project. Similarity is only
// meaningful for the query that produced it and is never persisted.
type ComparableProject struct {
	ID          string          `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Category    Category        `json:"category" yaml:"category"`
	Location    string          `json:"location" yaml:"location"`
	CompletedAt time.Time       `json:"completed_at" yaml:"completed_at"`
	Size        float64         `json:"size" yaml:"size"`
	ActualCost  decimal.Decimal `json:"actual_cost" yaml:"actual_cost"`
	CostPerSqft decimal.Decimal `json:"cost_per_sqft" yaml:"cost_per_sqft"`
	Similarity  int             `json:"similarity" yaml:"-"`
}

// Status is the lifecycle state of an estimate
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// ValidityPeriod is how long an estimate stays open after creation
const ValidityPeriod = 30 * 24 * time.Hour

// Estimate is an assembled, immutable estimate. Consumers must treat it as a
// value; revisions are new estimates with a higher Version.
type Estimate struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`

	Breakdown  *CostBreakdown `json:"breakdown"`
	Confidence int            `json:"confidence"`

	Phases          []string            `json:"phases"`
	Assumptions     []string            `json:"assumptions"`
	Risks           []Risk              `json:"risks"`
	Recommendations []string            `json:"recommendations"`
	Comparables     []ComparableProject `json:"comparables"`

	// Adjustments are percentages relative to 1.00
	RegionalAdjustment decimal.Decimal `json:"regional_adjustment"`
	SeasonalAdjustment decimal.Decimal `json:"seasonal_adjustment"`
	ComplexityFactor   decimal.Decimal `json:"complexity_factor"`
	Season             Season          `json:"season"`

	InsightSource    InsightSource `json:"insight_source"`
	InputFingerprint string        `json:"input_fingerprint"`

	ValidUntil time.Time `json:"valid_until"`
	Status     Status    `json:"status"`
}

// Clone returns a deep copy
func (e *Estimate) Clone() *Estimate {
	if e == nil {
		return nil
	}
	out := *e
	out.Breakdown = e.Breakdown.Clone()
	out.Phases = append([]string(nil), e.Phases...)
	out.Assumptions = append([]string(nil), e.Assumptions...)
	out.Risks = append([]Risk(nil), e.Risks...)
	out.Recommendations = append([]string(nil), e.Recommendations...)
	out.Comparables = append([]ComparableProject(nil), e.Comparables...)
	return &out
}
