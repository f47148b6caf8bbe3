// Package api - API types for construction estimates
// These types define the contract for the /estimates endpoints.
package api

import (
	"math"
	"strings"
	"time"

	"construction-cost/adapters/storage"
	"construction-cost/core/estimate"
	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// StatusRequest is the body of POST /estimates/{id}/status
type StatusRequest struct {
	Status string `json:"status"`
}

// EstimateResponse wraps an estimate with its status as of the request
type EstimateResponse struct {
	Estimate        *types.Estimate `json:"estimate"`
	EffectiveStatus types.Status    `json:"effective_status"`
	SavedAt         time.Time       `json:"saved_at"`
}

// SummaryResponse is one entry of GET /estimates
type SummaryResponse struct {
	ID              string       `json:"id"`
	ProjectID       string       `json:"project_id"`
	Version         int          `json:"version"`
	Total           string       `json:"total"`
	Confidence      int          `json:"confidence"`
	Status          types.Status `json:"status"`
	EffectiveStatus types.Status `json:"effective_status"`
	CreatedAt       time.Time    `json:"created_at"`
}

// ErrorResponse is the error body
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newEstimateResponse(s *storage.StoredEstimate, now time.Time) *EstimateResponse {
	return &EstimateResponse{
		Estimate:        s.Estimate,
		EffectiveStatus: estimate.EffectiveStatus(s.Estimate, now),
		SavedAt:         s.SavedAt,
	}
}

func newSummaryResponse(s *storage.StoredEstimate, now time.Time) SummaryResponse {
	return SummaryResponse{
		ID:              s.ID,
		ProjectID:       s.ProjectID,
		Version:         s.Version,
		Total:           s.Total.StringFixed(2),
		Confidence:      s.Confidence,
		Status:          s.Status,
		EffectiveStatus: estimate.EffectiveStatus(s.Estimate, now),
		CreatedAt:       s.CreatedAt,
	}
}

// normalizeProject trims free text and upper-cases the state so equal
// projects fingerprint equally. It returns a validated copy.
func normalizeProject(p types.Project) (*types.Project, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Title = strings.TrimSpace(p.Title)
	p.Category = types.Category(strings.ToLower(strings.TrimSpace(string(p.Category))))
	p.Subcategory = strings.TrimSpace(p.Subcategory)
	p.Location.Address = strings.TrimSpace(p.Location.Address)
	p.Location.City = strings.TrimSpace(p.Location.City)
	p.Location.State = strings.ToUpper(strings.TrimSpace(p.Location.State))
	p.Specifications.SpecialRequirements = trimAll(p.Specifications.SpecialRequirements)
	p.Specifications.GreenCertifications = trimAll(p.Specifications.GreenCertifications)

	if p.Category == "" {
		return nil, errors.Input("category is required")
	}
	if !p.Category.Valid() {
		return nil, errors.Input("unknown category: " + string(p.Category))
	}
	if sqft := p.Specifications.SquareFootage; math.IsNaN(sqft) || math.IsInf(sqft, 0) {
		return nil, errors.Input("square_footage must be a finite number")
	}
	if p.Specifications.SquareFootage < 0 {
		return nil, errors.Input("square_footage cannot be negative")
	}
	if p.Specifications.Stories < 0 {
		return nil, errors.Input("stories cannot be negative")
	}
	if start, end := p.Timeline.EstimatedStart, p.Timeline.EstimatedEnd; start != nil && end != nil && end.Before(*start) {
		return nil, errors.Input("estimated_end is before estimated_start")
	}
	return &p, nil
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
