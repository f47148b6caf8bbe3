// Package storage persists assembled estimates.
// Supports two backends: compressed files and memory.
package storage

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"construction-cost/core/determinism"
	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Store is the storage interface
type Store interface {
	// Save stores an estimate, replacing any record with the same ID
	Save(ctx context.Context, e *types.Estimate) (*StoredEstimate, error)

	// Get retrieves an estimate by ID
	Get(ctx context.Context, id string) (*StoredEstimate, error)

	// List lists estimates matching a filter, oldest first
	List(ctx context.Context, filter *ListFilter) ([]*StoredEstimate, error)

	// Delete removes an estimate
	Delete(ctx context.Context, id string) error

	// GetLatest gets the highest version stored for a project
	GetLatest(ctx context.Context, projectID string) (*StoredEstimate, error)

	// Compare compares two estimates
	Compare(ctx context.Context, oldID, newID string) (*CompareResult, error)

	// Close closes the store
	Close() error
}

// StoredEstimate is a stored estimate with its summary fields
type StoredEstimate struct {
	ID         string          `json:"id"`
	ProjectID  string          `json:"project_id"`
	Version    int             `json:"version"`
	Total      decimal.Decimal `json:"total"`
	Confidence int             `json:"confidence"`
	Status     types.Status    `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	SavedAt    time.Time       `json:"saved_at"`

	Estimate *types.Estimate `json:"estimate"`
}

// NewStoredEstimate summarizes a copy of e
func NewStoredEstimate(e *types.Estimate, savedAt time.Time) *StoredEstimate {
	s := &StoredEstimate{
		ID:         e.ID,
		ProjectID:  e.ProjectID,
		Version:    e.Version,
		Confidence: e.Confidence,
		Status:     e.Status,
		CreatedAt:  e.CreatedAt,
		SavedAt:    savedAt,
		Estimate:   e.Clone(),
	}
	if e.Breakdown != nil {
		s.Total = e.Breakdown.Total
	}
	return s
}

// ListFilter filters result listing
type ListFilter struct {
	ProjectID string
	Status    types.Status
	Since     time.Time
	Until     time.Time
	MinTotal  decimal.Decimal
	MaxTotal  decimal.Decimal
	Limit     int
	Offset    int
}

func (f *ListFilter) match(s *StoredEstimate) bool {
	if f == nil {
		return true
	}
	if f.ProjectID != "" && s.ProjectID != f.ProjectID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if !f.Since.IsZero() && s.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && s.CreatedAt.After(f.Until) {
		return false
	}
	if f.MinTotal.IsPositive() && s.Total.LessThan(f.MinTotal) {
		return false
	}
	if f.MaxTotal.IsPositive() && s.Total.GreaterThan(f.MaxTotal) {
		return false
	}
	return true
}

// page orders results oldest first and applies offset and limit
func page(results []*StoredEstimate, f *ListFilter) []*StoredEstimate {
	determinism.SortSlice(results, func(a, b *StoredEstimate) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		return a.ID < b.ID
	})
	if f == nil {
		return results
	}
	if f.Offset > 0 {
		if f.Offset >= len(results) {
			return []*StoredEstimate{}
		}
		results = results[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(results) {
		results = results[:f.Limit]
	}
	return results
}

// latest picks the highest version, newest first on ties
func latest(results []*StoredEstimate) *StoredEstimate {
	var best *StoredEstimate
	for _, r := range results {
		if best == nil || r.Version > best.Version ||
			(r.Version == best.Version && r.CreatedAt.After(best.CreatedAt)) {
			best = r
		}
	}
	return best
}

// CompareResult is a comparison between two estimates
type CompareResult struct {
	OldID           string          `json:"old_id"`
	NewID           string          `json:"new_id"`
	OldTotal        decimal.Decimal `json:"old_total"`
	NewTotal        decimal.Decimal `json:"new_total"`
	Delta           decimal.Decimal `json:"delta"`
	DeltaPercent    decimal.Decimal `json:"delta_percent"`
	OldConfidence   int             `json:"old_confidence"`
	NewConfidence   int             `json:"new_confidence"`
	ConfidenceDelta int             `json:"confidence_delta"`
}

// Diff compares two stored estimates
func Diff(before, after *StoredEstimate) *CompareResult {
	delta := after.Total.Sub(before.Total)
	deltaPercent := decimal.Zero
	if before.Total.IsPositive() {
		deltaPercent = delta.Div(before.Total).Mul(decimal.NewFromInt(100))
	}
	return &CompareResult{
		OldID:           before.ID,
		NewID:           after.ID,
		OldTotal:        before.Total,
		NewTotal:        after.Total,
		Delta:           delta,
		DeltaPercent:    deltaPercent,
		OldConfidence:   before.Confidence,
		NewConfidence:   after.Confidence,
		ConfidenceDelta: after.Confidence - before.Confidence,
	}
}

func compare(ctx context.Context, s Store, oldID, newID string) (*CompareResult, error) {
	oldResult, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newResult, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}
	return Diff(oldResult, newResult), nil
}

// validID rejects identifiers that cannot be used as a path element
func validID(kind, id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\*?[`) {
		return errors.Input("invalid " + kind + " id: " + id)
	}
	return nil
}

// Open creates a store by backend type
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		s, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.Config("unsupported storage backend: "+string(backend), nil)
	}
}
