package comparables

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// Store is the historical comparable-project store. Results carry no
// similarity; scores are always computed fresh by a Matcher.
type Store interface {
	// ByCategory returns the comparables of a category in store order
	ByCategory(ctx context.Context, category types.Category) ([]types.ComparableProject, error)
}

// MemoryStore is a read-only in-memory store indexed by category
type MemoryStore struct {
	byCategory map[types.Category][]types.ComparableProject
}

// NewMemoryStore indexes projects by category, keeping their order
func NewMemoryStore(projects []types.ComparableProject) *MemoryStore {
	s := &MemoryStore{byCategory: make(map[types.Category][]types.ComparableProject)}
	for _, p := range projects {
		p.Similarity = 0
		p = withCostPerSqft(p)
		s.byCategory[p.Category] = append(s.byCategory[p.Category], p)
	}
	return s
}

// ByCategory returns a copy of the category's comparables
func (s *MemoryStore) ByCategory(ctx context.Context, category types.Category) ([]types.ComparableProject, error) {
	src := s.byCategory[category]
	out := make([]types.ComparableProject, len(src))
	copy(out, src)
	return out, nil
}

// Len returns the number of stored comparables
func (s *MemoryStore) Len() int {
	n := 0
	for _, list := range s.byCategory {
		n += len(list)
	}
	return n
}

// seedFile is the on-disk form of a comparable list
type seedFile struct {
	Comparables []types.ComparableProject `json:"comparables" yaml:"comparables"`
}

// ReadFile parses a YAML or JSON comparable seed file
func ReadFile(path string) ([]types.ComparableProject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Store("failed to read comparables file", err)
	}

	var seed seedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &seed)
	default:
		err = yaml.Unmarshal(data, &seed)
	}
	if err != nil {
		return nil, errors.Store("failed to parse comparables file "+path, err)
	}
	return seed.Comparables, nil
}

// LoadMemoryStore reads a seed file into a MemoryStore
func LoadMemoryStore(path string) (*MemoryStore, error) {
	projects, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(projects), nil
}

// Open creates a store for a driver: memory (optional seed file at path),
// sqlite or postgres (dsn).
func Open(driver, dsn, path string) (Store, error) {
	switch driver {
	case "", "memory":
		if path == "" {
			return NewMemoryStore(nil), nil
		}
		s, err := LoadMemoryStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverSQLite, DriverPostgres:
		s, err := OpenSQLStore(driver, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.Config("unsupported comparables driver: "+driver, nil)
	}
}

func withCostPerSqft(p types.ComparableProject) types.ComparableProject {
	if p.CostPerSqft.IsZero() && p.Size > 0 && !math.IsInf(p.Size, 0) {
		p.CostPerSqft = p.ActualCost.Div(decimal.NewFromFloat(p.Size))
	}
	return p
}
