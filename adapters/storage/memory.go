package storage

import (
	"context"
	"sync"
	"time"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// MemoryStore is an in-memory storage backend (for testing and the server's
// ephemeral mode)
type MemoryStore struct {
	results map[string]*StoredEstimate
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		results: make(map[string]*StoredEstimate),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, e *types.Estimate) (*StoredEstimate, error) {
	if e == nil {
		return nil, errors.Input("estimate is required")
	}
	if err := validID("estimate", e.ID); err != nil {
		return nil, err
	}

	stored := NewStoredEstimate(e, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[stored.ID] = stored
	return copyStored(stored), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*StoredEstimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[id]
	if !ok {
		return nil, errors.NotFound("estimate", id)
	}
	return copyStored(result), nil
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*StoredEstimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*StoredEstimate{}
	for _, result := range s.results {
		if filter.match(result) {
			results = append(results, copyStored(result))
		}
	}
	return page(results, filter), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[id]; !ok {
		return errors.NotFound("estimate", id)
	}
	delete(s.results, id)
	return nil
}

func (s *MemoryStore) GetLatest(ctx context.Context, projectID string) (*StoredEstimate, error) {
	results, err := s.List(ctx, &ListFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	best := latest(results)
	if best == nil {
		return nil, errors.NotFound("estimates for project", projectID)
	}
	return best, nil
}

func (s *MemoryStore) Compare(ctx context.Context, oldID, newID string) (*CompareResult, error) {
	return compare(ctx, s, oldID, newID)
}

func (s *MemoryStore) Close() error {
	return nil
}

func copyStored(s *StoredEstimate) *StoredEstimate {
	out := *s
	out.Estimate = s.Estimate.Clone()
	return &out
}
