package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// fileExt is the suffix of stored estimate files
const fileExt = ".json.zst"

// FileStore keeps one zstd-compressed JSON file per estimate, grouped in a
// directory per project
type FileStore struct {
	basePath string
	mu       sync.RWMutex
	now      func() time.Time

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if basePath == "" {
		return nil, errors.Config("storage path is required", nil)
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Store("failed to create storage directory", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, errors.Store("failed to create encoder", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, errors.Store("failed to create decoder", err)
	}

	return &FileStore{
		basePath: basePath,
		now:      time.Now,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

func (s *FileStore) Save(ctx context.Context, e *types.Estimate) (*StoredEstimate, error) {
	if e == nil {
		return nil, errors.Input("estimate is required")
	}
	if err := validID("estimate", e.ID); err != nil {
		return nil, err
	}
	if err := validID("project", e.ProjectID); err != nil {
		return nil, err
	}

	stored := NewStoredEstimate(e, s.now())
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, errors.Store("failed to marshal estimate", err)
	}
	compressed := s.encoder.EncodeAll(data, nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	projectDir := filepath.Join(s.basePath, stored.ProjectID)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return nil, errors.Store("failed to create project directory", err)
	}

	// write then rename so readers never see a partial file
	filePath := filepath.Join(projectDir, stored.ID+fileExt)
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return nil, errors.Store("failed to write estimate", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		_ = os.Remove(tmp)
		return nil, errors.Store("failed to write estimate", err)
	}

	return stored, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*StoredEstimate, error) {
	if err := validID("estimate", id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return s.read(path)
}

func (s *FileStore) List(ctx context.Context, filter *ListFilter) ([]*StoredEstimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pattern := filepath.Join(s.basePath, "*", "*"+fileExt)
	if filter != nil && filter.ProjectID != "" {
		if err := validID("project", filter.ProjectID); err != nil {
			return nil, err
		}
		pattern = filepath.Join(s.basePath, filter.ProjectID, "*"+fileExt)
	}

	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Store("failed to list estimates", err)
	}

	results := []*StoredEstimate{}
	for _, path := range paths {
		result, err := s.read(path)
		if err != nil {
			return nil, err
		}
		if filter.match(result) {
			results = append(results, result)
		}
	}
	return page(results, filter), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := validID("estimate", id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.find(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return errors.Store("failed to delete estimate "+id, err)
	}
	return nil
}

func (s *FileStore) GetLatest(ctx context.Context, projectID string) (*StoredEstimate, error) {
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

func (s *FileStore) Compare(ctx context.Context, oldID, newID string) (*CompareResult, error) {
	return compare(ctx, s, oldID, newID)
}

func (s *FileStore) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	return nil
}

// find locates an estimate file across project directories
func (s *FileStore) find(id string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*", id+fileExt))
	if err != nil {
		return "", errors.Store("failed to search storage", err)
	}
	if len(matches) == 0 {
		return "", errors.NotFound("estimate", id)
	}
	return matches[0], nil
}

func (s *FileStore) read(path string) (*StoredEstimate, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Store("failed to read "+filepath.Base(path), err)
	}
	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, errors.Store("failed to decompress "+filepath.Base(path), err)
	}

	var result StoredEstimate
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Store("failed to unmarshal "+filepath.Base(path), err)
	}
	if result.ID == "" {
		result.ID = strings.TrimSuffix(filepath.Base(path), fileExt)
	}
	return &result, nil
}
