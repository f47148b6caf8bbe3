package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

func estimate(id, project string, version int, total string, confidence int, created time.Time) *types.Estimate {
	b := &types.CostBreakdown{Total: decimal.RequireFromString(total)}
	return &types.Estimate{
		ID:         id,
		ProjectID:  project,
		Version:    version,
		CreatedAt:  created,
		Breakdown:  b,
		Confidence: confidence,
		Risks:      []types.Risk{{Category: types.RiskCost, Description: "large"}},
		Status:     types.StatusDraft,
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "estimates"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	t.Cleanup(func() { _ = fs.Close() })
	return map[string]Store{"file": fs, "memory": NewMemoryStore()}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			e := estimate("est-1", "proj-1", 1, "264111.123", 65, created)
			saved, err := s.Save(ctx, e)
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if !saved.Total.Equal(e.Breakdown.Total) || saved.Version != 1 {
				t.Errorf("summary = %+v", saved)
			}

			got, err := s.Get(ctx, "est-1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.ProjectID != "proj-1" || got.Confidence != 65 || got.Status != types.StatusDraft {
				t.Errorf("Get = %+v", got)
			}
			if !got.Estimate.Breakdown.Total.Equal(decimal.RequireFromString("264111.123")) {
				t.Errorf("total lost precision: %s", got.Estimate.Breakdown.Total)
			}
			if !got.CreatedAt.Equal(created) {
				t.Errorf("CreatedAt = %s", got.CreatedAt)
			}

			// stored records are independent of the caller's value
			e.Risks[0].Description = "changed"
			again, _ := s.Get(ctx, "est-1")
			if again.Estimate.Risks[0].Description != "large" {
				t.Error("store shares state with the saved estimate")
			}

			if _, err := s.Get(ctx, "missing"); !errors.IsType(err, errors.TypeNotFound) {
				t.Errorf("expected NOT_FOUND, got %v", err)
			}
		})
	}
}

func TestSaveReplacesByID(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			e := estimate("est-1", "proj-1", 1, "100", 50, time.Now())
			if _, err := s.Save(ctx, e); err != nil {
				t.Fatalf("Save: %v", err)
			}
			sent := e.Clone()
			sent.Status = types.StatusSent
			if _, err := s.Save(ctx, sent); err != nil {
				t.Fatalf("Save: %v", err)
			}

			all, err := s.List(ctx, nil)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(all) != 1 || all[0].Status != types.StatusSent {
				t.Errorf("List = %+v", all)
			}
		})
	}
}

func TestListAndLatest(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			records := []*types.Estimate{
				estimate("a1", "proj-a", 1, "1000", 50, base),
				estimate("a2", "proj-a", 2, "1200", 60, base.Add(time.Hour)),
				estimate("b1", "proj-b", 1, "5000", 70, base.Add(2*time.Hour)),
			}
			for _, e := range records {
				if _, err := s.Save(ctx, e); err != nil {
					t.Fatalf("Save: %v", err)
				}
			}

			all, err := s.List(ctx, nil)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(all) != 3 || all[0].ID != "a1" || all[2].ID != "b1" {
				t.Errorf("List order = %v", ids(all))
			}

			projA, _ := s.List(ctx, &ListFilter{ProjectID: "proj-a"})
			if len(projA) != 2 {
				t.Errorf("proj-a = %v", ids(projA))
			}

			expensive, _ := s.List(ctx, &ListFilter{MinTotal: decimal.NewFromInt(1100)})
			if len(expensive) != 2 {
				t.Errorf("min total = %v", ids(expensive))
			}

			paged, _ := s.List(ctx, &ListFilter{Offset: 1, Limit: 1})
			if len(paged) != 1 || paged[0].ID != "a2" {
				t.Errorf("paged = %v", ids(paged))
			}
			past, _ := s.List(ctx, &ListFilter{Offset: 10})
			if len(past) != 0 {
				t.Errorf("offset past end = %v", ids(past))
			}

			latest, err := s.GetLatest(ctx, "proj-a")
			if err != nil {
				t.Fatalf("GetLatest: %v", err)
			}
			if latest.ID != "a2" || latest.Version != 2 {
				t.Errorf("latest = %s v%d", latest.ID, latest.Version)
			}
			if _, err := s.GetLatest(ctx, "proj-z"); !errors.IsType(err, errors.TypeNotFound) {
				t.Errorf("expected NOT_FOUND, got %v", err)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, _ = s.Save(ctx, estimate("v1", "proj", 1, "1000", 50, time.Now()))
			_, _ = s.Save(ctx, estimate("v2", "proj", 2, "1250", 65, time.Now()))

			res, err := s.Compare(ctx, "v1", "v2")
			if err != nil {
				t.Fatalf("Compare: %v", err)
			}
			if !res.Delta.Equal(decimal.NewFromInt(250)) {
				t.Errorf("Delta = %s", res.Delta)
			}
			if !res.DeltaPercent.Equal(decimal.NewFromInt(25)) {
				t.Errorf("DeltaPercent = %s", res.DeltaPercent)
			}
			if res.ConfidenceDelta != 15 {
				t.Errorf("ConfidenceDelta = %d", res.ConfidenceDelta)
			}

			if _, err := s.Compare(ctx, "v1", "missing"); !errors.IsType(err, errors.TypeNotFound) {
				t.Errorf("expected NOT_FOUND, got %v", err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, _ = s.Save(ctx, estimate("gone", "proj", 1, "1", 50, time.Now()))
			if err := s.Delete(ctx, "gone"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, "gone"); !errors.IsType(err, errors.TypeNotFound) {
				t.Errorf("expected NOT_FOUND after delete, got %v", err)
			}
			if err := s.Delete(ctx, "gone"); !errors.IsType(err, errors.TypeNotFound) {
				t.Errorf("second delete: expected NOT_FOUND, got %v", err)
			}
		})
	}
}

func TestRejectsUnsafeIDs(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"", "..", "a/b", "*"} {
				if _, err := s.Save(ctx, estimate(id, "proj", 1, "1", 50, time.Now())); !errors.IsType(err, errors.TypeInput) {
					t.Errorf("Save(%q): expected INPUT error, got %v", id, err)
				}
			}
		})
	}
}

func TestFileStoreCompresses(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()

	if _, err := s.Save(context.Background(), estimate("est", "proj", 1, "1", 50, time.Now())); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "proj", "est"+fileExt))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// zstd frame magic number
	if len(data) < 4 || data[0] != 0x28 || data[1] != 0xB5 || data[2] != 0x2F || data[3] != 0xFD {
		t.Errorf("stored file is not a zstd frame")
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open(BackendMemory, ""); err != nil {
		t.Errorf("memory: %v", err)
	}
	s, err := Open(BackendFile, t.TempDir())
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	_ = s.Close()
	if _, err := Open("s3", ""); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected CONFIG error, got %v", err)
	}
}

func ids(results []*StoredEstimate) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}
