package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

func sampleProject() *types.Project {
	return &types.Project{
		Category:    types.CategoryCommercial,
		Subcategory: "office",
		Specifications: types.Specifications{
			SquareFootage:       15000,
			Stories:             6,
			SpecialRequirements: []string{"seismic retrofit"},
		},
		Location: types.Location{City: "Oakland", State: "CA"},
	}
}

func TestFallback(t *testing.T) {
	f := Fallback()
	if f.Source != types.InsightFromFallback {
		t.Errorf("Source = %s", f.Source)
	}
	if len(f.Phases) != len(DefaultPhases) || f.Phases[0] != "Site Preparation" {
		t.Errorf("Phases = %v", f.Phases)
	}
	if f.Challenges == nil || len(f.Challenges) != 0 {
		t.Errorf("Challenges should be an empty list, got %v", f.Challenges)
	}
	if len(f.Assumptions) == 0 {
		t.Error("fallback carries no assumptions")
	}

	// every call is independent
	f.Phases[0] = "changed"
	if Fallback().Phases[0] != "Site Preparation" {
		t.Error("Fallback shares state between calls")
	}
}

func TestStatic(t *testing.T) {
	s := NewStatic(&types.Insight{Challenges: []string{"steep slope"}})
	got, err := s.Analyze(context.Background(), sampleProject())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Source != types.InsightFromStatic || len(got.Challenges) != 1 {
		t.Errorf("got %+v", got)
	}
	got.Challenges[0] = "changed"
	again, _ := s.Analyze(context.Background(), sampleProject())
	if again.Challenges[0] != "steep slope" {
		t.Error("Static returned shared state")
	}

	def, _ := NewStatic(nil).Analyze(context.Background(), nil)
	if def.Source != types.InsightFromStatic || len(def.Phases) != len(DefaultPhases) {
		t.Errorf("default static = %+v", def)
	}
}

func TestHTTPAnalyzer(t *testing.T) {
	var received Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{
			Phases:      []string{"Demolition", "Seismic Upgrade"},
			Materials:   []string{"steel moment frames"},
			Challenges:  []string{"occupied building"},
			Assumptions: []string{"Night work allowed"},
		})
	}))
	defer server.Close()

	a := NewHTTPAnalyzer(server.URL+"/", "secret")
	got, err := a.Analyze(context.Background(), sampleProject())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if received.Location != "Oakland, CA" || received.SquareFootage != 15000 || received.Stories != 6 {
		t.Errorf("request = %+v", received)
	}
	if len(received.SpecialRequirements) != 1 {
		t.Errorf("special requirements = %v", received.SpecialRequirements)
	}
	if got.Source != types.InsightFromService {
		t.Errorf("Source = %s", got.Source)
	}
	if len(got.Challenges) != 1 || got.Labor == nil {
		t.Errorf("insight = %+v", got)
	}
}

func TestHTTPAnalyzerErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewHTTPAnalyzer(server.URL, "").Analyze(context.Background(), sampleProject())
			if !errors.IsType(err, errors.TypeInsight) {
				t.Errorf("expected INSIGHT error, got %v", err)
			}
		})
	}
}

func TestBoundedFallsBackOnTimeoutAndRetriesOnce(t *testing.T) {
	var calls int32
	slow := AnalyzerFunc(func(ctx context.Context, p *types.Project) (*types.Insight, error) {
		atomic.AddInt32(&calls, 1)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	b := NewBounded(slow, 20*time.Millisecond, 5, zap.NewNop())
	if b.Retries != MaxRetries {
		t.Errorf("Retries = %d, want capped to %d", b.Retries, MaxRetries)
	}

	got, err := b.Analyze(context.Background(), sampleProject())
	if err != nil {
		t.Fatalf("Bounded returned an error: %v", err)
	}
	if got.Source != types.InsightFromFallback {
		t.Errorf("Source = %s, want fallback", got.Source)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("analyzer called %d times, want 2", n)
	}
}

func TestBoundedAbandonsAnalyzerIgnoringContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	stuck := AnalyzerFunc(func(ctx context.Context, p *types.Project) (*types.Insight, error) {
		<-release
		return &types.Insight{}, nil
	})

	start := time.Now()
	got, _ := NewBounded(stuck, 10*time.Millisecond, 0, zap.NewNop()).Analyze(context.Background(), sampleProject())
	if got.Source != types.InsightFromFallback {
		t.Errorf("Source = %s, want fallback", got.Source)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Bounded blocked for %s", elapsed)
	}
}

func TestBoundedRecoversOnRetry(t *testing.T) {
	var calls int32
	flaky := AnalyzerFunc(func(ctx context.Context, p *types.Project) (*types.Insight, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.Insight("temporary", nil)
		}
		return &types.Insight{Challenges: []string{"x"}, Source: types.InsightFromService}, nil
	})

	got, err := NewBounded(flaky, time.Second, 1, zap.NewNop()).Analyze(context.Background(), sampleProject())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Source != types.InsightFromService || len(got.Challenges) != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestBoundedNilAnalyzer(t *testing.T) {
	got, err := NewBounded(nil, 0, 0, nil).Analyze(context.Background(), sampleProject())
	if err != nil || got.Source != types.InsightFromFallback {
		t.Errorf("got %+v, %v", got, err)
	}
}
