// Package estimate assembles immutable estimates from a project.
//
// Generate runs the pipeline: requirement insight and comparable lookup in
// parallel, then calculation, adjustment, ranking, risk evaluation and
// confidence scoring. Optional inputs that fail degrade to documented
// defaults; the only error Generate returns is for a missing project.
package estimate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"construction-cost/core/comparables"
	"construction-cost/core/determinism"
	"construction-cost/core/insight"
	"construction-cost/core/rates"
	"construction-cost/core/risk"
	"construction-cost/core/types"
	"construction-cost/internal/errors"
	"construction-cost/internal/logging"
)

// DefaultCreatedBy is stamped when Options.CreatedBy is empty
const DefaultCreatedBy = "estimator"

// Options configures an Engine. Zero values select defaults: the built-in
// rate table, an empty comparable store, the fallback insight, time.Now and
// the global logger.
type Options struct {
	Rates     *rates.Registry
	Store     comparables.Store
	Analyzer  insight.Analyzer
	Now       func() time.Time
	Logger    *zap.Logger
	CreatedBy string
}

// Engine generates estimates. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	rates     *rates.Registry
	store     comparables.Store
	analyzer  insight.Analyzer
	matcher   *comparables.Matcher
	evaluator *risk.Evaluator
	now       func() time.Time
	logger    *zap.Logger
	createdBy string
}

// NewEngine creates an engine
func NewEngine(opts Options) *Engine {
	e := &Engine{
		rates:     opts.Rates,
		store:     opts.Store,
		analyzer:  opts.Analyzer,
		now:       opts.Now,
		createdBy: opts.CreatedBy,
		evaluator: risk.NewEvaluator(),
		logger:    logging.Component(opts.Logger, "estimate"),
	}
	if e.rates == nil {
		e.rates = rates.NewRegistry(nil)
	}
	if e.store == nil {
		e.store = comparables.NewMemoryStore(nil)
	}
	if e.analyzer == nil {
		e.analyzer = insight.AnalyzerFunc(func(context.Context, *types.Project) (*types.Insight, error) {
			return insight.Fallback(), nil
		})
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.createdBy == "" {
		e.createdBy = DefaultCreatedBy
	}
	e.matcher = comparables.NewMatcher(e.now)
	return e
}

// Rates returns the engine's rate registry
func (e *Engine) Rates() *rates.Registry {
	return e.rates
}

// Generate produces a new draft estimate, version 1
func (e *Engine) Generate(ctx context.Context, p *types.Project) (*types.Estimate, error) {
	if p == nil {
		return nil, errors.Input("project is required")
	}

	pc := newContext(p, e.rates.Current(), e.now())
	e.gather(ctx, pc)

	pc.calculate()
	pc.adjust()
	pc.rank(e.matcher)
	pc.evaluate(e.evaluator)
	pc.score()

	est, err := e.assemble(pc)
	if err != nil {
		return nil, err
	}

	e.logger.Info("estimate generated",
		zap.String("estimate_id", est.ID),
		zap.String("project_id", est.ProjectID),
		zap.String("total", est.Breakdown.Total.StringFixed(2)),
		zap.Int("confidence", est.Confidence),
		zap.Int("comparables", len(est.Comparables)),
		zap.String("insight_source", string(est.InsightSource)),
	)
	return est, nil
}

// Revise generates the next version of previous from an updated project.
// The previous estimate is left as it is.
func (e *Engine) Revise(ctx context.Context, previous *types.Estimate, p *types.Project) (*types.Estimate, error) {
	if previous == nil {
		return nil, errors.Input("previous estimate is required")
	}
	if p == nil {
		return nil, errors.Input("project is required")
	}

	next, err := e.Generate(ctx, p)
	if err != nil {
		return nil, err
	}
	next.ProjectID = previous.ProjectID
	next.Version = previous.Version + 1
	return next, nil
}

// gather runs the two stages that may wait on collaborators. Neither stage
// fails the request: errors degrade to the fallback insight and an empty
// comparable list.
func (e *Engine) gather(ctx context.Context, pc *Context) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, err := e.analyzer.Analyze(gctx, pc.Project)
		if err != nil || result == nil {
			e.logger.Warn("requirement insight unavailable, using fallback", zap.Error(err))
			result = insight.Fallback()
		}
		pc.Insight = result
		return nil
	})

	g.Go(func() error {
		candidates, err := e.store.ByCategory(gctx, pc.category())
		if err != nil {
			e.logger.Warn("comparable store unavailable, continuing without comparables", zap.Error(err))
			candidates = nil
		}
		pc.Candidates = candidates
		return nil
	})

	_ = g.Wait()
}

func (e *Engine) assemble(pc *Context) (*types.Estimate, error) {
	fp, err := Fingerprint(pc.Project, pc.Table, pc.Factors.Season)
	if err != nil {
		return nil, errors.Internal("failed to fingerprint project", err)
	}

	projectID := pc.Project.ID
	if projectID == "" {
		projectID = uuid.New().String()
	}

	created := pc.Now.UTC()
	return &types.Estimate{
		ID:                 uuid.New().String(),
		ProjectID:          projectID,
		Version:            1,
		CreatedAt:          created,
		CreatedBy:          e.createdBy,
		Breakdown:          pc.Adjusted,
		Confidence:         pc.Confidence,
		Phases:             append([]string{}, pc.Insight.Phases...),
		Assumptions:        pc.Assumptions,
		Risks:              pc.Evaluation.Risks,
		Recommendations:    pc.Evaluation.Recommendations,
		Comparables:        pc.Comparables,
		RegionalAdjustment: pc.Factors.RegionalPercent(),
		SeasonalAdjustment: pc.Factors.SeasonalPercent(),
		ComplexityFactor:   pc.Factors.Complexity,
		Season:             pc.Factors.Season,
		InsightSource:      pc.Insight.Source,
		InputFingerprint:   string(fp),
		ValidUntil:         created.Add(types.ValidityPeriod),
		Status:             types.StatusDraft,
	}, nil
}

// Fingerprint identifies the pricing inputs of an estimate: the project,
// the rate table contents and the season. Equal fingerprints price
// identically given the same insight and comparables. The table's Name is
// left out; only the rates themselves are hashed.
func Fingerprint(p *types.Project, table *rates.Table, season types.Season) (determinism.Fingerprint, error) {
	var contents *rates.Table
	if table != nil {
		t := *table
		t.Name = ""
		contents = &t
	}
	return determinism.FingerprintOf("estimate-input", struct {
		Project *types.Project `json:"project"`
		Rates   *rates.Table   `json:"rates"`
		Season  types.Season   `json:"season"`
	}{p, contents, season})
}
