package insight

import (
	"context"
	"time"

	"go.uber.org/zap"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
	"construction-cost/internal/logging"
)

// Defaults for Bounded
const (
	DefaultTimeout = 2 * time.Second
	MaxRetries     = 1
)

// Bounded wraps an analyzer with a per-attempt timeout and at most one
// retry. It never returns an error: any failure yields Fallback.
type Bounded struct {
	Analyzer Analyzer
	Timeout  time.Duration
	Retries  int
	Logger   *zap.Logger
}

// NewBounded wraps a. Retries above MaxRetries are capped.
func NewBounded(a Analyzer, timeout time.Duration, retries int, logger *zap.Logger) *Bounded {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries < 0 {
		retries = 0
	}
	if retries > MaxRetries {
		retries = MaxRetries
	}
	return &Bounded{
		Analyzer: a,
		Timeout:  timeout,
		Retries:  retries,
		Logger:   logging.Component(logger, "insight"),
	}
}

// Analyze tries the wrapped analyzer and falls back on failure
func (b *Bounded) Analyze(ctx context.Context, p *types.Project) (*types.Insight, error) {
	if b.Analyzer == nil {
		return Fallback(), nil
	}

	attempts := 1 + b.Retries
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		result, err := b.try(ctx, p)
		if err == nil {
			return result, nil
		}
		b.Logger.Warn("insight analysis failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
	}

	b.Logger.Warn("using fallback insight")
	return Fallback(), nil
}

type attemptResult struct {
	insight *types.Insight
	err     error
}

// try runs one attempt. Analyzers that ignore their context are abandoned
// once the attempt times out.
func (b *Bounded) try(ctx context.Context, p *types.Project) (*types.Insight, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		i, err := b.Analyzer.Analyze(attemptCtx, p)
		done <- attemptResult{insight: i, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil && r.insight == nil {
			return nil, errors.Insight("analyzer returned no insight", nil)
		}
		return r.insight, r.err
	case <-attemptCtx.Done():
		return nil, errors.Insight("analysis timed out", attemptCtx.Err())
	}
}
