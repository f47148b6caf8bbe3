// Package bootstrap wires configuration into a ready engine and stores.
// Both the CLI and the server build their runtime here.
package bootstrap

import (
	"context"
	"io"

	"go.uber.org/zap"

	"construction-cost/adapters/storage"
	"construction-cost/core/comparables"
	"construction-cost/core/estimate"
	"construction-cost/core/insight"
	"construction-cost/core/rates"
	"construction-cost/core/types"
	"construction-cost/internal/config"
	"construction-cost/internal/logging"
)

// Options adjusts what Build wires
type Options struct {
	// Offline skips the insight service even when an endpoint is configured
	Offline bool

	// WithStorage opens the estimate store
	WithStorage bool
}

// Runtime is the wired application
type Runtime struct {
	Engine      *estimate.Engine
	Rates       *rates.Registry
	Comparables comparables.Store
	Estimates   storage.Store
	Logger      *zap.Logger
}

// Build validates cfg and opens everything it names
func Build(cfg *config.Config, logger *zap.Logger, opts Options) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.Component(logger, "bootstrap")

	registry := rates.NewRegistry(nil)
	if cfg.Rates.Path != "" {
		if err := registry.Reload(cfg.Rates.Path); err != nil {
			return nil, err
		}
		log.Info("loaded rate table", zap.String("path", cfg.Rates.Path))
	}

	store, err := comparables.Open(cfg.Comparables.Driver, cfg.Comparables.DSN, cfg.Comparables.Path)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Rates:       registry,
		Comparables: store,
		Logger:      logger,
	}

	if opts.WithStorage {
		estimates, err := storage.Open(storage.Backend(cfg.Storage.Backend), cfg.Storage.Path)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.Estimates = estimates
	}

	rt.Engine = estimate.NewEngine(estimate.Options{
		Rates:     registry,
		Store:     store,
		Analyzer:  Analyzer(cfg.Insight, opts.Offline, logger),
		Logger:    logger,
		CreatedBy: cfg.Estimate.CreatedBy,
	})

	log.Debug("runtime ready",
		zap.String("rates", registry.Current().Name),
		zap.String("comparables", cfg.Comparables.Driver),
		zap.Bool("storage", opts.WithStorage),
	)
	return rt, nil
}

// Analyzer builds the insight analyzer for cfg. Without an endpoint, or
// offline, every project gets the fallback insight.
func Analyzer(cfg config.InsightConfig, offline bool, logger *zap.Logger) insight.Analyzer {
	if offline || cfg.Endpoint == "" {
		return insight.AnalyzerFunc(func(context.Context, *types.Project) (*types.Insight, error) {
			return insight.Fallback(), nil
		})
	}
	return insight.NewBounded(insight.NewHTTPAnalyzer(cfg.Endpoint, cfg.APIKey), cfg.Timeout(), cfg.Retries, logger)
}

// Close releases the stores
func (r *Runtime) Close() error {
	var first error
	if c, ok := r.Comparables.(io.Closer); ok {
		if err := c.Close(); err != nil {
			first = err
		}
	}
	if r.Estimates != nil {
		if err := r.Estimates.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
