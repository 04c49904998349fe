package core

import (
	"context"
	"errors"

	"github.com/steghunt/steghunt/internal/config"
	"github.com/steghunt/steghunt/internal/engine"
	"github.com/steghunt/steghunt/internal/stegseek"
	"github.com/steghunt/steghunt/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type Config = engine.Config
type Result = engine.Result
type Candidate = types.Candidate
type Mode = types.Mode
type Invoker = engine.Invoker

const (
	ModeSeed      = types.ModeSeed
	ModeCrack     = types.ModeCrack
	ModeSeedCrack = types.ModeSeedCrack
)

// Options configures the stegseek binary used by Hunt.
type Options struct {
	// Binary is an explicit stegseek path; empty searches $PATH.
	Binary string
}

// Hunt locates stegseek and runs cfg against it.
func Hunt(ctx context.Context, cfg Config, opts Options) (Result, error) {
	if cfg.Mode == "" {
		return Result{}, errors.New("mode is required")
	}
	var sc config.StegseekConfig
	if opts.Binary != "" {
		sc.BinaryPath = &opts.Binary
	}
	r, err := stegseek.NewRunner(sc, cfg.Logger)
	if err != nil {
		return Result{}, err
	}
	return engine.Run(ctx, cfg, r)
}

// HuntWith runs cfg against a caller-supplied Invoker.
func HuntWith(ctx context.Context, cfg Config, inv Invoker) (Result, error) {
	return engine.Run(ctx, cfg, inv)
}

// Discover lists the candidates a run over root would process.
func Discover(ctx context.Context, cfg Config) ([]Candidate, error) {
	return engine.Discover(ctx, engine.DiscoverOptions{
		Root:      cfg.Root,
		MinSize:   cfg.MinSize,
		Dedup:     cfg.Dedup,
		Recursive: cfg.Recursive,
		Include:   cfg.Include,
		Exclude:   cfg.Exclude,
		Logger:    cfg.Logger,
	}, nil)
}
