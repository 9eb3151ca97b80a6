package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/ssmsim/internal/config"
	"github.com/san-kum/ssmsim/internal/sim"
)

var ErrInvalidCount = errors.New("experiment: run count must be at least 1")

// CheckCount rejects run counts below 1.
func CheckCount(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}
	return nil
}

// SeedRange returns the seeds 0 .. n-1.
func SeedRange(n int) ([]int64, error) {
	if err := CheckCount(n); err != nil {
		return nil, err
	}
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = int64(i)
	}
	return seeds, nil
}

// RunSeeds runs one experiment per seed concurrently. Each seed gets its own
// model, input and metrics; results come back in seed order.
func RunSeeds(ctx context.Context, cfg config.Config, seeds []int64, logger *slog.Logger) ([]*sim.Result, error) {
	results := make([]*sim.Result, len(seeds))
	errs := make([]error, len(seeds))
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i, seed := range seeds {
		wg.Add(1)
		go func(idx int, seed int64) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = seed

			exp := New(cfgCopy, registry, logger)
			if err := exp.Setup(); err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = exp.Run(ctx)
		}(i, seed)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// InputEnsemble runs the model of cfg over runs independent uniform input
// sequences. The model uses the first three children of the seed's source;
// the inputs come from children of a fourth, so no key is shared.
func InputEnsemble(ctx context.Context, cfg config.Config, runs int, logger *slog.Logger) ([]*sim.Result, error) {
	if err := CheckCount(runs); err != nil {
		return nil, err
	}

	exp := New(cfg, nil, logger)
	if err := exp.Setup(); err != nil {
		return nil, err
	}

	inputs := make([][]float64, 0, runs)
	for _, child := range exp.source.Split(4)[3].Split(runs) {
		inputs = append(inputs, child.Uniform(cfg.Steps))
	}

	ens := sim.NewEnsemble(exp.Model(), sim.Config{ValidateState: cfg.ValidateState}, func() []sim.Metric {
		return exp.registry.DefaultMetrics(cfg.Metrics.Threshold)
	})
	return ens.Run(ctx, inputs)
}
