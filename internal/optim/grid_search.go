package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/ssmsim/internal/config"
	"github.com/san-kum/ssmsim/internal/experiment"
)

// GridSearch evaluates every combination of parameter values and keeps the
// one with the lowest metric value.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs base with each combination applied through Config.SetParam.
// Combinations that fail to build or run are skipped; a metric that is NaN
// never wins.
func (g *GridSearch) Search(
	ctx context.Context,
	base config.Config,
	metricName string,
	logger *slog.Logger,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}
	if logger == nil {
		logger = slog.Default()
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	registry := experiment.NewRegistry()

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base
		for k, v := range params {
			if err := cfg.SetParam(k, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(cfg, registry, logger)
		return exp, exp.Setup()
	}

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, logger, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("optim: no combination produced metric %q", metricName)
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	logger *slog.Logger,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			logger.Debug("grid point skipped", "params", current, "error", err)
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			logger.Debug("grid point failed", "params", current, "error", err)
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok || math.IsNaN(val) {
			return nil
		}
		if val < *best || *bestParams == nil {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, logger, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
