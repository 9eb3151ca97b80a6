package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/ssmsim/internal/config"
	"github.com/san-kum/ssmsim/internal/prng"
	"github.com/san-kum/ssmsim/internal/sim"
	"github.com/san-kum/ssmsim/internal/ssm"
)

type Experiment struct {
	cfg       config.Config
	registry  *Registry
	logger    *slog.Logger
	source    prng.Source
	model     *ssm.Model
	input     []float64
	simulator *sim.Simulator
}

func New(cfg config.Config, registry *Registry, logger *slog.Logger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

// Setup draws the model and the input sequence. The model consumes three
// children split from the seed's source; the input is drawn from the
// source itself.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	src, err := e.registry.GetSource(e.cfg.RNG, e.cfg.Seed)
	if err != nil {
		return err
	}

	inputFn, err := e.registry.GetInput(e.cfg.Input.Kind)
	if err != nil {
		return err
	}

	model, err := ssm.Random(src, e.cfg.Dim)
	if err != nil {
		return err
	}

	e.source = src
	e.model = model
	e.input = inputFn(src, e.cfg.Steps, e.cfg.Input.Amplitude)

	e.simulator = sim.New(model)
	e.simulator.SetConfig(sim.Config{ValidateState: e.cfg.ValidateState})
	for _, m := range e.registry.DefaultMetrics(e.cfg.Metrics.Threshold) {
		e.simulator.AddMetric(m)
	}

	e.logger.Debug("experiment ready",
		"dim", e.cfg.Dim,
		"steps", e.cfg.Steps,
		"seed", e.cfg.Seed,
		"rng", src.Name(),
		"input", e.cfg.Input.Kind,
	)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	result, err := e.simulator.Run(ctx, e.input)
	if err != nil {
		e.logger.Error("simulation failed", "error", err)
		return result, err
	}

	e.logger.Debug("simulation finished", "steps", result.StepsTaken)
	return result, nil
}

func (e *Experiment) Model() *ssm.Model { return e.model }

func (e *Experiment) Input() []float64 { return e.input }

func (e *Experiment) Config() config.Config { return e.cfg }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
