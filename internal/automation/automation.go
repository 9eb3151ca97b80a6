package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/san-kum/ssmsim/internal/config"
	"github.com/san-kum/ssmsim/internal/experiment"
	"github.com/san-kum/ssmsim/internal/sim"
	"github.com/san-kum/ssmsim/internal/ssm"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Preset (if any) is applied
// first, then Params.
type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	RNG    string             `yaml:"rng"`
	Input  string             `yaml:"input"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

// StepResult pairs a scenario step with what it produced.
type StepResult struct {
	Step           ScenarioStep
	Config         config.Config
	Model          *ssm.Model
	Result         *sim.Result
	SpectralRadius float64
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// StepConfig resolves the configuration for one step.
func StepConfig(step ScenarioStep) (config.Config, error) {
	cfg := config.DefaultConfig()
	if step.Preset != "" {
		cfg = config.GetPreset(step.Preset)
		if cfg == nil {
			return config.Config{}, fmt.Errorf("unknown preset: %s", step.Preset)
		}
	}
	if step.RNG != "" {
		cfg.RNG = step.RNG
	}
	if step.Input != "" {
		cfg.Input.Kind = step.Input
	}
	for k, v := range step.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return config.Config{}, err
		}
	}
	return *cfg, cfg.Validate()
}

// RunScenario executes all steps in a scenario
func RunScenario(ctx context.Context, scenario *Scenario, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))
	registry := experiment.NewRegistry()

	for i, step := range scenario.Steps {
		cfg, err := StepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "dim", cfg.Dim, "steps", cfg.Steps, "seed", cfg.Seed)

		exp := experiment.New(cfg, registry, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{
			Step:           step,
			Config:         cfg,
			Model:          exp.Model(),
			Result:         result,
			SpectralRadius: spectralRadius(exp, logger),
		})
	}

	return results, nil
}

// ParameterSweep runs the base configuration across a range of values for
// one parameter.
type ParameterSweep struct {
	Base      config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue     float64
	FinalOutput    float64
	PeakOutput     float64
	SpectralRadius float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *slog.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	registry := experiment.NewRegistry()

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp := experiment.New(cfg, registry, logger)
		if err := exp.Setup(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue:     paramVal,
			FinalOutput:    result.Y[result.Len()-1],
			PeakOutput:     result.Metrics["peak_output"],
			SpectralRadius: spectralRadius(exp, logger),
		})

		logger.Debug("sweep", "i", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig draws NumTrials models from consecutive seeds starting
// at Base.Seed.
type MonteCarloConfig struct {
	Base      config.Config
	NumTrials int
}

// MonteCarloResult holds one trial
type MonteCarloResult struct {
	TrialID        int
	Seed           int64
	SpectralRadius float64
	FinalOutput    float64
	Stable         bool // spectral radius below 1 and final state bounded
}

// RunMonteCarlo executes multiple trials with fresh random models
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *slog.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := experiment.CheckCount(cfg.NumTrials); err != nil {
		return nil, err
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	registry := experiment.NewRegistry()

	for trial := 0; trial < cfg.NumTrials; trial++ {
		expCfg := cfg.Base
		expCfg.Seed = cfg.Base.Seed + int64(trial)

		exp := experiment.New(expCfg, registry, logger)
		if err := exp.Setup(); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		rho := spectralRadius(exp, logger)
		stable := rho < 1
		last := result.State(result.Len() - 1)
		for i := 0; i < last.Len(); i++ {
			if v := last.AtVec(i); math.Abs(v) > expCfg.Metrics.Threshold || math.IsNaN(v) {
				stable = false
				break
			}
		}

		results = append(results, MonteCarloResult{
			TrialID:        trial,
			Seed:           expCfg.Seed,
			SpectralRadius: rho,
			FinalOutput:    result.Y[result.Len()-1],
			Stable:         stable,
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

func spectralRadius(exp *experiment.Experiment, logger *slog.Logger) float64 {
	rho, err := exp.Model().SpectralRadius()
	if err != nil {
		logger.Warn("spectral radius unavailable", "error", err)
		return math.NaN()
	}
	return rho
}
