package config

import (
	"fmt"
	"os"

	"github.com/san-kum/ssmsim/internal/sim"
	"github.com/san-kum/ssmsim/internal/ssm"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDim       = 4
	DefaultSteps     = 10
	DefaultSeed      = 0
	DefaultRNG       = "threefry"
	DefaultInput     = "uniform"
	DefaultAmplitude = 1.0
	DefaultThreshold = 1e6
)

type Config struct {
	Dim     int           `yaml:"dim"`
	Steps   int           `yaml:"steps"`
	Seed    int64         `yaml:"seed"`
	RNG     string        `yaml:"rng"`
	Input   InputConfig   `yaml:"input"`
	Metrics MetricsConfig `yaml:"metrics"`
	// ValidateState aborts a run on the first NaN or Inf state.
	ValidateState bool `yaml:"validate_state"`
}

type InputConfig struct {
	Kind      string  `yaml:"kind"`
	Amplitude float64 `yaml:"amplitude"`
}

type MetricsConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// DefaultConfig is the demonstration setup: N=4, T=10, seed 0.
func DefaultConfig() *Config {
	return &Config{
		Dim:   DefaultDim,
		Steps: DefaultSteps,
		Seed:  DefaultSeed,
		RNG:   DefaultRNG,
		Input: InputConfig{
			Kind:      DefaultInput,
			Amplitude: DefaultAmplitude,
		},
		Metrics: MetricsConfig{
			Threshold: DefaultThreshold,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the dimensions up front so that a bad file fails before
// any matrices are drawn.
func (c *Config) Validate() error {
	if c.Dim < 1 {
		return fmt.Errorf("%w: dim=%d", ssm.ErrInvalidDimension, c.Dim)
	}
	if c.Steps < 1 {
		return fmt.Errorf("%w: steps=%d", sim.ErrInvalidLength, c.Steps)
	}
	if c.RNG == "" {
		return fmt.Errorf("config: rng must be set")
	}
	if c.Input.Kind == "" {
		return fmt.Errorf("config: input.kind must be set")
	}
	return nil
}

// Params lists the names SetParam accepts.
var Params = []string{"amplitude", "dim", "seed", "steps", "threshold"}

// SetParam sets a numeric field by name so sweeps and searches can vary it.
// Integer fields are truncated.
func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "dim":
		c.Dim = int(value)
	case "steps":
		c.Steps = int(value)
	case "seed":
		c.Seed = int64(value)
	case "amplitude":
		c.Input.Amplitude = value
	case "threshold":
		c.Metrics.Threshold = value
	default:
		return fmt.Errorf("config: unknown parameter %q (available: %v)", name, Params)
	}
	return nil
}
