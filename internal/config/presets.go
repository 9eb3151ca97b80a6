package config

import "sort"

var Presets = map[string]*Config{
	"demo": {
		Dim: 4, Steps: 10, Seed: 0, RNG: "threefry",
		Input:   InputConfig{Kind: "uniform", Amplitude: 1},
		Metrics: MetricsConfig{Threshold: DefaultThreshold},
	},
	"scalar": {
		Dim: 1, Steps: 10, Seed: 0, RNG: "threefry",
		Input:   InputConfig{Kind: "step", Amplitude: 1},
		Metrics: MetricsConfig{Threshold: DefaultThreshold},
	},
	"impulse": {
		Dim: 4, Steps: 50, Seed: 0, RNG: "threefry",
		Input:   InputConfig{Kind: "impulse", Amplitude: 1},
		Metrics: MetricsConfig{Threshold: DefaultThreshold},
	},
	"long": {
		Dim: 8, Steps: 256, Seed: 1, RNG: "pcg",
		Input:   InputConfig{Kind: "uniform", Amplitude: 1},
		Metrics: MetricsConfig{Threshold: 1e12},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
