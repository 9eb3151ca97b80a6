package metrics

import "github.com/san-kum/ssmsim/internal/sim"

// Default returns a fresh set of the standard run metrics.
func Default(stabilityThreshold float64) []sim.Metric {
	return []sim.Metric{
		NewOutputEnergy(),
		NewPeakOutput(),
		NewStability(stabilityThreshold),
		NewInputEffort(),
	}
}
