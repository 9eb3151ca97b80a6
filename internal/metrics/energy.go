package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// OutputEnergy is the sum of y² over the run.
type OutputEnergy struct {
	name  string
	total float64
}

func NewOutputEnergy() *OutputEnergy {
	return &OutputEnergy{name: "output_energy"}
}

func (e *OutputEnergy) Name() string { return e.name }

func (e *OutputEnergy) Observe(t int, x mat.Vector, u, y float64) {
	e.total += y * y
}

func (e *OutputEnergy) Value() float64 { return e.total }

func (e *OutputEnergy) Reset() { e.total = 0 }

// PeakOutput is the largest |y| seen.
type PeakOutput struct {
	name string
	peak float64
}

func NewPeakOutput() *PeakOutput {
	return &PeakOutput{name: "peak_output"}
}

func (p *PeakOutput) Name() string { return p.name }

func (p *PeakOutput) Observe(t int, x mat.Vector, u, y float64) {
	// NaN compares false, so it never displaces a finite peak; check it
	// explicitly so the metric still reports it
	if a := math.Abs(y); a > p.peak || math.IsNaN(a) {
		p.peak = a
	}
}

func (p *PeakOutput) Value() float64 { return p.peak }

func (p *PeakOutput) Reset() { p.peak = 0 }
