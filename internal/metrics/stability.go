package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Stability is the fraction of timesteps whose hidden state stays within
// threshold in every component.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(t int, x mat.Vector, u, y float64) {
	s.samples++
	for i := 0; i < x.Len(); i++ {
		v := x.AtVec(i)
		if math.Abs(v) > s.threshold || math.IsNaN(v) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
