package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// InputEffort is the mean |u| over the run.
type InputEffort struct {
	name    string
	sum     float64
	samples int
}

func NewInputEffort() *InputEffort {
	return &InputEffort{
		name: "input_effort",
	}
}

func (c *InputEffort) Name() string {
	return c.name
}

func (c *InputEffort) Observe(t int, x mat.Vector, u, y float64) {
	c.sum += math.Abs(u)
	c.samples++
}

func (c *InputEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *InputEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
