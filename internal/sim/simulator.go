package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ssmsim/internal/ssm"
	"gonum.org/v1/gonum/mat"
)

type Simulator struct {
	model     *ssm.Model
	cfg       Config
	metrics   []Metric
	observers []Observer
}

func New(model *ssm.Model) *Simulator {
	return &Simulator{
		model:     model,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) SetConfig(cfg Config)   { s.cfg = cfg }

// Run drives the recurrence over the input sequence u:
//
//	x[0] = 0, y[0] = 0
//	x[t] = A x[t-1] + B u[t]
//	y[t] = C x[t]           for t = 1 .. T-1
//
// y[0] is never computed from C; it keeps its zero value.
// If ctx is cancelled between steps the partial result is returned with
// ctx.Err().
func (s *Simulator) Run(ctx context.Context, u []float64) (*Result, error) {
	if err := s.model.Validate(); err != nil {
		return nil, err
	}
	if len(u) < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLength, len(u))
	}

	n := s.model.Order()
	steps := len(u)

	result := &Result{
		U:       append([]float64(nil), u...),
		X:       mat.NewDense(steps, n, nil),
		Y:       make([]float64, steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	b := s.model.B.ColView(0)
	c := s.model.C.RowView(0)
	prev := mat.NewVecDense(n, nil)
	next := mat.NewVecDense(n, nil)

	s.observe(0, prev, u[0], 0)

	for t := 1; t < steps; t++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		next.MulVec(s.model.A, prev)
		next.AddScaledVec(next, u[t], b)
		y := mat.Dot(c, next)

		result.X.SetRow(t, next.RawVector().Data)
		result.Y[t] = y
		result.StepsTaken++

		if s.cfg.ValidateState && !isFinite(next) {
			s.collect(result)
			return result, &StepError{Step: t, Wrapped: ErrNonFinite}
		}

		s.observe(t, next, u[t], y)
		prev, next = next, prev
	}

	s.collect(result)
	return result, nil
}

func (s *Simulator) observe(t int, x mat.Vector, u, y float64) {
	for _, m := range s.metrics {
		m.Observe(t, x, u, y)
	}
	for _, obs := range s.observers {
		obs.OnStep(t, x, u, y)
	}
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Simulate runs m over u with no metrics and a background context.
func Simulate(m *ssm.Model, u []float64) (*Result, error) {
	return New(m).Run(context.Background(), u)
}

func isFinite(v mat.Vector) bool {
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
