package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/ssmsim/internal/ssm"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidLength indicates an input sequence shorter than one step.
	ErrInvalidLength = errors.New("sim: input sequence must have at least 1 step")

	// ErrNonFinite indicates a NaN or Inf entered the hidden state.
	ErrNonFinite = errors.New("sim: non-finite hidden state")
)

type Metric interface {
	Name() string
	Observe(t int, x mat.Vector, u, y float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(t int, x mat.Vector, u, y float64)
}

type Config struct {
	// ValidateState stops the run at the first step whose state holds a NaN
	// or Inf. Off by default: non-finite values propagate unchanged.
	ValidateState bool
}

// Result holds one trajectory. X has one row per timestep.
type Result struct {
	U          []float64
	X          *mat.Dense
	Y          []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Len returns the number of timesteps T.
func (r *Result) Len() int {
	return len(r.U)
}

// State returns x[t] as a view into X.
func (r *Result) State(t int) mat.Vector {
	return r.X.RowView(t)
}

// Shapes reports u as (T, 1), x as (T, N) and y as (T, 1).
func (r *Result) Shapes() (u, x, y ssm.Shape) {
	t := len(r.U)
	return ssm.Shape{Rows: t, Cols: 1}, ssm.ShapeOf(r.X), ssm.Shape{Rows: len(r.Y), Cols: 1}
}

// StepError carries the timestep at which a run failed.
type StepError struct {
	Step    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
