package ssm

import (
	"fmt"
	"math/cmplx"

	"github.com/san-kum/ssmsim/internal/prng"
	"gonum.org/v1/gonum/mat"
)

// Model is a single-input single-output discrete-time linear system
//
//	x[t] = A x[t-1] + B u[t]
//	y[t] = C x[t]
//
// with A (N×N), B (N×1) and C (1×N).
type Model struct {
	A *mat.Dense
	B *mat.Dense
	C *mat.Dense
}

// Shape is a (rows, cols) pair.
type Shape struct {
	Rows int
	Cols int
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
}

// ShapeOf reports the dimensions of m.
func ShapeOf(m mat.Matrix) Shape {
	r, c := m.Dims()
	return Shape{Rows: r, Cols: c}
}

// New checks the shapes of A, B and C and returns the model.
func New(a, b, c *mat.Dense) (*Model, error) {
	m := &Model{A: a, B: b, C: c}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Random draws A, B and C uniformly from [0, 1). The source is split into
// three children, one per matrix, and each matrix is filled in row-major
// order from its child's stream.
func Random(src prng.Source, n int) (*Model, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimension, n)
	}

	children := src.Split(3)
	a := mat.NewDense(n, n, children[0].Uniform(n*n))
	b := mat.NewDense(n, 1, children[1].Uniform(n))
	c := mat.NewDense(1, n, children[2].Uniform(n))

	return &Model{A: a, B: b, C: c}, nil
}

// Validate reports ErrShapeMismatch unless A is N×N, B is N×1 and C is 1×N
// for some N ≥ 1.
func (m *Model) Validate() error {
	if m == nil || m.A == nil || m.B == nil || m.C == nil {
		return fmt.Errorf("%w: missing matrix", ErrShapeMismatch)
	}

	ar, ac := m.A.Dims()
	br, bc := m.B.Dims()
	cr, cc := m.C.Dims()

	if ar != ac {
		return fmt.Errorf("%w: A is %dx%d, want square", ErrShapeMismatch, ar, ac)
	}
	if br != ar || bc != 1 {
		return fmt.Errorf("%w: B is %dx%d, want %dx1", ErrShapeMismatch, br, bc, ar)
	}
	if cr != 1 || cc != ar {
		return fmt.Errorf("%w: C is %dx%d, want 1x%d", ErrShapeMismatch, cr, cc, ar)
	}
	return nil
}

// Order returns the state dimension N.
func (m *Model) Order() int {
	r, _ := m.A.Dims()
	return r
}

// Shapes returns the shapes of A, B and C in that order.
func (m *Model) Shapes() (a, b, c Shape) {
	return ShapeOf(m.A), ShapeOf(m.B), ShapeOf(m.C)
}

// SpectralRadius returns the largest eigenvalue magnitude of A. The free
// response decays when it is below one.
func (m *Model) SpectralRadius() (float64, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(m.A, mat.EigenNone); !ok {
		return 0, fmt.Errorf("ssm: eigen decomposition of A failed")
	}

	rho := 0.0
	for _, v := range eig.Values(nil) {
		if abs := cmplx.Abs(v); abs > rho {
			rho = abs
		}
	}
	return rho, nil
}
