package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ssmsim/internal/prng"
	"github.com/san-kum/ssmsim/internal/sim"
	"github.com/san-kum/ssmsim/internal/ssm"
)

func scalarModel(a, b, c float64) *ssm.Model {
	m, err := ssm.New(
		mat.NewDense(1, 1, []float64{a}),
		mat.NewDense(1, 1, []float64{b}),
		mat.NewDense(1, 1, []float64{c}),
	)
	Expect(err).NotTo(HaveOccurred())
	return m
}

type countingMetric struct {
	observed []int
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(t int, x mat.Vector, u, y float64) {
	c.observed = append(c.observed, t)
}
func (c *countingMetric) Value() float64 { return float64(len(c.observed)) }
func (c *countingMetric) Reset()         { c.observed = nil }

var _ = Describe("Simulator", func() {
	Describe("scalar recurrence", func() {
		It("matches hand-computed values", func() {
			m := scalarModel(0.5, 2, 1)

			res, err := sim.Simulate(m, []float64{1, 1, 1})
			Expect(err).NotTo(HaveOccurred())

			Expect(res.X.At(0, 0)).To(Equal(0.0))
			Expect(res.X.At(1, 0)).To(BeNumerically("~", 2, 1e-12))
			Expect(res.X.At(2, 0)).To(BeNumerically("~", 3, 1e-12))
			Expect(res.Y).To(HaveLen(3))
			Expect(res.Y[0]).To(Equal(0.0))
			Expect(res.Y[1]).To(BeNumerically("~", 2, 1e-12))
			Expect(res.Y[2]).To(BeNumerically("~", 3, 1e-12))
		})

		It("handles a single step", func() {
			res, err := sim.Simulate(scalarModel(0.5, 2, 1), []float64{7})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Len()).To(Equal(1))
			Expect(res.Y).To(Equal([]float64{0}))
			Expect(res.StepsTaken).To(Equal(0))
		})
	})

	Describe("boundary conditions", func() {
		It("keeps x[0] at zero and y[0] at zero whatever C and u[0] are", func() {
			m := scalarModel(0.9, 1, 100)
			res, err := sim.Simulate(m, []float64{1e6, 0, 0})
			Expect(err).NotTo(HaveOccurred())

			Expect(res.X.At(0, 0)).To(Equal(0.0))
			Expect(res.Y[0]).To(Equal(0.0))
			// u[0] never enters the state
			Expect(res.X.At(1, 0)).To(Equal(0.0))
		})
	})

	Describe("random model", func() {
		var (
			m *ssm.Model
			u []float64
		)

		BeforeEach(func() {
			src := prng.NewThreefry(0)
			var err error
			m, err = ssm.Random(src, 4)
			Expect(err).NotTo(HaveOccurred())
			u = src.Uniform(10)
		})

		It("reports the demo shapes", func() {
			res, err := sim.Simulate(m, u)
			Expect(err).NotTo(HaveOccurred())

			us, xs, ys := res.Shapes()
			Expect(us).To(Equal(ssm.Shape{Rows: 10, Cols: 1}))
			Expect(xs).To(Equal(ssm.Shape{Rows: 10, Cols: 4}))
			Expect(ys).To(Equal(ssm.Shape{Rows: 10, Cols: 1}))
		})

		It("satisfies the recurrence at every step", func() {
			res, err := sim.Simulate(m, u)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 4; i++ {
				Expect(res.X.At(0, i)).To(Equal(0.0))
			}

			for t := 1; t < res.Len(); t++ {
				var want mat.VecDense
				want.MulVec(m.A, res.State(t-1))
				want.AddScaledVec(&want, u[t], m.B.ColView(0))

				for i := 0; i < 4; i++ {
					got := res.X.At(t, i)
					Expect(math.Abs(got - want.AtVec(i))).To(BeNumerically("<=", 1e-9*math.Max(1, math.Abs(want.AtVec(i)))))
				}

				y := mat.Dot(m.C.RowView(0), res.State(t))
				Expect(res.Y[t]).To(BeNumerically("~", y, 1e-9*math.Max(1, math.Abs(y))))
			}
		})

		It("reproduces the reference outputs for seed 0", func() {
			res, err := sim.Simulate(m, u)
			Expect(err).NotTo(HaveOccurred())

			want := []float64{0, 0.3836955206588417, 0.9316430611508417, 1.7561736099228091}
			for t, w := range want {
				Expect(res.Y[t]).To(BeNumerically("~", w, 1e-9*math.Max(1, w)))
			}
		})

		It("does not retain the caller's input slice", func() {
			res, err := sim.Simulate(m, u)
			Expect(err).NotTo(HaveOccurred())
			u[1] = -1
			Expect(res.U[1]).NotTo(Equal(-1.0))
		})
	})

	Describe("validation", func() {
		It("rejects an empty input", func() {
			_, err := sim.Simulate(scalarModel(1, 1, 1), nil)
			Expect(errors.Is(err, sim.ErrInvalidLength)).To(BeTrue())
		})

		It("rejects inconsistent matrices", func() {
			m := &ssm.Model{
				A: mat.NewDense(2, 2, nil),
				B: mat.NewDense(3, 1, nil),
				C: mat.NewDense(1, 2, nil),
			}
			_, err := sim.Simulate(m, []float64{1, 2})
			Expect(errors.Is(err, ssm.ErrShapeMismatch)).To(BeTrue())
		})
	})

	Describe("numeric semantics", func() {
		It("propagates NaN by default", func() {
			res, err := sim.Simulate(scalarModel(1, 1, 1), []float64{0, math.NaN(), 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsNaN(res.Y[2])).To(BeTrue())
		})

		It("stops at the first non-finite state when validating", func() {
			s := sim.New(scalarModel(1, 1, 1))
			s.SetConfig(sim.Config{ValidateState: true})

			res, err := s.Run(context.Background(), []float64{0, 1, math.Inf(1), 1})
			Expect(errors.Is(err, sim.ErrNonFinite)).To(BeTrue())

			var stepErr *sim.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(2))
			Expect(res.StepsTaken).To(Equal(2))
		})
	})

	Describe("metrics and cancellation", func() {
		It("observes every timestep including t=0", func() {
			metric := &countingMetric{}
			s := sim.New(scalarModel(0.5, 1, 1))
			s.AddMetric(metric)

			res, err := s.Run(context.Background(), []float64{1, 1, 1, 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(metric.observed).To(Equal([]int{0, 1, 2, 3}))
			Expect(res.Metrics).To(HaveKeyWithValue("count", 4.0))
		})

		It("returns the context error when cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := sim.New(scalarModel(0.5, 1, 1)).Run(ctx, []float64{1, 1, 1})
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(Equal(0))
		})
	})

	Describe("Ensemble", func() {
		It("runs each input independently", func() {
			e := sim.NewEnsemble(scalarModel(0.5, 2, 1), sim.Config{}, nil)
			results, err := e.Run(context.Background(), [][]float64{
				{1, 1, 1},
				{0, 0, 0},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].Y[2]).To(BeNumerically("~", 3, 1e-12))
			Expect(results[1].Y[2]).To(Equal(0.0))
		})

		It("fails when any run fails", func() {
			e := sim.NewEnsemble(scalarModel(0.5, 2, 1), sim.Config{}, nil)
			_, err := e.Run(context.Background(), [][]float64{{1}, {}})
			Expect(errors.Is(err, sim.ErrInvalidLength)).To(BeTrue())
		})
	})
})
