package ssm_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ssmsim/internal/prng"
	"github.com/san-kum/ssmsim/internal/ssm"
)

func entries(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

var _ = Describe("Random", func() {
	DescribeTable("produces (N,N), (N,1), (1,N)",
		func(n int) {
			m, err := ssm.Random(prng.NewThreefry(7), n)
			Expect(err).NotTo(HaveOccurred())

			a, b, c := m.Shapes()
			Expect(a).To(Equal(ssm.Shape{Rows: n, Cols: n}))
			Expect(b).To(Equal(ssm.Shape{Rows: n, Cols: 1}))
			Expect(c).To(Equal(ssm.Shape{Rows: 1, Cols: n}))
			Expect(m.Order()).To(Equal(n))
			Expect(m.Validate()).To(Succeed())
		},
		Entry("N=1", 1),
		Entry("N=4", 4),
		Entry("N=16", 16),
	)

	DescribeTable("rejects non-positive dimensions",
		func(n int) {
			_, err := ssm.Random(prng.NewThreefry(0), n)
			Expect(errors.Is(err, ssm.ErrInvalidDimension)).To(BeTrue())
		},
		Entry("zero", 0),
		Entry("negative", -3),
	)

	It("is deterministic for a fixed seed", func() {
		for _, name := range prng.Names() {
			s1, err := prng.Lookup(name, 42)
			Expect(err).NotTo(HaveOccurred())
			s2, err := prng.Lookup(name, 42)
			Expect(err).NotTo(HaveOccurred())

			m1, err := ssm.Random(s1, 5)
			Expect(err).NotTo(HaveOccurred())
			m2, err := ssm.Random(s2, 5)
			Expect(err).NotTo(HaveOccurred())

			Expect(entries(m1.A)).To(Equal(entries(m2.A)), name)
			Expect(entries(m1.B)).To(Equal(entries(m2.B)), name)
			Expect(entries(m1.C)).To(Equal(entries(m2.C)), name)
		}
	})

	It("differs across seeds", func() {
		m1, err := ssm.Random(prng.NewThreefry(0), 4)
		Expect(err).NotTo(HaveOccurred())
		m2, err := ssm.Random(prng.NewThreefry(1), 4)
		Expect(err).NotTo(HaveOccurred())

		Expect(entries(m1.A)).NotTo(Equal(entries(m2.A)))
		Expect(entries(m1.B)).NotTo(Equal(entries(m2.B)))
		Expect(entries(m1.C)).NotTo(Equal(entries(m2.C)))
	})

	It("draws every entry from [0, 1)", func() {
		for seed := int64(0); seed < 20; seed++ {
			m, err := ssm.Random(prng.NewThreefry(seed), 6)
			Expect(err).NotTo(HaveOccurred())
			for _, mtx := range []*mat.Dense{m.A, m.B, m.C} {
				for _, v := range entries(mtx) {
					Expect(v).To(BeNumerically(">=", 0))
					Expect(v).To(BeNumerically("<", 1))
				}
			}
		}
	})

	It("fills each matrix from its own child stream", func() {
		key := prng.NewKey(0)
		children := key.Split(3)

		m, err := ssm.Random(prng.NewThreefry(0), 4)
		Expect(err).NotTo(HaveOccurred())

		Expect(entries(m.A)).To(Equal(children[0].Uniform(16)))
		Expect(entries(m.B)).To(Equal(children[1].Uniform(4)))
		Expect(entries(m.C)).To(Equal(children[2].Uniform(4)))
	})

	It("reproduces the reference matrices for seed 0", func() {
		m, err := ssm.Random(prng.NewThreefry(0), 4)
		Expect(err).NotTo(HaveOccurred())

		Expect(m.A.At(0, 0)).To(BeNumerically("~", 0.3875080347061157, 1e-15))
		Expect(m.A.At(3, 3)).To(BeNumerically("~", 0.858755350112915, 1e-15))
		Expect(m.B.At(0, 0)).To(BeNumerically("~", 0.3562920093536377, 1e-15))
		Expect(m.C.At(0, 3)).To(BeNumerically("~", 0.17046844959259033, 1e-15))
	})
})

var _ = Describe("Model", func() {
	It("accepts consistent shapes", func() {
		m, err := ssm.New(
			mat.NewDense(2, 2, nil),
			mat.NewDense(2, 1, nil),
			mat.NewDense(1, 2, nil),
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Order()).To(Equal(2))
	})

	DescribeTable("rejects inconsistent shapes",
		func(a, b, c *mat.Dense) {
			_, err := ssm.New(a, b, c)
			Expect(errors.Is(err, ssm.ErrShapeMismatch)).To(BeTrue())
		},
		Entry("non-square A", mat.NewDense(2, 3, nil), mat.NewDense(2, 1, nil), mat.NewDense(1, 2, nil)),
		Entry("B too tall", mat.NewDense(2, 2, nil), mat.NewDense(3, 1, nil), mat.NewDense(1, 2, nil)),
		Entry("B too wide", mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil), mat.NewDense(1, 2, nil)),
		Entry("C transposed", mat.NewDense(2, 2, nil), mat.NewDense(2, 1, nil), mat.NewDense(2, 1, nil)),
		Entry("missing C", mat.NewDense(2, 2, nil), mat.NewDense(2, 1, nil), (*mat.Dense)(nil)),
	)

	It("computes the spectral radius of A", func() {
		m, err := ssm.New(
			mat.NewDense(2, 2, []float64{0.5, 0, 0, -0.8}),
			mat.NewDense(2, 1, []float64{1, 1}),
			mat.NewDense(1, 2, []float64{1, 1}),
		)
		Expect(err).NotTo(HaveOccurred())

		rho, err := m.SpectralRadius()
		Expect(err).NotTo(HaveOccurred())
		Expect(rho).To(BeNumerically("~", 0.8, 1e-12))
	})

	It("formats shapes as tuples", func() {
		Expect(ssm.Shape{Rows: 4, Cols: 1}.String()).To(Equal("(4, 1)"))
	})
})
