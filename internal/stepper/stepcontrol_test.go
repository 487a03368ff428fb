package stepper

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("step-size control law", func() {
	var tab *Tableau

	BeforeEach(func() {
		tab = DOPRI54()
	})

	Context("with a NaN error metric", func() {
		It("shrinks by exactly one tenth and rejects", func() {
			dt, accepted := adjustStep(tab, math.NaN(), 0.5)
			Expect(accepted).To(BeFalse())
			Expect(dt).To(Equal(0.05))
		})
	})

	Context("with error below one", func() {
		It("accepts without growing when the error is only just acceptable", func() {
			dt, accepted := adjustStep(tab, 0.8, 0.01)
			Expect(accepted).To(BeTrue())
			Expect(dt).To(Equal(0.01))
		})

		It("grows when the error is under safety^order", func() {
			small := math.Pow(tab.Safety, float64(tab.Order)) / 2
			dt, accepted := adjustStep(tab, small, 0.01)
			Expect(accepted).To(BeTrue())
			Expect(dt).To(BeNumerically(">", 0.01))
			Expect(dt).To(BeNumerically("<=", 0.01*tab.MaxFactor*(1+1e-12)))
		})

		It("caps growth at the max factor for vanishing error", func() {
			dt, accepted := adjustStep(tab, 0, 0.01)
			Expect(accepted).To(BeTrue())
			Expect(dt).To(BeNumerically("~", 0.01*tab.MaxFactor, 1e-12))
		})
	})

	Context("with error at or above one", func() {
		It("rejects and shrinks by the power law", func() {
			dt, accepted := adjustStep(tab, 8.0, 0.01)
			Expect(accepted).To(BeFalse())
			expected := 0.01 * tab.Safety * math.Pow(8.0, -1.0/float64(tab.Order-2))
			Expect(dt).To(BeNumerically("~", expected, 1e-15))
		})

		It("never shrinks below the min factor in one rejection", func() {
			dt, accepted := adjustStep(tab, 1e12, 0.01)
			Expect(accepted).To(BeFalse())
			Expect(dt).To(BeNumerically("~", 0.01*tab.MinFactor, 1e-15))
		})

		It("rejects an infinite metric without producing zero dt", func() {
			dt, accepted := adjustStep(tab, math.Inf(1), 0.01)
			Expect(accepted).To(BeFalse())
			Expect(dt).To(BeNumerically(">", 0))
		})
	})
})

var _ = Describe("DOPRI54 tableau", func() {
	It("validates", func() {
		Expect(DOPRI54().validate()).To(Succeed())
	})

	It("has consistent weights", func() {
		tab := DOPRI54()
		sumB := 0.0
		for _, b := range tab.B {
			sumB += b
		}
		Expect(sumB).To(BeNumerically("~", 1.0, 1e-12))

		sumE := 0.0
		for _, e := range tab.E {
			sumE += e
		}
		// The embedded weights are a consistent method of their own.
		Expect(sumE).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("has row sums matching the abscissas", func() {
		tab := DOPRI54()
		for i, row := range tab.A {
			sum := 0.0
			for _, a := range row {
				sum += a
			}
			Expect(sum).To(BeNumerically("~", tab.C[i], 1e-12), "row %d", i)
		}
	})
})
