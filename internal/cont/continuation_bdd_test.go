package cont_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bifsim/internal/cont"
	"github.com/san-kum/bifsim/internal/dynamo"
)

var _ = Describe("Continuation", func() {
	var (
		fold   dynamo.System
		params cont.Params
	)

	BeforeEach(func() {
		fold = (&dynamo.Func{
			N:   1,
			F:   func(x dynamo.State, mu float64) dynamo.State { return dynamo.State{mu - x[0]*x[0]} },
			Jac: func(x dynamo.State, mu float64) [][]float64 { return [][]float64{{-2 * x[0]}} },
			DP:  func(x dynamo.State, mu float64) dynamo.State { return dynamo.State{1} },
		}).WithJacobians()

		params = cont.DefaultParams()
		params.Parameter = "mu"
		params.Start, params.End = 1, -1
		params.Ds = 0.05
		params.MaxSteps = 60
	})

	Describe("near a fold", func() {
		It("stops natural continuation at the turning point", func() {
			params.Ds = 0.1
			b, err := cont.Natural(fold, dynamo.State{1}, params)

			Expect(err).To(HaveOccurred())
			Expect(err).To(Or(MatchError(dynamo.ErrConvergenceFailed), MatchError(dynamo.ErrSingularJacobian)))
			Expect(b.Points).NotTo(BeEmpty())

			last, _ := b.Last()
			Expect(last.Parameter).To(BeNumerically(">=", -1e-9))
		})

		It("follows the branch around the turning point with arclength", func() {
			b, err := cont.Arclength(fold, dynamo.State{1}, params)
			Expect(err).NotTo(HaveOccurred())

			Expect(b.Bifurcations).To(HaveLen(1))
			bp := b.Bifurcations[0]
			Expect(bp.Type).To(Equal(cont.SaddleNode))
			Expect(bp.Parameter).To(BeNumerically("~", 0, 0.01))
			Expect(dynamo.State(bp.Tangent).Norm()).To(BeNumerically("~", 1, 1e-12))
			Expect(bp.Eigenvalues).NotTo(BeEmpty())

			before := b.Points[bp.Index-1]
			after := b.Points[bp.Index]
			Expect(math.Signbit(before.State[0])).NotTo(Equal(math.Signbit(after.State[0])))
			Expect(before.Stable).To(BeTrue())
			Expect(after.Stable).To(BeFalse())
		})

		It("keeps the whole branch on the parabola", func() {
			b, err := cont.Arclength(fold, dynamo.State{1}, params)
			Expect(err).NotTo(HaveOccurred())

			for _, pt := range b.Points {
				Expect(pt.Parameter - pt.State[0]*pt.State[0]).To(BeNumerically("~", 0, 1e-9))
				Expect(pt.Residual).To(BeNumerically("<", params.NewtonTol))
			}
		})
	})

	Describe("branch switching", func() {
		It("rejects points without a tangent", func() {
			b, err := cont.Natural(fold, dynamo.State{1}, params)
			Expect(err).To(HaveOccurred())
			Expect(b.Bifurcations).To(BeEmpty())

			_, err = cont.SwitchBranch(fold, cont.BifurcationPoint{State: dynamo.State{0}}, 0, params)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})

		It("starts a new branch from the perturbed fold", func() {
			parent, err := cont.Arclength(fold, dynamo.State{1}, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(parent.Bifurcations).To(HaveLen(1))

			params.MaxSteps = 10
			child, err := cont.SwitchBranch(fold, parent.Bifurcations[0], 0, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(child.Name).To(Equal("switched"))
			Expect(child.Stats.BranchSwitches).To(Equal(1))
			Expect(child.Points).To(HaveLen(10))
		})
	})
})
