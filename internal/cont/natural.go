package cont

import (
	"github.com/san-kum/bifsim/internal/dynamo"
)

// Natural traces the branch through x0 by stepping the parameter from
// params.Start toward params.End in increments of params.Ds and solving for
// the equilibrium at each value, seeded with the previous solution.
//
// The run stops when the parameter passes End or MaxSteps points have been
// accepted. A Newton failure, as happens at folds, returns the points
// accepted so far together with a *dynamo.ContinuationError.
func Natural(sys dynamo.System, x0 dynamo.State, params Params, opts ...Option) (*Branch, error) {
	r, err := newRunner(sys, x0, params, "natural", opts)
	if err != nil {
		return nil, err
	}

	step := params.direction() * params.Ds
	x := x0.Clone()
	prev := dynamo.State(nil)

	for i := 0; i < params.MaxSteps; i++ {
		p := params.Start + float64(i)*step
		if params.beyond(p) {
			r.done("end of range")
			return r.branch, nil
		}

		if err := r.opts.ctx.Err(); err != nil {
			return r.branch, r.fail(x, p, err)
		}

		res, err := r.equilibrium(x, p)
		if err != nil {
			return r.branch, r.fail(x, p, err)
		}
		x = res.X

		pt := r.point(x, p, res.Residual)
		if last, ok := r.branch.Last(); ok {
			d := append(x.Sub(prev), p-last.Parameter)
			pt.Arclength = last.Arclength + dynamo.State(d).Norm()
		}
		r.accept(pt)
		prev = x.Clone()
	}

	r.done("step budget")
	return r.branch, nil
}
