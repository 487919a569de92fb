package cont

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/linalg"
	"github.com/san-kum/bifsim/internal/newton"
)

const (
	// fastCorrector is the iteration count below which ds grows.
	fastCorrector = 3
	growFactor    = 1.5
)

// Arclength traces the branch through x0 with pseudo-arclength continuation
// in the extended unknown (x, p), which passes through folds.
//
// The initial state is first corrected at p = params.Start. Each step
// predicts along the unit tangent and corrects with Newton on F(x, p) = 0
// augmented by the arclength constraint. ds grows by 1.5 up to DsMax after
// fast corrections and halves after failed ones. When ds falls below DsMin
// the points accepted so far are returned with an error wrapping
// *dynamo.StepError.
func Arclength(sys dynamo.System, x0 dynamo.State, params Params, opts ...Option) (*Branch, error) {
	r, err := newRunner(sys, x0, params, "arclength", opts)
	if err != nil {
		return nil, err
	}
	dir := params.direction()

	res, err := r.equilibrium(x0, params.Start)
	if err != nil {
		return r.branch, r.fail(x0, params.Start, err)
	}
	x, p := dynamo.State(res.X), params.Start

	tan, err := r.tangent(x, p, nil, dir)
	if err != nil {
		return r.branch, r.fail(x, p, err)
	}
	pt := r.point(x, p, res.Residual)
	pt.Tangent = tan
	r.accept(pt)

	ds := math.Min(math.Max(params.Ds, params.DsMin), params.DsMax)
	s := 0.0

	for len(r.branch.Points) < params.MaxSteps {
		if params.beyond(p) {
			r.done("end of range")
			return r.branch, nil
		}
		if err := r.opts.ctx.Err(); err != nil {
			return r.branch, r.fail(x, p, err)
		}

		y, res, err := r.correct(x, p, tan, ds)
		if err != nil {
			ds /= 2
			r.branch.Stats.StepReductions++
			r.log.Warn("corrector failed, halving step",
				zap.Float64("p", p),
				zap.Float64("ds", ds),
				zap.Error(err))
			if ds < params.DsMin {
				return r.branch, r.fail(x, p, &dynamo.StepError{Ds: ds, Parameter: p})
			}
			continue
		}

		n := len(x)
		xn, pn := dynamo.State(y[:n]), y[n]
		next, err := r.tangent(xn, pn, tan, dir)
		if err != nil {
			return r.branch, r.fail(xn, pn, err)
		}

		s += ds
		pt := r.point(xn, pn, newton.Norm(r.sys.RHS(xn, pn)))
		pt.Tangent = next
		pt.Arclength = s
		r.accept(pt)

		x, p, tan = xn, pn, next
		if res.Iterations < fastCorrector {
			ds = math.Min(ds*growFactor, params.DsMax)
		}
	}

	r.done("step budget")
	return r.branch, nil
}

// correct runs the predictor-corrector step of length ds from (x, p) along
// tan. It returns the corrected (x, p) packed as one vector.
func (r *runner) correct(x dynamo.State, p float64, tan []float64, ds float64) ([]float64, newton.Result, error) {
	n := len(x)
	base := append(x.Clone(), p)

	pred := make([]float64, n+1)
	for i := range pred {
		pred[i] = base[i] + ds*tan[i]
	}

	prob := newton.Problem{
		Residual: func(y []float64) []float64 {
			out := make([]float64, n+1)
			copy(out, r.sys.RHS(y[:n], y[n]))
			c := -ds
			for i := range y {
				c += tan[i] * (y[i] - base[i])
			}
			out[n] = c
			return out
		},
		Jacobian: func(y []float64) linalg.Matrix {
			return extendedJacobian(r.sys, y, tan)
		},
		Converged: func(res []float64, tol float64) bool {
			return newton.Norm(res[:n]) < tol && math.Abs(res[n]) < tol
		},
	}

	res, err := r.solver().Solve(prob, pred)
	r.count(res)
	if err != nil {
		return nil, res, err
	}
	if !dynamo.State(res.X).IsValid() {
		return nil, res, dynamo.ErrInvalidState
	}
	return res.X, res, nil
}

// extendedJacobian is [[F_x, F_p], [border]] at y = (x, p).
func extendedJacobian(sys dynamo.System, y []float64, border []float64) linalg.Matrix {
	n := len(y) - 1
	x, p := dynamo.State(y[:n]), y[n]
	fx := Jacobian(sys, x, p)
	fp := ParamDerivative(sys, x, p)

	j := linalg.NewMatrix(n+1, n+1)
	for i := 0; i < n; i++ {
		copy(j[i], fx[i])
		j[i][n] = fp[i]
	}
	copy(j[n], border)
	return j
}

// tangent returns the unit null vector of [F_x | F_p] at (x, p). It is
// oriented along prev when given, otherwise so that dp/ds has the sign of
// dir. Where the null space is not one-dimensional prev is reused.
func (r *runner) tangent(x dynamo.State, p float64, prev []float64, dir float64) ([]float64, error) {
	n := len(x)
	fx := Jacobian(r.sys, x, p)
	fp := ParamDerivative(r.sys, x, p)

	rhs := make([]float64, n)
	for i := range rhs {
		rhs[i] = -fp[i]
	}

	var t []float64
	dx, err := linalg.Solve(fx, rhs)
	switch {
	case err == nil:
		t = append(dx, 1)
	case errors.Is(err, dynamo.ErrSingularJacobian):
		r.log.Debug("singular state jacobian, using bordered tangent", zap.Float64("p", p))
		t, err = borderedTangent(r.sys, x, p, prev, dir)
		if err != nil {
			if prev == nil {
				return nil, err
			}
			// Exact branch point: F_x and F_p both vanish and no border
			// helps. The branch direction carries over by continuity.
			r.log.Debug("no regular border, keeping previous tangent",
				zap.Float64("p", p),
				zap.Error(err))
			t = append([]float64(nil), prev...)
		}
	default:
		return nil, err
	}

	norm := newton.Norm(t)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, fmt.Errorf("tangent at p=%g: %w", p, dynamo.ErrInvalidState)
	}
	for i := range t {
		t[i] /= norm
	}

	var flip bool
	if prev == nil {
		flip = t[n]*dir < 0
	} else {
		flip = dynamo.State(t).Dot(prev) < 0
	}
	if flip {
		for i := range t {
			t[i] = -t[i]
		}
	}
	return t, nil
}

// borderedTangent solves [[F_x, F_p], [b]]·t = e_{n+1} for a border b that
// makes the system regular. The previous tangent is tried first, then the
// parameter axis in the direction of travel, then each state axis.
func borderedTangent(sys dynamo.System, x dynamo.State, p float64, prev []float64, dir float64) ([]float64, error) {
	n := len(x)
	y := append(x.Clone(), p)

	borders := make([][]float64, 0, n+2)
	if prev != nil {
		borders = append(borders, prev)
	}
	axis := make([]float64, n+1)
	axis[n] = dir
	borders = append(borders, axis)
	for i := 0; i < n; i++ {
		e := make([]float64, n+1)
		e[i] = 1
		borders = append(borders, e)
	}

	rhs := make([]float64, n+1)
	rhs[n] = 1

	var lastErr error
	for _, b := range borders {
		t, err := linalg.Solve(extendedJacobian(sys, y, b), rhs)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("bordered tangent at p=%g: %w", p, lastErr)
}
