package cont

import (
	"go.uber.org/zap"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// dedupFactor scales the Newton tolerance into the distance below which two
// roots are considered the same equilibrium.
const dedupFactor = 100

type Equilibrium struct {
	Parameter   float64
	State       dynamo.State
	Eigenvalues []complex128
	Stable      bool
	Type        PointType
	Residual    float64
	Iterations  int
}

// FindEquilibria runs Newton at fixed parameter p from each guess and returns
// the distinct converged roots in the order they were first found. Guesses
// that fail to converge are skipped.
func FindEquilibria(sys dynamo.System, p float64, guesses []dynamo.State, params Params, opts ...Option) ([]Equilibrium, error) {
	var found []Equilibrium
	minDist := dedupFactor * params.NewtonTol

	for i, g := range guesses {
		r, err := newRunner(sys, g, params, "equilibria", opts)
		if err != nil {
			return found, err
		}

		res, err := r.equilibrium(g, p)
		if err != nil {
			r.log.Debug("guess did not converge", zap.Int("guess", i), zap.Error(err))
			continue
		}

		x := dynamo.State(res.X)
		duplicate := false
		for _, e := range found {
			if x.Sub(e.State).Norm() <= minDist {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		pt := r.point(x, p, res.Residual)
		found = append(found, Equilibrium{
			Parameter:   p,
			State:       pt.State,
			Eigenvalues: pt.Eigenvalues,
			Stable:      pt.Stable,
			Type:        pt.Type,
			Residual:    res.Residual,
			Iterations:  res.Iterations,
		})
	}
	return found, nil
}
