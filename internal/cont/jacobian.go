package cont

import (
	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/linalg"
)

// FiniteDiffStep is the central difference step used when a system has no
// analytic derivatives.
const FiniteDiffStep = 1e-8

// Jacobian returns ∂F/∂x at (x, p), analytic when sys provides it.
func Jacobian(sys dynamo.System, x dynamo.State, p float64) linalg.Matrix {
	if jp, ok := sys.(dynamo.JacobianProvider); ok {
		return linalg.Matrix(jp.Jacobian(x, p))
	}

	n := sys.Dim()
	j := linalg.NewMatrix(n, n)
	xp := x.Clone()
	for col := 0; col < n; col++ {
		orig := xp[col]
		xp[col] = orig + FiniteDiffStep
		fPlus := sys.RHS(xp, p)
		xp[col] = orig - FiniteDiffStep
		fMinus := sys.RHS(xp, p)
		xp[col] = orig
		for row := 0; row < n; row++ {
			j[row][col] = (fPlus[row] - fMinus[row]) / (2 * FiniteDiffStep)
		}
	}
	return j
}

// ParamDerivative returns ∂F/∂p at (x, p), analytic when sys provides it.
func ParamDerivative(sys dynamo.System, x dynamo.State, p float64) []float64 {
	if dp, ok := sys.(dynamo.ParamDerivProvider); ok {
		return dp.ParamDeriv(x, p)
	}

	fPlus := sys.RHS(x, p+FiniteDiffStep)
	fMinus := sys.RHS(x, p-FiniteDiffStep)
	out := make([]float64, len(fPlus))
	for i := range out {
		out[i] = (fPlus[i] - fMinus[i]) / (2 * FiniteDiffStep)
	}
	return out
}
