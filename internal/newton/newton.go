// Package newton implements Newton's method for square nonlinear systems
// F(x) = 0 on top of the dense solver in linalg.
package newton

import (
	"fmt"
	"math"

	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/linalg"
)

// Problem describes F(x) = 0.
type Problem struct {
	Residual func(x []float64) []float64
	Jacobian func(x []float64) linalg.Matrix

	// Converged replaces the default test norm(residual) < tol when set.
	Converged func(residual []float64, tol float64) bool
}

type Solver struct {
	Tol     float64
	MaxIter int
}

// Result is returned on success and, with the last iterate, on failure.
// Iterations counts residual evaluations, including the converging one.
type Result struct {
	X          []float64
	Iterations int
	Residual   float64
}

// Solve iterates x <- x - J(x)⁻¹F(x) starting from x0. x0 is not modified.
func (s Solver) Solve(p Problem, x0 []float64) (Result, error) {
	converged := p.Converged
	if converged == nil {
		converged = func(r []float64, tol float64) bool { return Norm(r) < tol }
	}

	x := make([]float64, len(x0))
	copy(x, x0)
	res := Result{X: x}

	for iter := 1; iter <= s.MaxIter; iter++ {
		res.Iterations = iter
		f := p.Residual(x)
		res.Residual = Norm(f)
		if math.IsNaN(res.Residual) || math.IsInf(res.Residual, 0) {
			return res, fmt.Errorf("newton: iteration %d: %w", iter, dynamo.ErrInvalidState)
		}
		if converged(f, s.Tol) {
			return res, nil
		}

		dx, err := linalg.Solve(p.Jacobian(x), f)
		if err != nil {
			return res, fmt.Errorf("newton: iteration %d: %w", iter, err)
		}
		for i := range x {
			x[i] -= dx[i]
		}
	}

	return res, &dynamo.ConvergenceError{Iterations: s.MaxIter, Residual: res.Residual}
}

// Solve is shorthand for Solver{tol, maxIter}.Solve with the default
// convergence test.
func Solve(f func([]float64) []float64, jac func([]float64) linalg.Matrix, x0 []float64, tol float64, maxIter int) (Result, error) {
	return Solver{Tol: tol, MaxIter: maxIter}.Solve(Problem{Residual: f, Jacobian: jac}, x0)
}

// Norm is the Euclidean norm.
func Norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
