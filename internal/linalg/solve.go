package linalg

import (
	"fmt"
	"math"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// SingularPivot is the smallest pivot magnitude accepted by Solve.
const SingularPivot = 1e-15

// Solve returns x with a·x = b using Gaussian elimination with partial
// pivoting on the augmented matrix [a|b]. Neither argument is modified.
func Solve(a Matrix, b []float64) ([]float64, error) {
	n := len(a)
	if !a.IsSquare() || len(b) != n {
		return nil, fmt.Errorf("linalg: solve %dx%d with rhs of length %d: %w", n, a.Cols(), len(b), dynamo.ErrDimensionMismatch)
	}

	aug := make(Matrix, n)
	for i := range a {
		aug[i] = make([]float64, n+1)
		copy(aug[i], a[i])
		aug[i][n] = b[i]
	}

	for k := 0; k < n; k++ {
		pivotRow := k
		pivotMag := math.Abs(aug[k][k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(aug[i][k]); v > pivotMag {
				pivotRow, pivotMag = i, v
			}
		}
		if pivotMag < SingularPivot {
			return nil, fmt.Errorf("linalg: pivot %.3e in column %d: %w", pivotMag, k, dynamo.ErrSingularJacobian)
		}
		aug[k], aug[pivotRow] = aug[pivotRow], aug[k]

		for i := k + 1; i < n; i++ {
			factor := aug[i][k] / aug[k][k]
			if factor == 0 {
				continue
			}
			for j := k; j <= n; j++ {
				aug[i][j] -= factor * aug[k][j]
			}
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := aug[i][n]
		for j := i + 1; j < n; j++ {
			sum -= aug[i][j] * x[j]
		}
		x[i] = sum / aug[i][i]
	}
	return x, nil
}
