package linalg

import "math"

// QR factors a square matrix as a = q·r using modified Gram-Schmidt,
// processing columns left to right. When a column is numerically dependent
// on the previous ones its diagonal entry in r is zero and q is completed
// with an orthonormal direction, so q stays orthogonal.
func QR(a Matrix) (q, r Matrix) {
	n := len(a)
	q = NewMatrix(n, n)
	r = NewMatrix(n, n)
	v := make([]float64, n)

	for j := 0; j < n; j++ {
		colNorm := 0.0
		for i := 0; i < n; i++ {
			v[i] = a[i][j]
			colNorm += v[i] * v[i]
		}
		colNorm = math.Sqrt(colNorm)

		for k := 0; k < j; k++ {
			dot := 0.0
			for i := 0; i < n; i++ {
				dot += q[i][k] * v[i]
			}
			r[k][j] = dot
			for i := 0; i < n; i++ {
				v[i] -= dot * q[i][k]
			}
		}

		norm := vecNorm(v)
		if norm > 1e-14*colNorm && norm > 0 {
			r[j][j] = norm
			for i := 0; i < n; i++ {
				q[i][j] = v[i] / norm
			}
			continue
		}
		r[j][j] = 0
		completeColumn(q, j)
	}
	return q, r
}

// completeColumn fills column j of q with the unit vector, orthogonalized
// against columns 0..j-1, that keeps the most length.
func completeColumn(q Matrix, j int) {
	n := len(q)
	best := make([]float64, n)
	bestNorm := -1.0
	cand := make([]float64, n)
	for e := 0; e < n; e++ {
		for i := range cand {
			cand[i] = 0
		}
		cand[e] = 1
		for k := 0; k < j; k++ {
			dot := q[e][k]
			for i := 0; i < n; i++ {
				cand[i] -= dot * q[i][k]
			}
		}
		if nrm := vecNorm(cand); nrm > bestNorm {
			bestNorm = nrm
			copy(best, cand)
		}
	}
	for i := 0; i < n; i++ {
		q[i][j] = best[i] / bestNorm
	}
}

func vecNorm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
