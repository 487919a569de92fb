package linalg

import (
	"math"
)

const (
	// SubdiagonalTol decides convergence and block boundaries in the
	// quasi-triangular form.
	SubdiagonalTol = 1e-10

	// iterationsPerRow bounds the QR iteration at iterationsPerRow·n sweeps.
	iterationsPerRow = 100
)

// Eigenvalues returns one eigenvalue per row of the square matrix a, in no
// particular order. Complex eigenvalues come in conjugate pairs.
//
// Matrices larger than 2x2 go through single-shift QR iteration using the
// trailing diagonal entry as shift. The iteration stops early once every
// sub-diagonal entry is below SubdiagonalTol; otherwise the best
// quasi-triangular form after the iteration budget is used.
func Eigenvalues(a Matrix) []complex128 {
	n := len(a)
	switch n {
	case 0:
		return []complex128{}
	case 1:
		return []complex128{complex(a[0][0], 0)}
	case 2:
		l1, l2 := eig2(a[0][0], a[0][1], a[1][0], a[1][1])
		return []complex128{l1, l2}
	}

	h := a.Clone()
	for iter := 0; iter < iterationsPerRow*n; iter++ {
		shift := h[n-1][n-1]
		for i := 0; i < n; i++ {
			h[i][i] -= shift
		}
		q, r := QR(h)
		h = r.Mul(q)
		for i := 0; i < n; i++ {
			h[i][i] += shift
		}
		if quasiTriangular(h) {
			break
		}
	}
	return extract(h)
}

func quasiTriangular(h Matrix) bool {
	for i := 1; i < len(h); i++ {
		if math.Abs(h[i][i-1]) >= SubdiagonalTol {
			return false
		}
	}
	return true
}

func extract(h Matrix) []complex128 {
	n := len(h)
	out := make([]complex128, 0, n)
	for i := 0; i < n; {
		if i == n-1 || math.Abs(h[i+1][i]) < SubdiagonalTol {
			out = append(out, complex(h[i][i], 0))
			i++
			continue
		}
		l1, l2 := eig2(h[i][i], h[i][i+1], h[i+1][i], h[i+1][i+1])
		out = append(out, l1, l2)
		i += 2
	}
	return out
}

// eig2 solves the characteristic polynomial of [[a, b], [c, d]].
func eig2(a, b, c, d float64) (complex128, complex128) {
	tr := a + d
	det := a*d - b*c
	disc := tr*tr - 4*det
	if disc >= 0 {
		s := math.Sqrt(disc)
		return complex((tr+s)/2, 0), complex((tr-s)/2, 0)
	}
	s := math.Sqrt(-disc)
	return complex(tr/2, s/2), complex(tr/2, -s/2)
}
