package cont

import (
	"cmp"
	"math"
	"slices"
)

const (
	// imagTol separates real eigenvalues from complex pairs.
	imagTol = 1e-6

	// CriticalBand is the distance from the imaginary axis within which an
	// eigenvalue is reported as critical.
	CriticalBand = 0.1
)

// Detect compares the eigenvalues of two consecutive points. Both lists are
// sorted by descending real part and paired by rank. A pair whose real part
// changes sign is a SaddleNode when both members are real and a Hopf when the
// previous one is complex. Lists of different length never match.
func Detect(curr, prev []complex128) (BifurcationType, bool) {
	t, _ := detect(curr, prev)
	return t, t != Regular
}

// detect also returns the crossing eigenvalue of curr.
func detect(curr, prev []complex128) (BifurcationType, complex128) {
	if len(curr) != len(prev) {
		return Regular, 0
	}
	c, p := sortByReal(curr), sortByReal(prev)

	for i := range c {
		// zero sits on the unstable side, as in Classify
		if (real(c[i]) < 0) == (real(p[i]) < 0) {
			continue
		}
		if math.Abs(imag(c[i])) < imagTol && math.Abs(imag(p[i])) < imagTol {
			return SaddleNode, c[i]
		}
		if math.Abs(imag(p[i])) > imagTol {
			return Hopf, c[i]
		}
	}
	return Regular, 0
}

func sortByReal(eigs []complex128) []complex128 {
	out := slices.Clone(eigs)
	slices.SortStableFunc(out, func(a, b complex128) int {
		return cmp.Compare(real(b), real(a))
	})
	return out
}

// CriticalEigenvalues returns the eigenvalues with |Re| < CriticalBand, in
// input order.
func CriticalEigenvalues(eigs []complex128) []complex128 {
	out := make([]complex128, 0, len(eigs))
	for _, e := range eigs {
		if math.Abs(real(e)) < CriticalBand {
			out = append(out, e)
		}
	}
	return out
}
