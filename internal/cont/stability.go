package cont

import (
	"fmt"
	"math"

	"github.com/san-kum/bifsim/internal/linalg"
)

type Stability struct {
	Eigenvalues []complex128
	Stable      bool
}

// Classify computes the eigenvalues of j. The equilibrium is stable iff every
// eigenvalue has negative real part.
func Classify(j linalg.Matrix) Stability {
	eigs := linalg.Eigenvalues(j)
	return Stability{Eigenvalues: eigs, Stable: allNegative(eigs)}
}

func allNegative(eigs []complex128) bool {
	for _, e := range eigs {
		if real(e) >= 0 {
			return false
		}
	}
	return true
}

type PointType int

const (
	Unknown PointType = iota
	StableNode
	UnstableNode
	StableFocus
	UnstableFocus
	Saddle
	Center
)

func (t PointType) String() string {
	switch t {
	case StableNode:
		return "stable node"
	case UnstableNode:
		return "unstable node"
	case StableFocus:
		return "stable focus"
	case UnstableFocus:
		return "unstable focus"
	case Saddle:
		return "saddle"
	case Center:
		return "center"
	}
	return "unknown"
}

// ParsePointType is the inverse of String.
func ParsePointType(s string) (PointType, error) {
	for t := Unknown; t <= Center; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown point type %q", s)
}

const classifyTol = 1e-10

// ClassifyPoint names the equilibrium type implied by its eigenvalues. Any
// eigenvalue on the imaginary axis makes it a Center.
func ClassifyPoint(eigs []complex128) PointType {
	if len(eigs) == 0 {
		return Unknown
	}

	allReal, allNeg, allPos := true, true, true
	for _, e := range eigs {
		if math.Abs(real(e)) < classifyTol {
			return Center
		}
		if math.Abs(imag(e)) >= classifyTol {
			allReal = false
		}
		if real(e) >= 0 {
			allNeg = false
		}
		if real(e) <= 0 {
			allPos = false
		}
	}

	switch {
	case allNeg && allReal:
		return StableNode
	case allPos && allReal:
		return UnstableNode
	case allNeg:
		return StableFocus
	case allPos:
		return UnstableFocus
	}
	return Saddle
}
