package cont

import (
	"fmt"
	"strings"

	"github.com/san-kum/bifsim/internal/dynamo"
)

type BifurcationType int

const (
	Regular BifurcationType = iota
	SaddleNode
	Transcritical
	Pitchfork
	Hopf
	PeriodDoubling
	Torus
	BranchPoint
	LimitPointCycle
	UserZero
)

var bifurcationNames = [...]string{
	Regular:         "regular",
	SaddleNode:      "saddle-node",
	Transcritical:   "transcritical",
	Pitchfork:       "pitchfork",
	Hopf:            "hopf",
	PeriodDoubling:  "period-doubling",
	Torus:           "torus",
	BranchPoint:     "branch-point",
	LimitPointCycle: "limit-point-cycle",
	UserZero:        "user-zero",
}

func (t BifurcationType) String() string {
	if t < 0 || int(t) >= len(bifurcationNames) {
		return fmt.Sprintf("BifurcationType(%d)", int(t))
	}
	return bifurcationNames[t]
}

// ParseBifurcationType is the inverse of String.
func ParseBifurcationType(s string) (BifurcationType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range bifurcationNames {
		if name == s {
			return BifurcationType(i), nil
		}
	}
	return Regular, fmt.Errorf("unknown bifurcation type %q: %w", s, dynamo.ErrInvalidParameter)
}

func (t BifurcationType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *BifurcationType) UnmarshalText(b []byte) error {
	v, err := ParseBifurcationType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SolutionPoint is one accepted equilibrium on a branch.
type SolutionPoint struct {
	Parameter   float64
	State       dynamo.State
	Stable      bool
	Eigenvalues []complex128
	Type        PointType

	// Period and Floquet describe periodic solutions. Equilibrium drivers
	// leave them unset.
	Period  *float64
	Floquet []complex128

	// Bifurcation is Regular unless the point was tagged by the detector.
	Bifurcation BifurcationType

	// Tangent is the unit branch direction (state..., parameter). Only
	// Arclength sets it.
	Tangent []float64

	Arclength float64
	Residual  float64
}

type BifurcationPoint struct {
	Type      BifurcationType
	Parameter float64
	State     dynamo.State

	// Eigenvalues holds only the eigenvalues near the imaginary axis.
	Eigenvalues []complex128

	// Tangent has length dim+1 with dp/ds last; nil when the driver does
	// not compute tangents.
	Tangent []float64
	Period  *float64

	// Index is the position of the tagged point in Branch.Points.
	Index int
}

type Stats struct {
	Steps               int
	NewtonIterations    int
	JacobianEvaluations int
	StepReductions      int
	Bifurcations        int
	BranchSwitches      int
}

// Branch is the result of a continuation run. Points are in computation
// order.
type Branch struct {
	Name         string
	Points       []SolutionPoint
	Bifurcations []BifurcationPoint
	Stats        Stats
}

func newBranch(name string) *Branch {
	return &Branch{
		Name:         name,
		Points:       make([]SolutionPoint, 0, 64),
		Bifurcations: make([]BifurcationPoint, 0),
	}
}

func (b *Branch) Len() int { return len(b.Points) }

// Last returns the most recent point.
func (b *Branch) Last() (SolutionPoint, bool) {
	if len(b.Points) == 0 {
		return SolutionPoint{}, false
	}
	return b.Points[len(b.Points)-1], true
}

func (b *Branch) Parameters() []float64 {
	out := make([]float64, len(b.Points))
	for i, pt := range b.Points {
		out[i] = pt.Parameter
	}
	return out
}

// Component returns state variable i along the branch.
func (b *Branch) Component(i int) []float64 {
	out := make([]float64, len(b.Points))
	for k, pt := range b.Points {
		if i >= 0 && i < len(pt.State) {
			out[k] = pt.State[i]
		}
	}
	return out
}

// Bifurcation returns the i-th detected bifurcation.
func (b *Branch) Bifurcation(i int) (BifurcationPoint, error) {
	if i < 0 || i >= len(b.Bifurcations) {
		return BifurcationPoint{}, fmt.Errorf("bifurcation %d of %d: %w", i, len(b.Bifurcations), dynamo.ErrInvalidParameter)
	}
	return b.Bifurcations[i], nil
}
