package cont

import (
	"fmt"
	"math"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Params configures a continuation run. Drivers take it by value and never
// modify it.
type Params struct {
	Parameter string
	Start     float64
	End       float64

	Ds    float64
	DsMin float64
	DsMax float64

	MaxSteps      int
	NewtonTol     float64
	NewtonMaxIter int

	DetectBifurcations bool

	// SwitchPerturbation is the default distance SwitchBranch moves along
	// the tangent.
	SwitchPerturbation float64
}

func DefaultParams() Params {
	return Params{
		Parameter:          "p",
		Start:              0,
		End:                1,
		Ds:                 0.01,
		DsMin:              1e-6,
		DsMax:              0.1,
		MaxSteps:           200,
		NewtonTol:          1e-10,
		NewtonMaxIter:      100,
		DetectBifurcations: true,
		SwitchPerturbation: 1e-3,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Ds <= 0:
		return fmt.Errorf("ds must be positive, got %g: %w", p.Ds, dynamo.ErrInvalidParameter)
	case p.DsMin <= 0:
		return fmt.Errorf("ds_min must be positive, got %g: %w", p.DsMin, dynamo.ErrInvalidParameter)
	case p.DsMax <= 0:
		return fmt.Errorf("ds_max must be positive, got %g: %w", p.DsMax, dynamo.ErrInvalidParameter)
	case p.DsMin > p.DsMax:
		return fmt.Errorf("ds_min %g exceeds ds_max %g: %w", p.DsMin, p.DsMax, dynamo.ErrInvalidParameter)
	case p.MaxSteps <= 0:
		return fmt.Errorf("max_steps must be positive, got %d: %w", p.MaxSteps, dynamo.ErrInvalidParameter)
	case p.NewtonTol <= 0:
		return fmt.Errorf("newton tolerance must be positive, got %g: %w", p.NewtonTol, dynamo.ErrInvalidParameter)
	case p.NewtonMaxIter <= 0:
		return fmt.Errorf("newton max iterations must be positive, got %d: %w", p.NewtonMaxIter, dynamo.ErrInvalidParameter)
	case math.IsNaN(p.Start) || math.IsNaN(p.End):
		return fmt.Errorf("parameter range [%g, %g]: %w", p.Start, p.End, dynamo.ErrInvalidParameter)
	}
	return nil
}

// direction is +1 when the run moves toward larger parameter values.
func (p Params) direction() float64 {
	if p.End < p.Start {
		return -1
	}
	return 1
}

// beyond reports whether v has passed End in the direction of travel.
func (p Params) beyond(v float64) bool {
	eps := 1e-9 * math.Max(p.DsMin, math.Min(p.Ds, 1))
	return p.direction()*(v-p.End) > eps
}
