package cont

import (
	"fmt"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// SwitchBranch perturbs bp by perturbation along its tangent and traces a new
// branch from there with Arclength, using the perturbed parameter as Start.
// A zero perturbation falls back to params.SwitchPerturbation. The point must
// carry a tangent, so only bifurcations found by Arclength qualify.
func SwitchBranch(sys dynamo.System, bp BifurcationPoint, perturbation float64, params Params, opts ...Option) (*Branch, error) {
	n := sys.Dim()
	if bp.Tangent == nil {
		return nil, fmt.Errorf("%v at p=%g has no tangent: %w", bp.Type, bp.Parameter, dynamo.ErrInvalidParameter)
	}
	if len(bp.Tangent) != n+1 || len(bp.State) != n {
		return nil, fmt.Errorf("bifurcation point of dimension %d for system of dimension %d: %w", len(bp.State), n, dynamo.ErrDimensionMismatch)
	}
	if perturbation == 0 {
		perturbation = params.SwitchPerturbation
	}

	x := bp.State.Add(dynamo.State(bp.Tangent[:n]).Scale(perturbation))
	sub := params
	sub.Start = bp.Parameter + perturbation*bp.Tangent[n]

	opts = append(opts[:len(opts):len(opts)], WithName("switched"))
	b, err := Arclength(sys, x, sub, opts...)
	if b == nil {
		return nil, err
	}

	out := newBranch("switched")
	out.Points = append(out.Points, b.Points...)
	out.Bifurcations = append(out.Bifurcations, b.Bifurcations...)
	out.Stats = b.Stats
	out.Stats.BranchSwitches = 1
	return out, err
}
