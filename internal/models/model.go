package models

import (
	"fmt"
	"maps"
	"slices"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Params maps parameter names to values.
type Params map[string]float64

type Model interface {
	dynamo.Configurable
	Name() string
	Vars() []string
	Dim() int

	// Eval returns dx/dt at x with the given parameters, which must name
	// every parameter of the model.
	Eval(x dynamo.State, p Params) dynamo.State

	// DefaultState is an equilibrium, or a close guess, at the current
	// parameters.
	DefaultState() dynamo.State
}

type JacobianModel interface {
	Model
	JacobianAt(x dynamo.State, p Params) [][]float64
}

type ParamDerivModel interface {
	Model

	// ParamDerivAt returns ∂F/∂name, or nil when the model has no
	// analytic form for that parameter.
	ParamDerivAt(x dynamo.State, p Params, name string) dynamo.State
}

// Bind returns the system x' = Eval(x, params with name = p) using a
// snapshot of the model's current parameters. Later SetParam calls on m do
// not affect the returned system. The system carries an analytic parameter
// derivative only when the model provides one for name.
func Bind(m Model, name string) (dynamo.System, error) {
	base := Params(m.GetParams())
	if _, ok := base[name]; !ok {
		return nil, fmt.Errorf("model %s has no parameter %q (have %v): %w", m.Name(), name, base.Names(), dynamo.ErrInvalidParameter)
	}

	with := func(p float64) Params {
		ps := maps.Clone(base)
		ps[name] = p
		return ps
	}

	f := &dynamo.Func{
		N: m.Dim(),
		F: func(x dynamo.State, p float64) dynamo.State { return m.Eval(x, with(p)) },
	}
	if jm, ok := m.(JacobianModel); ok {
		f.Jac = func(x dynamo.State, p float64) [][]float64 { return jm.JacobianAt(x, with(p)) }
	}
	if dm, ok := m.(ParamDerivModel); ok && dm.ParamDerivAt(m.DefaultState(), base, name) != nil {
		f.DP = func(x dynamo.State, p float64) dynamo.State { return dm.ParamDerivAt(x, with(p), name) }
	}
	return f.WithJacobians(), nil
}

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

// params is the parameter store shared by the built-in models.
type params struct {
	values Params
}

func (ps *params) GetParams() map[string]float64 { return maps.Clone(ps.values) }

func (ps *params) SetParam(name string, v float64) error {
	if _, ok := ps.values[name]; !ok {
		return fmt.Errorf("unknown parameter %q: %w", name, dynamo.ErrInvalidParameter)
	}
	ps.values[name] = v
	return nil
}
