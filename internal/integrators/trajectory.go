package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Trajectory holds states sampled at uniform times.
type Trajectory struct {
	Times  []float64
	States []dynamo.State
}

func (t Trajectory) Last() dynamo.State {
	if len(t.States) == 0 {
		return nil
	}
	return t.States[len(t.States)-1]
}

// Component returns the samples of state component i.
func (t Trajectory) Component(i int) []float64 {
	out := make([]float64, len(t.States))
	for k, x := range t.States {
		out[k] = x[i]
	}
	return out
}

// Integrate steps x0 under sys at fixed p for duration and returns every
// sample including x0. The run stops with ErrInvalidState if the state
// overflows.
func Integrate(integ Integrator, sys dynamo.System, x0 dynamo.State, p, dt, duration float64) (Trajectory, error) {
	if dt <= 0 || duration < 0 {
		return Trajectory{}, fmt.Errorf("dt=%g duration=%g: %w", dt, duration, dynamo.ErrInvalidParameter)
	}
	if len(x0) != sys.Dim() {
		return Trajectory{}, fmt.Errorf("state has %d components, system has %d: %w", len(x0), sys.Dim(), dynamo.ErrDimensionMismatch)
	}

	steps := int(math.Round(duration / dt))
	tr := Trajectory{
		Times:  make([]float64, 0, steps+1),
		States: make([]dynamo.State, 0, steps+1),
	}
	tr.Times = append(tr.Times, 0)
	tr.States = append(tr.States, x0.Clone())

	x := x0.Clone()
	for i := 1; i <= steps; i++ {
		x = integ.Step(sys, x, p, dt)
		if !x.IsValid() {
			return tr, fmt.Errorf("t=%g: %w", float64(i)*dt, dynamo.ErrInvalidState)
		}
		tr.Times = append(tr.Times, float64(i)*dt)
		tr.States = append(tr.States, x)
	}
	return tr, nil
}
