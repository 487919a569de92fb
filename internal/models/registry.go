package models

import (
	"fmt"
	"maps"
	"slices"

	"github.com/san-kum/bifsim/internal/dynamo"
)

type Registry struct {
	models map[string]func() Model
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]func() Model)}

	r.models["fold"] = func() Model { return NewFold() }
	r.models["transcritical"] = func() Model { return NewTranscritical() }
	r.models["pitchfork"] = func() Model { return NewPitchfork() }
	r.models["hopf"] = func() Model { return NewHopfNormal() }
	r.models["lorenz"] = func() Model { return NewLorenz() }
	r.models["fitzhugh"] = func() Model { return NewFitzHugh() }
	r.models["brusselator"] = func() Model { return NewBrusselator() }
	r.models["pendulum"] = func() Model { return NewPendulum() }
	r.models["duffing"] = func() Model { return NewDuffing() }
	r.models["vanderpol"] = func() Model { return NewVanDerPol() }

	return r
}

// Get returns a fresh instance of the named model.
func (r *Registry) Get(name string) (Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q: %w", name, dynamo.ErrInvalidParameter)
	}
	return fn(), nil
}

func (r *Registry) List() []string {
	return slices.Sorted(maps.Keys(r.models))
}

// Configure builds the named model with overrides applied.
func (r *Registry) Configure(name string, overrides map[string]float64) (Model, error) {
	m, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	for _, k := range slices.Sorted(maps.Keys(overrides)) {
		if err := m.SetParam(k, overrides[k]); err != nil {
			return nil, fmt.Errorf("model %s: %w", name, err)
		}
	}
	return m, nil
}
