package integrators

import (
	"fmt"
	"slices"
	"strings"

	"github.com/san-kum/bifsim/internal/dynamo"
)

var constructors = map[string]func() Integrator{
	"rk4":  func() Integrator { return NewRK4() },
	"rk45": func() Integrator { return NewRK45() },
}

// New returns a fresh integrator by name. Integrators keep scratch buffers,
// so each trajectory should get its own.
func New(name string) (Integrator, error) {
	fn, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q (have %v): %w", name, Names(), dynamo.ErrInvalidParameter)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
