package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/phantomgo/internal/dynamo"
)

var constructors = map[string]func() dynamo.Integrator{
	"rk4":      func() dynamo.Integrator { return NewRK4() },
	"euler":    func() dynamo.Integrator { return NewEuler() },
	"verlet":   func() dynamo.Integrator { return NewVerlet() },
	"leapfrog": func() dynamo.Integrator { return NewLeapfrog() },
}

// New returns a fresh integrator by name. Integrators keep scratch
// buffers, so each stepping loop needs its own.
func New(name string) (dynamo.Integrator, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q: %w", name, dynamo.ErrParameterBounds)
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
