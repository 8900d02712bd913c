package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return NewEuler() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
	"rk45":  func() dynamo.Integrator { return NewRK45() },
}

// Get returns a fresh fixed-step integrator by name.
func Get(name string) (dynamo.Integrator, error) {
	fn, err := Factory(name)
	if err != nil {
		return nil, err
	}
	return fn(), nil
}

// Factory returns the constructor registered under name. Each call of the
// constructor yields an integrator with its own scratch buffers.
func Factory(name string) (func() dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
