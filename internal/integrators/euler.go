package integrators

import "github.com/san-kum/phantomgo/internal/dynamo"

type Euler struct {
	dx dynamo.State
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) {
	if len(e.dx) != len(x) {
		e.dx = make(dynamo.State, len(x))
	}
	dyn.Derive(x, u, t, e.dx)
	for i := range x {
		x[i] += dt * e.dx[i]
	}
}
