package integrators

import "github.com/san-kum/phaseportrait/internal/dynamo"

// Euler is the one-stage explicit method x + dt·f(x, t).
type Euler struct {
	s stages
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	e.s.reset(len(x), 1)
	e.s.eval(dyn, x, u, t, dt, 0, 0)
	return e.s.combine(x, dt, 1)
}
