package integrators

import "github.com/san-kum/phaseportrait/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method. It keeps its
// stage buffers between steps, so one value must not be shared across
// goroutines.
type RK4 struct {
	s stages
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.s.reset(len(x), 4)
	r.s.eval(dyn, x, u, t, dt, 0, 0)
	r.s.eval(dyn, x, u, t, dt, 1, 0.5, 0.5)
	r.s.eval(dyn, x, u, t, dt, 2, 0.5, 0, 0.5)
	r.s.eval(dyn, x, u, t, dt, 3, 1, 0, 0, 1)
	return r.s.combine(x, dt, 1.0/6, 1.0/3, 1.0/3, 1.0/6)
}
