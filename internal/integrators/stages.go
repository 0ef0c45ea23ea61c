package integrators

import "github.com/san-kum/phaseportrait/internal/dynamo"

// stages evaluates the rows of an explicit Runge-Kutta tableau. k[i]
// holds the slice returned by Derive, so systems must not reuse their
// output buffer between calls.
type stages struct {
	k   []dynamo.State
	tmp dynamo.State
}

func (s *stages) reset(n, count int) {
	if len(s.k) != count {
		s.k = make([]dynamo.State, count)
	}
	if len(s.tmp) != n {
		s.tmp = make(dynamo.State, n)
	}
}

// eval sets k[i] = f(x + dt·Σ a[j]·k[j], t + c·dt).
func (s *stages) eval(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64, i int, c float64, a ...float64) {
	for m := range x {
		sum := 0.0
		for j, aj := range a {
			if aj != 0 {
				sum += aj * s.k[j][m]
			}
		}
		s.tmp[m] = x[m] + dt*sum
	}
	s.k[i] = dyn.Derive(s.tmp, u, t+c*dt)
}

// combine returns x + dt·Σ b[j]·k[j] as a new state.
func (s *stages) combine(x dynamo.State, dt float64, b ...float64) dynamo.State {
	out := make(dynamo.State, len(x))
	for m := range x {
		sum := 0.0
		for j, bj := range b {
			if bj != 0 {
				sum += bj * s.k[j][m]
			}
		}
		out[m] = x[m] + dt*sum
	}
	return out
}
