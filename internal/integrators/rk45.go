package integrators

import (
	"math"

	"github.com/san-kum/phaseportrait/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

type RK45 struct {
	s        stages
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	newX, _, _ := r.StepAdaptive(dyn, x, u, t, dt, dynamo.Tolerance{Abs: 1e-9, Rel: 1e-6})
	return newX
}

// StepAdaptive advances one Dormand-Prince step and scores it with the
// embedded 4th-order solution. The error norm is the RMS of the per
// component error scaled by tol; a norm above 1 rejects the step.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64, tol dynamo.Tolerance) (dynamo.State, float64, error) {
	n := len(x)
	s := &r.s
	s.reset(n, 7)

	s.eval(dyn, x, u, t, dt, 0, 0)
	s.eval(dyn, x, u, t, dt, 1, a2, b21)
	s.eval(dyn, x, u, t, dt, 2, a3, b31, b32)
	s.eval(dyn, x, u, t, dt, 3, a4, b41, b42, b43)
	s.eval(dyn, x, u, t, dt, 4, a5, b51, b52, b53, b54)
	s.eval(dyn, x, u, t, dt, 5, 1, b61, b62, b63, b64, b65)
	xNew := s.combine(x, dt, c1, 0, c3, c4, c5, c6)

	// The embedded estimate also needs f at the new state.
	s.k[6] = dyn.Derive(xNew, u, t+dt)
	k := s.k

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k[0][i] + dc3*k[2][i] + dc4*k[3][i] + dc5*k[4][i] + dc6*k[5][i] + dc7*k[6][i])
		scale := tol.Abs + tol.Rel*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		if scale <= 0 {
			scale = 1e-300
		}
		e := errEst / scale
		sum += e * e
	}
	errNorm := 0.0
	if n > 0 {
		errNorm = math.Sqrt(sum / float64(n))
	}

	if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
		return xNew, dt * r.minScale, dynamo.ErrStepRejected
	}

	if errNorm > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
		return xNew, dt * scale, dynamo.ErrStepRejected
	}

	if errNorm == 0 {
		return xNew, dt * r.maxScale, nil
	}
	scale := math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	return xNew, dt * scale, nil
}
