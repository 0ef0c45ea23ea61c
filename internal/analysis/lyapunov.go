package analysis

import (
	"math"

	"github.com/san-kum/phaseportrait/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A negative value means nearby
// trajectories converge.
//
// The perturbed trajectory is renormalised back to the initial separation
// after every step, and λ ≈ (1/T) Σ ln(|δx_k| / |δx_0|).
func LyapunovExponent(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) float64 {
	if len(x0) == 0 || dt <= 0 || duration <= 0 || perturbation <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation
	d0 := perturbation

	ctrl := make(dynamo.Control, dyn.ControlDim())
	steps := int(math.Round(duration / dt))
	sumLog := 0.0

	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		x = integ.Step(dyn, x, ctrl, t, dt)
		xp = integ.Step(dyn, xp, ctrl, t, dt)

		sep := xp.Sub(x).Norm()
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			return math.NaN()
		}
		sumLog += math.Log(sep / d0)

		scale := d0 / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	if steps == 0 {
		return 0
	}
	return sumLog / (float64(steps) * dt)
}
