package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

type Control []float64

// System is a right-hand side dX/dt = f(X, u, t). Autonomous systems
// ignore t; uncontrolled systems ignore u.
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// AdaptiveIntegrator takes one error-controlled step. It returns the
// candidate state, the suggested next dt and ErrStepRejected when the
// candidate must be discarded and the step retried with the suggested dt.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, u Control, t, dt float64, tol Tolerance) (State, float64, error)
}

// Tolerance is a mixed absolute/relative error bound per component:
// |err_i| <= Abs + Rel*max(|x_i|, |x_new_i|).
type Tolerance struct {
	Abs float64
	Rel float64
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

type Config struct {
	// Dt is the initial step for adaptive methods.
	Dt float64
	// Substeps is the number of uniform steps fixed-step methods take
	// between two consecutive samples.
	Substeps      int
	Tolerance     Tolerance
	MaxDt         float64
	MinDt         float64
	MaxSteps      int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1e-3,
		Substeps:      10,
		Tolerance:     Tolerance{Abs: 1e-10, Rel: 1e-8},
		MaxDt:         0.1,
		MinDt:         1e-12,
		MaxSteps:      100000,
		ValidateState: true,
	}
}

// Result is a trajectory sampled at the requested times.
type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Rejected   int
}

// Final returns the last recorded state, or nil for an empty result.
func (r *Result) Final() State {
	if r == nil || len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
