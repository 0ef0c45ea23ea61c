// Package sim integrates a dynamo.System over a caller-supplied sequence of
// sample times.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/phaseportrait/internal/dynamo"
)

type Simulator struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(dyn dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 at times[0] and records one state per sample.
// Adaptive integrators are driven with error control and clipped to land
// on every sample; fixed-step integrators take cfg.Substeps uniform steps
// between consecutive samples. Any solver failure is returned as a
// *dynamo.SimulationError matching dynamo.ErrIntegrationFailed.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, times []float64, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := validateTimes(times); err != nil {
		return nil, err
	}
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("sim: %w: state has %d entries, system expects %d", dynamo.ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	if !x0.IsValid() {
		return nil, &dynamo.SimulationError{Step: 0, Time: times[0], State: x0.Clone(), Wrapped: dynamo.ErrInvalidState}
	}

	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, len(times)),
		Times:   make([]float64, 0, len(times)),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	s.record(result, x, times[0])

	w := &walker{sim: s, cfg: cfg, dt: cfg.Dt, result: result}
	adaptive, isAdaptive := s.integrator.(dynamo.AdaptiveIntegrator)

	for k := 1; k < len(times); k++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var err error
		if isAdaptive {
			x, err = w.advanceAdaptive(adaptive, x, times[k-1], times[k])
		} else {
			x, err = w.advanceFixed(x, times[k-1], times[k])
		}
		if err != nil {
			return nil, err
		}

		s.record(result, x, times[k])
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) record(result *dynamo.Result, x dynamo.State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, nil, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, nil, t)
	}
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
}

func (s *Simulator) validateConfig(cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Substeps <= 0 {
		return fmt.Errorf("substeps must be positive, got %d", cfg.Substeps)
	}
	if cfg.Tolerance.Abs < 0 || cfg.Tolerance.Rel < 0 || cfg.Tolerance.Abs+cfg.Tolerance.Rel <= 0 {
		return fmt.Errorf("tolerance must be positive, got abs=%g rel=%g", cfg.Tolerance.Abs, cfg.Tolerance.Rel)
	}
	if cfg.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", cfg.MaxSteps)
	}
	return nil
}

func validateTimes(times []float64) error {
	if len(times) == 0 {
		return dynamo.ErrInvalidTimes
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: sample %d is %v", dynamo.ErrInvalidTimes, i, t)
		}
		if i > 0 && t <= times[i-1] {
			return fmt.Errorf("%w: sample %d (%g) does not follow %g", dynamo.ErrInvalidTimes, i, t, times[i-1])
		}
	}
	return nil
}

// walker carries step-size state across sample intervals.
type walker struct {
	sim    *Simulator
	cfg    dynamo.Config
	dt     float64
	steps  int
	result *dynamo.Result
}

func (w *walker) fail(t float64, x dynamo.State, cause error) error {
	return &dynamo.SimulationError{Step: w.steps, Time: t, State: x.Clone(), Wrapped: cause}
}

func (w *walker) budget(t float64, x dynamo.State) error {
	if w.result.StepsTaken+w.result.Rejected >= w.cfg.MaxSteps {
		return w.fail(t, x, dynamo.ErrTooManySteps)
	}
	return nil
}

func (w *walker) advanceAdaptive(integ dynamo.AdaptiveIntegrator, x dynamo.State, t, target float64) (dynamo.State, error) {
	for t < target {
		if err := w.budget(t, x); err != nil {
			return nil, err
		}

		h := w.dt
		if w.cfg.MaxDt > 0 && h > w.cfg.MaxDt {
			h = w.cfg.MaxDt
		}
		clipped := false
		if t+h >= target {
			h = target - t
			clipped = true
		}

		xNew, dtNew, err := integ.StepAdaptive(w.sim.dyn, x, nil, t, h, w.cfg.Tolerance)
		if errors.Is(err, dynamo.ErrStepRejected) {
			w.result.Rejected++
			w.dt = dtNew
			if w.dt < w.cfg.MinDt || t+w.dt == t {
				return nil, w.fail(t, x, dynamo.ErrStepTooSmall)
			}
			continue
		}
		if err != nil {
			return nil, w.fail(t, x, fmt.Errorf("%w: %v", dynamo.ErrIntegrationFailed, err))
		}
		if !xNew.IsValid() {
			return nil, w.fail(t, x, dynamo.ErrInvalidState)
		}

		x = xNew
		w.steps++
		w.result.StepsTaken++
		if clipped {
			t = target
			// A clipped step says little about the natural step size; only
			// let it shrink dt, never grow it.
			if dtNew < w.dt {
				w.dt = dtNew
			}
		} else {
			t += h
			w.dt = dtNew
		}
	}
	return x, nil
}

func (w *walker) advanceFixed(x dynamo.State, t, target float64) (dynamo.State, error) {
	n := w.cfg.Substeps
	h := (target - t) / float64(n)
	for i := 0; i < n; i++ {
		if err := w.budget(t, x); err != nil {
			return nil, err
		}
		ti := t + float64(i)*h
		x = w.sim.integrator.Step(w.sim.dyn, x, nil, ti, h)
		w.steps++
		w.result.StepsTaken++
		if !x.IsValid() {
			return nil, w.fail(ti+h, x, dynamo.ErrInvalidState)
		}
	}
	return x, nil
}
