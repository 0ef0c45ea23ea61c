// Package dynamo provides the core primitives shared by the phase portrait
// pipeline.
//
// The package defines the fundamental interfaces and types for numerical
// integration of autonomous ordinary differential equations:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [AdaptiveIntegrator]: error-controlled integrator interface
//   - [Metric] and [Observer]: hooks fed every recorded trajectory sample
//
// # Example
//
//	dyn := physics.NewSpiralSink()
//	sim := sim.New(dyn, integrators.NewRK45())
//	result, err := sim.Run(ctx, dynamo.State{-1, -1}, times, dynamo.DefaultConfig())
//
// # Errors
//
// Every integration failure matches [ErrIntegrationFailed] through
// errors.Is, so callers never have to inspect states for NaN.
package dynamo
