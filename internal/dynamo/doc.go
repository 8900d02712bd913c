// Package dynamo provides core simulation primitives for the Lorenz pipeline.
//
// The package defines the fundamental interfaces and types shared by the
// solver, the sampler and the renderer:
//
//   - [State]: vector representing a point in phase space
//   - [System]: interface for autonomous ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Tolerance]: absolute/relative error bounds for adaptive stepping
//
// # Errors
//
// Integration failures wrap one of the sentinel errors ([ErrStepTooSmall],
// [ErrMaxSteps], [ErrInvalidState], ...) inside a [SimulationError] that
// records where the run stopped:
//
//	_, err := sampler.Sample(ctx, x0, 10, 0.01)
//	if errors.Is(err, dynamo.ErrStepTooSmall) {
//	    // tolerances too tight for float64
//	}
package dynamo
