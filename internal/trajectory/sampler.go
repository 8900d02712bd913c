package trajectory

import (
	"context"
	"fmt"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/integrators"
	"github.com/san-kum/lorenzsim/internal/telemetry"
)

// Sampler produces trajectories of a system on a uniform time grid.
//
// With a nil NewIntegrator the adaptive Dormand-Prince driver is used and
// the grid is filled from its dense output, so the internal step sizes
// never leak into the samples. Otherwise every Sample call builds its own
// fixed-step integrator, which advances exactly one grid interval per step;
// that mode exists to compare methods. Integrators keep scratch state, so
// one value is never shared between concurrent samples.
type Sampler struct {
	System        dynamo.System
	NewIntegrator func() dynamo.Integrator
	Options       integrators.Options
}

func NewSampler(dyn dynamo.System, opts integrators.Options) *Sampler {
	return &Sampler{System: dyn, Options: opts}
}

// Sample integrates from x0 over [0, duration] and returns the states at
// i*dt for i in [0, floor(duration/dt)).
func (s *Sampler) Sample(ctx context.Context, x0 dynamo.State, duration, dt float64) (*Trajectory, error) {
	times, err := Grid(duration, dt)
	if err != nil {
		return nil, err
	}
	if len(x0) != s.System.StateDim() {
		return nil, fmt.Errorf("%w: initial state has %d components, want %d", dynamo.ErrDimensionMismatch, len(x0), s.System.StateDim())
	}
	if !x0.IsValid() {
		return nil, fmt.Errorf("initial state %v: %w", x0, dynamo.ErrInvalidState)
	}

	logger := telemetry.FromContext(ctx)
	if s.NewIntegrator != nil {
		return s.sampleFixed(ctx, s.NewIntegrator(), x0, times, dt)
	}

	sol, err := integrators.Solve(ctx, s.System, x0, 0, duration, times, s.Options)
	if err != nil {
		return nil, fmt.Errorf("integrate: %w", err)
	}
	if len(sol.States) != len(times) {
		return nil, fmt.Errorf("solver returned %d samples, want %d", len(sol.States), len(times))
	}

	logger.Debug("trajectory sampled",
		"points", len(times),
		"accepted", sol.Stats.Accepted,
		"rejected", sol.Stats.Rejected,
		"evaluations", sol.Stats.Evaluations,
	)

	return &Trajectory{
		Times:  times,
		Points: sol.States,
		Dt:     dt,
		Stats:  sol.Stats,
	}, nil
}

func (s *Sampler) sampleFixed(ctx context.Context, integ dynamo.Integrator, x0 dynamo.State, times []float64, dt float64) (*Trajectory, error) {
	tr := &Trajectory{
		Times:  times,
		Points: make([]dynamo.State, 0, len(times)),
		Dt:     dt,
	}

	x := x0.Clone()
	for i, t := range times {
		select {
		case <-ctx.Done():
			return nil, &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())}
		default:
		}

		if !x.IsValid() {
			return nil, &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: dynamo.ErrInvalidState}
		}
		tr.Points = append(tr.Points, x)
		tr.Stats.Accepted++

		if i+1 < len(times) {
			x = integ.Step(s.System, x, t, dt)
		}
	}
	tr.Stats.LastStep = dt
	return tr, nil
}
