package trajectory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/integrators"
	"github.com/san-kum/lorenzsim/internal/physics"
)

func TestGridSize(t *testing.T) {
	tests := []struct {
		duration, dt float64
		want         int
	}{
		{10, 0.01, 1000},
		{0.3, 0.1, 3},
		{1, 0.3, 3},
		{1, 1, 1},
		{30, 0.01, 3000},
	}
	for _, tt := range tests {
		n, err := GridSize(tt.duration, tt.dt)
		require.NoError(t, err)
		assert.Equal(t, tt.want, n, "GridSize(%v, %v)", tt.duration, tt.dt)
	}
}

func TestGridSizeRejectsBadInput(t *testing.T) {
	for _, tc := range [][2]float64{
		{0, 0.01},
		{-1, 0.01},
		{10, 0},
		{10, -0.1},
		{1, 2},
		{math.Inf(1), 0.1},
		{10, math.NaN()},
	} {
		_, err := GridSize(tc[0], tc[1])
		assert.ErrorIs(t, err, dynamo.ErrParameterBounds, "GridSize(%v, %v)", tc[0], tc[1])
	}
}

func TestSampleLengthAndSpacing(t *testing.T) {
	s := NewSampler(physics.NewLorenz(), integrators.Options{})

	tr, err := s.Sample(context.Background(), dynamo.State{10, 10, 10}, 10, 0.01)
	require.NoError(t, err)

	require.Equal(t, 1000, tr.Len())
	require.Len(t, tr.Times, 1000)
	assert.Equal(t, dynamo.State{10, 10, 10}, tr.Points[0])
	for i := 1; i < tr.Len(); i++ {
		assert.InDelta(t, 0.01, tr.Times[i]-tr.Times[i-1], 1e-12)
	}
	for i, p := range tr.Points {
		require.True(t, p.IsValid(), "sample %d invalid", i)
	}
	assert.Positive(t, tr.Stats.Accepted)
	assert.Positive(t, tr.Stats.Evaluations)
}

func TestSampleStaysOnAttractor(t *testing.T) {
	s := NewSampler(physics.NewLorenz(), integrators.Options{})

	tr, err := s.Sample(context.Background(), dynamo.State{10, 10, 10}, 30, 0.01)
	require.NoError(t, err)

	box := tr.Bounds()
	assert.Greater(t, box.Min.X, -30.0)
	assert.Less(t, box.Max.X, 30.0)
	assert.Greater(t, box.Min.Z, 0.0)
	assert.Less(t, box.Max.Z, 60.0)
}

func TestSensitiveDependence(t *testing.T) {
	const eps = 1e-6
	s := NewSampler(physics.NewLorenz(), integrators.Options{})
	ctx := context.Background()

	a, err := s.Sample(ctx, dynamo.State{10, 10, 10}, 30, 0.01)
	require.NoError(t, err)
	b, err := s.Sample(ctx, dynamo.State{10 + eps, 10, 10}, 30, 0.01)
	require.NoError(t, err)

	sep := func(i int) float64 { return a.Points[i].Distance(b.Points[i]) }

	assert.Less(t, sep(100), 1e-3, "trajectories separated too early")

	var late float64
	for i := 2000; i < a.Len(); i++ {
		late = math.Max(late, sep(i))
	}
	assert.Greater(t, late, 1.0, "perturbation never grew")

	// Growth cannot outpace the largest Lyapunov exponent (about 0.9) by much.
	for i := 500; i < a.Len(); i++ {
		rate := math.Log(sep(i)/eps) / a.Times[i]
		require.Less(t, rate, 1.5, "divergence rate %v at t=%v", rate, a.Times[i])
	}
}

func TestToleranceConsistency(t *testing.T) {
	ctx := context.Background()
	x0 := dynamo.State{10, 10, 10}

	loose, err := NewSampler(physics.NewLorenz(), integrators.Options{}).Sample(ctx, x0, 1, 0.01)
	require.NoError(t, err)

	tight, err := NewSampler(physics.NewLorenz(), integrators.Options{
		Tolerance: dynamo.Tolerance{Abs: 1e-13, Rel: 1e-11},
	}).Sample(ctx, x0, 1, 0.01)
	require.NoError(t, err)

	for i := range loose.Points {
		assert.Less(t, loose.Points[i].Distance(tight.Points[i]), 1e-4, "sample %d", i)
	}
}

func TestFixedStepAgreesWithAdaptive(t *testing.T) {
	ctx := context.Background()
	x0 := dynamo.State{10, 10, 10}

	adaptive, err := NewSampler(physics.NewLorenz(), integrators.Options{}).Sample(ctx, x0, 1, 0.01)
	require.NoError(t, err)

	fixed := &Sampler{System: physics.NewLorenz(), NewIntegrator: func() dynamo.Integrator { return integrators.NewRK4() }}
	rk4, err := fixed.Sample(ctx, x0, 1, 0.01)
	require.NoError(t, err)

	require.Equal(t, adaptive.Len(), rk4.Len())
	for i := range rk4.Points {
		assert.Less(t, rk4.Points[i].Distance(adaptive.Points[i]), 1e-2, "sample %d", i)
	}
}

func TestSampleErrors(t *testing.T) {
	ctx := context.Background()
	lorenz := physics.NewLorenz()

	t.Run("dt exceeds duration", func(t *testing.T) {
		_, err := NewSampler(lorenz, integrators.Options{}).Sample(ctx, dynamo.State{1, 1, 1}, 1, 2)
		assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
	})

	t.Run("wrong dimension", func(t *testing.T) {
		_, err := NewSampler(lorenz, integrators.Options{}).Sample(ctx, dynamo.State{1, 1}, 1, 0.1)
		assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
	})

	t.Run("non-finite start", func(t *testing.T) {
		_, err := NewSampler(lorenz, integrators.Options{}).Sample(ctx, dynamo.State{1, math.Inf(1), 1}, 1, 0.1)
		assert.ErrorIs(t, err, dynamo.ErrInvalidState)
	})

	t.Run("step budget", func(t *testing.T) {
		_, err := NewSampler(lorenz, integrators.Options{MaxSteps: 5}).Sample(ctx, dynamo.State{10, 10, 10}, 10, 0.01)
		require.ErrorIs(t, err, dynamo.ErrMaxSteps)

		var simErr *dynamo.SimulationError
		require.True(t, errors.As(err, &simErr))
		assert.Equal(t, 5, simErr.Step)
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewSampler(lorenz, integrators.Options{}).Sample(cctx, dynamo.State{10, 10, 10}, 10, 0.01)
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, dynamo.ErrContextCanceled)
	})

	t.Run("fixed step blow-up", func(t *testing.T) {
		s := &Sampler{System: lorenz, NewIntegrator: func() dynamo.Integrator { return integrators.NewEuler() }}
		_, err := s.Sample(ctx, dynamo.State{10, 10, 10}, 10, 0.5)
		assert.ErrorIs(t, err, dynamo.ErrInvalidState)
	})
}
