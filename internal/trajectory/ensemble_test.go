package trajectory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/integrators"
	"github.com/san-kum/lorenzsim/internal/physics"
)

func TestPerturb(t *testing.T) {
	got := Perturb(dynamo.State{1, 2, 3}, 3, 0, 0.5)
	want := []dynamo.State{{1, 2, 3}, {1.5, 2, 3}, {2, 2, 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Perturb mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsembleMatchesSequential(t *testing.T) {
	ctx := context.Background()
	s := NewSampler(physics.NewLorenz(), integrators.Options{})
	starts := Perturb(dynamo.State{10, 10, 10}, 4, 0, 1e-3)

	got, err := NewEnsemble(s, 2).Run(ctx, starts, 2, 0.01)
	require.NoError(t, err)
	require.Len(t, got, len(starts))

	for i, x0 := range starts {
		want, err := s.Sample(ctx, x0, 2, 0.01)
		require.NoError(t, err)
		if diff := cmp.Diff(want.Points, got[i].Points); diff != "" {
			t.Errorf("member %d differs from sequential run (-want +got):\n%s", i, diff)
		}
	}
}

func TestEnsembleFailureAborts(t *testing.T) {
	s := NewSampler(physics.NewLorenz(), integrators.Options{})
	starts := []dynamo.State{{10, 10, 10}, {1, 1}}

	_, err := NewEnsemble(s, 4).Run(context.Background(), starts, 1, 0.01)
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
	assert.ErrorContains(t, err, "member 1")
}

// Fixed-step integrators keep scratch buffers; concurrent members must not
// share them. Run with -race to also catch the data race itself.
func TestEnsembleFixedStepMatchesSequential(t *testing.T) {
	ctx := context.Background()
	newRK4, err := integrators.Factory("rk4")
	require.NoError(t, err)
	s := &Sampler{System: physics.NewLorenz(), NewIntegrator: newRK4}
	starts := Perturb(dynamo.State{10, 10, 10}, 8, 0, 1e-6)

	want := make([]*Trajectory, len(starts))
	for i, x0 := range starts {
		want[i], err = s.Sample(ctx, x0, 5, 0.01)
		require.NoError(t, err)
	}

	for round := range 5 {
		got, err := NewEnsemble(s, 8).Run(ctx, starts, 5, 0.01)
		require.NoError(t, err)
		for i := range starts {
			if diff := cmp.Diff(want[i].Points, got[i].Points); diff != "" {
				t.Fatalf("round %d member %d differs from sequential run (-want +got):\n%s", round, i, diff)
			}
		}
	}
}
