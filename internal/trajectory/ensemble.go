package trajectory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

// Ensemble samples one trajectory per initial state concurrently. Every
// member shares the sampler's system, so the system must be safe for
// concurrent Derive calls (Lorenz is). Fixed-step members each get their
// own integrator from the sampler's NewIntegrator.
type Ensemble struct {
	base    *Sampler
	workers int
}

func NewEnsemble(s *Sampler, workers int) *Ensemble {
	if workers < 1 {
		workers = 1
	}
	return &Ensemble{base: s, workers: workers}
}

// Run returns the trajectories in the order of starts. The first failure
// cancels the remaining members.
func (e *Ensemble) Run(ctx context.Context, starts []dynamo.State, duration, dt float64) ([]*Trajectory, error) {
	results := make([]*Trajectory, len(starts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, x0 := range starts {
		g.Go(func() error {
			tr, err := e.base.Sample(ctx, x0, duration, dt)
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			results[i] = tr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Perturb returns n copies of x0, the k-th shifted by k*eps along axis.
// The first copy is x0 itself.
func Perturb(x0 dynamo.State, n, axis int, eps float64) []dynamo.State {
	out := make([]dynamo.State, n)
	for k := range out {
		x := x0.Clone()
		if axis >= 0 && axis < len(x) {
			x[axis] += float64(k) * eps
		}
		out[k] = x
	}
	return out
}
