package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// Separation returns the Euclidean distance between a and b at every
// sample. Both trajectories must share the same grid.
func Separation(a, b *trajectory.Trajectory) ([]float64, error) {
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("%w: trajectories have %d and %d samples", dynamo.ErrDimensionMismatch, a.Len(), b.Len())
	}
	for i := range a.Times {
		if math.Abs(a.Times[i]-b.Times[i]) > 1e-9 {
			return nil, fmt.Errorf("%w: sample %d at t=%v and t=%v", dynamo.ErrDimensionMismatch, i, a.Times[i], b.Times[i])
		}
	}

	sep := make([]float64, a.Len())
	for i := range sep {
		sep[i] = a.Points[i].Distance(b.Points[i])
	}
	return sep, nil
}

// DivergenceRate is the finite-time growth rate log(sep/d0)/t at each
// sample. The entry at t=0 is zero.
func DivergenceRate(sep, times []float64, d0 float64) []float64 {
	rate := make([]float64, len(sep))
	for i := range sep {
		if times[i] <= 0 || sep[i] <= 0 {
			continue
		}
		rate[i] = math.Log(sep[i]/d0) / times[i]
	}
	return rate
}
