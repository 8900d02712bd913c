package trajectory

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/integrators"
)

// Trajectory is a solution sampled on a uniform grid: Points[i] is the
// state at Times[i] = i*Dt.
type Trajectory struct {
	Times  []float64
	Points []dynamo.State
	Dt     float64
	Stats  integrators.Stats
}

func (tr *Trajectory) Len() int { return len(tr.Points) }

// Duration is the time of the last sample.
func (tr *Trajectory) Duration() float64 {
	if len(tr.Times) == 0 {
		return 0
	}
	return tr.Times[len(tr.Times)-1]
}

// Vec returns point i as a 3-D vector. Components beyond the third are
// ignored and missing ones are zero.
func (tr *Trajectory) Vec(i int) r3.Vec {
	var v [3]float64
	copy(v[:], tr.Points[i])
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Component extracts one coordinate of every point.
func (tr *Trajectory) Component(axis int) []float64 {
	out := make([]float64, tr.Len())
	for i, p := range tr.Points {
		if axis < len(p) {
			out[i] = p[axis]
		}
	}
	return out
}

// Bounds returns the axis-aligned box enclosing every point.
func (tr *Trajectory) Bounds() r3.Box {
	if tr.Len() == 0 {
		return r3.Box{}
	}
	lo := r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := range tr.Points {
		v := tr.Vec(i)
		lo = r3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
		hi = r3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
	}
	return r3.Box{Min: lo, Max: hi}
}

// Final returns a copy of the last state.
func (tr *Trajectory) Final() dynamo.State {
	if tr.Len() == 0 {
		return nil
	}
	return tr.Points[tr.Len()-1].Clone()
}
