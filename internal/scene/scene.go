package scene

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// Scene couples a compiled timeline with the path it animates, already
// mapped into scene coordinates.
type Scene struct {
	Timeline *Timeline
	Axes     Axes
	Path     []r3.Vec
}

// New maps the trajectory through the axes declared by the script and
// compiles the script.
func New(tr *trajectory.Trajectory, script []Action) (*Scene, error) {
	if tr == nil || tr.Len() < 2 {
		return nil, fmt.Errorf("scene needs a trajectory with at least two points")
	}

	tl, err := Compile(script)
	if err != nil {
		return nil, fmt.Errorf("compile scene: %w", err)
	}

	axes := LorenzAxes()
	for _, a := range script {
		if add, ok := a.(AddAxes); ok {
			axes = add.Axes
		}
	}

	path := make([]r3.Vec, tr.Len())
	for i := range path {
		path[i] = axes.C2P(tr.Vec(i))
	}

	return &Scene{Timeline: tl, Axes: axes, Path: path}, nil
}

// NewLorenz builds the attractor animation for tr, drawing the path over
// as many seconds as the trajectory spans.
func NewLorenz(tr *trajectory.Trajectory, evolution float64) (*Scene, error) {
	return New(tr, LorenzScript(evolution))
}

// PartialPath returns the leading fraction of path covered at progress in
// [0, 1]. The last point is interpolated so drawing advances smoothly
// between samples.
func PartialPath(path []r3.Vec, progress float64) []r3.Vec {
	progress = clamp01(progress)
	if len(path) < 2 || progress == 0 {
		return nil
	}
	if progress == 1 {
		return path
	}

	pos := progress * float64(len(path)-1)
	k := int(pos)
	frac := pos - float64(k)

	out := make([]r3.Vec, k+2)
	copy(out, path[:k+1])
	out[k+1] = r3.Add(path[k], r3.Scale(frac, r3.Sub(path[k+1], path[k])))
	return out
}
