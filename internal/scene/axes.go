package scene

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Range is a closed coordinate interval with a tick spacing.
type Range struct {
	Min, Max, Step float64
}

func (r Range) span() float64 { return r.Max - r.Min }

// origin is the coordinate the axis line is pinned at: zero when the range
// contains it, otherwise the nearer end.
func (r Range) origin() float64 {
	return math.Min(math.Max(0, r.Min), r.Max)
}

// Ticks returns the tick coordinates from Min to Max, both included.
func (r Range) Ticks() []float64 {
	if r.Step <= 0 || r.Max < r.Min {
		return nil
	}
	n := int(math.Floor(r.span()/r.Step+1e-9)) + 1
	ticks := make([]float64, n)
	for i := range ticks {
		ticks[i] = r.Min + float64(i)*r.Step
	}
	return ticks
}

// Axes is a three-dimensional coordinate system placed in the scene. Data
// coordinates in the X, Y, Z ranges map linearly onto lines of the given
// scene lengths. The x and y ranges are centred on the scene origin; the z
// axis rises from the point where x and y are pinned.
type Axes struct {
	X, Y, Z                   Range
	XLength, YLength, ZLength float64
	Color                     color.RGBA
	StrokeWidth               float64
}

var (
	Gray  = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	Blue  = color.RGBA{R: 0x58, G: 0xc4, B: 0xdd, A: 0xff}
	Green = color.RGBA{R: 0x83, G: 0xc1, B: 0x67, A: 0xff}
	Black = color.RGBA{A: 0xff}
)

// LorenzAxes frames the attractor: x and y in [-50, 50], z in [0, 50], all
// with ticks every 5 units.
func LorenzAxes() Axes {
	return Axes{
		X:           Range{Min: -50, Max: 50, Step: 5},
		Y:           Range{Min: -50, Max: 50, Step: 5},
		Z:           Range{Min: 0, Max: 50, Step: 5},
		XLength:     10.5,
		YLength:     10.5,
		ZLength:     6.5,
		Color:       Gray,
		StrokeWidth: 2,
	}
}

func (a Axes) scale() r3.Vec {
	return r3.Vec{X: a.XLength / a.X.span(), Y: a.YLength / a.Y.span(), Z: a.ZLength / a.Z.span()}
}

// C2P maps data coordinates to a scene point.
func (a Axes) C2P(v r3.Vec) r3.Vec {
	s := a.scale()
	midX := (a.X.Min + a.X.Max) / 2
	midY := (a.Y.Min + a.Y.Max) / 2
	return r3.Vec{
		X: (v.X - midX) * s.X,
		Y: (v.Y - midY) * s.Y,
		Z: (v.Z - a.Z.origin()) * s.Z,
	}
}

// Lines returns the scene endpoints of the x, y and z axis lines.
func (a Axes) Lines() [3][2]r3.Vec {
	ox, oy, oz := a.X.origin(), a.Y.origin(), a.Z.origin()
	return [3][2]r3.Vec{
		{a.C2P(r3.Vec{X: a.X.Min, Y: oy, Z: oz}), a.C2P(r3.Vec{X: a.X.Max, Y: oy, Z: oz})},
		{a.C2P(r3.Vec{X: ox, Y: a.Y.Min, Z: oz}), a.C2P(r3.Vec{X: ox, Y: a.Y.Max, Z: oz})},
		{a.C2P(r3.Vec{X: ox, Y: oy, Z: a.Z.Min}), a.C2P(r3.Vec{X: ox, Y: oy, Z: a.Z.Max})},
	}
}

// TickPoints returns the scene positions of the ticks on one axis
// (0 = x, 1 = y, 2 = z).
func (a Axes) TickPoints(axis int) []r3.Vec {
	o := r3.Vec{X: a.X.origin(), Y: a.Y.origin(), Z: a.Z.origin()}
	var (
		ticks []float64
		set   func(v *r3.Vec, t float64)
	)
	switch axis {
	case 0:
		ticks, set = a.X.Ticks(), func(v *r3.Vec, t float64) { v.X = t }
	case 1:
		ticks, set = a.Y.Ticks(), func(v *r3.Vec, t float64) { v.Y = t }
	case 2:
		ticks, set = a.Z.Ticks(), func(v *r3.Vec, t float64) { v.Z = t }
	default:
		return nil
	}

	pts := make([]r3.Vec, len(ticks))
	for i, t := range ticks {
		v := o
		set(&v, t)
		pts[i] = a.C2P(v)
	}
	return pts
}
