package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/viz"
)

// At 72 dpi one vg point is one pixel.
const dpi = 72

const (
	// tickSize is half the length of an axis tick in scene units.
	tickSize = 0.1
	// strokeUnit converts a stroke width into scene units.
	strokeUnit = 0.01
)

type Options struct {
	Width       int
	Height      int
	Supersample int
	Background  color.RGBA
}

func DefaultOptions() Options {
	return Options{Width: 1280, Height: 720, Supersample: 2, Background: scene.Black}
}

func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("frame size %dx%d must be positive", o.Width, o.Height)
	}
	if o.Supersample < 1 || o.Supersample > 8 {
		return fmt.Errorf("supersample %d out of range [1, 8]", o.Supersample)
	}
	return nil
}

// Rasterizer turns frame states of one scene into images. It holds no
// mutable state, so Frame may be called from several goroutines.
type Rasterizer struct {
	sc   *scene.Scene
	opts Options
}

func NewRasterizer(sc *scene.Scene, opts Options) (*Rasterizer, error) {
	if sc == nil {
		return nil, fmt.Errorf("rasterizer needs a scene")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Rasterizer{sc: sc, opts: opts}, nil
}

func (r *Rasterizer) Options() Options { return r.opts }

// Frame renders fs at Width x Height. Drawing happens at Supersample times
// the resolution and is filtered down.
func (r *Rasterizer) Frame(fs scene.FrameState) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	r.FrameInto(dst, fs)
	return dst
}

// FrameInto is Frame writing into a caller-owned image of the configured
// size.
func (r *Rasterizer) FrameInto(dst *image.RGBA, fs scene.FrameState) {
	ss := r.opts.Supersample
	w, h := r.opts.Width*ss, r.opts.Height*ss

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(w), vg.Length(h)),
		vgimg.UseDPI(dpi),
		vgimg.UseBackgroundColor(r.opts.Background),
	)
	r.Draw(c, fs, float64(w), float64(h))

	src := c.Image()
	if ss == 1 {
		xdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, xdraw.Src)
		return
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
}

// Draw paints fs onto any vg canvas of w x h points. The canvas origin is
// the bottom-left corner.
func (r *Rasterizer) Draw(c vg.Canvas, fs scene.FrameState, w, h float64) {
	c.SetColor(r.opts.Background)
	c.Fill(rect(w, h))

	proj := viz.NewProjector(fs.Pose, int(w), int(h))
	// stroke widths follow the frame height, not the zoom
	strokePx := func(width float64) vg.Length {
		return vg.Length(math.Max(1, width*strokeUnit*h/viz.FrameHeight))
	}

	if fs.ShowAxes {
		c.SetColor(fs.Axes.Color)
		c.SetLineWidth(strokePx(fs.Axes.StrokeWidth))
		c.Stroke(axesPath(proj, fs.Axes, h))
	}

	if fs.ShowPath {
		pts := scene.PartialPath(r.sc.Path, fs.Progress)
		if len(pts) < 2 {
			return
		}
		c.SetColor(fs.PathColor)
		c.SetLineWidth(strokePx(fs.PathWidth))
		c.Stroke(smoothPath(proj, pts, h))
	}
}

func rect(w, h float64) vg.Path {
	var p vg.Path
	p.Move(vg.Point{})
	p.Line(vg.Point{X: vg.Length(w)})
	p.Line(vg.Point{X: vg.Length(w), Y: vg.Length(h)})
	p.Line(vg.Point{Y: vg.Length(h)})
	p.Close()
	return p
}

// toCanvas flips a top-left pixel position into vg coordinates.
func toCanvas(x, y, h float64) vg.Point {
	return vg.Point{X: vg.Length(x), Y: vg.Length(h - y)}
}

func axesPath(proj *viz.Projector, axes scene.Axes, h float64) vg.Path {
	var p vg.Path
	segment := func(a, b r3.Vec) {
		ax, ay, _, okA := proj.Project(a)
		bx, by, _, okB := proj.Project(b)
		if !okA || !okB {
			return
		}
		p.Move(toCanvas(ax, ay, h))
		p.Line(toCanvas(bx, by, h))
	}

	for _, l := range axes.Lines() {
		segment(l[0], l[1])
	}

	// x ticks run along y, y and z ticks along x
	across := [3]r3.Vec{{Y: tickSize}, {X: tickSize}, {X: tickSize}}
	for axis := range 3 {
		for _, t := range axes.TickPoints(axis) {
			segment(r3.Sub(t, across[axis]), r3.Add(t, across[axis]))
		}
	}
	return p
}

// smoothPath projects pts and joins them with Catmull-Rom splines expressed
// as cubic Béziers. Points behind the eye break the curve.
func smoothPath(proj *viz.Projector, pts []r3.Vec, h float64) vg.Path {
	var p vg.Path
	run := make([]vg.Point, 0, len(pts))
	flush := func() {
		appendSpline(&p, run)
		run = run[:0]
	}
	for _, v := range pts {
		x, y, _, ok := proj.Project(v)
		if !ok {
			flush()
			continue
		}
		run = append(run, toCanvas(x, y, h))
	}
	flush()
	return p
}

func appendSpline(p *vg.Path, pts []vg.Point) {
	if len(pts) < 2 {
		return
	}
	p.Move(pts[0])
	last := len(pts) - 1
	for i := 0; i < last; i++ {
		p0 := pts[max(i-1, 0)]
		p1, p2 := pts[i], pts[i+1]
		p3 := pts[min(i+2, last)]
		c1 := p1.Add(p2.Sub(p0).Scale(1.0 / 6))
		c2 := p2.Sub(p3.Sub(p1).Scale(1.0 / 6))
		p.CubeTo(c1, c2, p2)
	}
}
