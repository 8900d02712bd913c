package tui

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/viz"
)

// DrawFrame rasterizes the scene state at one instant onto a braille
// canvas. The canvas is cleared first.
func DrawFrame(c *viz.Canvas, sc *scene.Scene, fs scene.FrameState) {
	c.Clear()
	w, h := c.PixelSize()
	proj := viz.NewProjector(fs.Pose, w, h)

	line := func(ax, ay, bx, by float64, col lipgloss.Color) {
		// skip segments wildly off screen so Bresenham stays cheap
		limit := float64(4 * (w + h))
		if math.Abs(ax) > limit || math.Abs(ay) > limit || math.Abs(bx) > limit || math.Abs(by) > limit {
			return
		}
		c.DrawLine(int(math.Round(ax)), int(math.Round(ay)), int(math.Round(bx)), int(math.Round(by)), col)
	}

	if fs.ShowAxes {
		axisColor := viz.Hex(fs.Axes.Color)
		for _, l := range fs.Axes.Lines() {
			ax, ay, _, okA := proj.Project(l[0])
			bx, by, _, okB := proj.Project(l[1])
			if okA && okB {
				line(ax, ay, bx, by, axisColor)
			}
		}
	}

	if !fs.ShowPath {
		return
	}
	pathColor := viz.Hex(fs.PathColor)
	pts := scene.PartialPath(sc.Path, fs.Progress)
	var px, py float64
	prevOK := false
	for _, p := range pts {
		x, y, _, ok := proj.Project(p)
		if ok && prevOK {
			line(px, py, x, y, pathColor)
		}
		px, py, prevOK = x, y, ok
	}
}
