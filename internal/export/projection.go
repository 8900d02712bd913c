package export

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/san-kum/lorenzsim/internal/analysis"
)

var projectionBackground = color.RGBA{R: 0x0a, G: 0x0a, B: 0x0a, A: 0xff}

// ProjectionSVG draws points as one polyline fitted into a width x height
// SVG with 10% padding around the data.
func ProjectionSVG(w io.Writer, points []analysis.Point2, width, height float64, stroke color.Color) error {
	if len(points) < 2 {
		return fmt.Errorf("projection needs at least two points, got %d", len(points))
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	c := vgsvg.New(vg.Length(width), vg.Length(height))
	c.SetColor(projectionBackground)
	var bg vg.Path
	bg.Move(vg.Point{})
	bg.Line(vg.Point{X: vg.Length(width)})
	bg.Line(vg.Point{X: vg.Length(width), Y: vg.Length(height)})
	bg.Line(vg.Point{Y: vg.Length(height)})
	bg.Close()
	c.Fill(bg)

	// vg's origin is bottom-left, so y needs no flip
	var path vg.Path
	for i, p := range points {
		pt := vg.Point{
			X: vg.Length((p.X - minX) / rangeX * width),
			Y: vg.Length((p.Y - minY) / rangeY * height),
		}
		if i == 0 {
			path.Move(pt)
		} else {
			path.Line(pt)
		}
	}
	c.SetColor(stroke)
	c.SetLineWidth(vg.Points(1.5))
	c.Stroke(path)

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}
