package analysis

import (
	"strings"

	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// Point2 is a point in a two-dimensional projection of phase space.
type Point2 struct{ X, Y float64 }

// Project returns the trajectory projected onto the coordinates xIdx and
// yIdx, or nil when either index is out of range.
func Project(tr *trajectory.Trajectory, xIdx, yIdx int) []Point2 {
	if tr.Len() == 0 || xIdx >= len(tr.Points[0]) || yIdx >= len(tr.Points[0]) {
		return nil
	}
	pts := make([]Point2, tr.Len())
	for i, p := range tr.Points {
		pts[i] = Point2{X: p[xIdx], Y: p[yIdx]}
	}
	return pts
}

// PoincareSection records where the trajectory crosses the plane
// x[crossIdx] = level going upwards, linearly interpolating between the two
// samples that straddle the plane.
func PoincareSection(tr *trajectory.Trajectory, crossIdx int, level float64, recordX, recordY int) []Point2 {
	if tr.Len() < 2 {
		return nil
	}
	dim := len(tr.Points[0])
	if crossIdx >= dim || recordX >= dim || recordY >= dim {
		return nil
	}

	var section []Point2
	for i := 1; i < tr.Len(); i++ {
		prev, curr := tr.Points[i-1], tr.Points[i]
		if !(prev[crossIdx] < level && curr[crossIdx] >= level) {
			continue
		}
		frac := (level - prev[crossIdx]) / (curr[crossIdx] - prev[crossIdx])
		section = append(section, Point2{
			X: prev[recordX] + frac*(curr[recordX]-prev[recordX]),
			Y: prev[recordY] + frac*(curr[recordY]-prev[recordY]),
		})
	}
	return section
}

// LocalMaxima returns the interior samples of data larger than both
// neighbours.
func LocalMaxima(data []float64) []float64 {
	var peaks []float64
	for i := 1; i+1 < len(data); i++ {
		if data[i] > data[i-1] && data[i] >= data[i+1] {
			peaks = append(peaks, data[i])
		}
	}
	return peaks
}

// ReturnMap pairs consecutive maxima of one coordinate, (z_n, z_n+1). For
// the Lorenz system on the z axis this is Lorenz's own tent-shaped map.
func ReturnMap(tr *trajectory.Trajectory, axis int) []Point2 {
	peaks := LocalMaxima(tr.Component(axis))
	if len(peaks) < 2 {
		return nil
	}
	pts := make([]Point2, len(peaks)-1)
	for i := range pts {
		pts[i] = Point2{X: peaks[i], Y: peaks[i+1]}
	}
	return pts
}

// ScatterToASCII plots points on a width x height character grid, padded by
// ten percent on each side, with the zero axes drawn where visible.
func ScatterToASCII(points []Point2, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, only where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
