package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// FocalDistance is the distance from the eye to the focal plane in
	// scene units; points at or behind the eye are not drawn.
	FocalDistance = 20.0
	// FrameHeight is the visible height of the focal plane at zoom 1.
	FrameHeight = 8.0
)

// Pose is a camera orientation around a focal center. Phi is the
// elevation measured from the +z axis, Theta the azimuth in the xy-plane.
type Pose struct {
	Phi, Theta float64
	Zoom       float64
	Center     r3.Vec
}

// DefaultPose looks straight down the z axis with x to the right and y up.
func DefaultPose() Pose {
	return Pose{Phi: 0, Theta: -math.Pi / 2, Zoom: 1}
}


// Projector maps scene points to pixel coordinates for one pose and
// viewport. It is immutable and safe for concurrent use.
type Projector struct {
	pose    Pose
	azimuth r3.Rotation
	tilt    r3.Rotation
	width   float64
	height  float64
	unit    float64 // pixels per scene unit at zoom 1
}

func NewProjector(pose Pose, width, height int) *Projector {
	if pose.Zoom <= 0 {
		pose.Zoom = 1
	}
	return &Projector{
		pose:    pose,
		azimuth: r3.NewRotation(-(pose.Theta + math.Pi/2), r3.Vec{Z: 1}),
		tilt:    r3.NewRotation(-pose.Phi, r3.Vec{X: 1}),
		width:   float64(width),
		height:  float64(height),
		unit:    float64(height) / FrameHeight,
	}
}

func (p *Projector) Pose() Pose { return p.pose }

// UnitPixels is the number of pixels one scene unit spans on the focal
// plane, zoom included.
func (p *Projector) UnitPixels() float64 { return p.unit * p.pose.Zoom }

// View returns v in camera coordinates: x right, y up, z towards the eye.
func (p *Projector) View(v r3.Vec) r3.Vec {
	return p.tilt.Rotate(p.azimuth.Rotate(r3.Sub(v, p.pose.Center)))
}

// Project returns the pixel position of v with the origin at the top-left
// corner, its depth along the view axis (larger is nearer) and whether it
// lies in front of the eye.
func (p *Projector) Project(v r3.Vec) (x, y, depth float64, ok bool) {
	c := p.View(v)
	if c.Z >= FocalDistance {
		return 0, 0, c.Z, false
	}
	f := FocalDistance / (FocalDistance - c.Z) * p.UnitPixels()
	return p.width/2 + c.X*f, p.height/2 - c.Y*f, c.Z, true
}
