package scene

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

// Action is one step of a choreography. Actions with a zero run time take
// effect instantly at their position in the script; the others occupy a
// segment of the timeline.
type Action interface {
	Name() string
	RunTime() float64

	validate() error
	// begin applies the instantaneous part of the action.
	begin(s *FrameState)
	// animate updates s at progress alpha in [0, 1] of the action, starting
	// from the state the action began with.
	animate(s *FrameState, from FrameState, alpha float64)
}

// instant is embedded by actions without duration.
type instant struct{}

func (instant) RunTime() float64                         { return 0 }
func (instant) validate() error                          { return nil }
func (instant) animate(*FrameState, FrameState, float64) {}

// AddAxes makes the coordinate system visible.
type AddAxes struct {
	instant
	Axes Axes
}

func (a AddAxes) Name() string        { return "add_axes" }
func (a AddAxes) begin(s *FrameState) { s.ShowAxes, s.Axes = true, a.Axes }
func (a AddAxes) validate() error {
	if a.Axes.X.span() <= 0 || a.Axes.Y.span() <= 0 || a.Axes.Z.span() <= 0 {
		return errors.New("axis ranges must be non-empty")
	}
	return nil
}

// BeginRotation starts a continuous azimuthal rotation of the camera at
// Rate radians per second. A rotation already running is replaced, not
// accumulated: beginning 0.1 rad/s on top of 0.05 rad/s turns at 0.1, not
// at the 0.15 that stacked rotation updaters would give, whether or not a
// StopRotation comes first.
type BeginRotation struct {
	instant
	Rate float64
}

func (a BeginRotation) Name() string        { return "begin_rotation" }
func (a BeginRotation) begin(s *FrameState) { s.RotationRate = a.Rate }

// StopRotation halts the ambient rotation.
type StopRotation struct{ instant }

func (StopRotation) Name() string        { return "stop_rotation" }
func (StopRotation) begin(s *FrameState) { s.RotationRate = 0 }

// SetColor recolors the attractor path.
type SetColor struct {
	instant
	Color color.RGBA
}

func (a SetColor) Name() string        { return "set_color" }
func (a SetColor) begin(s *FrameState) { s.PathColor = a.Color }

// Wait lets the scene run unchanged apart from ambient rotation.
type Wait struct {
	Duration float64
}

func (a Wait) Name() string                             { return "wait" }
func (a Wait) RunTime() float64                         { return a.Duration }
func (a Wait) begin(*FrameState)                        {}
func (a Wait) animate(*FrameState, FrameState, float64) {}
func (a Wait) validate() error {
	if !(a.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %v", a.Duration)
	}
	return nil
}

// Create draws the path progressively from its first to its last point.
type Create struct {
	Duration    float64
	Color       color.RGBA
	StrokeWidth float64
	Easing      Easing
}

func (a Create) Name() string     { return "create" }
func (a Create) RunTime() float64 { return a.Duration }

func (a Create) validate() error {
	if !(a.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %v", a.Duration)
	}
	return nil
}

func (a Create) begin(s *FrameState) {
	s.ShowPath = true
	s.Progress = 0
	s.PathColor = a.Color
	s.PathWidth = a.StrokeWidth
}

func (a Create) animate(s *FrameState, _ FrameState, alpha float64) {
	ease := a.Easing
	if ease == nil {
		ease = Linear
	}
	s.Progress = ease(alpha)
}

// CameraMove eases the camera towards a target pose. Fields left unset keep
// their current value, and the azimuth keeps following any ambient
// rotation.
type CameraMove struct {
	Phi, Theta, Zoom *float64
	Center           *r3.Vec
	Duration         float64
	Easing           Easing
}

// CameraOption sets one target field of a CameraMove.
type CameraOption func(*CameraMove)

func Phi(v float64) CameraOption   { return func(m *CameraMove) { m.Phi = &v } }
func Theta(v float64) CameraOption { return func(m *CameraMove) { m.Theta = &v } }
func Zoom(v float64) CameraOption  { return func(m *CameraMove) { m.Zoom = &v } }
func Center(v r3.Vec) CameraOption { return func(m *CameraMove) { m.Center = &v } }

// MoveCamera returns a camera move lasting duration seconds with an
// ease-in-out profile.
func MoveCamera(duration float64, opts ...CameraOption) *CameraMove {
	m := &CameraMove{Duration: duration, Easing: EaseInOutCubic}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *CameraMove) Name() string        { return "move_camera" }
func (m *CameraMove) RunTime() float64    { return m.Duration }
func (m *CameraMove) begin(s *FrameState) {}

func (m *CameraMove) validate() error {
	if !(m.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %v", m.Duration)
	}
	if m.Zoom != nil && !(*m.Zoom > 0) {
		return fmt.Errorf("zoom must be positive, got %v", *m.Zoom)
	}
	return nil
}

func (m *CameraMove) animate(s *FrameState, from FrameState, alpha float64) {
	ease := m.Easing
	if ease == nil {
		ease = EaseInOutCubic
	}
	a := ease(alpha)

	if m.Phi != nil {
		s.Pose.Phi = lerp(from.Pose.Phi, *m.Phi, a)
	}
	if m.Theta != nil {
		s.Pose.Theta = lerp(from.Pose.Theta, *m.Theta, a)
	}
	if m.Zoom != nil {
		s.Pose.Zoom = lerp(from.Pose.Zoom, *m.Zoom, a)
	}
	if m.Center != nil {
		s.Pose.Center = r3.Add(r3.Scale(1-a, from.Pose.Center), r3.Scale(a, *m.Center))
	}
}

func lerp(a, b, t float64) float64 { return (1-t)*a + t*b }
