package scene

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/san-kum/lorenzsim/internal/viz"
)

// FrameState is the scene as it appears at one instant.
type FrameState struct {
	Time         float64
	Pose         viz.Pose
	RotationRate float64

	ShowAxes bool
	Axes     Axes

	ShowPath  bool
	Progress  float64
	PathColor color.RGBA
	PathWidth float64
}

type segment struct {
	start    float64
	duration float64
	from     FrameState
	action   Action
}

func (sg segment) end() float64 { return sg.start + sg.duration }

func (sg segment) eval(elapsed float64) FrameState {
	s := sg.from
	s.Time = sg.start + elapsed
	s.Pose.Theta += s.RotationRate * elapsed
	sg.action.animate(&s, sg.from, elapsed/sg.duration)
	return s
}

// Timeline is a compiled choreography. At is a pure function of time, so
// frames can be evaluated in any order and in parallel.
type Timeline struct {
	segments []segment
	duration float64
	final    FrameState
}

// Compile runs the script once, recording the state at the start of every
// timed action.
func Compile(actions []Action) (*Timeline, error) {
	state := FrameState{Pose: viz.DefaultPose()}
	tl := &Timeline{}
	t := 0.0

	for i, a := range actions {
		if a == nil {
			return nil, fmt.Errorf("action %d is nil", i)
		}
		if err := a.validate(); err != nil {
			return nil, fmt.Errorf("action %d (%s): %w", i, a.Name(), err)
		}

		a.begin(&state)
		state.Time = t

		d := a.RunTime()
		if d == 0 {
			continue
		}

		seg := segment{start: t, duration: d, from: state, action: a}
		tl.segments = append(tl.segments, seg)
		state = seg.eval(d)
		t = seg.end()
	}

	tl.duration = t
	state.Time = t
	tl.final = state
	return tl, nil
}

// Duration is the total run time of all timed actions.
func (tl *Timeline) Duration() float64 { return tl.duration }

// At evaluates the scene at time t, clamped to [0, Duration].
func (tl *Timeline) At(t float64) FrameState {
	if t <= 0 {
		if len(tl.segments) == 0 {
			return tl.final
		}
		return tl.segments[0].eval(0)
	}
	if t >= tl.duration {
		return tl.final
	}

	i := sort.Search(len(tl.segments), func(i int) bool { return tl.segments[i].end() > t })
	seg := tl.segments[i]
	return seg.eval(t - seg.start)
}

// FrameCount is the number of frames needed to cover the timeline at fps.
func (tl *Timeline) FrameCount(fps float64) int {
	if fps <= 0 {
		return 0
	}
	return max(1, int(math.Ceil(tl.duration*fps-1e-9)))
}

// FrameTimes returns the presentation time of every frame, i/fps.
func (tl *Timeline) FrameTimes(fps float64) []float64 {
	times := make([]float64, tl.FrameCount(fps))
	for i := range times {
		times[i] = float64(i) / fps
	}
	return times
}

// Segment describes one timed action for display.
type Segment struct {
	Name       string
	Start, End float64
}

func (tl *Timeline) Segments() []Segment {
	out := make([]Segment, len(tl.segments))
	for i, sg := range tl.segments {
		out[i] = Segment{Name: sg.action.Name(), Start: sg.start, End: sg.end()}
	}
	return out
}
