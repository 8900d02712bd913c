package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/viz"
)

const (
	defaultWidth  = 80
	defaultHeight = 30
	panelWidth    = 40
)

type TickMsg time.Time

// PreviewOptions tune terminal playback.
type PreviewOptions struct {
	FPS   float64 // redraw rate, 30 when zero
	Speed float64 // playback speed multiplier, 1 when zero
	Loop  bool    // restart at the end instead of holding the last frame
}

// Preview plays a scene timeline in the terminal. It is a viewer only:
// besides quitting there is nothing to control.
type Preview struct {
	sc      *scene.Scene
	opts    PreviewOptions
	canvas  *viz.Canvas
	zSeries []float64
	title   string

	now     func() time.Time
	started time.Time
	t       float64
	done    bool
}

// NewPreview prepares a preview of sc. zSeries, if non-empty, is plotted
// alongside the canvas up to the current drawing progress.
func NewPreview(sc *scene.Scene, title string, zSeries []float64, opts PreviewOptions) *Preview {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	return &Preview{
		sc:      sc,
		opts:    opts,
		canvas:  viz.NewCanvas(defaultWidth, defaultHeight),
		zSeries: zSeries,
		title:   title,
		now:     time.Now,
	}
}

func (m *Preview) tick() tea.Cmd {
	return tea.Tick(time.Duration(float64(time.Second)/m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Preview) Init() tea.Cmd {
	m.started = m.now()
	return m.tick()
}

// Update advances playback on every tick and quits on q or ctrl+c.
func (m *Preview) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		w := max(msg.Width-panelWidth-6, 20)
		h := max(msg.Height-4, 10)
		m.canvas = viz.NewCanvas(w, h)
	case TickMsg:
		m.advance(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

func (m *Preview) advance(now time.Time) {
	duration := m.sc.Timeline.Duration()
	m.t = now.Sub(m.started).Seconds() * m.opts.Speed
	if m.t < duration {
		m.done = false
		return
	}
	if m.opts.Loop {
		m.started = now
		m.t = 0
		return
	}
	m.t = duration
	m.done = true
}

// Time is the current playback position.
func (m *Preview) Time() float64 { return m.t }

func (m *Preview) View() string {
	fs := m.sc.Timeline.At(m.t)
	DrawFrame(m.canvas, m.sc, fs)
	canvasView := viz.CanvasStyle.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(viz.HeaderStyle.Render(strings.ToUpper(m.title)) + "\n")
	if m.done {
		s.WriteString(viz.StatusDone.Render("FINISHED") + "\n\n")
	} else {
		s.WriteString(viz.StatusRunning.Render("PLAYING") + "\n\n")
	}

	duration := m.sc.Timeline.Duration()
	s.WriteString(viz.Metric("Time", fmt.Sprintf("%5.2fs / %.1fs", m.t, duration)))
	s.WriteString(viz.Metric("Timeline", viz.ProgressBar(m.t/max(duration, 1e-9), 16)))
	s.WriteString(viz.Metric("Path", viz.ProgressBar(fs.Progress, 16)))
	s.WriteString(viz.Metric("Elevation", fmt.Sprintf("%.1f°", fs.Pose.Phi*180/math.Pi)))
	s.WriteString(viz.Metric("Azimuth", fmt.Sprintf("%.1f°", fs.Pose.Theta*180/math.Pi)))
	s.WriteString(viz.Metric("Zoom", fmt.Sprintf("%.2f", fs.Pose.Zoom)))
	s.WriteString(viz.Metric("Rotation", fmt.Sprintf("%.2f rad/s", fs.RotationRate)))

	if n := int(fs.Progress * float64(len(m.zSeries))); n > 1 {
		chart := asciigraph.Plot(m.zSeries[:n],
			asciigraph.Height(5),
			asciigraph.Width(panelWidth-16),
			asciigraph.Caption("z(t)"),
		)
		s.WriteString(viz.GraphStyle.Render(chart) + "\n")
	}

	s.WriteString(viz.KeyHint.Render("q: quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, viz.Panel.Render(s.String()))
}

// Run plays the preview until the user quits.
func Run(p *Preview) error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
