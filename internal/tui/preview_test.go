package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/trajectory"
	"github.com/san-kum/lorenzsim/internal/viz"
)

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	tr := &trajectory.Trajectory{
		Times:  []float64{0, 1, 2, 3},
		Points: []dynamo.State{{-20, -20, 5}, {20, -20, 25}, {20, 20, 45}, {-20, 20, 25}},
		Dt:     1,
	}
	sc, err := scene.NewLorenz(tr, 10)
	require.NoError(t, err)
	return sc
}

func litCells(c *viz.Canvas) int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != 0x2800 {
				n++
			}
		}
	}
	return n
}

func TestDrawFrame(t *testing.T) {
	sc := testScene(t)
	c := viz.NewCanvas(60, 30)

	DrawFrame(c, sc, sc.Timeline.At(1))
	axesOnly := litCells(c)
	assert.Positive(t, axesOnly, "axes should be visible")

	DrawFrame(c, sc, sc.Timeline.At(20))
	assert.Greater(t, litCells(c), axesOnly, "finished path adds dots")

	found := false
	for _, row := range c.Colors {
		for _, col := range row {
			if col == viz.Hex(scene.Green) {
				found = true
			}
		}
	}
	assert.True(t, found, "path should be green at the end")
}

func TestPreviewPlayback(t *testing.T) {
	sc := testScene(t)
	start := time.Unix(1000, 0)

	p := NewPreview(sc, "lorenz", []float64{5, 25, 45, 25}, PreviewOptions{Speed: 2})
	p.now = func() time.Time { return start }
	require.NotNil(t, p.Init())

	_, cmd := p.Update(TickMsg(start.Add(3 * time.Second)))
	assert.NotNil(t, cmd, "ticks keep coming")
	assert.InDelta(t, 6, p.Time(), 1e-9)
	assert.Contains(t, p.View(), "PLAYING")

	p.Update(TickMsg(start.Add(time.Minute)))
	assert.InDelta(t, sc.Timeline.Duration(), p.Time(), 1e-9)
	assert.Contains(t, p.View(), "FINISHED")
}

func TestPreviewLoop(t *testing.T) {
	sc := testScene(t)
	start := time.Unix(1000, 0)

	p := NewPreview(sc, "lorenz", nil, PreviewOptions{Loop: true})
	p.now = func() time.Time { return start }
	p.Init()

	p.Update(TickMsg(start.Add(time.Minute)))
	assert.Zero(t, p.Time())
}

func TestPreviewQuit(t *testing.T) {
	p := NewPreview(testScene(t), "lorenz", nil, PreviewOptions{})

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := p.Update(key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd, "other keys do nothing")
}

func TestPreviewResize(t *testing.T) {
	p := NewPreview(testScene(t), "lorenz", nil, PreviewOptions{})
	p.Update(tea.WindowSizeMsg{Width: 160, Height: 50})

	assert.Equal(t, 160-panelWidth-6, p.canvas.Width)
	assert.Equal(t, 46, p.canvas.Height)
	assert.True(t, strings.Contains(p.View(), "q: quit"))
}
