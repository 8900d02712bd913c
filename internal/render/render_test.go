package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/trajectory"
	"github.com/san-kum/lorenzsim/internal/viz"
)

// helix is a small stand-in for an attractor: two turns rising through
// the middle of the z range.
func helix(t *testing.T) *scene.Scene {
	t.Helper()
	const n = 200
	tr := &trajectory.Trajectory{Dt: 0.05}
	for i := range n {
		s := float64(i) / (n - 1)
		a := 4 * math.Pi * s
		tr.Times = append(tr.Times, float64(i)*tr.Dt)
		tr.Points = append(tr.Points, dynamo.State{20 * math.Cos(a), 20 * math.Sin(a), 5 + 40*s})
	}
	sc, err := scene.NewLorenz(tr, 10)
	require.NoError(t, err)
	return sc
}

func rasterizer(t *testing.T, w, h, ss int) *Rasterizer {
	t.Helper()
	opts := DefaultOptions()
	opts.Width, opts.Height, opts.Supersample = w, h, ss
	r, err := NewRasterizer(helix(t), opts)
	require.NoError(t, err)
	return r
}

func countPixels(img *image.RGBA, pred func(c color.RGBA) bool) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if pred(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}

func bluish(c color.RGBA) bool  { return int(c.B) > int(c.R)+10 }
func greenish(c color.RGBA) bool { return int(c.G) > int(c.B)+10 }
func lit(c color.RGBA) bool      { return max(c.R, c.G, c.B) > 40 }

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	bad := DefaultOptions()
	bad.Width = 0
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.Supersample = 0
	assert.Error(t, bad.Validate())

	_, err := NewRasterizer(nil, DefaultOptions())
	assert.Error(t, err)
}

func TestEmptyFrameIsBackground(t *testing.T) {
	r := rasterizer(t, 64, 36, 1)
	img := r.Frame(scene.FrameState{Pose: viz.DefaultPose()})

	assert.Equal(t, image.Rect(0, 0, 64, 36), img.Bounds())
	assert.Zero(t, countPixels(img, func(c color.RGBA) bool { return c != scene.Black }))
}

func TestFrameDrawsAxesAndPath(t *testing.T) {
	r := rasterizer(t, 320, 180, 2)
	tl := r.sc.Timeline

	axesOnly := r.Frame(tl.At(0.5))
	assert.Greater(t, countPixels(axesOnly, lit), 50)
	assert.Zero(t, countPixels(axesOnly, bluish))

	drawing := r.Frame(tl.At(6))
	assert.Greater(t, countPixels(drawing, bluish), 20)
	assert.Zero(t, countPixels(drawing, greenish))

	final := r.Frame(tl.At(tl.Duration()))
	assert.Greater(t, countPixels(final, greenish), 20)
	assert.Zero(t, countPixels(final, bluish))
}

func TestFrameIntoMatchesFrame(t *testing.T) {
	r := rasterizer(t, 80, 45, 2)
	fs := r.sc.Timeline.At(8)

	dst := image.NewRGBA(image.Rect(0, 0, 80, 45))
	r.FrameInto(dst, fs)
	assert.Equal(t, r.Frame(fs).Pix, dst.Pix)
}

type recorder struct {
	frames []*image.RGBA
	failAt int
}

func (rec *recorder) WriteFrame(img image.Image) error {
	if rec.failAt > 0 && len(rec.frames) == rec.failAt {
		return errors.New("disk full")
	}
	src := img.(*image.RGBA)
	cp := image.NewRGBA(src.Rect)
	copy(cp.Pix, src.Pix)
	rec.frames = append(rec.frames, cp)
	return nil
}

func TestPipelinePreservesOrder(t *testing.T) {
	r := rasterizer(t, 48, 27, 1)
	times := []float64{12, 0.5, 6, 22, 1, 3.3, 9, 15, 0, 7.5, 18}

	p := NewPipeline(r, 2)
	var batches []int
	p.OnBatch = func(done, total int) {
		assert.Equal(t, len(times), total)
		batches = append(batches, done)
	}

	rec := &recorder{}
	require.NoError(t, p.RenderTimes(context.Background(), times, rec))
	require.Len(t, rec.frames, len(times))
	assert.Equal(t, []int{8, 11}, batches)

	for i, ft := range times {
		want := r.Frame(r.sc.Timeline.At(ft))
		assert.Equal(t, want.Pix, rec.frames[i].Pix, "frame %d (t=%v)", i, ft)
	}
}

func TestPipelineRenderCountsFrames(t *testing.T) {
	r := rasterizer(t, 32, 18, 1)
	rec := &recorder{}
	n, err := NewPipeline(r, 4).Render(context.Background(), 5, rec)
	require.NoError(t, err)
	assert.Equal(t, r.sc.Timeline.FrameCount(5), n)
	assert.Len(t, rec.frames, n)
}

func TestPipelineWriterError(t *testing.T) {
	r := rasterizer(t, 32, 18, 1)
	rec := &recorder{failAt: 1}
	err := NewPipeline(r, 2).RenderTimes(context.Background(), []float64{0, 1, 2}, rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write frame 1")
	assert.Len(t, rec.frames, 1)
}

func TestPipelineCanceled(t *testing.T) {
	r := rasterizer(t, 32, 18, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	err := NewPipeline(r, 2).RenderTimes(ctx, []float64{0, 1, 2}, rec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.frames)
}

func TestFramePoolDropsForeignSizes(t *testing.T) {
	p := NewFramePool(4, 3)
	img := p.Get()
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Rect)

	p.Put(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	p.Put(nil)
	assert.Equal(t, image.Rect(0, 0, 4, 3), p.Get().Rect)
}
