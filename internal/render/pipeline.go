package render

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lorenzsim/internal/telemetry"
)

// FrameWriter consumes frames in presentation order. Implementations must
// not keep img after WriteFrame returns; its buffer is reused.
type FrameWriter interface {
	WriteFrame(img image.Image) error
}

// Pipeline rasterizes frames on a bounded worker pool. Frames are produced
// in batches and handed to the writer in order from a single goroutine.
type Pipeline struct {
	rast    *Rasterizer
	pool    *FramePool
	workers int
	batch   int

	// OnBatch, if set, is called after each batch has been written.
	OnBatch func(done, total int)
}

func NewPipeline(r *Rasterizer, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		rast:    r,
		pool:    NewFramePool(r.opts.Width, r.opts.Height),
		workers: workers,
		batch:   4 * workers,
	}
}

// Render evaluates the scene timeline at fps and writes every frame to w.
// It returns the number of frames written.
func (p *Pipeline) Render(ctx context.Context, fps float64, w FrameWriter) (int, error) {
	times := p.rast.sc.Timeline.FrameTimes(fps)
	if err := p.RenderTimes(ctx, times, w); err != nil {
		return 0, err
	}
	return len(times), nil
}

func (p *Pipeline) RenderTimes(ctx context.Context, times []float64, w FrameWriter) error {
	logger := telemetry.WithStage(telemetry.FromContext(ctx), "render")
	logger.Info("rendering frames",
		"frames", len(times),
		"workers", p.workers,
		"size", fmt.Sprintf("%dx%d", p.rast.opts.Width, p.rast.opts.Height),
		"supersample", p.rast.opts.Supersample)
	start := time.Now()

	tl := p.rast.sc.Timeline
	frames := make([]*image.RGBA, p.batch)

	for lo := 0; lo < len(times); lo += p.batch {
		hi := min(lo+p.batch, len(times))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)
		for i := lo; i < hi; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				img := p.pool.Get()
				p.rast.FrameInto(img, tl.At(times[i]))
				frames[i-lo] = img
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("render frames %d-%d: %w", lo, hi-1, err)
		}

		for i := lo; i < hi; i++ {
			img := frames[i-lo]
			if err := w.WriteFrame(img); err != nil {
				return fmt.Errorf("write frame %d: %w", i, err)
			}
			p.pool.Put(img)
			frames[i-lo] = nil
		}

		logger.Debug("batch written", "first", lo, "last", hi-1)
		if p.OnBatch != nil {
			p.OnBatch(hi, len(times))
		}
	}

	logger.Info("frames rendered", "frames", len(times), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
