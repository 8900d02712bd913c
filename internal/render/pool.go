package render

import (
	"image"
	"sync"
)

// FramePool recycles frame buffers of one size between pipeline batches.
type FramePool struct {
	pool sync.Pool
	rect image.Rectangle
}

func NewFramePool(width, height int) *FramePool {
	rect := image.Rect(0, 0, width, height)
	return &FramePool{
		rect: rect,
		pool: sync.Pool{
			New: func() any {
				return image.NewRGBA(rect)
			},
		},
	}
}

func (p *FramePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

// Put returns img to the pool. Images of another size are dropped.
func (p *FramePool) Put(img *image.RGBA) {
	if img != nil && img.Rect == p.rect {
		p.pool.Put(img)
	}
}
