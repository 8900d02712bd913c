package video

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"math"
	"os"

	"golang.org/x/image/draw"
)

// gifWarnBytes is the buffered frame size above which Open warns.
const gifWarnBytes = 256 << 20

// GIFSink collects frames quantized to the Plan 9 palette and encodes a
// looping animation on Close. Every frame stays in memory until then, one
// byte per pixel: the full 1280x720 animation holds about 625 MB. Prefer
// mp4, or a smaller size for gif output.
type GIFSink struct {
	path  string
	delay int
	anim  gif.GIF
}

func NewGIF(path string, fps float64) (*GIFSink, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", fps)
	}
	return &GIFSink{path: path, delay: gifDelay(fps)}, nil
}

// GIFBufferBytes is the memory a GIFSink holds for frames of the given size
// right before Close.
func GIFBufferBytes(width, height, frames int) int64 {
	return int64(width) * int64(height) * int64(frames)
}

// gifDelay converts a frame rate to the GIF delay in 10 ms units.
func gifDelay(fps float64) int {
	return max(1, int(math.Round(100/fps)))
}

func (s *GIFSink) WriteFrame(img image.Image) error {
	b := img.Bounds()
	pal := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.Draw(pal, pal.Bounds(), img, b.Min, draw.Src)

	s.anim.Image = append(s.anim.Image, pal)
	s.anim.Delay = append(s.anim.Delay, s.delay)
	return nil
}

func (s *GIFSink) Frames() int { return len(s.anim.Image) }

func (s *GIFSink) Close() error {
	if len(s.anim.Image) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer f.Close()

	if err := gif.EncodeAll(f, &s.anim); err != nil {
		return fmt.Errorf("error encoding GIF: %w", err)
	}
	return f.Close()
}
