package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSequence writes each frame to dir/frame_00000.png, frame_00001.png
// and so on.
type PNGSequence struct {
	dir     string
	next    int
	encoder png.Encoder
}

func NewPNGSequence(dir string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	return &PNGSequence{dir: dir, encoder: png.Encoder{CompressionLevel: png.BestSpeed}}, nil
}

func FramePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
}

func (s *PNGSequence) WriteFrame(img image.Image) error {
	path := FramePath(s.dir, s.next)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.encoder.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.next++
	return nil
}

func (s *PNGSequence) Close() error { return nil }
