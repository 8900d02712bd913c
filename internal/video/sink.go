package video

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/san-kum/lorenzsim/internal/telemetry"
)

// Sink consumes rendered frames in order. Close flushes and finalizes the
// output; a sink must not be used afterwards.
type Sink interface {
	WriteFrame(img image.Image) error
	Close() error
}

type Format string

const (
	MP4 Format = "mp4"
	GIF Format = "gif"
	PNG Format = "png"
)

type Options struct {
	Format Format
	Path   string
	Width  int
	Height int
	FPS    float64
	// CRF is the x264 constant rate factor for MP4 output.
	CRF int
	// Binary overrides the ffmpeg executable.
	Binary string
	// Frames is the expected frame count, used only to warn about GIF
	// buffering. Zero means unknown.
	Frames int
}

// FormatFromPath infers the output format: .mp4 and .gif files map to
// their formats, anything else is treated as a directory of PNG frames.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return MP4
	case ".gif":
		return GIF
	default:
		return PNG
	}
}

func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case MP4, GIF, PNG:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want mp4, gif or png)", name)
	}
}

// Open creates the sink for opts. The ffmpeg process of an MP4 sink is
// bound to ctx.
func Open(ctx context.Context, opts Options) (Sink, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("output path is empty")
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", opts.FPS)
	}
	format := opts.Format
	if format == "" {
		format = FormatFromPath(opts.Path)
	}

	switch format {
	case MP4:
		return NewFFmpeg(ctx, opts)
	case GIF:
		if need := GIFBufferBytes(opts.Width, opts.Height, opts.Frames); need > gifWarnBytes {
			telemetry.FromContext(ctx).Warn("gif output buffers every frame until the end; consider mp4 or a smaller --width/--height",
				"frames", opts.Frames, "buffer_mb", need>>20)
		}
		return NewGIF(opts.Path, opts.FPS)
	case PNG:
		return NewPNGSequence(opts.Path)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
