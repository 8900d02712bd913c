package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/san-kum/lorenzsim/internal/render"
	"github.com/san-kum/lorenzsim/internal/scene"
)

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// FormatFromPath picks the still format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return PNG, nil
	case ".svg":
		return SVG, nil
	default:
		return "", fmt.Errorf("unsupported still format %q", ext)
	}
}

// Still writes a single frame. PNG output is drawn at scale times the
// rasterizer's size; SVG output is resolution independent.
func Still(w io.Writer, r *render.Rasterizer, fs scene.FrameState, format Format, scale float64) error {
	if scale <= 0 {
		scale = 1
	}
	opts := r.Options()
	width, height := vg.Length(opts.Width), vg.Length(opts.Height)

	var c vg.CanvasWriterTo
	switch format {
	case PNG:
		img := vgimg.NewWith(
			vgimg.UseWH(width, height),
			vgimg.UseDPI(int(72*scale+0.5)),
			vgimg.UseBackgroundColor(opts.Background),
		)
		c = vgimg.PngCanvas{Canvas: img}
	case SVG:
		c = vgsvg.New(width, height)
	default:
		return fmt.Errorf("unsupported still format %q", format)
	}

	r.Draw(c, fs, float64(width), float64(height))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}
