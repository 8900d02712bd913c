package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

const defaultCRF = 18

// FFmpegSink pipes raw RGBA frames into an ffmpeg process that encodes
// H.264.
type FFmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	width  int
	height int
	frames int
}

// Available reports whether the ffmpeg binary can be found.
func Available(binary string) bool {
	if binary == "" {
		binary = "ffmpeg"
	}
	_, err := exec.LookPath(binary)
	return err == nil
}

func NewFFmpeg(ctx context.Context, opts Options) (*FFmpegSink, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("frame size %dx%d must be positive", opts.Width, opts.Height)
	}
	bin := opts.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	s := &FFmpegSink{width: opts.Width, height: opts.Height}
	s.cmd = exec.CommandContext(ctx, bin, buildArgs(opts)...)
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return s, nil
}

func buildArgs(opts Options) []string {
	crf := opts.CRF
	if crf <= 0 {
		crf = defaultCRF
	}
	fps := strconv.FormatFloat(opts.FPS, 'f', -1, 64)
	return []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fps,
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", "libx264",
		"-crf", strconv.Itoa(crf),
		"-preset", "medium",
		"-movflags", "+faststart",
		opts.Path,
	}
}

func (s *FFmpegSink) WriteFrame(img image.Image) error {
	if b := img.Bounds(); b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame %d is %dx%d, want %dx%d", s.frames, b.Dx(), b.Dy(), s.width, s.height)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w%s", err, s.detail())
	}
	s.frames++
	return nil
}

func (s *FFmpegSink) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w%s", err, s.detail())
	}
	return nil
}

func (s *FFmpegSink) detail() string {
	msg := strings.TrimSpace(s.stderr.String())
	if msg == "" {
		return ""
	}
	return ": " + msg
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
