// Package video provides the frame sinks the renderer streams into: an
// ffmpeg-backed MP4 encoder, an animated GIF and a numbered PNG sequence.
package video
