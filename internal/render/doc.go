// Package render rasterizes scene frames with gonum/plot's vg canvases and
// streams them, in order, to a frame writer.
package render
