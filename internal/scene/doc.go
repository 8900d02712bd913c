// Package scene describes the attractor animation as a script of actions
// and compiles it into a timeline.
//
// A script is an ordered list of actions. Instant actions (adding the
// axes, starting or stopping the ambient rotation, recoloring the path)
// take effect where they appear; timed actions (camera moves, drawing the
// path, waits) each occupy a segment. Compile records the scene state at
// the start of every segment, after which
//
//	state := timeline.At(t)
//
// is a pure function of t. The ambient rotation advances the camera
// azimuth continuously across segments until it is stopped or replaced.
package scene
