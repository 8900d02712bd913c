// Package viz holds the viewing primitives shared by the renderers: a
// perspective camera that orbits a focal center, a braille canvas for the
// terminal, and the lipgloss styles of the command line output.
//
// # Camera
//
// A [Pose] has an elevation Phi measured from the +z axis, an azimuth
// Theta, a zoom factor and a focal center. [NewProjector] turns a pose and
// a viewport into pixel coordinates:
//
//	p := viz.NewProjector(pose, 1920, 1080)
//	x, y, depth, ok := p.Project(point)
//
// The visible focal plane is [FrameHeight] scene units tall at zoom 1 and
// the eye sits [FocalDistance] units in front of it.
package viz
