// Package export writes single artifacts: still frames of the animation as
// PNG or SVG, 2-D projections of a trajectory as SVG and an interactive
// go-echarts page of a stored run.
package export
