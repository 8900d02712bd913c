package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const deg = math.Pi / 180

// LorenzScript is the choreography for the attractor animation. The path is
// drawn over evolution seconds, one second of animation per time unit of
// the trajectory.
func LorenzScript(evolution float64) []Action {
	return []Action{
		AddAxes{Axes: LorenzAxes()},
		MoveCamera(1, Phi(60*deg), Theta(-45*deg), Zoom(0.75), Center(r3.Vec{Z: 2})),
		BeginRotation{Rate: 0.05},
		Create{Duration: evolution, Color: Blue, StrokeWidth: 2, Easing: Linear},
		Wait{Duration: 0.5},
		SetColor{Color: Green},
		// speed up: the new rate replaces the old one
		StopRotation{},
		BeginRotation{Rate: 0.1},
		Wait{Duration: 0.1},
		MoveCamera(1, Zoom(1), Center(r3.Vec{Z: 3})),
		Wait{Duration: 10},
	}
}
