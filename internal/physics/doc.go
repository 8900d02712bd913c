// Package physics provides the Lorenz vector field.
//
// [Lorenz] implements [dynamo.System] and [dynamo.Configurable]:
//
//	dx/dt = sigma (y - x)
//	dy/dt = x (rho - z) - y
//	dz/dt = x y - beta z
//
// The evaluation is a pure function of the state. Extreme inputs may
// overflow to Inf; detecting that is the integrator's job.
//
//	dyn := physics.NewLorenz()
//	_ = dyn.SetParam("rho", 14)
//	dx := dyn.Derive(dynamo.State{1, 1, 1}, 0)
package physics
