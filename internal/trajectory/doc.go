// Package trajectory turns a dynamical system and an initial state into a
// uniformly sampled trajectory.
//
// The grid has floor(T/dt) samples at t_i = i*dt. Samples come from the
// dense output of the adaptive integrator, so they line up with the grid
// exactly no matter which internal steps the solver takes.
package trajectory
