// Package analysis provides chaos diagnostics for sampled trajectories.
//
//   - [LyapunovExponent]: largest Lyapunov exponent, two-trajectory method
//   - [Separation], [DivergenceRate]: sensitivity to initial conditions
//   - [PowerSpectrum], [DominantFrequency]: spectral content of a coordinate
//   - [PoincareSection], [ReturnMap]: sections and maxima maps
//   - [BifurcationDiagram]: parameter sweep
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(dyn, integ, x0, dt, duration, 1e-8)
//	if err == nil && lambda > 0 {
//	    // System is chaotic
//	}
package analysis
