package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

// epsilon is the relative spacing of float64 values.
const epsilon = 0x1p-52

// LyapunovExponent estimates the largest Lyapunov exponent with the
// two-trajectory method of Benettin et al. A positive value indicates chaos.
//
// A companion trajectory starts d0 away along the first axis. After every
// step the logarithmic growth of the separation is accumulated and the
// companion is pulled back to distance d0 along the current separation
// direction, so the estimate follows the linearized flow and never
// saturates at the size of the attractor.
func LyapunovExponent(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	d0 float64,
) (float64, error) {
	if len(x0) != dyn.StateDim() {
		return 0, fmt.Errorf("%w: state has %d components, system expects %d", dynamo.ErrDimensionMismatch, len(x0), dyn.StateDim())
	}
	if !(dt > 0) || !(d0 > 0) || !(duration >= dt) {
		return 0, fmt.Errorf("%w: need dt > 0, d0 > 0 and duration >= dt", dynamo.ErrParameterBounds)
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += d0

	steps := int(duration / dt)
	sumLog := 0.0
	t := 0.0

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, t, dt)
		xp = integ.Step(dyn, xp, t, dt)
		t += dt

		if !x.IsValid() || !xp.IsValid() {
			return 0, &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: dynamo.ErrInvalidState}
		}

		// once d0 is below the float spacing at |x| the companion can no
		// longer be placed d0 away, so the estimate would be noise
		sep := x.Distance(xp)
		if sep == 0 || x.Norm()*epsilon >= d0 {
			return 0, &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: fmt.Errorf("%w: separation %g not representable at |x|=%g", dynamo.ErrInvalidState, d0, x.Norm())}
		}
		sumLog += math.Log(sep / d0)

		// renormalize
		xp = x.Add(xp.Sub(x).Scale(d0 / sep))
	}

	return sumLog / (float64(steps) * dt), nil
}
