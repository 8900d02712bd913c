package trajectory

import (
	"fmt"
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

// gridSlack absorbs round-off in T/dt so that 10/0.01 counts 1000 samples
// and not 999.
const gridSlack = 1e-9

// GridSize returns floor(T/dt), the number of uniform samples in [0, T).
func GridSize(duration, dt float64) (int, error) {
	switch {
	case !(duration > 0) || math.IsInf(duration, 0):
		return 0, fmt.Errorf("%w: duration must be positive and finite, got %v", dynamo.ErrParameterBounds, duration)
	case !(dt > 0) || math.IsInf(dt, 0):
		return 0, fmt.Errorf("%w: dt must be positive and finite, got %v", dynamo.ErrParameterBounds, dt)
	case dt > duration:
		return 0, fmt.Errorf("%w: dt %v exceeds duration %v", dynamo.ErrParameterBounds, dt, duration)
	}
	return int(math.Floor(duration/dt + gridSlack)), nil
}

// Grid returns the sample times i*dt for i in [0, GridSize(duration, dt)).
func Grid(duration, dt float64) ([]float64, error) {
	n, err := GridSize(duration, dt)
	if err != nil {
		return nil, err
	}
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times, nil
}
