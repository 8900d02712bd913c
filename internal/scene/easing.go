package scene

// Easing maps linear progress in [0, 1] onto eased progress in [0, 1].
type Easing func(t float64) float64

// Linear leaves progress unchanged.
func Linear(t float64) float64 { return clamp01(t) }

// EaseInOutCubic accelerates through the first half and decelerates
// through the second.
func EaseInOutCubic(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
