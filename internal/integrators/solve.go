package integrators

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

// DefaultMaxSteps bounds the number of accepted steps in one Solve call.
const DefaultMaxSteps = 1_000_000

// Options configure Solve. Zero values select defaults.
type Options struct {
	Tolerance dynamo.Tolerance
	FirstStep float64 // initial step size; chosen automatically when 0
	MaxStep   float64 // unbounded when 0
	MaxSteps  int     // DefaultMaxSteps when 0
}

// Stats describes the work done by the adaptive driver.
type Stats struct {
	Accepted    int     `json:"accepted"`
	Rejected    int     `json:"rejected"`
	Evaluations int     `json:"evaluations"`
	LastStep    float64 `json:"last_step"`
}

// Solution holds the solver output. With evaluation times it is sampled
// exactly at those times; otherwise at every accepted step.
type Solution struct {
	Times  []float64
	States []dynamo.State
	Stats  Stats
}

func (s *Solution) append(t float64, x dynamo.State) {
	s.Times = append(s.Times, t)
	s.States = append(s.States, x)
}

type countingSystem struct {
	dynamo.System
	calls int
}

func (c *countingSystem) Derive(x dynamo.State, t float64) dynamo.State {
	c.calls++
	return c.System.Derive(x, t)
}

// Solve integrates dyn from (t0, x0) to tEnd with the adaptive
// Dormand-Prince 5(4) pair. When tEval is non-nil it must be sorted and lie
// within [t0, tEnd]; the returned states are the dense-output values at
// exactly those times, independent of the internal step sizes.
func Solve(ctx context.Context, dyn dynamo.System, x0 dynamo.State, t0, tEnd float64, tEval []float64, opts Options) (*Solution, error) {
	if len(x0) != dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system expects %d", dynamo.ErrDimensionMismatch, len(x0), dyn.StateDim())
	}
	if !x0.IsValid() {
		return nil, fmt.Errorf("initial state: %w", dynamo.ErrInvalidState)
	}
	if !(tEnd > t0) || math.IsInf(tEnd, 0) {
		return nil, fmt.Errorf("%w: end time %v must be finite and exceed start time %v", dynamo.ErrParameterBounds, tEnd, t0)
	}
	if opts.Tolerance == (dynamo.Tolerance{}) {
		opts.Tolerance = dynamo.DefaultTolerance()
	}
	if !opts.Tolerance.Valid() {
		return nil, fmt.Errorf("%w: tolerances must be positive, got %+v", dynamo.ErrParameterBounds, opts.Tolerance)
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	maxStep := opts.MaxStep
	if maxStep <= 0 {
		maxStep = math.Inf(1)
	}
	for i, te := range tEval {
		if te < t0 || te > tEnd || (i > 0 && te < tEval[i-1]) {
			return nil, fmt.Errorf("%w: evaluation times must be sorted within [%v, %v] (index %d = %v)", dynamo.ErrParameterBounds, t0, tEnd, i, te)
		}
	}

	sys := &countingSystem{System: dyn}
	rk := NewRK45()
	tol := opts.Tolerance

	sol := &Solution{}
	if tEval != nil {
		sol.Times = make([]float64, 0, len(tEval))
		sol.States = make([]dynamo.State, 0, len(tEval))
	}

	t, x := t0, x0.Clone()
	f := sys.Derive(x, t)

	next := 0
	for next < len(tEval) && tEval[next] == t0 {
		sol.append(t0, x.Clone())
		next++
	}
	if tEval == nil {
		sol.append(t, x.Clone())
	}

	hAbs := opts.FirstStep
	if hAbs <= 0 {
		hAbs = initialStep(sys, x, f, t, tEnd, tol)
	}

	fail := func(err error) (*Solution, error) {
		sol.Stats.Evaluations = sys.calls
		return sol, &dynamo.SimulationError{Step: sol.Stats.Accepted, Time: t, State: x.Clone(), Wrapped: err}
	}

	for t < tEnd {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err))
		}
		if sol.Stats.Accepted >= opts.MaxSteps {
			return fail(fmt.Errorf("%w: %d steps taken before t=%v", dynamo.ErrMaxSteps, opts.MaxSteps, tEnd))
		}

		minStep := 10 * math.Abs(math.Nextafter(t, math.Inf(1))-t)
		if hAbs > maxStep {
			hAbs = maxStep
		} else if hAbs < minStep {
			hAbs = minStep
		}

		var (
			step     dpStep
			h, tNew  float64
			rejected bool
		)
		for {
			if hAbs < minStep {
				return fail(fmt.Errorf("%w: needed %.3g, minimum is %.3g", dynamo.ErrStepTooSmall, hAbs, minStep))
			}
			tNew = t + hAbs
			if tNew > tEnd {
				tNew = tEnd
			}
			h = tNew - t
			hAbs = h

			step = rk.attempt(sys, x, f, t, h)
			errNorm := math.NaN()
			if step.x.IsValid() && step.k[6].IsValid() {
				errNorm = rk.errorNorm(step, x, h, tol)
			}
			if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
				hAbs *= rk.minScale
				rejected = true
				sol.Stats.Rejected++
				continue
			}

			hAbs *= rk.nextScale(errNorm, rejected)
			if errNorm < 1 {
				break
			}
			rejected = true
			sol.Stats.Rejected++
		}

		sol.Stats.Accepted++
		sol.Stats.LastStep = h

		for next < len(tEval) && tEval[next] <= tNew {
			if tEval[next] == tNew {
				sol.append(tNew, step.x.Clone())
			} else {
				sol.append(tEval[next], rk.dense(step, x, t, h, tEval[next]))
			}
			next++
		}

		t, x, f = tNew, step.x, step.k[6]
		if tEval == nil {
			sol.append(t, x.Clone())
		}
	}

	sol.Stats.Evaluations = sys.calls
	return sol, nil
}

// initialStep picks the first step size from the size of the state, its
// derivative and a finite-difference estimate of the second derivative.
func initialStep(dyn dynamo.System, x0, f0 dynamo.State, t0, tEnd float64, tol dynamo.Tolerance) float64 {
	interval := tEnd - t0
	n := len(x0)
	if n == 0 {
		return interval
	}

	scale := make([]float64, n)
	for i, v := range x0 {
		scale[i] = tol.Abs + math.Abs(v)*tol.Rel
	}

	d0 := rmsNorm(x0, scale)
	d1 := rmsNorm(f0, scale)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, interval)

	x1 := make(dynamo.State, n)
	floats.AddScaledTo(x1, x0, h0, f0)
	f1 := dyn.Derive(x1, t0+h0)
	d2 := rmsNorm(f1.Sub(f0), scale) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/5.0)
	}

	return math.Min(math.Min(100*h0, h1), interval)
}

func rmsNorm(v, scale []float64) float64 {
	q := make([]float64, len(v))
	floats.DivTo(q, v, scale)
	return floats.Norm(q, 2) / math.Sqrt(float64(len(v)))
}
