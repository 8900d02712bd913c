package integrators

import (
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	// difference between the 5th and embedded 4th order weights
	dc = [7]float64{
		c1 - 5179.0/57600.0,
		0,
		c3 - 7571.0/16695.0,
		c4 - 393.0/640.0,
		c5 - -92097.0/339200.0,
		c6 - 187.0/2100.0,
		-1.0 / 40.0,
	}
)

// Continuous extension of the Dormand-Prince pair. Row j holds the
// coefficients of theta, theta^2, theta^3, theta^4 for stage k_{j+1}.
// At theta=1 every row sums to the 5th-order weight of its stage.
var densePoly = [7][4]float64{
	{1, -8048581381.0 / 2820520608.0, 8663915743.0 / 2820520608.0, -12715105075.0 / 11282082432.0},
	{0, 0, 0, 0},
	{0, 131558114200.0 / 32700410799.0, -68118460800.0 / 10900136933.0, 87487479700.0 / 32700410799.0},
	{0, -1754552775.0 / 470086768.0, 14199869525.0 / 1410260304.0, -10690763975.0 / 1880347072.0},
	{0, 127303824393.0 / 49829197408.0, -318862633887.0 / 49829197408.0, 701980252875.0 / 199316789632.0},
	{0, -282668133.0 / 205662961.0, 2019193451.0 / 616988883.0, -1453857185.0 / 822651844.0},
	{0, 40617522.0 / 29380423.0, -110615467.0 / 29380423.0, 69997945.0 / 29380423.0},
}

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// dpStep is one attempted Dormand-Prince step. k[6] is the derivative at
// x, which becomes k[0] of the next step (first same as last).
type dpStep struct {
	x dynamo.State
	k [7]dynamo.State
}

// Step advances x by a fixed dt using the 5th-order solution and ignores
// the error estimate.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return r.attempt(dyn, x, dyn.Derive(x, t), t, dt).x
}

func (r *RK45) attempt(dyn dynamo.System, x, k1 dynamo.State, t, dt float64) dpStep {
	n := len(x)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := dyn.Derive(x2, t+a2*dt)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(x3, t+a3*dt)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(x4, t+a4*dt)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(x5, t+a5*dt)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(x6, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}
	k7 := dyn.Derive(xNew, t+dt)

	return dpStep{x: xNew, k: [7]dynamo.State{k1, k2, k3, k4, k5, k6, k7}}
}

// errorNorm is the RMS of the embedded error estimate, each component
// scaled by atol + rtol*max(|x|, |xNew|). Values below 1 are acceptable.
func (r *RK45) errorNorm(s dpStep, x dynamo.State, dt float64, tol dynamo.Tolerance) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		e := 0.0
		for j, w := range dc {
			e += w * s.k[j][i]
		}
		scale := tol.Abs + math.Max(math.Abs(x[i]), math.Abs(s.x[i]))*tol.Rel
		q := dt * e / scale
		sum += q * q
	}
	return math.Sqrt(sum / float64(n))
}

// dense evaluates the continuous extension of step s, which started at
// (t, x) with size dt, at time at in [t, t+dt].
func (r *RK45) dense(s dpStep, x dynamo.State, t, dt, at float64) dynamo.State {
	theta := (at - t) / dt
	var powers [4]float64
	p := theta
	for m := range powers {
		powers[m] = p
		p *= theta
	}

	out := make(dynamo.State, len(x))
	for i := range x {
		acc := 0.0
		for j := range densePoly {
			kj := s.k[j][i]
			for m, c := range densePoly[j] {
				acc += kj * c * powers[m]
			}
		}
		out[i] = x[i] + dt*acc
	}
	return out
}

// nextScale returns the factor applied to the step size after an attempt
// with the given error norm.
func (r *RK45) nextScale(errNorm float64, rejectedBefore bool) float64 {
	if errNorm >= 1 {
		return math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.2))
	}
	scale := r.maxScale
	if errNorm > 0 {
		scale = math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	}
	if rejectedBefore {
		scale = math.Min(1, scale)
	}
	return scale
}
