package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

// Params are the three Lorenz coefficients.
type Params struct {
	Sigma float64 `yaml:"sigma" json:"sigma"`
	Rho   float64 `yaml:"rho" json:"rho"`
	Beta  float64 `yaml:"beta" json:"beta"`
}

// DefaultParams returns the classic chaotic regime (10, 28, 8/3).
func DefaultParams() Params { return Params{Sigma: 10.0, Rho: 28.0, Beta: 8.0 / 3.0} }

func (p Params) Validate() error {
	for name, v := range map[string]float64{"sigma": p.Sigma, "rho": p.Rho, "beta": p.Beta} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", dynamo.ErrParameterBounds, name, v)
		}
	}
	return nil
}

type Lorenz struct{ p Params }

func NewLorenz() *Lorenz                   { return &Lorenz{DefaultParams()} }
func NewLorenzWithParams(p Params) *Lorenz { return &Lorenz{p} }
func (l *Lorenz) StateDim() int            { return 3 }

// Derive calculates the Lorenz attractor derivatives. The system is
// autonomous, so t is ignored.
func (l *Lorenz) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{
		l.p.Sigma * (s[1] - s[0]),
		s[0]*(l.p.Rho-s[2]) - s[1],
		s[0]*s[1] - l.p.Beta*s[2],
	}
}

// Equilibria returns the fixed points of the flow: the origin and, for
// rho > 1, the two symmetric convection states C+ and C-.
func (l *Lorenz) Equilibria() []dynamo.State {
	points := []dynamo.State{{0, 0, 0}}
	if l.p.Rho <= 1 || l.p.Beta <= 0 {
		return points
	}
	r := math.Sqrt(l.p.Beta * (l.p.Rho - 1))
	return append(points,
		dynamo.State{r, r, l.p.Rho - 1},
		dynamo.State{-r, -r, l.p.Rho - 1},
	)
}

func (l *Lorenz) Params() map[string]float64 {
	return map[string]float64{"sigma": l.p.Sigma, "rho": l.p.Rho, "beta": l.p.Beta}
}

func (l *Lorenz) SetParam(n string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s=%v", dynamo.ErrParameterBounds, n, v)
	}
	switch n {
	case "sigma":
		l.p.Sigma = v
	case "rho":
		l.p.Rho = v
	case "beta":
		l.p.Beta = v
	default:
		return fmt.Errorf("lorenz: unknown parameter %q", n)
	}
	return nil
}
