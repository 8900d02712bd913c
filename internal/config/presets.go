package config

import (
	"slices"

	"github.com/san-kum/lorenzsim/internal/physics"
)

type Preset struct {
	Description string
	System      physics.Params
	Initial     []float64
	Duration    float64
	Dt          float64
}

var Presets = map[string]Preset{
	"classic": {
		Description: "chaotic butterfly, sigma=10 rho=28 beta=8/3",
		System:      physics.DefaultParams(),
		Initial:     []float64{10, 10, 10},
		Duration:    10, Dt: 0.01,
	},
	"transient": {
		Description: "rho=14: spirals into the C+ fixed point",
		System:      physics.Params{Sigma: 10, Rho: 14, Beta: 8.0 / 3.0},
		Initial:     []float64{10, 10, 10},
		Duration:    20, Dt: 0.01,
	},
	"periodic": {
		Description: "rho=99.96: stable periodic orbit in the large-rho window",
		System:      physics.Params{Sigma: 10, Rho: 99.96, Beta: 8.0 / 3.0},
		Initial:     []float64{10, 10, 10},
		Duration:    10, Dt: 0.005,
	},
}

// GetPreset returns the default configuration with the preset's system,
// initial state and timing applied.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.ApplyTo(cfg)
	return cfg
}

func (p Preset) ApplyTo(cfg *Config) {
	cfg.System = p.System
	cfg.Initial = slices.Clone(p.Initial)
	cfg.Duration = p.Duration
	cfg.Dt = p.Dt
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
