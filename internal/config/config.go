package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"slices"

	"github.com/shirou/gopsutil/v3/cpu"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/integrators"
	"github.com/san-kum/lorenzsim/internal/physics"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultFPS      = 30.0
	DefaultWidth    = 1280
	DefaultHeight   = 720
	DefaultCRF      = 18
	DefaultDataDir  = ".lorenzsim"
	DefaultOutput   = "lorenz.mp4"
)

type Config struct {
	System   physics.Params `yaml:"system"`
	Initial  []float64      `yaml:"initial_state"`
	Duration float64        `yaml:"duration"`
	Dt       float64        `yaml:"dt"`
	Solver   SolverConfig   `yaml:"solver"`
	Render   RenderConfig   `yaml:"render"`
	DataDir  string         `yaml:"data_dir"`
}

type SolverConfig struct {
	// Integrator is rk45 for the adaptive driver or euler/rk4 for fixed
	// steps of one grid interval.
	Integrator string           `yaml:"integrator"`
	Tolerance  dynamo.Tolerance `yaml:"tolerance"`
	MaxStep    float64          `yaml:"max_step,omitempty"`
	MaxSteps   int              `yaml:"max_steps,omitempty"`
}

type RenderConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FPS         float64 `yaml:"fps"`
	Supersample int     `yaml:"supersample"`
	Workers     int     `yaml:"workers"`
	// Format is mp4, gif or png; empty infers it from Output.
	Format string `yaml:"format,omitempty"`
	Output string `yaml:"output"`
	CRF    int    `yaml:"crf"`
}

func DefaultConfig() *Config {
	return &Config{
		System:   physics.DefaultParams(),
		Initial:  []float64{10, 10, 10},
		Duration: DefaultDuration,
		Dt:       DefaultDt,
		Solver: SolverConfig{
			Integrator: "rk45",
			Tolerance:  dynamo.DefaultTolerance(),
		},
		Render: RenderConfig{
			Width:       DefaultWidth,
			Height:      DefaultHeight,
			FPS:         DefaultFPS,
			Supersample: 2,
			Workers:     DefaultWorkers(),
			Output:      DefaultOutput,
			CRF:         DefaultCRF,
		},
		DataDir: DefaultDataDir,
	}
}

// DefaultWorkers is the number of logical CPUs.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto decodes a YAML file over cfg, so keys missing from the file keep
// their current values. Unknown keys are errors.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) InitialState() dynamo.State {
	return dynamo.State(slices.Clone(c.Initial))
}

func (c *Config) SolverOptions() integrators.Options {
	return integrators.Options{
		Tolerance: c.Solver.Tolerance,
		MaxStep:   c.Solver.MaxStep,
		MaxSteps:  c.Solver.MaxSteps,
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if err := c.System.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Initial) != 3 {
		bad("%w: initial_state has %d components, want 3", dynamo.ErrDimensionMismatch, len(c.Initial))
	} else if !c.InitialState().IsValid() {
		bad("%w: initial_state %v", dynamo.ErrInvalidState, c.Initial)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		bad("%w: duration must be positive, got %v", dynamo.ErrParameterBounds, c.Duration)
	}
	if !(c.Dt > 0) || c.Dt > c.Duration {
		bad("%w: dt must be in (0, duration], got %v", dynamo.ErrParameterBounds, c.Dt)
	}

	if !slices.Contains(integrators.Names(), c.Solver.Integrator) {
		bad("unknown integrator %q (available: %v)", c.Solver.Integrator, integrators.Names())
	}
	if !c.Solver.Tolerance.Valid() {
		bad("%w: tolerance %+v must be positive", dynamo.ErrParameterBounds, c.Solver.Tolerance)
	}
	if c.Solver.MaxStep < 0 || c.Solver.MaxSteps < 0 {
		bad("%w: max_step and max_steps must not be negative", dynamo.ErrParameterBounds)
	}

	r := c.Render
	// yuv420p needs even dimensions
	if r.Width <= 0 || r.Height <= 0 || r.Width%2 != 0 || r.Height%2 != 0 {
		bad("render size %dx%d must be positive and even", r.Width, r.Height)
	}
	if !(r.FPS > 0) || r.FPS > 240 {
		bad("render fps %v out of range (0, 240]", r.FPS)
	}
	if r.Supersample < 1 || r.Supersample > 8 {
		bad("render supersample %d out of range [1, 8]", r.Supersample)
	}
	if r.Workers < 1 {
		bad("render workers must be at least 1, got %d", r.Workers)
	}
	if r.CRF < 0 || r.CRF > 51 {
		bad("render crf %d out of range [0, 51]", r.CRF)
	}

	return errors.Join(errs...)
}
