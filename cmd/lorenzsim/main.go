package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/lorenzsim/internal/config"
	"github.com/san-kum/lorenzsim/internal/telemetry"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	metricsOut string

	metrics = telemetry.NewMetrics()

	// system and solver overrides
	sigma      float64
	rho        float64
	beta       float64
	x0         []float64
	duration   float64
	dt         float64
	integrator string
	rtol       float64
	atol       float64
	maxSteps   int

	// render overrides
	outPath     string
	format      string
	width       int
	height      int
	fps         float64
	supersample int
	workers     int
	crf         int
	stillAt     float64
	stillScale  float64
	saveRun     bool

	// preview
	speed float64
	loop  bool

	// plot and analyze
	xAxis   int
	yAxis   int
	svgPath  string
	htmlPath string

	lyapTime float64
	lyapD0   float64

	sweepParam     string
	sweepMin       float64
	sweepMax       float64
	sweepSteps     int
	sweepTransient float64
	sweepRecord    float64

	members int
	eps     float64
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Registering the flags also resets the
// package-level flag variables to their defaults.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lorenzsim",
		Short:         "integrate the lorenz system and animate its attractor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := telemetry.SetupLogger(logLevel)
			cmd.SetContext(telemetry.WithLogger(cmd.Context(), logger))
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if metricsOut == "" {
				return nil
			}
			return metrics.WriteTextfile(metricsOut)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); LOG_LEVEL when empty")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&metricsOut, "metrics-file", "", "write prometheus metrics to this file on success")
	pf.Float64Var(&sigma, "sigma", 10, "lorenz sigma")
	pf.Float64Var(&rho, "rho", 28, "lorenz rho")
	pf.Float64Var(&beta, "beta", 8.0/3.0, "lorenz beta")
	pf.Float64SliceVar(&x0, "x0", []float64{10, 10, 10}, "initial state x,y,z")
	pf.Float64Var(&duration, "time", config.DefaultDuration, "evolution time")
	pf.Float64Var(&dt, "dt", config.DefaultDt, "sampling interval")
	pf.StringVar(&integrator, "integrator", "rk45", "integrator (rk45 adaptive, rk4 or euler fixed-step)")
	pf.Float64Var(&rtol, "rtol", 1e-8, "relative tolerance")
	pf.Float64Var(&atol, "atol", 1e-10, "absolute tolerance")
	pf.IntVar(&maxSteps, "max-steps", 0, "adaptive step budget (0 = default)")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "integrate and store a trajectory",
		Args:  cobra.NoArgs,
		RunE:  solveRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run-id]",
		Short: "render the attractor animation to mp4, gif or png frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderAnimation,
	}
	renderCmd.Flags().StringVarP(&outPath, "out", "o", config.DefaultOutput, "output file or frame directory")
	renderCmd.Flags().StringVar(&format, "format", "", "mp4, gif or png (inferred from --out when empty)")
	renderCmd.Flags().IntVar(&width, "width", config.DefaultWidth, "frame width")
	renderCmd.Flags().IntVar(&height, "height", config.DefaultHeight, "frame height")
	renderCmd.Flags().Float64Var(&fps, "fps", config.DefaultFPS, "frame rate")
	renderCmd.Flags().IntVar(&supersample, "supersample", 2, "supersampling factor")
	renderCmd.Flags().IntVar(&workers, "workers", 0, "render workers (logical CPUs when 0)")
	renderCmd.Flags().IntVar(&crf, "crf", config.DefaultCRF, "x264 quality for mp4")
	renderCmd.Flags().Float64Var(&stillAt, "still", -1, "render only the frame at this time (png or svg by --out)")
	renderCmd.Flags().Float64Var(&stillScale, "still-scale", 1, "resolution multiplier for png stills")
	renderCmd.Flags().BoolVar(&saveRun, "save", false, "store the integrated trajectory")

	previewCmd := &cobra.Command{
		Use:   "preview [run-id]",
		Short: "play the animation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  previewAnimation,
	}
	previewCmd.Flags().Float64Var(&speed, "speed", 1, "playback speed")
	previewCmd.Flags().BoolVar(&loop, "loop", false, "restart at the end")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot <run-id>",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for the projection x-axis")
	plotCmd.Flags().IntVar(&yAxis, "y-axis", 2, "state index for the projection y-axis")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the projection as svg")
	plotCmd.Flags().StringVar(&htmlPath, "html", "", "also write an interactive chart page")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare integrators and sensitivity to initial conditions",
		Args:  cobra.NoArgs,
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().IntVar(&members, "members", 4, "ensemble size for the sensitivity check (0 disables)")
	compareCmd.Flags().Float64Var(&eps, "eps", 1e-8, "perturbation between ensemble members")
	compareCmd.Flags().IntVar(&workers, "workers", 0, "ensemble workers (logical CPUs when 0)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRHO\tX0\tTIME\tDT\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%g\t%v\t%gs\t%g\t%s\n", name, p.System.Rho, p.Initial, p.Duration, p.Dt, p.Description)
			}
			return w.Flush()
		},
	}

	dumpConfigCmd := &cobra.Command{
		Use:   "dump-config <path>",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("configuration written to %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(solveCmd, renderCmd, previewCmd, listCmd, plotCmd, analyzeCommand(), compareCmd, presetsCmd, dumpConfigCmd)
	return rootCmd
}

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order, and validates the result.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "":
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		if configFile != "" {
			if err := config.LoadInto(configFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
	set("data", func() { cfg.DataDir = dataDir })
	set("sigma", func() { cfg.System.Sigma = sigma })
	set("rho", func() { cfg.System.Rho = rho })
	set("beta", func() { cfg.System.Beta = beta })
	set("x0", func() { cfg.Initial = x0 })
	set("time", func() { cfg.Duration = duration })
	set("dt", func() { cfg.Dt = dt })
	set("integrator", func() { cfg.Solver.Integrator = integrator })
	set("rtol", func() { cfg.Solver.Tolerance.Rel = rtol })
	set("atol", func() { cfg.Solver.Tolerance.Abs = atol })
	set("max-steps", func() { cfg.Solver.MaxSteps = maxSteps })
	set("out", func() { cfg.Render.Output = outPath })
	set("format", func() { cfg.Render.Format = format })
	set("width", func() { cfg.Render.Width = width })
	set("height", func() { cfg.Render.Height = height })
	set("fps", func() { cfg.Render.FPS = fps })
	set("supersample", func() { cfg.Render.Supersample = supersample })
	set("crf", func() { cfg.Render.CRF = crf })
	if workers > 0 {
		cfg.Render.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
