package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lorenzsim/internal/analysis"
	"github.com/san-kum/lorenzsim/internal/config"
	"github.com/san-kum/lorenzsim/internal/export"
	"github.com/san-kum/lorenzsim/internal/integrators"
	"github.com/san-kum/lorenzsim/internal/physics"
	"github.com/san-kum/lorenzsim/internal/render"
	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/storage"
	"github.com/san-kum/lorenzsim/internal/telemetry"
	"github.com/san-kum/lorenzsim/internal/trajectory"
	"github.com/san-kum/lorenzsim/internal/tui"
	"github.com/san-kum/lorenzsim/internal/video"
	"github.com/san-kum/lorenzsim/internal/viz"
)

var axisNames = []string{"x", "y", "z"}

// newSampler builds the sampler the configuration asks for. rk45 selects
// the adaptive driver; other integrators step once per grid interval.
func newSampler(cfg *config.Config) (*trajectory.Sampler, error) {
	s := trajectory.NewSampler(physics.NewLorenzWithParams(cfg.System), cfg.SolverOptions())
	if cfg.Solver.Integrator != "rk45" {
		newInteg, err := integrators.Factory(cfg.Solver.Integrator)
		if err != nil {
			return nil, err
		}
		s.NewIntegrator = newInteg
	}
	return s, nil
}

func sample(ctx context.Context, cfg *config.Config) (*trajectory.Trajectory, error) {
	s, err := newSampler(cfg)
	if err != nil {
		return nil, err
	}

	logger := telemetry.WithStage(telemetry.FromContext(ctx), "solve")
	logger.Info("integrating",
		"sigma", cfg.System.Sigma, "rho", cfg.System.Rho, "beta", cfg.System.Beta,
		"x0", cfg.Initial, "time", cfg.Duration, "dt", cfg.Dt, "integrator", cfg.Solver.Integrator)

	start := time.Now()
	tr, err := s.Sample(ctx, cfg.InitialState(), cfg.Duration, cfg.Dt)
	if err != nil {
		return nil, err
	}
	metrics.ObserveSolve(tr.Stats.Accepted, tr.Stats.Rejected, tr.Stats.Evaluations, time.Since(start))
	logger.Info("integrated",
		"points", tr.Len(),
		"accepted", tr.Stats.Accepted,
		"rejected", tr.Stats.Rejected,
		"elapsed", time.Since(start).Round(time.Microsecond))
	return tr, nil
}

// evolution is the time the grid covers, n*dt, which is the drawing time
// of the path.
func evolution(tr *trajectory.Trajectory) float64 {
	return float64(tr.Len()) * tr.Dt
}

func metadataFor(cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:     preset,
		Params:     cfg.System,
		Initial:    cfg.Initial,
		Duration:   cfg.Duration,
		Dt:         cfg.Dt,
		Integrator: cfg.Solver.Integrator,
		Tolerance:  cfg.Solver.Tolerance,
	}
}

func solveRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	tr, err := sample(ctx, cfg)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(metadataFor(cfg), tr)
	if err != nil {
		return err
	}
	telemetry.WithRunID(telemetry.FromContext(ctx), runID).Info("run stored", "dir", st.Dir(runID))

	final := tr.Final()
	fmt.Println(viz.Metric("run id", runID))
	fmt.Println(viz.Metric("points", fmt.Sprint(tr.Len())))
	fmt.Println(viz.Metric("final", fmt.Sprintf("(%.4f, %.4f, %.4f)", final[0], final[1], final[2])))
	if cfg.Solver.Integrator == "rk45" {
		fmt.Println(viz.Metric("steps", fmt.Sprintf("%d accepted, %d rejected", tr.Stats.Accepted, tr.Stats.Rejected)))
		fmt.Println(viz.Metric("evaluations", fmt.Sprint(tr.Stats.Evaluations)))
	}
	return nil
}

// loadOrSolve returns the stored run named by args, or integrates the
// configured system when args is empty.
func loadOrSolve(ctx context.Context, cfg *config.Config, args []string, save bool) (*trajectory.Trajectory, string, error) {
	st := storage.New(cfg.DataDir)
	if len(args) == 1 {
		runID, err := st.Resolve(args[0])
		if err != nil {
			return nil, "", err
		}
		tr, err := st.LoadTrajectory(runID)
		if err != nil {
			return nil, "", err
		}
		return tr, runID, nil
	}

	tr, err := sample(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	if !save {
		return tr, "", nil
	}
	if err := st.Init(); err != nil {
		return nil, "", err
	}
	runID, err := st.Save(metadataFor(cfg), tr)
	return tr, runID, err
}

func renderAnimation(cmd *cobra.Command, args []string) (err error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	tr, runID, err := loadOrSolve(ctx, cfg, args, saveRun)
	if err != nil {
		return err
	}
	logger := telemetry.FromContext(ctx)
	if runID != "" {
		logger = telemetry.WithRunID(logger, runID)
		ctx = telemetry.WithLogger(ctx, logger)
	}

	sc, err := scene.NewLorenz(tr, evolution(tr))
	if err != nil {
		return err
	}
	rast, err := render.NewRasterizer(sc, render.Options{
		Width:       cfg.Render.Width,
		Height:      cfg.Render.Height,
		Supersample: cfg.Render.Supersample,
		Background:  scene.Black,
	})
	if err != nil {
		return err
	}

	if stillAt >= 0 {
		return writeStill(rast, sc.Timeline.At(stillAt), cfg.Render.Output)
	}

	var vf video.Format
	if cfg.Render.Format != "" {
		if vf, err = video.ParseFormat(cfg.Render.Format); err != nil {
			return err
		}
	}
	sink, err := video.Open(ctx, video.Options{
		Format: vf,
		Path:   cfg.Render.Output,
		Width:  cfg.Render.Width,
		Height: cfg.Render.Height,
		FPS:    cfg.Render.FPS,
		CRF:    cfg.Render.CRF,
		Frames: sc.Timeline.FrameCount(cfg.Render.FPS),
	})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sink.Close())
	}()

	p := render.NewPipeline(rast, cfg.Render.Workers)
	p.OnBatch = func(done, total int) {
		fmt.Fprintf(os.Stderr, "\r%s %d/%d", viz.ProgressBar(float64(done)/float64(total), 30), done, total)
	}
	start := time.Now()
	n, err := p.Render(ctx, cfg.Render.FPS, sink)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}
	metrics.ObserveRender(n, time.Since(start))

	logger.Info("animation written", "path", cfg.Render.Output, "frames", n, "seconds", sc.Timeline.Duration())
	return nil
}

func writeStill(rast *render.Rasterizer, fs scene.FrameState, path string) error {
	sf, err := export.FormatFromPath(path)
	if err != nil {
		return err
	}
	return writeFile(path, func(f *os.File) error {
		return export.Still(f, rast, fs, sf, stillScale)
	})
}

func previewAnimation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	tr, runID, err := loadOrSolve(cmd.Context(), cfg, args, false)
	if err != nil {
		return err
	}
	sc, err := scene.NewLorenz(tr, evolution(tr))
	if err != nil {
		return err
	}

	title := fmt.Sprintf("lorenz rho=%g", cfg.System.Rho)
	if runID != "" {
		title = "run " + shortID(runID)
	}
	return tui.Run(tui.NewPreview(sc, title, tr.Component(2), tui.PreviewOptions{Speed: speed, Loop: loop}))
}

// shortID is the display prefix of a run id.
func shortID(id string) string {
	return id[:min(8, len(id))]
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tRHO\tX0\tDURATION\tDT\tINTEG\tPOINTS\tLYAPUNOV")

	for _, run := range runs {
		lyap := "-"
		if v, ok := run.Metrics["lyapunov"]; ok {
			lyap = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%v\t%.2fs\t%.4fs\t%s\t%d\t%s\n",
			shortID(run.ID),
			run.Preset,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Params.Rho,
			run.Initial,
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Points,
			lyap,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("rho: %g\n", meta.Params.Rho)
	fmt.Printf("samples: %d\n\n", tr.Len())

	for i, name := range axisNames {
		graph := asciigraph.Plot(tr.Component(i),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+"(t)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if xAxis < 0 || xAxis > 2 || yAxis < 0 || yAxis > 2 {
		return fmt.Errorf("projection axes must be 0, 1 or 2")
	}
	proj := analysis.Project(tr, xAxis, yAxis)
	fmt.Printf("%s-%s projection\n", axisNames[xAxis], axisNames[yAxis])
	fmt.Println(analysis.ScatterToASCII(proj, 80, 30))

	if svgPath != "" {
		err := writeFile(svgPath, func(f *os.File) error {
			return export.ProjectionSVG(f, proj, 800, 600, scene.Blue)
		})
		if err != nil {
			return err
		}
		fmt.Printf("projection written to %s\n", svgPath)
	}
	if htmlPath != "" {
		err := writeFile(htmlPath, func(f *os.File) error {
			return export.TrajectoryHTML(f, fmt.Sprintf("lorenz rho=%g", meta.Params.Rho), tr, xAxis, yAxis)
		})
		if err != nil {
			return err
		}
		fmt.Printf("chart written to %s\n", htmlPath)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	ref := *cfg
	ref.Solver.Integrator = "rk45"
	reference, err := sample(ctx, &ref)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}

	fmt.Printf("integrator comparison (T=%gs, dt=%g, reference rk45 rtol=%g)\n\n", cfg.Duration, cfg.Dt, cfg.Solver.Tolerance.Rel)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tTIME\tERR@1s\tDIVERGES AT\tFINAL")

	for _, name := range integrators.Names() {
		c := *cfg
		c.Solver.Integrator = name
		start := time.Now()
		tr, err := sample(ctx, &c)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\t%v\tfailed: %v\t\t\n", name, elapsed.Round(time.Microsecond), err)
			continue
		}

		sep, err := analysis.Separation(reference, tr)
		if err != nil {
			return err
		}
		errAt1, diverge := "-", "-"
		for i, t := range tr.Times {
			if t <= 1 {
				errAt1 = fmt.Sprintf("%.2e", sep[i])
			}
			if sep[i] > 1 {
				diverge = fmt.Sprintf("%.2fs", t)
				break
			}
		}
		final := tr.Final()
		fmt.Fprintf(w, "%s\t%v\t%s\t%s\t(%.3f, %.3f, %.3f)\n",
			name, elapsed.Round(time.Microsecond), errAt1, diverge, final[0], final[1], final[2])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if members < 2 {
		return nil
	}
	return compareEnsemble(ctx, cfg)
}

// compareEnsemble integrates members copies of the initial state, each
// shifted by eps along x, and reports how fast they separate.
func compareEnsemble(ctx context.Context, cfg *config.Config) error {
	s, err := newSampler(cfg)
	if err != nil {
		return err
	}
	starts := trajectory.Perturb(cfg.InitialState(), members, 0, eps)
	runs, err := trajectory.NewEnsemble(s, cfg.Render.Workers).Run(ctx, starts, cfg.Duration, cfg.Dt)
	if err != nil {
		return err
	}

	fmt.Printf("\nsensitivity (%d members, eps=%g)\n\n", members, eps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tOFFSET\tSEP@T/4\tSEP@T/2\tSEP@T\tRATE@T/4")

	var first []float64
	for k := 1; k < len(runs); k++ {
		sep, err := analysis.Separation(runs[0], runs[k])
		if err != nil {
			return err
		}
		d0 := float64(k) * eps
		rate := analysis.DivergenceRate(sep, runs[0].Times, d0)
		n := len(sep)
		fmt.Fprintf(w, "%d\t%.1e\t%.2e\t%.2e\t%.2e\t%.3f\n", k, d0, sep[n/4], sep[n/2], sep[n-1], rate[n/4])
		if k == 1 {
			first = sep
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	logSep := make([]float64, len(first))
	for i, v := range first {
		logSep[i] = math.Log10(max(v, 1e-300))
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(logSep,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("log10 separation, member 1")))
	return nil
}
