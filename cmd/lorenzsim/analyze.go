package main

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lorenzsim/internal/analysis"
	"github.com/san-kum/lorenzsim/internal/integrators"
	"github.com/san-kum/lorenzsim/internal/physics"
	"github.com/san-kum/lorenzsim/internal/storage"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

func analyzeCommand() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "chaos diagnostics for the lorenz system",
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum <run-id>",
		Short: "power spectrum of one coordinate of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeSpectrum,
	}
	spectrumCmd.Flags().Int("axis", 0, "state index (0=x, 1=y, 2=z)")

	returnMapCmd := &cobra.Command{
		Use:   "returnmap <run-id>",
		Short: "Lorenz map of successive maxima of one coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeReturnMap,
	}
	returnMapCmd.Flags().Int("axis", 2, "state index (0=x, 1=y, 2=z)")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [run-id]",
		Short: "largest lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeLyapunov,
	}
	lyapunovCmd.Flags().Float64Var(&lyapTime, "horizon", 100, "integration time for the estimate")
	lyapunovCmd.Flags().Float64Var(&lyapD0, "d0", 1e-8, "renormalized separation")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "maxima of one coordinate while sweeping a parameter",
		Args:  cobra.NoArgs,
		RunE:  analyzeBifurcation,
	}
	bifurcationCmd.Flags().StringVar(&sweepParam, "param", "rho", "parameter to sweep")
	bifurcationCmd.Flags().Float64Var(&sweepMin, "min", 20, "sweep start")
	bifurcationCmd.Flags().Float64Var(&sweepMax, "max", 200, "sweep end")
	bifurcationCmd.Flags().IntVar(&sweepSteps, "steps", 60, "parameter values")
	bifurcationCmd.Flags().Float64Var(&sweepTransient, "transient", 20, "discarded time per value")
	bifurcationCmd.Flags().Float64Var(&sweepRecord, "record", 20, "recorded time per value")
	bifurcationCmd.Flags().Int("axis", 2, "state index (0=x, 1=y, 2=z)")

	analyzeCmd.AddCommand(spectrumCmd, returnMapCmd, lyapunovCmd, bifurcationCmd)
	return analyzeCmd
}

func loadRun(arg string) (*storage.RunMetadata, *trajectory.Trajectory, error) {
	st := storage.New(dataDir)
	runID, err := st.Resolve(arg)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	// the directory name is authoritative for later writes
	meta.ID = runID
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, tr, nil
}

// axisFlag reads the subcommand's own --axis flag; each subcommand has its
// own default.
func axisFlag(cmd *cobra.Command) (int, error) {
	axis, err := cmd.Flags().GetInt("axis")
	if err != nil {
		return 0, err
	}
	if axis < 0 || axis > 2 {
		return 0, fmt.Errorf("axis must be 0, 1 or 2, got %d", axis)
	}
	return axis, nil
}

func analyzeSpectrum(cmd *cobra.Command, args []string) error {
	axis, err := axisFlag(cmd)
	if err != nil {
		return err
	}
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if tr.Len() < 4 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("rho: %g\n\n", meta.Params.Rho)

	data := tr.Component(axis)
	ps := analysis.PowerSpectrum(data)
	plotData := ps[:max(len(ps)/4, 2)]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", axisNames[axis])),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(data, tr.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return storage.New(dataDir).SetMetric(meta.ID, "dominant_frequency_"+axisNames[axis], freq)
}

func analyzeReturnMap(cmd *cobra.Command, args []string) error {
	axis, err := axisFlag(cmd)
	if err != nil {
		return err
	}
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	rm := analysis.ReturnMap(tr, axis)
	if len(rm) == 0 {
		return fmt.Errorf("run %s has too few maxima of %s", meta.ID, axisNames[axis])
	}

	fmt.Printf("return map of %s maxima: %s\n", axisNames[axis], meta.ID)
	fmt.Printf("maxima: %d\n\n", len(rm)+1)
	fmt.Println(analysis.ScatterToASCII(rm, 60, 30))

	// section through the C± plane z = rho-1
	level := meta.Params.Rho - 1
	section := analysis.PoincareSection(tr, 2, level, 0, 1)
	fmt.Printf("\npoincare section z=%g: %d crossings\n", level, len(section))
	if len(section) > 0 {
		fmt.Println(analysis.ScatterToASCII(section, 60, 20))
	}
	return nil
}

func analyzeLyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	params, x0 := cfg.System, cfg.InitialState()
	runID := ""
	if len(args) == 1 {
		meta, tr, err := loadRun(args[0])
		if err != nil {
			return err
		}
		// start on the attractor rather than on the transient
		params, x0, runID = meta.Params, tr.Final(), meta.ID
	}

	integ, err := integrators.Get("rk4")
	if err != nil {
		return err
	}
	lambda, err := analysis.LyapunovExponent(physics.NewLorenzWithParams(params), integ, x0, cfg.Dt, lyapTime, lyapD0)
	if err != nil {
		return err
	}

	fmt.Printf("largest lyapunov exponent: %.4f\n", lambda)
	switch {
	case lambda > 0.01:
		fmt.Printf("chaotic, predictability horizon ~%.1f time units per decade of error\n", math.Ln10/lambda)
	case lambda < -0.01:
		fmt.Println("converges to a fixed point")
	default:
		fmt.Println("marginal, consistent with a periodic orbit")
	}

	if runID == "" {
		return nil
	}
	return storage.New(dataDir).SetMetric(runID, "lyapunov", lambda)
}

func analyzeBifurcation(cmd *cobra.Command, args []string) error {
	axis, err := axisFlag(cmd)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSampler(cfg)
	if err != nil {
		return err
	}

	points, err := analysis.BifurcationDiagram(cmd.Context(), s, cfg.InitialState(), analysis.Sweep{
		Param:      sweepParam,
		Min:        sweepMin,
		Max:        sweepMax,
		Steps:      sweepSteps,
		Axis:       axis,
		Transient:  sweepTransient,
		Record:     sweepRecord,
		Dt:         cfg.Dt,
		Resolution: 0.05,
	})
	if err != nil {
		return err
	}

	fmt.Printf("bifurcation diagram: %s maxima vs %s in [%g, %g]\n\n", axisNames[axis], sweepParam, sweepMin, sweepMax)
	fmt.Println(analysis.BifurcationToASCII(points, 80, 30))
	return nil
}
