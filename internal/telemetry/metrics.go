package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects solver and render counters for one command invocation.
// A command line tool has no scrape endpoint, so the registry is written
// out once in the node_exporter textfile format.
type Metrics struct {
	Registry *prometheus.Registry

	SolverSteps       *prometheus.CounterVec
	SolverEvaluations prometheus.Counter
	FramesRendered    prometheus.Counter
	StageSeconds      *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		SolverSteps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lorenzsim_solver_steps_total",
			Help: "Adaptive integrator steps by outcome (accepted, rejected)",
		}, []string{"outcome"}),
		SolverEvaluations: factory.NewCounter(prometheus.CounterOpts{
			Name: "lorenzsim_solver_rhs_evaluations_total",
			Help: "Vector field evaluations performed by the integrator",
		}),
		FramesRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "lorenzsim_frames_rendered_total",
			Help: "Animation frames rasterized and written to a sink",
		}),
		StageSeconds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lorenzsim_stage_duration_seconds",
			Help: "Wall time of the last run of each stage",
		}, []string{"stage"}),
	}
}

// ObserveSolve records the step statistics of one integration.
func (m *Metrics) ObserveSolve(accepted, rejected, evaluations int, elapsed time.Duration) {
	m.SolverSteps.WithLabelValues("accepted").Add(float64(accepted))
	m.SolverSteps.WithLabelValues("rejected").Add(float64(rejected))
	m.SolverEvaluations.Add(float64(evaluations))
	m.StageSeconds.WithLabelValues("solve").Set(elapsed.Seconds())
}

func (m *Metrics) ObserveRender(frames int, elapsed time.Duration) {
	m.FramesRendered.Add(float64(frames))
	m.StageSeconds.WithLabelValues("render").Set(elapsed.Seconds())
}

// WriteTextfile writes every collected metric to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
