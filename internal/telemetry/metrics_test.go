package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics()
	m.ObserveSolve(120, 7, 770, 40*time.Millisecond)
	m.ObserveSolve(10, 1, 66, 5*time.Millisecond)
	m.ObserveRender(678, 3*time.Second)

	assert.Equal(t, 130.0, testutil.ToFloat64(m.SolverSteps.WithLabelValues("accepted")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.SolverSteps.WithLabelValues("rejected")))
	assert.Equal(t, 836.0, testutil.ToFloat64(m.SolverEvaluations))
	assert.Equal(t, 678.0, testutil.ToFloat64(m.FramesRendered))
	// gauges keep the last observation
	assert.InDelta(t, 0.005, testutil.ToFloat64(m.StageSeconds.WithLabelValues("solve")), 1e-12)
}

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ObserveRender(3, time.Second)

	path := filepath.Join(t.TempDir(), "lorenzsim.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lorenzsim_frames_rendered_total 3")
	assert.Contains(t, string(data), `lorenzsim_stage_duration_seconds{stage="render"} 1`)
}
