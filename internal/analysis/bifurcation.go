package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// BifurcationPoint holds the distinct maxima of one coordinate observed
// after the transient for a single parameter value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// Sweep describes a one-parameter bifurcation scan.
type Sweep struct {
	Param      string
	Min, Max   float64
	Steps      int
	Axis       int
	Transient  float64
	Record     float64
	Dt         float64
	Resolution float64 // maxima closer than this are merged
}

// BifurcationDiagram samples the system once per parameter value and keeps
// the local maxima of sw.Axis seen after the transient. A periodic orbit
// shows a handful of values, a chaotic one a smear. The parameter is
// restored afterwards.
func BifurcationDiagram(ctx context.Context, s *trajectory.Sampler, x0 dynamo.State, sw Sweep) (_ []BifurcationPoint, err error) {
	tunable, ok := s.System.(dynamo.Configurable)
	if !ok {
		return nil, fmt.Errorf("system %T has no tunable parameters", s.System)
	}
	original, ok := tunable.Params()[sw.Param]
	if !ok {
		return nil, fmt.Errorf("unknown parameter: %s", sw.Param)
	}
	defer func() {
		if restoreErr := tunable.SetParam(sw.Param, original); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("restore %s=%v: %w", sw.Param, original, restoreErr))
		}
	}()

	steps := max(sw.Steps, 2)
	resolution := sw.Resolution
	if resolution <= 0 {
		resolution = 1e-3
	}
	paramStep := (sw.Max - sw.Min) / float64(steps-1)
	skip := int(math.Round(sw.Transient / sw.Dt))

	results := make([]BifurcationPoint, 0, steps)
	for i := 0; i < steps; i++ {
		param := sw.Min + float64(i)*paramStep
		if err := tunable.SetParam(sw.Param, param); err != nil {
			return nil, err
		}

		tr, err := s.Sample(ctx, x0, sw.Transient+sw.Record, sw.Dt)
		if err != nil {
			return nil, fmt.Errorf("%s=%v: %w", sw.Param, param, err)
		}

		series := tr.Component(sw.Axis)
		if skip < len(series) {
			series = series[skip:]
		}

		seen := make(map[int64]bool)
		var values []float64
		for _, v := range LocalMaxima(series) {
			key := int64(math.Round(v / resolution))
			if !seen[key] {
				seen[key] = true
				values = append(values, v)
			}
		}

		results = append(results, BifurcationPoint{Param: param, Values: values})
	}

	return results, nil
}

// BifurcationToASCII draws the diagram with the parameter on the
// horizontal axis.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range data {
		for _, v := range p.Values {
			minVal, maxVal = min(minVal, v), max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
