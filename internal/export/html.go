package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/lorenzsim/internal/analysis"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// maxChartPoints bounds the samples embedded per series; the page stays
// responsive in a browser at this size.
const maxChartPoints = 4000

var componentNames = []string{"x", "y", "z"}

// TrajectoryHTML writes a standalone page with the xIdx-yIdx projection of
// tr as a scatter and each coordinate against time as a line chart.
func TrajectoryHTML(w io.Writer, title string, tr *trajectory.Trajectory, xIdx, yIdx int) error {
	if xIdx < 0 || xIdx > 2 || yIdx < 0 || yIdx > 2 {
		return fmt.Errorf("projection axes must be 0, 1 or 2, got %d and %d", xIdx, yIdx)
	}
	proj := analysis.Project(tr, xIdx, yIdx)
	if len(proj) < 2 {
		return fmt.Errorf("chart needs at least two samples and valid axes, got %d", len(proj))
	}
	stride := max(1, (len(proj)+maxChartPoints-1)/maxChartPoints)

	scatterData := make([]opts.ScatterData, 0, len(proj)/stride+1)
	for i := 0; i < len(proj); i += stride {
		scatterData = append(scatterData, opts.ScatterData{Value: []interface{}{proj[i].X, proj[i].Y}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%s-%s projection, %d samples", componentNames[xIdx], componentNames[yIdx], tr.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: componentNames[xIdx], NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: componentNames[yIdx], NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("projection", scatterData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))

	labels := make([]string, 0, tr.Len()/stride+1)
	for i := 0; i < tr.Len(); i += stride {
		labels = append(labels, fmt.Sprintf("%.2f", tr.Times[i]))
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "components"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t", NameLocation: "middle", NameGap: 25}),
	)
	line.SetXAxis(labels)
	for c, name := range componentNames {
		values := tr.Component(c)
		data := make([]opts.LineData, 0, len(labels))
		for i := 0; i < len(values); i += stride {
			data = append(data, opts.LineData{Value: values[i]})
		}
		line.AddSeries(name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(scatter, line)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart page: %w", err)
	}
	return nil
}
