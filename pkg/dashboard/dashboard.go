package dashboard

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ardalan-sia/envyfree-traffic/pkg/junction"
	"github.com/ardalan-sia/envyfree-traffic/pkg/simulation"
)

// maxPlotPoints caps the rendered series length; longer runs are
// downsampled by stride so the HTML stays lightweight.
const maxPlotPoints = 2000

// Render writes an HTML report with a vehicle-count chart and a
// green-phase chart built from the recorded time points.
func Render(w io.Writer, timePoints []simulation.TimePoint) error {
	if len(timePoints) == 0 {
		return fmt.Errorf("no time points to render")
	}

	stride := 1
	if len(timePoints) > maxPlotPoints {
		stride = (len(timePoints) + maxPlotPoints - 1) / maxPlotPoints
	}

	labels := make([]string, 0, len(timePoints)/stride+1)
	counts := make(map[junction.Approach][]opts.LineData, len(junction.AllApproaches))
	phases := make(map[junction.Approach][]opts.LineData, len(junction.AllApproaches))

	for i := 0; i < len(timePoints); i += stride {
		tp := timePoints[i]
		labels = append(labels, tp.Time.Format("15:04:05"))

		for _, a := range junction.AllApproaches {
			counts[a] = append(counts[a], opts.LineData{Value: tp.State.Approaches[a].VehicleCount})

			lit := 0.0
			switch tp.State.PhaseFor(a) {
			case junction.PhaseGreen:
				lit = 1.0
			case junction.PhaseAmber:
				lit = 0.5
			}
			phases[a] = append(phases[a], opts.LineData{Value: lit})
		}
	}

	countChart := charts.NewLine()
	countChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Junction Signal Report", Theme: "dark", Width: "1200px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: "Vehicle Counts per Approach", Subtitle: fmt.Sprintf("points=%d stride=%d", len(labels), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	countChart.SetXAxis(labels)
	for _, a := range junction.AllApproaches {
		countChart.AddSeries(string(a), counts[a])
	}

	phaseChart := charts.NewLine()
	phaseChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1200px", Height: "350px"}),
		charts.WithTitleOpts(opts.Title{Title: "Right-of-Way", Subtitle: "1 = green, 0.5 = amber, 0 = red"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	phaseChart.SetXAxis(labels)
	for _, a := range junction.AllApproaches {
		phaseChart.AddSeries(string(a), phases[a])
	}

	page := components.NewPage()
	page.AddCharts(countChart, phaseChart)
	return page.Render(w)
}

// WriteHTML renders the report into a file at path.
func WriteHTML(path string, timePoints []simulation.TimePoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	return Render(f, timePoints)
}
