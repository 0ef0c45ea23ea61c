package viz

import (
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/phaseportrait/internal/dynamo"
)

// TimeSeries plots every state component of a trajectory against sample
// index. It returns "" when there is nothing to plot.
func TimeSeries(traj *dynamo.Result, width, height int) string {
	if traj == nil || len(traj.States) < 2 || len(traj.States[0]) == 0 {
		return ""
	}

	dim := len(traj.States[0])
	series := make([][]float64, dim)
	for i := range series {
		series[i] = make([]float64, len(traj.States))
	}
	for k, x := range traj.States {
		for i := 0; i < dim && i < len(x); i++ {
			series[i][k] = x[i]
		}
	}

	colors := []asciigraph.AnsiColor{asciigraph.Blue, asciigraph.Red, asciigraph.Green, asciigraph.Yellow}
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(colors[:min(dim, len(colors))]...),
		asciigraph.Caption("x1 (blue), x2 (red) vs sample"),
	)
	return graphStyle.Render(graph)
}
