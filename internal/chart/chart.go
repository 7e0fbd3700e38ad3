// Package chart renders a closed-loop run as a standalone HTML report:
// the driven path against the reference polynomial, the cross-track
// error trace and the actuation traces.
package chart

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/pathmpc/internal/poly"
	"github.com/san-kum/pathmpc/internal/sim"
)

// Render writes the full report page for one run.
func Render(w io.Writer, title string, ref poly.Poly, result *sim.Result) error {
	page := components.NewPage()
	page.AddCharts(
		pathChart(title, ref, result),
		cteChart(ref, result),
		controlChart(result),
	)
	return page.Render(w)
}

// RenderFile renders the report to the named HTML file.
func RenderFile(path, title string, ref poly.Poly, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return Render(file, title, ref, result)
}

func pathChart(title string, ref poly.Poly, result *sim.Result) *charts.Line {
	driven := make([]opts.LineData, 0, len(result.States))
	reference := make([]opts.LineData, 0, len(result.States))
	xs := make([]string, 0, len(result.States))

	for _, s := range result.States {
		x := s[sim.IdxX]
		xs = append(xs, fmt.Sprintf("%.1f", x))
		driven = append(driven, opts.LineData{Value: s[sim.IdxY]})
		reference = append(reference, opts.LineData{Value: ref.Eval(x)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "driven path vs reference"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y (m)"}),
	)
	line.SetXAxis(xs).
		AddSeries("driven", driven).
		AddSeries("reference", reference)
	return line
}

func cteChart(ref poly.Poly, result *sim.Result) *charts.Line {
	cte := make([]opts.LineData, 0, len(result.States))
	ts := make([]string, 0, len(result.States))

	for i, s := range result.States {
		ts = append(ts, fmt.Sprintf("%.1f", result.Times[i]))
		cte = append(cte, opts.LineData{Value: ref.Eval(s[sim.IdxX]) - s[sim.IdxY]})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Cross-track error"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "cte (m)"}),
	)
	line.SetXAxis(ts).AddSeries("cte", cte)
	return line
}

func controlChart(result *sim.Result) *charts.Line {
	steer := make([]opts.LineData, 0, len(result.Controls))
	accel := make([]opts.LineData, 0, len(result.Controls))
	ts := make([]string, 0, len(result.Controls))

	for i, u := range result.Controls {
		ts = append(ts, fmt.Sprintf("%.1f", result.Times[i]))
		if len(u) >= 2 {
			steer = append(steer, opts.LineData{Value: u[0]})
			accel = append(accel, opts.LineData{Value: u[1]})
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Actuation"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "command"}),
	)
	line.SetXAxis(ts).
		AddSeries("steer", steer).
		AddSeries("accel", accel)
	return line
}
