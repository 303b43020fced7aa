package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// InteractivePage writes a standalone HTML page with one browser-rendered
// chart per distribution. Class is drawn as a pie, the rest as bars.
func InteractivePage(w io.Writer, s Summary) error {
	page := components.NewPage()
	page.PageTitle = "Specimen catalog"
	if s.Name != "" {
		page.PageTitle = s.Name
	}
	for _, sec := range Sections(s.Bundle) {
		if len(sec.Rows) == 0 {
			continue
		}
		if sec.Field == "class" {
			page.AddCharts(interactivePie(sec))
		} else {
			page.AddCharts(interactiveBar(sec))
		}
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render interactive page: %w", err)
	}
	return nil
}

func interactiveBar(sec Section) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: sec.Title}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1000px", Height: "480px"}),
	)
	labels := make([]string, len(sec.Rows))
	data := make([]opts.BarData, len(sec.Rows))
	for i, g := range sec.Rows {
		labels[i] = g.Label
		data[i] = opts.BarData{Name: g.Label, Value: g.Count}
	}
	bar.SetXAxis(labels).AddSeries("Specimens", data)
	return bar
}

func interactivePie(sec Section) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: sec.Title}),
	)
	data := make([]opts.PieData, 0, len(sec.Rows))
	for _, g := range sec.Rows {
		if g.Count > 0 {
			data = append(data, opts.PieData{Name: g.Label, Value: g.Count})
		}
	}
	pie.AddSeries("Specimens", data)
	return pie
}
