package report

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/specimen-cli/internal/aggregate"
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to chart")

const (
	chartWidth  = 1024
	chartHeight = 512
)

// BarChart renders counts as a PNG bar chart. Labels keep their ranked order.
func BarChart(title string, rows []aggregate.GroupCount) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	maxCount := 1.0
	bars := make([]chart.Value, 0, len(rows))
	for _, g := range rows {
		v := float64(g.Count)
		if v > maxCount {
			maxCount = v
		}
		bars = append(bars, chart.Value{
			Value: v,
			Label: g.Label,
			Style: chart.Style{
				FillColor:   drawing.ColorBlue.WithAlpha(160),
				StrokeColor: drawing.ColorBlue,
				StrokeWidth: 1,
			},
		})
	}
	// wide distributions grow the canvas instead of squeezing the bars
	const barWidth, barSpacing = 32, 8
	width := len(bars)*(barWidth+barSpacing) + 200
	if width < chartWidth {
		width = chartWidth
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  width,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 120},
		},
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis: chart.Style{
			StrokeWidth:         1,
			StrokeColor:         chart.ColorBlack,
			TextRotationDegrees: 60,
		},
		YAxis: chart.YAxis{
			Name:  "Specimens",
			Range: &chart.ContinuousRange{Min: 0, Max: maxCount * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}
	buf := &bytes.Buffer{}
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// PieChart renders shares as a PNG pie chart. Zero counts are skipped.
func PieChart(title string, rows []aggregate.GroupCount) ([]byte, error) {
	values := make([]chart.Value, 0, len(rows))
	for _, g := range rows {
		if g.Count <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(g.Count),
			Label: fmt.Sprintf("%s (%.1f%%)", g.Label, g.Percentage),
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}
	graph := chart.PieChart{
		Title:  title,
		Width:  chartHeight,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Values: values,
	}
	buf := &bytes.Buffer{}
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Bucket is a legend entry for per-country counts.
type Bucket struct {
	Label string
	Color string
}

// Buckets lists the legend in ascending order.
var Buckets = []Bucket{
	{"0", "#f0f0f0"},
	{"1-9", "#c6dbef"},
	{"10-49", "#9ecae1"},
	{"50-99", "#6baed6"},
	{"100-199", "#4292c6"},
	{"200-499", "#2171b5"},
	{"500+", "#084594"},
}

// CountBucket returns the legend bucket for count.
func CountBucket(count int) Bucket {
	switch {
	case count <= 0:
		return Buckets[0]
	case count < 10:
		return Buckets[1]
	case count < 50:
		return Buckets[2]
	case count < 100:
		return Buckets[3]
	case count < 200:
		return Buckets[4]
	case count < 500:
		return Buckets[5]
	default:
		return Buckets[6]
	}
}
