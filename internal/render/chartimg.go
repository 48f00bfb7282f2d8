package render

import (
	"bytes"
	"fmt"

	chartlib "github.com/wcharczuk/go-chart/v2"

	"github.com/finreports/insightd/internal/charts"
)

// ChartPNG rasterizes a chart spec for embedding in the PDF. Bar charts
// with multiple series draw their first series; the spec keeps the full
// data for renderers that can do better.
func ChartPNG(spec charts.Spec, width, height int) ([]byte, error) {
	if width <= 0 {
		width = 720
	}
	if height <= 0 {
		height = 360
	}

	var buf bytes.Buffer
	switch spec.Kind {
	case charts.KindLine:
		if err := renderLine(spec, width, height, &buf); err != nil {
			return nil, err
		}
	case charts.KindBar:
		if err := renderBar(spec, width, height, &buf); err != nil {
			return nil, err
		}
	case charts.KindPie:
		if err := renderPie(spec, width, height, &buf); err != nil {
			return nil, err
		}
	case charts.KindScatter:
		if err := renderScatter(spec, width, height, &buf); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("render: unknown chart kind %q", spec.Kind)
	}
	return buf.Bytes(), nil
}

func renderLine(spec charts.Spec, width, height int, buf *bytes.Buffer) error {
	if len(spec.Labels) == 0 || len(spec.Series) == 0 {
		return fmt.Errorf("render: empty line chart")
	}

	ticks := make([]chartlib.Tick, len(spec.Labels))
	xs := make([]float64, len(spec.Labels))
	for i, l := range spec.Labels {
		xs[i] = float64(i)
		ticks[i] = chartlib.Tick{Value: float64(i), Label: l}
	}

	var series []chartlib.Series
	for _, s := range spec.Series {
		series = append(series, chartlib.ContinuousSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: s.Data,
		})
	}

	graph := chartlib.Chart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		XAxis:  chartlib.XAxis{Ticks: ticks},
		Series: series,
	}
	return graph.Render(chartlib.PNG, buf)
}

func renderBar(spec charts.Spec, width, height int, buf *bytes.Buffer) error {
	if len(spec.Series) == 0 || len(spec.Series[0].Data) == 0 {
		return fmt.Errorf("render: empty bar chart")
	}
	first := spec.Series[0]

	values := make([]chartlib.Value, len(first.Data))
	for i, v := range first.Data {
		label := ""
		if i < len(spec.Labels) {
			label = spec.Labels[i]
		}
		values[i] = chartlib.Value{Value: v, Label: label}
	}

	graph := chartlib.BarChart{
		Title:    spec.Title,
		Width:    width,
		Height:   height,
		BarWidth: 40,
		Bars:     values,
	}
	return graph.Render(chartlib.PNG, buf)
}

func renderPie(spec charts.Spec, width, height int, buf *bytes.Buffer) error {
	if len(spec.Series) == 0 || len(spec.Series[0].Data) == 0 {
		return fmt.Errorf("render: empty pie chart")
	}
	first := spec.Series[0]

	values := make([]chartlib.Value, 0, len(first.Data))
	for i, v := range first.Data {
		if v <= 0 {
			// Pie slices must be positive.
			continue
		}
		label := ""
		if i < len(spec.Labels) {
			label = spec.Labels[i]
		}
		values = append(values, chartlib.Value{Value: v, Label: label})
	}
	if len(values) == 0 {
		return fmt.Errorf("render: pie chart has no positive slices")
	}

	graph := chartlib.PieChart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return graph.Render(chartlib.PNG, buf)
}

func renderScatter(spec charts.Spec, width, height int, buf *bytes.Buffer) error {
	if len(spec.Series) == 0 || len(spec.Series[0].X) == 0 {
		return fmt.Errorf("render: empty scatter chart")
	}
	first := spec.Series[0]

	graph := chartlib.Chart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Series: []chartlib.Series{
			chartlib.ContinuousSeries{
				Name:    first.Label,
				XValues: first.X,
				YValues: first.Y,
				Style: chartlib.Style{
					StrokeWidth: chartlib.Disabled,
					DotWidth:    4,
				},
			},
		},
	}
	return graph.Render(chartlib.PNG, buf)
}
