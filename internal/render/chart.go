package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"strconv"

	"recogstats/internal/domain"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 1000
	chartHeight = 600
	barWidth    = 120
	barSpacing  = 60
)

// Metric is one bar of the statistics chart.
type Metric struct {
	Label string
	Value int
	Color drawing.Color
}

// Metrics returns the bars in canonical order: Total, Active, Custom Image
// URLs, Descriptions > threshold, Missing End Date.
func Metrics(s domain.StatsSummary, threshold int) []Metric {
	return []Metric{
		{Label: "Total", Value: s.Total, Color: chart.ColorBlue},
		{Label: "Active", Value: s.Active, Color: chart.ColorGreen},
		{Label: "Custom Image URLs", Value: s.ImageURLCount, Color: chart.ColorOrange},
		{Label: fmt.Sprintf("Descriptions > %d", threshold), Value: s.LongDescriptionCount, Color: chart.ColorRed},
		{Label: "Missing End Date", Value: s.MissingEndDateCount, Color: chart.ColorRed},
	}
}

// BarChart renders metrics with go-chart and decodes the PNG back into an
// image for composition.
func BarChart(title string, metrics []Metric) (image.Image, error) {
	top := axisTop(metrics)
	bars := make([]chart.Value, 0, len(metrics))
	for _, m := range metrics {
		bars = append(bars, chart.Value{
			Label: m.Label,
			Value: float64(m.Value),
			Style: chart.Style{FillColor: m.Color, StrokeColor: m.Color, StrokeWidth: 1},
		})
	}

	bc := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 16},
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20}},
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis:      chart.Style{FontSize: 11},
		YAxis: chart.YAxis{
			Name:           "Counts",
			Range:          &chart.ContinuousRange{Min: 0, Max: top},
			Ticks:          axisTicks(top),
			ValueFormatter: intFormatter,
		},
		Bars:     bars,
		Elements: []chart.Renderable{valueLabels(metrics, top)},
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering bar chart: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decoding bar chart: %w", err)
	}
	return img, nil
}

// axisTop leaves headroom above the tallest bar for its label. An all-zero
// chart still gets a non-empty range.
func axisTop(metrics []Metric) float64 {
	highest := 0
	for _, m := range metrics {
		if m.Value > highest {
			highest = m.Value
		}
	}
	return math.Max(1, math.Ceil(float64(highest)*1.15))
}

func axisTicks(top float64) []chart.Tick {
	step := math.Max(1, math.Ceil(top/10))
	var ticks []chart.Tick
	for v := 0.0; v <= top; v += step {
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.Itoa(int(v))})
	}
	return ticks
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return ""
}

// valueLabels writes each non-zero value above its bar.
func valueLabels(metrics []Metric, top float64) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		if len(metrics) == 0 || box.Width() <= 0 {
			return
		}
		style := chart.Style{FontSize: 12, FontColor: chart.ColorBlack}.InheritFrom(defaults)
		style.WriteTextOptionsToRenderer(r)

		for i, m := range metrics {
			if m.Value == 0 {
				continue
			}
			label := strconv.Itoa(m.Value)
			tb := r.MeasureText(label)
			cx := barCenter(box, len(metrics), i)
			barTop := box.Bottom - int(float64(m.Value)/top*float64(box.Height()))
			r.Text(label, cx-tb.Width()/2, barTop-6)
		}
	}
}

// barCenter mirrors go-chart's bar placement: bars start at the canvas
// left edge in slots of width plus spacing, and spacing shrinks when the
// bars would overflow the canvas.
func barCenter(box chart.Box, n, i int) int {
	spacing := barSpacing
	if n*(barWidth+barSpacing) > box.Width() {
		spacing = 0
		if rest := box.Width() - n*barWidth; rest > 0 {
			spacing = int(math.Ceil(float64(rest) / float64(n)))
		}
	}
	return box.Left + i*(barWidth+spacing) + spacing>>1 + barWidth/2
}
