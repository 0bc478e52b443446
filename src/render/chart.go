package render

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"time"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iafilius/WormChart/src/types"
)

var (
	progressColor  = drawing.ColorFromHex("4682b4") // steelblue
	glowColor      = progressColor.WithAlpha(64)
	goalColor      = drawing.ColorFromHex("ff6347") // tomato
	milestoneColor = drawing.ColorFromHex("9e9e9e")
)

const (
	progressStrokeWidth = 8
	glowStrokeWidth     = 18
	goalStrokeWidth     = 2
)

// Chart builds the go-chart definition for a frame: milestone lines, the dashed goal,
// the glow underlay and the progress worm, in that drawing order.
func (f Frame) Chart() chart.Chart {
	s := f.Settings
	series := []chart.Series{}

	for _, m := range f.Milestones {
		ts := timeSeries(m.Name, m.Points, chart.Style{
			StrokeColor:     milestoneColor,
			StrokeWidth:     1,
			StrokeDashArray: []float64{2, 4},
		})
		series = append(series, ts)
	}
	if len(f.Milestones) > 0 {
		ann := chart.AnnotationSeries{Name: "milestones"}
		for _, m := range f.Milestones {
			if len(m.Points) == 0 {
				continue
			}
			p := m.Points[0]
			ann.Annotations = append(ann.Annotations, chart.Value2{
				XValue: chart.TimeToFloat64(p.Timestamp),
				YValue: p.Cumulative.InexactFloat64(),
				Label:  FormatSI(p.Cumulative.InexactFloat64()),
			})
		}
		if len(ann.Annotations) > 0 {
			series = append(series, ann)
		}
	}

	series = append(series, timeSeries("Target", f.Goal.Points, chart.Style{
		StrokeColor:     goalColor,
		StrokeWidth:     goalStrokeWidth,
		StrokeDashArray: []float64{4, 2},
	}))
	series = append(series, timeSeries("glow", f.Progress.Points, chart.Style{
		StrokeColor: glowColor,
		StrokeWidth: glowStrokeWidth,
	}))
	series = append(series, timeSeries("Progress", f.Progress.Points, chart.Style{
		StrokeColor: progressColor,
		StrokeWidth: progressStrokeWidth,
	}))

	return chart.Chart{
		Title:  "Total raised: " + f.Total,
		Width:  s.Width,
		Height: s.Height,
		Background: chart.Style{Padding: chart.Box{
			Top:    s.Margins.Top,
			Right:  s.Margins.Right,
			Bottom: s.Margins.Bottom,
			Left:   s.Margins.Left,
		}},
		XAxis: chart.XAxis{
			Range: f.xChartRange(),
			Ticks: f.XTicks,
			Style: chart.Style{TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{
			Range: f.Y.ChartRange(),
			Ticks: f.YTicks,
		},
		Series: series,
	}
}

// xChartRange is the X scale domain, ordered and widened to at least a day so go-chart
// never sees a zero-width range.
func (f Frame) xChartRange() *chart.ContinuousRange {
	d0, d1 := f.X.Domain()
	if d1.Before(d0) {
		d0, d1 = d1, d0
	}
	if d1.Sub(d0) < 24*time.Hour {
		d1 = d0.Add(24 * time.Hour)
	}
	return &chart.ContinuousRange{Min: chart.TimeToFloat64(d0), Max: chart.TimeToFloat64(d1)}
}

// timeSeries converts points for go-chart. A single point is duplicated one second later
// because go-chart needs at least two values to draw a line.
func timeSeries(name string, points []types.RenderedPoint, st chart.Style) chart.TimeSeries {
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Timestamp
		ys[i] = p.Cumulative.InexactFloat64()
	}
	if len(points) == 1 {
		xs = append(xs, xs[0].Add(time.Second))
		ys = append(ys, ys[0])
	}
	return chart.TimeSeries{Name: name, XValues: xs, YValues: ys, Style: st}
}

// WriteSVG renders the frame as SVG.
func WriteSVG(w io.Writer, f Frame) error {
	ch := f.Chart()
	if err := ch.Render(chart.SVG, w); err != nil {
		return errors.Wrap(err, "render svg")
	}
	return nil
}

// RenderImage renders the frame to an image with the "last updated" overlay applied.
func RenderImage(f Frame) (image.Image, error) {
	img, _, err := RenderPlot(f)
	return img, err
}

// RenderPlot is RenderImage plus the plot area go-chart actually drew into, in image
// pixels. The box is narrower than Settings.PlotSize because the axes take their
// label gutters out of it.
func RenderPlot(f Frame) (image.Image, chart.Box, error) {
	ch := f.Chart()
	var box chart.Box
	ch.Elements = append(ch.Elements, func(_ chart.Renderer, canvasBox chart.Box, _ chart.Style) {
		box = canvasBox
	})
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, chart.Box{}, errors.Wrap(err, "render png")
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, chart.Box{}, errors.Wrap(err, "decode png")
	}
	return drawCaption(img, f.Caption()), box, nil
}

// TimeAtImageX inverts go-chart's X mapping inside box. Positions outside the box are
// clamped to its edges; ok is false for an empty box.
func (f Frame) TimeAtImageX(ix float64, box chart.Box) (time.Time, bool) {
	w := box.Width()
	if w <= 0 {
		return time.Time{}, false
	}
	frac := (ix - float64(box.Left)) / float64(w)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	rng := f.xChartRange()
	return chart.TimeFromFloat64(rng.Min + frac*(rng.Max-rng.Min)), true
}

// WritePNG renders the frame as PNG, including the caption overlay.
func WritePNG(w io.Writer, f Frame) error {
	img, err := RenderImage(f)
	if err != nil {
		return err
	}
	return errors.Wrap(png.Encode(w, img), "encode png")
}

// Caption is the overlay text drawn on raster output.
func (f Frame) Caption() string {
	if f.RenderedAt.IsZero() {
		return ""
	}
	return "Last updated: " + f.RenderedAt.UTC().Format("2006-01-02 15:04:05 UTC")
}
