package main

import (
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/iafilius/WormChart/cmd/wormviewer/uihelpers"
	"github.com/iafilius/WormChart/src/render"
)

// hoverText returns the tooltip for a mouse position over the chart image shown with
// contain fill in a viewW x viewH box. box is the plot area reported by render.RenderPlot.
// Empty when outside the image or before a render.
func hoverText(f render.Frame, box chart.Box, x, y, viewW, viewH float32) string {
	if len(f.Progress.Points) == 0 {
		return ""
	}
	ix, _, ok := uihelpers.ViewToImage(x, y, float32(f.Settings.Width), float32(f.Settings.Height), viewW, viewH)
	if !ok {
		return ""
	}
	t, ok := f.TimeAtImageX(float64(ix), box)
	if !ok {
		return ""
	}
	p, ok := f.NearestTime(t)
	if !ok {
		return ""
	}
	return f.Tooltip(p)
}
