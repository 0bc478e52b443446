package main

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/iafilius/WormChart/src/render"
	"github.com/iafilius/WormChart/src/types"
)

func testFrame(t *testing.T) (render.Frame, chart.Box) {
	t.Helper()
	c := render.NewContext(render.Settings{
		TargetTotal:    decimal.NewFromInt(40_000_000),
		ForcedEndDate:  time.Date(2025, 8, 31, 23, 59, 59, 0, time.UTC),
		Width:          960,
		Height:         500,
		Margins:        render.Margins{Top: 20, Right: 30, Bottom: 30, Left: 50},
		CurrencySymbol: "£",
	})
	series := types.Series{
		{Timestamp: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1_000)},
		{Timestamp: time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(5_000)},
		{Timestamp: time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(9_000)},
	}
	if err := c.Render(series, time.Now()); err != nil {
		t.Fatalf("render: %v", err)
	}
	f, _ := c.Snapshot()
	_, box, err := render.RenderPlot(f)
	if err != nil {
		t.Fatalf("render plot: %v", err)
	}
	return f, box
}

func TestHoverTextPicksNearestPoint(t *testing.T) {
	f, box := testFrame(t)
	// view same size as the image
	if got := hoverText(f, box, float32(box.Left)+2, 250, 960, 500); !strings.HasSuffix(got, "£1,000") {
		t.Fatalf("left hover = %q", got)
	}
	// the right edge of the drawn plot is Aug 31, more than a day past Aug 30
	if got := hoverText(f, box, float32(box.Right)-1, 250, 960, 500); !strings.HasSuffix(got, "£9,000") {
		t.Fatalf("right edge hover = %q", got)
	}
	// half-size view scales the mouse position
	if got := hoverText(f, box, float32(box.Right)/2, 125, 480, 250); !strings.HasSuffix(got, "£9,000") {
		t.Fatalf("scaled hover = %q", got)
	}
}

func TestHoverTextOutsideImage(t *testing.T) {
	f, box := testFrame(t)
	// 1920 wide view letterboxes 480px on each side
	if got := hoverText(f, box, 100, 250, 1920, 500); got != "" {
		t.Fatalf("letterbox hover should be empty, got %q", got)
	}
	if got := hoverText(render.Frame{}, box, 10, 10, 960, 500); got != "" {
		t.Fatalf("empty frame hover should be empty, got %q", got)
	}
	if got := hoverText(f, chart.Box{}, 10, 10, 960, 500); got != "" {
		t.Fatalf("hover before a plot box is known should be empty, got %q", got)
	}
}
