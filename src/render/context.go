// Package render owns the progress chart: scales, clamped points, the goal line, the
// persistent render context and go-chart output.
package render

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/iafilius/WormChart/src/types"
)

// ErrEmptySeries is returned by Render when there is nothing to draw. The context is not touched.
var ErrEmptySeries = errors.New("empty series")

// Margins around the plot area, in pixels.
type Margins struct {
	Top, Right, Bottom, Left int
}

// Settings are fixed for the lifetime of a Context.
type Settings struct {
	TargetTotal    decimal.Decimal
	ForcedEndDate  time.Time
	Width, Height  int
	Margins        Margins
	MilestoneSteps []decimal.Decimal
	CurrencySymbol string
	Location       *time.Location
	YTickCount     int
}

// PlotSize is the drawable area: canvas size minus margins, never below 1px.
func (s Settings) PlotSize() (float64, float64) {
	w := s.Width - s.Margins.Left - s.Margins.Right
	h := s.Height - s.Margins.Top - s.Margins.Bottom
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return float64(w), float64(h)
}

// Path is a persistent drawing handle. Render replaces its data in place and keeps the
// previous shape so a display can interpolate between the two.
type Path struct {
	Name     string
	Points   []types.RenderedPoint
	Pixels   []Pixel
	Previous []Pixel
	Updates  int
}

func (p *Path) set(points []types.RenderedPoint, pixels []Pixel) {
	p.Previous = p.Pixels
	p.Points = points
	p.Pixels = pixels
	p.Updates++
}

func (p *Path) clone() Path {
	c := *p
	c.Points = append([]types.RenderedPoint(nil), p.Points...)
	c.Pixels = append([]Pixel(nil), p.Pixels...)
	c.Previous = append([]Pixel(nil), p.Previous...)
	return c
}

// Context is constructed once at startup and shared by every poll cycle.
type Context struct {
	mu sync.RWMutex

	settings Settings

	X TimeScale
	Y LinearScale

	XTicks []chart.Tick
	YTicks []chart.Tick

	Progress   *Path
	Goal       *Path
	Milestones []*Path

	latest      types.RenderedPoint
	total       string
	renderedAt  time.Time
	renders     int
	seriesCount int
}

// NewContext builds the scales and empty path handles. Nothing is drawable until the
// first successful Render.
func NewContext(s Settings) *Context {
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.YTickCount <= 0 {
		s.YTickCount = 8
	}
	w, h := s.PlotSize()
	target := s.TargetTotal.InexactFloat64()
	c := &Context{
		settings: s,
		X:        NewTimeScale(s.ForcedEndDate, s.ForcedEndDate, 0, w),
		Y:        NewLinearScale(0, target, h, 0),
		YTicks:   niceTicks(0, target, s.YTickCount),
		Progress: &Path{Name: "progress"},
		Goal:     &Path{Name: "goal"},
	}
	steps := append([]decimal.Decimal(nil), s.MilestoneSteps...)
	sort.Slice(steps, func(i, j int) bool { return steps[i].LessThan(steps[j]) })
	for _, m := range steps {
		if !m.IsPositive() || !m.LessThan(s.TargetTotal) {
			continue
		}
		c.Milestones = append(c.Milestones, &Path{Name: "milestone " + FormatSI(m.InexactFloat64())})
	}
	c.settings.MilestoneSteps = steps
	return c
}

func (c *Context) Settings() Settings { return c.settings }

// Render updates scales, ticks, path handles and display text from series, which must be
// sorted. An empty series returns ErrEmptySeries and leaves the previous render intact.
func (c *Context) Render(series types.Series, now time.Time) error {
	if len(series) == 0 {
		return ErrEmptySeries
	}
	goal, _ := NewGoalLine(series, c.settings.ForcedEndDate, c.settings.TargetTotal)
	points := Clamp(series, c.settings.TargetTotal)

	c.mu.Lock()
	defer c.mu.Unlock()

	start := goal.Start().Timestamp
	c.X.SetDomain(start, c.settings.ForcedEndDate)
	c.XTicks = dayTicks(start, c.settings.ForcedEndDate, DayTickEvery, c.settings.Location)

	c.Progress.set(points, project(points, c.X, c.Y))
	gp := goal.Points()
	c.Goal.set(gp, project(gp, c.X, c.Y))
	for i, m := range c.milestoneValues() {
		mp := []types.RenderedPoint{{Timestamp: start, Cumulative: m}, {Timestamp: c.settings.ForcedEndDate, Cumulative: m}}
		c.Milestones[i].set(mp, project(mp, c.X, c.Y))
	}

	c.latest = points[len(points)-1]
	c.total = FormatAmount(c.latest.Cumulative, c.settings.CurrencySymbol)
	c.renderedAt = now
	c.renders++
	c.seriesCount = len(series)
	return nil
}

func (c *Context) milestoneValues() []decimal.Decimal {
	var out []decimal.Decimal
	for _, m := range c.settings.MilestoneSteps {
		if m.IsPositive() && m.LessThan(c.settings.TargetTotal) {
			out = append(out, m)
		}
	}
	return out
}

// Renders counts successful Render calls.
func (c *Context) Renders() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renders
}

// Total is the current display text ("" before the first render).
func (c *Context) Total() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

// Frame is an immutable copy of one successful render.
type Frame struct {
	Settings    Settings
	X           TimeScale
	Y           LinearScale
	XTicks      []chart.Tick
	YTicks      []chart.Tick
	Progress    Path
	Goal        Path
	Milestones  []Path
	Latest      types.RenderedPoint
	Total       string
	RenderedAt  time.Time
	Renders     int
	SeriesCount int
}

// Snapshot copies the last successful render. ok is false before the first one.
func (c *Context) Snapshot() (Frame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.renders == 0 {
		return Frame{}, false
	}
	f := Frame{
		Settings:    c.settings,
		X:           c.X,
		Y:           c.Y,
		XTicks:      append([]chart.Tick(nil), c.XTicks...),
		YTicks:      append([]chart.Tick(nil), c.YTicks...),
		Progress:    c.Progress.clone(),
		Goal:        c.Goal.clone(),
		Latest:      c.latest,
		Total:       c.total,
		RenderedAt:  c.renderedAt,
		Renders:     c.renders,
		SeriesCount: c.seriesCount,
	}
	for _, m := range c.Milestones {
		f.Milestones = append(f.Milestones, m.clone())
	}
	return f, true
}

// Nearest returns the progress point whose plot X is closest to px. Used for hover tooltips.
func (f Frame) Nearest(px float64) (types.RenderedPoint, bool) {
	pix := f.Progress.Pixels
	if len(pix) == 0 {
		return types.RenderedPoint{}, false
	}
	i := sort.Search(len(pix), func(i int) bool { return pix[i].X >= px })
	switch {
	case i == 0:
	case i == len(pix):
		i = len(pix) - 1
	case px-pix[i-1].X <= pix[i].X-px:
		i = i - 1
	}
	return f.Progress.Points[i], true
}

// NearestTime returns the progress point closest in time to t.
func (f Frame) NearestTime(t time.Time) (types.RenderedPoint, bool) {
	pts := f.Progress.Points
	if len(pts) == 0 {
		return types.RenderedPoint{}, false
	}
	i := sort.Search(len(pts), func(i int) bool { return !pts[i].Timestamp.Before(t) })
	switch {
	case i == 0:
	case i == len(pts):
		i = len(pts) - 1
	case t.Sub(pts[i-1].Timestamp) <= pts[i].Timestamp.Sub(t):
		i = i - 1
	}
	return pts[i], true
}

// Tooltip formats a point for hover display, e.g. "Aug 6 14:00 · £1,250,000".
func (f Frame) Tooltip(p types.RenderedPoint) string {
	loc := f.Settings.Location
	if loc == nil {
		loc = time.UTC
	}
	return p.Timestamp.In(loc).Format("Jan 2 15:04") + " · " + FormatAmount(p.Cumulative, f.Settings.CurrencySymbol)
}
