package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/iafilius/WormChart/cmd/wormviewer/uihelpers"
	"github.com/iafilius/WormChart/src/config"
	"github.com/iafilius/WormChart/src/monitor"
	"github.com/iafilius/WormChart/src/render"
)

// dark theme wrapper
type darkTheme struct{}

func (d *darkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}
func (d *darkTheme) Font(style fyne.TextStyle) fyne.Resource { return theme.DefaultTheme().Font(style) }
func (d *darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (d *darkTheme) Size(name fyne.ThemeSizeName) float32 { return theme.DefaultTheme().Size(name) }

type uiState struct {
	img      *canvas.Image
	total    *widget.Label
	status   *widget.Label
	overlay  *hoverOverlay
	frame    render.Frame
	plotBox  chart.Box
	hasFrame bool
}

// apply runs on the UI goroutine.
func (s *uiState) apply(f render.Frame, img image.Image, box chart.Box) {
	s.frame = f
	s.plotBox = box
	s.hasFrame = true
	s.img.Image = img
	s.img.Refresh()
	s.total.SetText("Total raised: " + f.Total)
	s.status.SetText(f.Caption())
	s.overlay.Refresh()
}

// viewerSink renders off the UI goroutine and hands the finished image over with fyne.Do.
type viewerSink struct{ state *uiState }

func (v viewerSink) Publish(_ context.Context, f render.Frame) error {
	img, box, err := render.RenderPlot(f)
	if err != nil {
		return err
	}
	fyne.Do(func() { v.state.apply(f, img, box) })
	return nil
}

func main() {
	envFile := config.EnvFileFromArgs(os.Args[1:], ".env")
	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	flag.String("env", envFile, "Optional dotenv file with WORM_* settings")
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()
	monitor.SetLogLevel(cfg.LogLevel)

	cfg.Width, cfg.Height = uihelpers.ComputeChartDimensions(cfg.Width)
	settings, err := cfg.RenderSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		os.Exit(2)
	}
	src, err := cfg.Source()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	a := app.NewWithID("org.wormchart.viewer")
	a.Settings().SetTheme(&darkTheme{})
	w := a.NewWindow("Worm Chart")
	w.Resize(fyne.NewSize(float32(settings.Width)+40, float32(settings.Height)+100))

	state := &uiState{
		img:    canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, settings.Width, settings.Height))),
		total:  widget.NewLabelWithStyle("Waiting for data...", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		status: widget.NewLabel(""),
	}
	state.img.FillMode = canvas.ImageFillContain
	state.img.SetMinSize(fyne.NewSize(float32(settings.Width)/2, float32(settings.Height)/2))
	state.overlay = newHoverOverlay(state)

	chartArea := container.NewStack(state.img, state.overlay)
	srcLabel := widget.NewLabel(src.String())
	srcLabel.Truncation = fyne.TextTruncateEllipsis
	top := container.NewVBox(state.total)
	bottom := container.NewBorder(nil, nil, nil, state.status, srcLabel)
	w.SetContent(container.NewBorder(top, bottom, nil, nil, chartArea))

	pipe := &monitor.Pipeline{
		Source:   src,
		Context:  render.NewContext(settings),
		Sinks:    []monitor.Sink{viewerSink{state}},
		Location: settings.Location,
		Timeout:  cfg.FetchTimeout,
	}
	poller := &monitor.Poller{Cycler: pipe, Interval: cfg.Interval}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := poller.Start(ctx); err != nil {
			fyne.Do(func() { state.status.SetText("Last refresh failed: " + err.Error()) })
		}
	}()
	w.SetOnClosed(func() {
		cancel()
		poller.Stop()
		monitor.Sync()
	})
	w.ShowAndRun()
}

// hoverOverlay shows the nearest data point under the mouse.
type hoverOverlay struct {
	widget.BaseWidget
	state    *uiState
	mouse    fyne.Position
	hovering bool
}

func newHoverOverlay(state *uiState) *hoverOverlay {
	h := &hoverOverlay{state: state}
	h.ExtendBaseWidget(h)
	return h
}

func (h *hoverOverlay) CreateRenderer() fyne.WidgetRenderer {
	// background to ensure full hit-area for hover events
	bg := canvas.NewRectangle(color.RGBA{R: 0, G: 0, B: 0, A: 0})
	line := canvas.NewLine(color.RGBA{R: 200, G: 200, B: 200, A: 160})
	line.StrokeWidth = 1
	labelBG := canvas.NewRectangle(color.RGBA{R: 0, G: 0, B: 0, A: 170})
	label := canvas.NewText("", color.White)
	label.TextSize = theme.TextSize()
	return &hoverRenderer{h: h, bg: bg, line: line, labelBG: labelBG, label: label,
		objs: []fyne.CanvasObject{bg, line, labelBG, label}}
}

type hoverRenderer struct {
	h       *hoverOverlay
	bg      *canvas.Rectangle
	line    *canvas.Line
	labelBG *canvas.Rectangle
	label   *canvas.Text
	objs    []fyne.CanvasObject
}

func (r *hoverRenderer) Destroy() {}

func (r *hoverRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	text := ""
	if r.h.hovering && r.h.state.hasFrame {
		text = hoverText(r.h.state.frame, r.h.state.plotBox, r.h.mouse.X, r.h.mouse.Y, size.Width, size.Height)
	}
	if text == "" {
		r.line.Position1 = fyne.NewPos(-10, -10)
		r.line.Position2 = fyne.NewPos(-10, -10)
		r.labelBG.Resize(fyne.NewSize(0, 0))
		r.label.Text = ""
		return
	}
	x := r.h.mouse.X
	r.line.Position1 = fyne.NewPos(x, 0)
	r.line.Position2 = fyne.NewPos(x, size.Height)
	r.label.Text = text
	pad := float32(6)
	ts := r.label.MinSize()
	bgW, bgH := ts.Width+2*pad, ts.Height+2*pad
	tx, ty := x+8, r.h.mouse.Y+8
	if tx+bgW > size.Width {
		tx = size.Width - bgW
	}
	if ty+bgH > size.Height {
		ty = size.Height - bgH
	}
	r.labelBG.Resize(fyne.NewSize(bgW, bgH))
	r.labelBG.Move(fyne.NewPos(tx, ty))
	r.label.Move(fyne.NewPos(tx+pad, ty+pad))
}

func (r *hoverRenderer) MinSize() fyne.Size           { return fyne.NewSize(10, 10) }
func (r *hoverRenderer) Objects() []fyne.CanvasObject { return r.objs }
func (r *hoverRenderer) Refresh() {
	r.Layout(r.h.Size())
	r.line.Refresh()
	r.labelBG.Refresh()
	r.label.Refresh()
}

func (h *hoverOverlay) MouseMoved(ev *desktop.MouseEvent) {
	h.hovering = true
	h.mouse = ev.Position
	h.Refresh()
}
func (h *hoverOverlay) MouseIn(ev *desktop.MouseEvent) { h.hovering = true; h.Refresh() }
func (h *hoverOverlay) MouseOut()                      { h.hovering = false; h.Refresh() }

var _ desktop.Hoverable = (*hoverOverlay)(nil)
