// Package publish writes each successful render to disk as a static status page.
package publish

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/iafilius/WormChart/src/monitor"
	"github.com/iafilius/WormChart/src/render"
)

const (
	SVGName   = "worm_chart.svg"
	PNGName   = "worm_chart.png"
	IndexName = "index.html"
)

//go:embed index.html.tmpl
var indexTemplate string

var indexTmpl = template.Must(template.New(IndexName).Parse(indexTemplate))

// Publisher implements monitor.Sink. Every file is replaced atomically so a static web
// server never serves a half-written chart.
type Publisher struct {
	Dir   string
	Title string
	// Every is shown on the page and drives the meta refresh; zero hides both.
	Every time.Duration
	// SourceURL is linked from the page when set.
	SourceURL string
}

var _ monitor.Sink = (*Publisher)(nil)

type pageData struct {
	Title          string
	Total          string
	Target         string
	ForcedEnd      string
	UpdatedAt      string
	Every          string
	RefreshSeconds int
	SourceURL      string
	PNG            string
}

// Publish renders f to SVG, PNG and index.html under Dir.
func (p *Publisher) Publish(ctx context.Context, f render.Frame) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	var svg bytes.Buffer
	if err := render.WriteSVG(&svg, f); err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(p.Dir, SVGName), svg.Bytes()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var img bytes.Buffer
	if err := render.WritePNG(&img, f); err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(p.Dir, PNGName), img.Bytes()); err != nil {
		return err
	}
	page, err := p.Page(f)
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(p.Dir, IndexName), page); err != nil {
		return err
	}
	monitor.Debugf("published %s to %s", f.Total, p.Dir)
	return nil
}

// Page renders the status page HTML for f.
func (p *Publisher) Page(f render.Frame) ([]byte, error) {
	title := p.Title
	if title == "" {
		title = "Fundraising Worm Chart"
	}
	loc := f.Settings.Location
	if loc == nil {
		loc = time.UTC
	}
	d := pageData{
		Title:     title,
		Total:     f.Total,
		Target:    render.FormatAmount(f.Settings.TargetTotal, f.Settings.CurrencySymbol),
		ForcedEnd: f.Settings.ForcedEndDate.In(loc).Format("2 January 2006"),
		UpdatedAt: f.RenderedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		SourceURL: p.SourceURL,
		PNG:       PNGName,
	}
	if p.Every > 0 {
		d.Every = humanDuration(p.Every)
		d.RefreshSeconds = int(p.Every.Seconds())
	}
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, d); err != nil {
		return nil, errors.Wrap(err, "render index")
	}
	return buf.Bytes(), nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d%time.Hour == 0 && d >= time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0 && d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	}
	return d.String()
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return errors.Wrapf(err, "close %s", path)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return errors.Wrapf(err, "chmod %s", path)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return errors.Wrapf(err, "rename %s", path)
	}
	return nil
}
