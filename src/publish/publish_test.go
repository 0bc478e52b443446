package publish

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iafilius/WormChart/src/render"
	"github.com/iafilius/WormChart/src/types"
)

func frame(t *testing.T) render.Frame {
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
		{Timestamp: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1_000_000)},
		{Timestamp: time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(3_000_000)},
	}
	require.NoError(t, c.Render(series, time.Date(2025, 8, 2, 0, 10, 0, 0, time.UTC)))
	f, ok := c.Snapshot()
	require.True(t, ok)
	return f
}

func TestPublishWritesAllArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	p := &Publisher{Dir: dir, Title: "TeamWater Worm Chart", Every: 10 * time.Minute, SourceURL: "https://teamwater.org/"}
	require.NoError(t, p.Publish(context.Background(), frame(t)))

	svg, err := os.ReadFile(filepath.Join(dir, SVGName))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	f, err := os.Open(filepath.Join(dir, PNGName))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 960, img.Bounds().Dx())

	page, err := os.ReadFile(filepath.Join(dir, IndexName))
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, "<title>TeamWater Worm Chart</title>")
	assert.Contains(t, html, "£3,000,000")
	assert.Contains(t, html, "£40,000,000 by 31 August 2025")
	assert.Contains(t, html, "2025-08-02 00:10:00 UTC")
	assert.Contains(t, html, "Updated every 10 minutes")
	assert.Contains(t, html, `content="600"`)
	assert.Contains(t, html, `src="worm_chart.png"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "temp file left behind: %s", e.Name())
	}
	assert.Len(t, entries, 3)
}

func TestPublishOverwrites(t *testing.T) {
	dir := t.TempDir()
	p := &Publisher{Dir: dir}
	f := frame(t)
	require.NoError(t, p.Publish(context.Background(), f))
	f.Total = "£4,000,000"
	require.NoError(t, p.Publish(context.Background(), f))
	page, err := os.ReadFile(filepath.Join(dir, IndexName))
	require.NoError(t, err)
	assert.Contains(t, string(page), "£4,000,000")
	assert.Contains(t, string(page), "Fundraising Worm Chart")
	assert.NotContains(t, string(page), "Updated every")
}

func TestPageEscapesTitle(t *testing.T) {
	p := &Publisher{Title: `<script>alert(1)</script>`}
	page, err := p.Page(frame(t))
	require.NoError(t, err)
	assert.NotContains(t, string(page), "<script>")
}

func TestHumanDuration(t *testing.T) {
	cases := map[time.Duration]string{
		time.Minute:      "minute",
		5 * time.Minute:  "5 minutes",
		2 * time.Hour:    "2 hours",
		90 * time.Second: "1m30s",
		30 * time.Second: "30s",
	}
	for in, want := range cases {
		assert.Equal(t, want, humanDuration(in), in.String())
	}
}

func TestPublishFailsOnUnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	err := (&Publisher{Dir: file}).Publish(context.Background(), frame(t))
	assert.Error(t, err)
}
