package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/iafilius/WormChart/src/analysis"
	"github.com/iafilius/WormChart/src/render"
)

func main() {
	var file, chartOut, currency, tz string
	var asJSON bool
	flag.StringVar(&file, "file", "progress.csv", "Path to the progress CSV")
	flag.StringVar(&chartOut, "chart", "", "Optional PNG path for a donation-size histogram")
	flag.StringVar(&currency, "currency", "£", "Currency symbol for printed amounts")
	flag.StringVar(&tz, "tz", "UTC", "Time zone of the CSV timestamps")
	flag.BoolVar(&asJSON, "json", false, "Print the summary and histogram as JSON")
	flag.Parse()
	if err := run(os.Stdout, file, chartOut, currency, tz, asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, file, chartOut, currency, tz string, asJSON bool) error {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return errors.Wrap(err, "time zone")
	}
	series, sum, err := analysis.AnalyzeFile(file, loc)
	if err != nil {
		return err
	}
	bins := analysis.Histogram(series)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Summary   analysis.Summary `json:"summary"`
			Histogram []analysis.Bin   `json:"histogram"`
		}{sum, bins}); err != nil {
			return errors.Wrap(err, "encode json")
		}
	} else {
		printSummary(w, sum, currency)
		printHistogram(w, bins, currency)
	}
	if chartOut != "" {
		return writeHistogramPNG(chartOut, bins, currency)
	}
	return nil
}

func printSummary(w io.Writer, s analysis.Summary, currency string) {
	fmt.Fprintf(w, "Samples: %d (positive increments: %d)\n", s.Samples, s.PositiveIncrements)
	fmt.Fprintf(w, "Mean increment:   %s\n", render.FormatAmount(s.MeanIncrement, currency))
	fmt.Fprintf(w, "Median increment: %s\n", render.FormatAmount(s.MedianIncrement, currency))
	fmt.Fprintf(w, "p95 / p99:        %s / %s\n", render.FormatAmount(s.P95Increment, currency), render.FormatAmount(s.P99Increment, currency))
	fmt.Fprintf(w, "Large donations (> %s): %d totalling %s\n", render.FormatAmount(s.LargeThreshold, currency), len(s.Large), render.FormatAmount(s.LargeTotal, currency))
	for _, in := range s.Large {
		fmt.Fprintf(w, "  %s  +%s\n", in.Timestamp.Format("2006-01-02 15:04:05"), render.FormatAmount(in.Amount, currency))
	}
	fmt.Fprintf(w, "Regular donations total: %s\n", render.FormatAmount(s.RegularTotal, currency))
	fmt.Fprintf(w, "Final total: %s (smoothed: %s)\n", render.FormatAmount(s.OriginalFinal, currency), render.FormatAmount(s.SmoothedFinal, currency))
}

func printHistogram(w io.Writer, bins []analysis.Bin, currency string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "size\tcount\ttotal\t")
	for _, b := range bins {
		fmt.Fprintf(tw, "%s\t%d\t%s\t\n", b.Label, b.Count, render.FormatAmount(b.Total, currency))
	}
	fmt.Fprintf(tw, "all\t\t%s\t\n", render.FormatAmount(analysis.HistogramTotal(bins), currency))
	tw.Flush()
}

func histogramChart(bins []analysis.Bin, currency string) chart.BarChart {
	bars := make([]chart.Value, 0, len(bins))
	for _, b := range bins {
		bars = append(bars, chart.Value{Label: b.Label, Value: b.Total.InexactFloat64()})
	}
	c := chart.BarChart{
		Title:      "Total donated per donation size (" + currency + ")",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		Width:      960,
		Height:     500,
		BarWidth:   80,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return render.FormatSI(f)
				}
				return ""
			},
		},
		Bars: bars,
	}
	if analysis.HistogramTotal(bins).IsZero() {
		// go-chart refuses a zero-height range; draw empty bars on a unit axis instead
		c.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	}
	return c
}

func writeHistogramPNG(path string, bins []analysis.Bin, currency string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create chart file")
	}
	c := histogramChart(bins, currency)
	if err := c.Render(chart.PNG, f); err != nil {
		f.Close()
		return errors.Wrap(err, "render histogram")
	}
	return errors.Wrap(f.Close(), "close chart file")
}
