// wormchart main entrypoint.
//
// Reads the cumulative donation CSV, renders the worm chart (progress line against the
// straight goal line) and publishes worm_chart.svg, worm_chart.png and index.html.
//
// Two modes:
//  1. --once: run a single fetch/parse/render/publish cycle and exit non-zero on failure.
//  2. Default: run one cycle immediately and then one per --interval until SIGINT/SIGTERM.
//     A failed cycle is logged and the previously published chart stays in place.
//
// Configuration precedence: flags > environment (WORM_*) > .env file > built-in defaults.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iafilius/WormChart/src/config"
	"github.com/iafilius/WormChart/src/monitor"
	"github.com/iafilius/WormChart/src/publish"
	"github.com/iafilius/WormChart/src/render"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	monitor.Sync()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("wormchart", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := config.EnvFileFromArgs(args, ".env")
	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	fs.String("env", envFile, "Optional dotenv file with WORM_* settings")
	cfg.BindFlags(fs)
	once := fs.Bool("once", false, "Run a single cycle and exit (non-zero on failure)")
	title := fs.String("title", "Fundraising Worm Chart", "Heading of the published status page")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	monitor.SetLogLevel(cfg.LogLevel)

	settings, err := cfg.RenderSettings()
	if err != nil {
		fmt.Fprintf(stderr, "error: invalid configuration: %v\n", err)
		return 2
	}
	src, err := cfg.Source()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	pub := &publish.Publisher{Dir: cfg.OutputDir, Title: *title, Every: cfg.Interval}
	if _, isHTTP := src.(*monitor.HTTPSource); isHTTP {
		pub.SourceURL = src.String()
	}
	pipe := &monitor.Pipeline{
		Source:   src,
		Context:  render.NewContext(settings),
		Sinks:    []monitor.Sink{pub},
		Location: settings.Location,
		Timeout:  cfg.FetchTimeout,
	}
	monitor.L().Info("wormchart starting",
		zap.Stringer("source", src),
		zap.String("out", cfg.OutputDir),
		zap.String("target", settings.TargetTotal.String()),
		zap.Time("forced_end", settings.ForcedEndDate),
		zap.Bool("once", *once))

	if *once {
		if err := pipe.RunCycle(ctx); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	poller := &monitor.Poller{Cycler: pipe, Interval: cfg.Interval}
	// a failed first cycle is not fatal; the next tick retries on the normal cadence
	_ = poller.Start(ctx)
	<-ctx.Done()
	poller.Stop()
	cycles, failures := poller.Stats()
	monitor.Infof("wormchart stopped after %d cycles (%d failed)", cycles, failures)
	return 0
}
