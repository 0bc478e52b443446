// Package config resolves the wormchart settings: built-in defaults, then an optional
// .env file and WORM_* environment variables, then command-line flags.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/iafilius/WormChart/src/ingest"
	"github.com/iafilius/WormChart/src/monitor"
	"github.com/iafilius/WormChart/src/render"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "WORM_"

// Config holds everything the daemon and viewer need to build a pipeline.
type Config struct {
	DataSource     string
	OutputDir      string
	Interval       time.Duration
	FetchTimeout   time.Duration
	TargetTotal    decimal.Decimal
	ForcedEnd      string // ingest.TimestampLayout, in Timezone
	Milestones     []decimal.Decimal
	CurrencySymbol string
	Width          int
	Height         int
	Margins        render.Margins
	Timezone       string
	LogLevel       string
}

// Default mirrors the fundraiser the chart was built for.
func Default() Config {
	return Config{
		DataSource:     "progress.csv",
		OutputDir:      "public",
		Interval:       monitor.DefaultInterval,
		FetchTimeout:   monitor.DefaultHTTPTimeout,
		TargetTotal:    decimal.NewFromInt(40_000_000),
		ForcedEnd:      "2025-08-31 23:59:59",
		Milestones:     []decimal.Decimal{decimal.NewFromInt(10_000_000), decimal.NewFromInt(20_000_000), decimal.NewFromInt(30_000_000)},
		CurrencySymbol: "£",
		Width:          960,
		Height:         500,
		Margins:        render.Margins{Top: 20, Right: 30, Bottom: 30, Left: 50},
		Timezone:       "UTC",
		LogLevel:       "info",
	}
}

// LoadDotEnv loads path into the process environment without overriding variables that
// are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "load %s", path)
}

// EnvFileFromArgs finds the -env flag ahead of flag parsing, since the dotenv file has
// to be loaded before the other flags get their defaults. Accepts -env path, --env path,
// -env=path and --env=path; scanning stops at "--".
func EnvFileFromArgs(args []string, def string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		name := strings.TrimPrefix(strings.TrimPrefix(a, "-"), "-")
		if name == a {
			continue
		}
		if v, ok := strings.CutPrefix(name, "env="); ok {
			def = v
			continue
		}
		if name == "env" && i+1 < len(args) {
			def = args[i+1]
			i++
		}
	}
	return def
}

// Load returns Default overlaid with the environment (after reading dotenv).
func Load(dotenv string) (Config, error) {
	c := Default()
	if err := LoadDotEnv(dotenv); err != nil {
		return c, err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, nil
}

// ApplyEnv overrides fields from WORM_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get("DATA_SOURCE"); ok {
		c.DataSource = v
	}
	if v, ok := get("OUTPUT_DIR"); ok {
		c.OutputDir = v
	}
	if v, ok := get("CURRENCY"); ok {
		c.CurrencySymbol = v
	}
	if v, ok := get("TIMEZONE"); ok {
		c.Timezone = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("FORCED_END"); ok {
		c.ForcedEnd = v
	}
	for name, dst := range map[string]*time.Duration{"INTERVAL": &c.Interval, "FETCH_TIMEOUT": &c.FetchTimeout} {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrapf(err, "%s%s", EnvPrefix, name)
			}
			*dst = d
		}
	}
	for name, dst := range map[string]*int{"WIDTH": &c.Width, "HEIGHT": &c.Height} {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "%s%s", EnvPrefix, name)
			}
			*dst = n
		}
	}
	if v, ok := get("TARGET_TOTAL"); ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return errors.Wrapf(err, "%sTARGET_TOTAL", EnvPrefix)
		}
		c.TargetTotal = d
	}
	if v, ok := get("MILESTONES"); ok {
		ms, err := parseDecimalList(v)
		if err != nil {
			return errors.Wrapf(err, "%sMILESTONES", EnvPrefix)
		}
		c.Milestones = ms
	}
	return nil
}

func parseDecimalList(s string) ([]decimal.Decimal, error) {
	var out []decimal.Decimal
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := decimal.NewFromString(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

type decimalListValue struct{ dst *[]decimal.Decimal }

func (v decimalListValue) String() string {
	if v.dst == nil {
		return ""
	}
	parts := make([]string, len(*v.dst))
	for i, d := range *v.dst {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

func (v decimalListValue) Set(s string) error {
	ms, err := parseDecimalList(s)
	if err != nil {
		return err
	}
	*v.dst = ms
	return nil
}

// BindFlags registers flags whose defaults are the current field values, so flags given
// on the command line win over environment and defaults.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.DataSource, "source", c.DataSource, "Progress CSV: local path, file:// or http(s):// URL")
	fs.StringVar(&c.OutputDir, "out", c.OutputDir, "Directory for worm_chart.svg, worm_chart.png and index.html")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "Refresh interval")
	fs.DurationVar(&c.FetchTimeout, "fetch-timeout", c.FetchTimeout, "Timeout for one fetch of the CSV")
	fs.TextVar(&c.TargetTotal, "target", c.TargetTotal, "Fundraising target (the chart ceiling)")
	fs.StringVar(&c.ForcedEnd, "end", c.ForcedEnd, "Campaign end, YYYY-MM-DD HH:MM:SS in -tz")
	fs.Var(decimalListValue{&c.Milestones}, "milestones", "Comma separated milestone amounts drawn as reference lines")
	fs.StringVar(&c.CurrencySymbol, "currency", c.CurrencySymbol, "Currency symbol for the total")
	fs.IntVar(&c.Width, "width", c.Width, "Chart width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "Chart height in pixels")
	fs.StringVar(&c.Timezone, "tz", c.Timezone, "IANA time zone for CSV timestamps and labels")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug|info|warn|error")
}

// Validate rejects settings the chart cannot be drawn with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataSource) == "" {
		return errors.New("data source is required")
	}
	if !c.TargetTotal.IsPositive() {
		return errors.Errorf("target must be positive, got %s", c.TargetTotal)
	}
	if c.Interval <= 0 {
		return errors.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.Width <= c.Margins.Left+c.Margins.Right || c.Height <= c.Margins.Top+c.Margins.Bottom {
		return errors.Errorf("chart size %dx%d leaves no room inside the margins", c.Width, c.Height)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.ForcedEndTime(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	return loc, errors.Wrapf(err, "time zone %q", c.Timezone)
}

// ForcedEndTime parses ForcedEnd in Location.
func (c Config) ForcedEndTime() (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(ingest.TimestampLayout, strings.TrimSpace(c.ForcedEnd), loc)
	return t, errors.Wrapf(err, "forced end %q", c.ForcedEnd)
}

// RenderSettings converts the config into the render context settings.
func (c Config) RenderSettings() (render.Settings, error) {
	if err := c.Validate(); err != nil {
		return render.Settings{}, err
	}
	loc, _ := c.Location()
	end, _ := c.ForcedEndTime()
	return render.Settings{
		TargetTotal:    c.TargetTotal,
		ForcedEndDate:  end,
		Width:          c.Width,
		Height:         c.Height,
		Margins:        c.Margins,
		MilestoneSteps: append([]decimal.Decimal(nil), c.Milestones...),
		CurrencySymbol: c.CurrencySymbol,
		Location:       loc,
	}, nil
}

// Source builds the monitor source for DataSource.
func (c Config) Source() (monitor.Source, error) {
	return monitor.NewSource(c.DataSource, c.FetchTimeout)
}
