package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iafilius/WormChart/src/monitor"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultsValidate(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	s, err := c.RenderSettings()
	require.NoError(t, err)
	assert.True(t, s.TargetTotal.Equal(decimal.NewFromInt(40_000_000)))
	assert.True(t, s.ForcedEndDate.Equal(time.Date(2025, 8, 31, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, 960, s.Width)
	assert.Equal(t, "£", s.CurrencySymbol)
	assert.Len(t, s.MilestoneSteps, 3)
	assert.Equal(t, 5*time.Minute, c.Interval)
}

func TestApplyEnvOverrides(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(env(map[string]string{
		"WORM_DATA_SOURCE":  "https://example.org/progress.csv",
		"WORM_INTERVAL":     "30s",
		"WORM_TARGET_TOTAL": "1000000",
		"WORM_MILESTONES":   "250000, 500000,",
		"WORM_CURRENCY":     "$",
		"WORM_WIDTH":        "1200",
		"WORM_TIMEZONE":     "Europe/London",
		"WORM_OUTPUT_DIR":   "  ",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/progress.csv", c.DataSource)
	assert.Equal(t, 30*time.Second, c.Interval)
	assert.Equal(t, "1000000", c.TargetTotal.String())
	require.Len(t, c.Milestones, 2)
	assert.Equal(t, "500000", c.Milestones[1].String())
	assert.Equal(t, "$", c.CurrencySymbol)
	assert.Equal(t, 1200, c.Width)
	assert.Equal(t, "public", c.OutputDir, "blank values keep the default")

	src, err := c.Source()
	require.NoError(t, err)
	_, ok := src.(*monitor.HTTPSource)
	assert.True(t, ok)

	end, err := c.ForcedEndTime()
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", end.Location().String())
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	for k, v := range map[string]string{
		"WORM_INTERVAL":     "soon",
		"WORM_HEIGHT":       "tall",
		"WORM_TARGET_TOTAL": "lots",
		"WORM_MILESTONES":   "1,two",
	} {
		c := Default()
		assert.Error(t, c.ApplyEnv(env(map[string]string{k: v})), k)
	}
}

func TestFlagsWinOverEnv(t *testing.T) {
	c := Default()
	require.NoError(t, c.ApplyEnv(env(map[string]string{"WORM_INTERVAL": "1m", "WORM_CURRENCY": "$"})))
	fs := flag.NewFlagSet("wormchart", flag.ContinueOnError)
	c.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-interval", "10s", "-target", "2500000", "-milestones", "1000000,2000000", "-end", "2025-12-24 18:00:00"}))

	assert.Equal(t, 10*time.Second, c.Interval)
	assert.Equal(t, "$", c.CurrencySymbol, "env value survives when the flag is not given")
	assert.Equal(t, "2500000", c.TargetTotal.String())
	assert.Len(t, c.Milestones, 2)
	end, err := c.ForcedEndTime()
	require.NoError(t, err)
	assert.Equal(t, time.December, end.Month())
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero target":     func(c *Config) { c.TargetTotal = decimal.Zero },
		"negative target": func(c *Config) { c.TargetTotal = decimal.NewFromInt(-1) },
		"zero interval":   func(c *Config) { c.Interval = 0 },
		"tiny canvas":     func(c *Config) { c.Width = 60 },
		"bad zone":        func(c *Config) { c.Timezone = "Mars/Olympus" },
		"bad end":         func(c *Config) { c.ForcedEnd = "2025-02-30 00:00:00" },
		"no source":       func(c *Config) { c.DataSource = " " },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
		_, err := c.RenderSettings()
		assert.Error(t, err, name)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WORM_CURRENCY=€\nWORM_HEIGHT=600\n"), 0o644))
	t.Setenv("WORM_HEIGHT", "700")
	t.Setenv("WORM_CURRENCY", "")
	os.Unsetenv("WORM_CURRENCY")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "€", c.CurrencySymbol)
	assert.Equal(t, 700, c.Height, "process environment wins over .env")

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestEnvFileFromArgs(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{nil, ".env"},
		{[]string{"-once"}, ".env"},
		{[]string{"-env", "prod.env", "-once"}, "prod.env"},
		{[]string{"--env", "prod.env"}, "prod.env"},
		{[]string{"-once", "-env=prod.env"}, "prod.env"},
		{[]string{"--env=conf/prod.env", "-interval", "1m"}, "conf/prod.env"},
		{[]string{"-env"}, ".env"},
		{[]string{"-source", "env", "-environment=x"}, ".env"},
		{[]string{"--", "-env=ignored.env"}, ".env"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EnvFileFromArgs(tc.args, ".env"), "%v", tc.args)
	}
}
