package analysis

import (
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/iafilius/WormChart/src/ingest"
	"github.com/iafilius/WormChart/src/types"
)

// LargeDonationQuantile selects the increment quantile above which a donation counts as "large".
const LargeDonationQuantile = 0.95

// Increment is the change in cumulative total between two consecutive samples.
type Increment struct {
	Timestamp time.Time       `json:"timestamp"`
	Amount    decimal.Decimal `json:"amount"`
	Large     bool            `json:"large,omitempty"`
}

// Summary captures donation statistics for one series.
type Summary struct {
	Samples            int             `json:"samples"`
	PositiveIncrements int             `json:"positive_increments"`
	MeanIncrement      decimal.Decimal `json:"mean_increment"`
	MedianIncrement    decimal.Decimal `json:"median_increment"`
	P95Increment       decimal.Decimal `json:"p95_increment"`
	P99Increment       decimal.Decimal `json:"p99_increment"`
	// LargeThreshold is the p95 increment; increments strictly above it are large.
	LargeThreshold decimal.Decimal `json:"large_threshold"`
	Large          []Increment     `json:"large,omitempty"`
	LargeTotal     decimal.Decimal `json:"large_total"`
	RegularTotal   decimal.Decimal `json:"regular_total"`
	// SmoothedFinal is the last value of the series with large increments replaced by the median.
	SmoothedFinal decimal.Decimal `json:"smoothed_final"`
	OriginalFinal decimal.Decimal `json:"original_final"`
}

// Increments returns one entry per sample: the first is zero, the rest are differences
// from the previous sample. The series must be sorted.
func Increments(series types.Series) []Increment {
	out := make([]Increment, len(series))
	for i, s := range series {
		out[i].Timestamp = s.Timestamp
		if i == 0 {
			out[i].Amount = decimal.Zero
			continue
		}
		out[i].Amount = s.Amount.Sub(series[i-1].Amount)
	}
	return out
}

func positiveAmounts(incs []Increment) []decimal.Decimal {
	var out []decimal.Decimal
	for _, in := range incs {
		if in.Amount.IsPositive() {
			out = append(out, in.Amount)
		}
	}
	return out
}

// Quantile uses linear interpolation between closest ranks. q is clamped to [0,1].
// Returns zero for an empty input.
func Quantile(values []decimal.Decimal, q float64) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	cp := append([]decimal.Decimal(nil), values...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].LessThan(cp[j]) })
	if q <= 0 {
		return cp[0]
	}
	if q >= 1 {
		return cp[len(cp)-1]
	}
	// interpolate in decimal so q=0.95 over 5 values lands exactly on rank 3.8
	pos := decimal.NewFromFloat(q).Mul(decimal.NewFromInt(int64(len(cp) - 1)))
	floor := pos.Floor()
	lo := int(floor.IntPart())
	frac := pos.Sub(floor)
	if frac.IsZero() || lo+1 >= len(cp) {
		return cp[lo]
	}
	return cp[lo].Add(cp[lo+1].Sub(cp[lo]).Mul(frac))
}

// Mean returns the arithmetic mean, zero for an empty input.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, values...).Div(decimal.NewFromInt(int64(len(values))))
}

// Summarize computes increment statistics, flags large donations and the smoothed total.
func Summarize(series types.Series) Summary {
	sum := Summary{Samples: len(series)}
	if len(series) == 0 {
		return sum
	}
	incs := Increments(series)
	pos := positiveAmounts(incs)
	sum.PositiveIncrements = len(pos)
	sum.MeanIncrement = Mean(pos)
	sum.MedianIncrement = Quantile(pos, 0.5)
	sum.P95Increment = Quantile(pos, LargeDonationQuantile)
	sum.P99Increment = Quantile(pos, 0.99)
	sum.LargeThreshold = sum.P95Increment

	markLarge(incs, sum.LargeThreshold, len(pos) > 0)
	for _, in := range incs {
		if in.Large {
			sum.Large = append(sum.Large, in)
			sum.LargeTotal = sum.LargeTotal.Add(in.Amount)
		} else {
			sum.RegularTotal = sum.RegularTotal.Add(in.Amount)
		}
	}
	smoothed := smooth(series, incs, sum.MedianIncrement)
	sum.SmoothedFinal = smoothed[len(smoothed)-1].Amount
	sum.OriginalFinal = series[len(series)-1].Amount
	return sum
}

func markLarge(incs []Increment, threshold decimal.Decimal, enabled bool) {
	for i := range incs {
		incs[i].Large = enabled && incs[i].Amount.GreaterThan(threshold)
	}
}

// Smooth rebuilds the cumulative series with every increment above threshold replaced
// by replacement, exposing the underlying trend without one-off large donations.
func Smooth(series types.Series, threshold, replacement decimal.Decimal) types.Series {
	incs := Increments(series)
	markLarge(incs, threshold, true)
	return smooth(series, incs, replacement)
}

func smooth(series types.Series, incs []Increment, replacement decimal.Decimal) types.Series {
	out := make(types.Series, len(series))
	for i, s := range series {
		out[i].Timestamp = s.Timestamp
		if i == 0 {
			out[i].Amount = s.Amount
			continue
		}
		step := incs[i].Amount
		if incs[i].Large {
			step = replacement
		}
		out[i].Amount = out[i-1].Amount.Add(step)
	}
	return out
}

// AnalyzeFile parses the CSV at path and summarizes it.
func AnalyzeFile(path string, loc *time.Location) (types.Series, Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Summary{}, errors.Wrap(err, "open progress csv")
	}
	defer f.Close()
	series, _, err := ingest.Parse(f, loc)
	if err != nil {
		return nil, Summary{}, errors.Wrapf(err, "parse %s", path)
	}
	return series, Summarize(series), nil
}
