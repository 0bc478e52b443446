package render

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iafilius/WormChart/src/types"
)

// Clamp derives display points from the series, capping each amount at target.
// The series itself is left untouched. Clamp(Clamp(x)) == Clamp(x).
func Clamp(series types.Series, target decimal.Decimal) []types.RenderedPoint {
	out := make([]types.RenderedPoint, len(series))
	for i, s := range series {
		out[i] = types.RenderedPoint{Timestamp: s.Timestamp, Cumulative: decimal.Min(s.Amount, target)}
	}
	return out
}

// ClampPoints re-applies the ceiling to already derived points.
func ClampPoints(points []types.RenderedPoint, target decimal.Decimal) []types.RenderedPoint {
	out := make([]types.RenderedPoint, len(points))
	for i, p := range points {
		out[i] = types.RenderedPoint{Timestamp: p.Timestamp, Cumulative: decimal.Min(p.Cumulative, target)}
	}
	return out
}

// NewGoalLine builds the two-point target trajectory starting at the earliest sample.
// ok is false for an empty series.
func NewGoalLine(series types.Series, forcedEnd time.Time, target decimal.Decimal) (types.GoalLine, bool) {
	start, ok := series.MinTimestamp()
	if !ok {
		return types.GoalLine{}, false
	}
	return types.GoalLine{
		{Timestamp: start, Cumulative: decimal.Zero},
		{Timestamp: forcedEnd, Cumulative: target},
	}, true
}

// Pixel is a point in plot coordinates (origin top-left of the plot area).
type Pixel struct {
	X, Y float64
}

func project(points []types.RenderedPoint, x TimeScale, y LinearScale) []Pixel {
	out := make([]Pixel, len(points))
	for i, p := range points {
		out[i] = Pixel{X: x.Apply(p.Timestamp), Y: y.Apply(p.Cumulative.InexactFloat64())}
	}
	return out
}
