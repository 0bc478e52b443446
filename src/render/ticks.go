package render

import (
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

// DayTickEvery is the calendar-day interval of the X axis ticks (days 1, 6, 11, ... of each month).
const DayTickEvery = 5

// TickLabelLayout formats X axis ticks like "Aug 6".
const TickLabelLayout = "Jan 2"

// niceTicks generates about n tick marks covering [min, max] using 1/2/2.5/5/10 steps.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil(span / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Ceil(min/bestStep) * bestStep
	ticks := []chart.Tick{}
	for v := start; v <= max+bestStep*1e-9; v += bestStep {
		ticks = append(ticks, chart.Tick{Value: v, Label: FormatSI(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	return ticks
}

// dayTicks returns one tick at local midnight of every day within [minT, maxT] whose
// day-of-month d satisfies (d-1) % every == 0.
func dayTicks(minT, maxT time.Time, every int, loc *time.Location) []chart.Tick {
	if every <= 0 || maxT.Before(minT) {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	lo := minT.In(loc)
	d := time.Date(lo.Year(), lo.Month(), lo.Day(), 0, 0, 0, 0, loc)
	if d.Before(minT) {
		d = d.AddDate(0, 0, 1)
	}
	ticks := []chart.Tick{}
	for ; !d.After(maxT); d = d.AddDate(0, 0, 1) {
		if (d.Day()-1)%every != 0 {
			continue
		}
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(d), Label: d.Format(TickLabelLayout)})
		if len(ticks) > 64 {
			break
		}
	}
	return ticks
}
