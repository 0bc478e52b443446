package render

import (
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

// TimeScale maps a time domain linearly onto a pixel range.
type TimeScale struct {
	d0, d1 time.Time
	r0, r1 float64
}

// NewTimeScale returns a scale mapping [d0,d1] onto [r0,r1].
func NewTimeScale(d0, d1 time.Time, r0, r1 float64) TimeScale {
	return TimeScale{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Apply maps t to a pixel position. Values outside the domain extrapolate.
// A degenerate domain maps everything to the middle of the range.
func (s TimeScale) Apply(t time.Time) float64 {
	span := s.d1.Sub(s.d0)
	if span == 0 {
		return (s.r0 + s.r1) / 2
	}
	f := float64(t.Sub(s.d0)) / float64(span)
	return s.r0 + f*(s.r1-s.r0)
}

// Invert maps a pixel position back to a time.
func (s TimeScale) Invert(px float64) time.Time {
	if s.r1 == s.r0 {
		return s.d0
	}
	f := (px - s.r0) / (s.r1 - s.r0)
	return s.d0.Add(time.Duration(f * float64(s.d1.Sub(s.d0))))
}

func (s TimeScale) Domain() (time.Time, time.Time) { return s.d0, s.d1 }
func (s TimeScale) Range() (float64, float64)      { return s.r0, s.r1 }

// SetDomain replaces the domain in place, keeping the range.
func (s *TimeScale) SetDomain(d0, d1 time.Time) { s.d0, s.d1 = d0, d1 }

// LinearScale maps a numeric domain linearly onto a pixel range.
type LinearScale struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinearScale returns a scale mapping [d0,d1] onto [r0,r1]. Pass r0 > r1 to invert
// (screen Y grows downwards).
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{d0: d0, d1: d1, r0: r0, r1: r1}
}

func (s LinearScale) Apply(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

func (s LinearScale) Invert(px float64) float64 {
	if s.r1 == s.r0 {
		return s.d0
	}
	return s.d0 + (px-s.r0)/(s.r1-s.r0)*(s.d1-s.d0)
}

func (s LinearScale) Domain() (float64, float64) { return s.d0, s.d1 }
func (s LinearScale) Range() (float64, float64)  { return s.r0, s.r1 }

func (s *LinearScale) SetDomain(d0, d1 float64) { s.d0, s.d1 = d0, d1 }

func (s LinearScale) ChartRange() *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: s.d0, Max: s.d1}
}
