// Package types holds the data shared between ingestion, rendering and analysis.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sample is one row of the progress CSV. Amount is the cumulative total raised
// as of Timestamp, not a delta.
type Sample struct {
	Timestamp time.Time       `json:"timestamp"`
	Amount    decimal.Decimal `json:"amount"`
}

// Series is a list of samples ordered by timestamp. Duplicate timestamps are allowed.
type Series []Sample

func (s Series) Len() int { return len(s) }

// First returns the earliest sample. ok is false for an empty series.
func (s Series) First() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[0], true
}

// Last returns the latest sample. ok is false for an empty series.
func (s Series) Last() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[len(s)-1], true
}

// MinTimestamp scans for the earliest timestamp; it does not assume the series is sorted.
func (s Series) MinTimestamp() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	min := s[0].Timestamp
	for _, v := range s[1:] {
		if v.Timestamp.Before(min) {
			min = v.Timestamp
		}
	}
	return min, true
}

// IsSorted reports whether timestamps never decrease.
func (s Series) IsSorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Timestamp.Before(s[i-1].Timestamp) {
			return false
		}
	}
	return true
}

// RenderedPoint is a sample with its amount clamped to the goal ceiling. Display only.
type RenderedPoint struct {
	Timestamp  time.Time       `json:"timestamp"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// GoalLine is the straight reference trajectory: (start, 0) -> (forced end, target).
type GoalLine [2]RenderedPoint

func (g GoalLine) Start() RenderedPoint { return g[0] }
func (g GoalLine) End() RenderedPoint   { return g[1] }

// Points returns the two ends as a slice, ready for path building.
func (g GoalLine) Points() []RenderedPoint { return []RenderedPoint{g[0], g[1]} }
