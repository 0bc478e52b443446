package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSeriesHelpers(t *testing.T) {
	var empty Series
	if _, ok := empty.First(); ok {
		t.Fatalf("empty series should have no first sample")
	}
	if _, ok := empty.MinTimestamp(); ok {
		t.Fatalf("empty series should have no min timestamp")
	}
	if !empty.IsSorted() {
		t.Fatalf("empty series is trivially sorted")
	}

	t1 := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	t0 := t1.Add(-24 * time.Hour)
	s := Series{{Timestamp: t1, Amount: decimal.NewFromInt(2)}, {Timestamp: t0, Amount: decimal.NewFromInt(1)}}
	if s.IsSorted() {
		t.Fatalf("out-of-order series reported as sorted")
	}
	if min, _ := s.MinTimestamp(); !min.Equal(t0) {
		t.Fatalf("min timestamp = %v, want %v", min, t0)
	}
	if last, _ := s.Last(); !last.Timestamp.Equal(t0) {
		t.Fatalf("Last should be positional, got %v", last.Timestamp)
	}
}
