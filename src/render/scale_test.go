package render

import (
	"math"
	"testing"
	"time"
)

func TestTimeScaleMapsDomainOntoRange(t *testing.T) {
	d0 := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	d1 := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	s := NewTimeScale(d0, d1, 0, 300)
	if got := s.Apply(d0); got != 0 {
		t.Fatalf("Apply(d0) = %v, want 0", got)
	}
	if got := s.Apply(d1); got != 300 {
		t.Fatalf("Apply(d1) = %v, want 300", got)
	}
	mid := d0.Add(15 * 24 * time.Hour)
	if got := s.Apply(mid); math.Abs(got-150) > 1e-9 {
		t.Fatalf("Apply(mid) = %v, want 150", got)
	}
	if back := s.Invert(150); !back.Equal(mid) {
		t.Fatalf("Invert(150) = %v, want %v", back, mid)
	}
}

func TestTimeScaleDegenerateDomain(t *testing.T) {
	d := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	s := NewTimeScale(d, d, 0, 100)
	if got := s.Apply(d.Add(time.Hour)); got != 50 {
		t.Fatalf("degenerate domain should map to range midpoint, got %v", got)
	}
}

func TestLinearScaleInvertedRange(t *testing.T) {
	s := NewLinearScale(0, 40_000_000, 400, 0)
	cases := []struct {
		v, want float64
	}{
		{0, 400},
		{40_000_000, 0},
		{10_000_000, 300},
	}
	for _, tc := range cases {
		if got := s.Apply(tc.v); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Apply(%v) = %v, want %v", tc.v, got, tc.want)
		}
		if back := s.Invert(tc.want); math.Abs(back-tc.v) > 1e-6 {
			t.Fatalf("Invert(%v) = %v, want %v", tc.want, back, tc.v)
		}
	}
	// larger values draw higher (smaller pixel Y)
	if !(s.Apply(30_000_000) < s.Apply(20_000_000)) {
		t.Fatalf("expected inverted y axis")
	}
}

func TestSetDomainKeepsRange(t *testing.T) {
	s := NewLinearScale(0, 1, 10, 20)
	s.SetDomain(0, 100)
	if r0, r1 := s.Range(); r0 != 10 || r1 != 20 {
		t.Fatalf("range changed: [%v,%v]", r0, r1)
	}
	if got := s.Apply(50); got != 15 {
		t.Fatalf("Apply(50) = %v, want 15", got)
	}
}
