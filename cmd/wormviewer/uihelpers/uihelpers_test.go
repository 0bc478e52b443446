package uihelpers

import (
	"math"
	"testing"
)

func TestComputeChartDimensions(t *testing.T) {
	cases := []struct {
		in    int
		wantW int
		wantH int
	}{
		{100, 640, 333},
		{639, 640, 333},
		{960, 960, 500},
		{1920, 1920, 1000},
		{5000, 2400, 1250},
	}
	for _, c := range cases {
		w, h := ComputeChartDimensions(c.in)
		if w != c.wantW || h != c.wantH {
			t.Fatalf("input %d => %dx%d want %dx%d", c.in, w, h, c.wantW, c.wantH)
		}
	}
}

func TestComputeContainRect(t *testing.T) {
	// wide view: letterbox left/right
	x, y, w, h, s := ComputeContainRect(960, 500, 1920, 500)
	if s != 1 || x != 480 || y != 0 || w != 960 || h != 500 {
		t.Fatalf("wide view got x=%v y=%v w=%v h=%v s=%v", x, y, w, h, s)
	}
	// tall view: letterbox top/bottom, scaled down
	x, y, w, h, s = ComputeContainRect(960, 500, 480, 1000)
	if s != 0.5 || x != 0 || w != 480 || h != 250 || y != 375 {
		t.Fatalf("tall view got x=%v y=%v w=%v h=%v s=%v", x, y, w, h, s)
	}
	if _, _, _, _, s := ComputeContainRect(0, 500, 100, 100); s != 1 {
		t.Fatalf("degenerate image should yield scale 1, got %v", s)
	}
}

func TestViewToImage(t *testing.T) {
	ix, iy, ok := ViewToImage(480+100, 250, 960, 500, 1920, 500)
	if !ok || ix != 100 || iy != 250 {
		t.Fatalf("got (%v,%v,%v)", ix, iy, ok)
	}
	if _, _, ok := ViewToImage(10, 10, 960, 500, 1920, 500); ok {
		t.Fatalf("letterbox position must not map onto the image")
	}
	ix, _, ok = ViewToImage(240, 500, 960, 500, 480, 1000)
	if !ok || math.Abs(float64(ix-480)) > 1e-3 {
		t.Fatalf("scaled mapping got %v ok=%v", ix, ok)
	}
}
