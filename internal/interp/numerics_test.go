package interp

import (
	"math"
	"testing"
)

func TestLcmp(t *testing.T) {
	cases := []struct{ a, b int64; want int32 }{
		{1, 2, -1}, {2, 1, 1}, {5, 5, 0},
	}
	for _, c := range cases {
		if got := lcmp(c.a, c.b); got != c.want {
			t.Errorf("lcmp(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestFcmpNaN(t *testing.T) {
	nan := float32(0)
	nan = nan / nan // NaN without importing math
	if got := fcmp(nan, 1, -1); got != -1 {
		t.Errorf("fcmpl(NaN,1) = %d, want -1", got)
	}
	if got := fcmp(nan, 1, 1); got != 1 {
		t.Errorf("fcmpg(NaN,1) = %d, want 1", got)
	}
}

func TestFcmpOrdering(t *testing.T) {
	if got := fcmp(1, 2, -1); got != -1 {
		t.Errorf("fcmp(1,2) = %d, want -1", got)
	}
	if got := fcmp(2, 1, -1); got != 1 {
		t.Errorf("fcmp(2,1) = %d, want 1", got)
	}
	if got := fcmp(1, 1, -1); got != 0 {
		t.Errorf("fcmp(1,1) = %d, want 0", got)
	}
}

func TestDcmpNaN(t *testing.T) {
	nan := 0.0
	nan = nan / nan
	if got := dcmp(nan, 1, -1); got != -1 {
		t.Errorf("dcmpl(NaN,1) = %d, want -1", got)
	}
}

func TestFloatToIntSaturation(t *testing.T) {
	nan := float32(0)
	nan = nan / nan
	if got := float32ToInt32(nan); got != 0 {
		t.Errorf("float32ToInt32(NaN) = %d, want 0", got)
	}
	if got := float32ToInt32(1e30); got != math.MaxInt32 {
		t.Errorf("float32ToInt32(1e30) = %d, want MaxInt32", got)
	}
	if got := float32ToInt32(-1e30); got != math.MinInt32 {
		t.Errorf("float32ToInt32(-1e30) = %d, want MinInt32", got)
	}
	if got := float32ToInt32(3.9); got != 3 {
		t.Errorf("float32ToInt32(3.9) = %d, want 3 (truncation toward zero)", got)
	}
}

func TestDoubleToLongSaturation(t *testing.T) {
	if got := float64ToInt64(1e300); got != math.MaxInt64 {
		t.Errorf("float64ToInt64(1e300) = %d, want MaxInt64", got)
	}
	if got := float64ToInt64(-1e300); got != math.MinInt64 {
		t.Errorf("float64ToInt64(-1e300) = %d, want MinInt64", got)
	}
}

func TestShiftMasks(t *testing.T) {
	if got := shiftMask32(33); got != 1 {
		t.Errorf("shiftMask32(33) = %d, want 1", got)
	}
	if got := shiftMask64(65); got != 1 {
		t.Errorf("shiftMask64(65) = %d, want 1", got)
	}
}
