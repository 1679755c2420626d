package spin

import (
	"math"
	"testing"
)

func newTestCompass(t *testing.T) *Compass {
	t.Helper()
	c, err := NewCompass(CompassConfig{Model: "toy_fad_o2", NTheta: 33})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCompassYieldsInUnitInterval(t *testing.T) {
	c := newTestCompass(t)
	_, yields := c.YieldCurve()
	for i, y := range yields {
		if y < -1e-9 || y > 1+1e-9 {
			t.Errorf("table entry %d: yield %v outside [0,1]", i, y)
		}
	}
	if c.MinYield() > c.MeanYield() || c.MeanYield() > c.MaxYield() {
		t.Errorf("min %v, mean %v, max %v not ordered", c.MinYield(), c.MeanYield(), c.MaxYield())
	}
}

func TestCompassMatchesTableAtGridPoints(t *testing.T) {
	c := newTestCompass(t)
	thetas, yields := c.YieldCurve()
	for i := range thetas {
		got := c.SingletYield(thetas[i])
		if math.Abs(got-yields[i]) > 1e-12 {
			t.Errorf("theta=%v: interpolated %v, table %v", thetas[i], got, yields[i])
		}
	}
}

func TestCompassAngleFolding(t *testing.T) {
	c := newTestCompass(t)
	for _, theta := range []float64{0.3, 1.1, 2.7} {
		base := c.SingletYield(theta)
		for _, alias := range []float64{-theta, theta + math.Pi, theta - math.Pi, -(theta + 2*math.Pi)} {
			if got := c.SingletYield(alias); math.Abs(got-base) > 1e-12 {
				t.Errorf("yield(%v) = %v, want yield(%v) = %v", alias, got, theta, base)
			}
		}
	}
}

func TestCompassContrastPositive(t *testing.T) {
	c := newTestCompass(t)
	if c.Contrast() <= 0 {
		t.Errorf("contrast = %v, want > 0", c.Contrast())
	}
	want := (c.MaxYield() - c.MinYield()) / c.MeanYield()
	if math.Abs(c.Contrast()-want) > 1e-15 {
		t.Errorf("contrast = %v, want %v", c.Contrast(), want)
	}
}

func TestNewCompassRejectsBadConfig(t *testing.T) {
	if _, err := NewCompass(CompassConfig{Model: "no_such_model"}); err == nil {
		t.Error("unknown model should fail")
	}
	if _, err := NewCompass(CompassConfig{NTheta: 1}); err == nil {
		t.Error("single-angle table should fail")
	}
}
