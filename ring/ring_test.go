package ring

import (
	"math"
	"math/rand"
	"testing"
)

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.NoiseSigma = 0
	return cfg
}

func newQuiet(t *testing.T) *Attractor {
	t.Helper()
	a, err := New(quietConfig(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// angDiff wraps a-b to [-pi, pi].
func angDiff(a, b float64) float64 {
	d := math.Mod(a-b+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}

func TestNewValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"too few neurons", func(c *Config) { c.N = 2 }},
		{"zero tau", func(c *Config) { c.Tau = 0 }},
		{"zero r_max", func(c *Config) { c.RMax = 0 }},
		{"negative noise", func(c *Config) { c.NoiseSigma = -0.01 }},
		{"unstable inhibition", func(c *Config) { c.WInh = 2.0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if _, err := New(cfg, rng); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := New(DefaultConfig(), nil); err == nil {
		t.Error("nil rng should fail")
	}

	// Exactly at the stability boundary is accepted.
	cfg := DefaultConfig()
	cfg.WInh = 2.4 * cfg.WExc
	if _, err := New(cfg, rng); err != nil {
		t.Errorf("boundary ratio should construct: %v", err)
	}
}

func TestBumpPersistsWithoutInput(t *testing.T) {
	a := newQuiet(t)
	a.ResetTo(math.Pi / 2)
	for i := 0; i < 100; i++ {
		if err := a.Step(0.01, nil, 0); err != nil {
			t.Fatal(err)
		}
	}
	if amp := a.BumpAmplitude(); amp < 0.3 {
		t.Errorf("bump amplitude %v after 100 quiet steps, want >= 0.3", amp)
	}
	if d := math.Abs(angDiff(a.Heading(), math.Pi/2)); d > 0.1 {
		t.Errorf("heading drifted to %v, want pi/2 within 0.1", a.Heading())
	}
}

func TestCompassInputAnchorsBump(t *testing.T) {
	a := newQuiet(t)
	a.ResetTo(0)

	// Synthetic noiseless sensor pattern peaked at the target heading,
	// with the cos 2a period of the inclination compass.
	target := math.Pi / 4
	input := make([]float64, a.N())
	for i, th := range a.PreferredDirections() {
		input[i] = 0.5 + 0.0375*(1+math.Cos(2*(target-th)))
	}

	for i := 0; i < 1000; i++ {
		if err := a.Step(0.005, input, 0); err != nil {
			t.Fatal(err)
		}
	}
	if d := math.Abs(angDiff(a.Heading(), target)); d > 0.15 {
		t.Errorf("heading %v, want %v within 0.15", a.Heading(), target)
	}
}

func TestAngularVelocityRotatesBump(t *testing.T) {
	a := newQuiet(t)
	a.ResetTo(0)
	for i := 0; i < 200; i++ {
		if err := a.Step(0.005, nil, 2.0); err != nil {
			t.Fatal(err)
		}
	}
	shift := angDiff(a.Heading(), 0)
	if shift <= 0.05 {
		t.Errorf("positive angular velocity shifted heading by %v, want a counterclockwise shift", shift)
	}

	a.ResetTo(0)
	for i := 0; i < 200; i++ {
		if err := a.Step(0.005, nil, -2.0); err != nil {
			t.Fatal(err)
		}
	}
	if shift := angDiff(a.Heading(), 0); shift >= -0.05 {
		t.Errorf("negative angular velocity shifted heading by %v, want a clockwise shift", shift)
	}
}

func TestResetToCentresBump(t *testing.T) {
	a := newQuiet(t)
	for _, h := range []float64{0, math.Pi / 4, math.Pi, 5.5} {
		a.ResetTo(h)
		if d := math.Abs(angDiff(a.Heading(), h)); d > 1e-9 {
			t.Errorf("ResetTo(%v): decoded heading %v", h, a.Heading())
		}
	}
}

func TestResetSeedsWeakBump(t *testing.T) {
	a := newQuiet(t)
	a.Reset()
	if amp := a.BumpAmplitude(); amp <= 0 {
		t.Errorf("bump amplitude %v after Reset, want > 0", amp)
	}
}

func TestHeadingZeroNormFallback(t *testing.T) {
	a := newQuiet(t)
	for i := range a.r {
		a.r[i] = 0.5
	}
	if h := a.Heading(); h != 0 {
		t.Errorf("uniform activity decoded to %v, want the 0 fallback", h)
	}
}

func TestStepRejectsMismatchedCompassInput(t *testing.T) {
	a := newQuiet(t)
	if err := a.Step(0.01, make([]float64, a.N()+1), 0); err == nil {
		t.Error("expected a channel-count error")
	}
}

func TestRatesReturnsCopy(t *testing.T) {
	a := newQuiet(t)
	r := a.Rates()
	r[0] = 99
	if a.Rates()[0] == 99 {
		t.Error("mutating the returned slice leaked into the attractor")
	}
}
