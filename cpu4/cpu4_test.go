package cpu4

import (
	"math"
	"testing"
)

func TestStraightWalkDecodesHome(t *testing.T) {
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	// Walk at heading 0 for 1 s. With 8 uniformly tuned neurons the
	// rectified-cosine population decode carries a gain of n/4 = 2.
	dt := 0.01
	for i := 0; i < 100; i++ {
		p.Update(0, 1.0, dt)
	}
	dist, dir := p.HomeVector()
	if math.Abs(dist-2.0) > 1e-9 {
		t.Errorf("home distance = %v, want 2.0", dist)
	}
	if math.Abs(dir-math.Pi) > 1e-9 {
		t.Errorf("home direction = %v, want pi", dir)
	}
	dx, dy := p.Displacement()
	if math.Abs(dx-2.0) > 1e-9 || math.Abs(dy) > 1e-9 {
		t.Errorf("displacement = (%v, %v), want (2, 0)", dx, dy)
	}
}

func TestTwoLegWalk(t *testing.T) {
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	dt := 0.01
	// North then East, equal legs. Home points back along the diagonal.
	for i := 0; i < 100; i++ {
		p.Update(0, 1.0, dt)
	}
	for i := 0; i < 100; i++ {
		p.Update(math.Pi/2, 1.0, dt)
	}
	_, dir := p.HomeVector()
	want := math.Atan2(-1, -1) // -3pi/4
	if math.Abs(dir-want) > 1e-9 {
		t.Errorf("home direction = %v, want %v", dir, want)
	}
}

func TestLeakBoundsMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Leak = 0.5
	leaky, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	perfect, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	dt := 0.01
	for i := 0; i < 1000; i++ {
		leaky.Update(0, 1.0, dt)
		perfect.Update(0, 1.0, dt)
	}
	ld, _ := leaky.HomeVector()
	pd, _ := perfect.HomeVector()
	if ld >= pd {
		t.Errorf("leaky distance %v not below perfect %v", ld, pd)
	}
	// The leaky accumulator approaches drive/leak; five leak time
	// constants in, it sits near the fixed point instead of growing.
	if ld > pd*0.5 {
		t.Errorf("leaky distance %v too close to perfect %v after 10 leak time constants", ld, pd)
	}
}

func TestResetZeroesMemory(t *testing.T) {
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	p.Update(1.0, 1.0, 0.1)
	p.Reset()
	for i, m := range p.Memory() {
		if m != 0 {
			t.Fatalf("memory[%d] = %v after Reset, want 0", i, m)
		}
	}
	if dist, _ := p.HomeVector(); dist != 0 {
		t.Errorf("home distance %v after Reset, want 0", dist)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{N: 1}); err == nil {
		t.Error("single neuron should fail")
	}
	if _, err := New(Config{N: 8, Leak: -0.1}); err == nil {
		t.Error("negative leak should fail")
	}
}

func TestMemoryReturnsCopy(t *testing.T) {
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	m := p.Memory()
	m[0] = 42
	if p.Memory()[0] == 42 {
		t.Error("mutating the returned slice leaked into the integrator")
	}
}
