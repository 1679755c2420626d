package spin

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestYieldEqualZeroHamiltonian(t *testing.T) {
	// With H = 0 nothing evolves out of the singlet manifold, so every
	// pair recombines through the singlet channel: Phi_S = 1 exactly.
	sys, err := NewSystem(3)
	if err != nil {
		t.Fatal(err)
	}
	h := make([]complex128, sys.Dim()*sys.Dim())
	y, err := sys.YieldEqual(h, 1e6)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(y-1) > 1e-9 {
		t.Errorf("yield = %v, want 1", y)
	}
}

func TestYieldInUnitInterval(t *testing.T) {
	for _, name := range ModelNames() {
		if name == "intermediate_fad_trp" {
			continue // dim 64, covered by the smaller models
		}
		model, err := ModelByName(name)
		if err != nil {
			t.Fatal(err)
		}
		for _, theta := range []float64{0, math.Pi / 6, math.Pi / 3, math.Pi / 2, math.Pi} {
			y, err := SingletYieldAt(model, theta, B0Earth, EqualRates(1e6))
			if err != nil {
				t.Fatalf("%s theta=%v: %v", name, theta, err)
			}
			if y < -1e-9 || y > 1+1e-9 {
				t.Errorf("%s theta=%v: yield %v outside [0,1]", name, theta, y)
			}
		}
	}
}

func TestYieldInUnitIntervalRandomTensors(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sys, err := NewSystem(3)
	if err != nil {
		t.Fatal(err)
	}
	for trial := 0; trial < 20; trial++ {
		hfc := AxialHFC(rng.Float64()*1e-3, (rng.Float64()-0.5)*1e-3, 2, 0)
		theta := rng.Float64() * math.Pi
		h, err := sys.Hamiltonian(theta, B0Earth, []HFCTensor{hfc}, 0)
		if err != nil {
			t.Fatal(err)
		}
		y, err := sys.YieldEqual(h, 1e6)
		if err != nil {
			t.Fatal(err)
		}
		if y < -1e-9 || y > 1+1e-9 {
			t.Errorf("trial %d: yield %v outside [0,1] (aIso=%v theta=%v)", trial, y, hfc.A[0][0], theta)
		}
	}
}

func TestYieldAnisotropy(t *testing.T) {
	// The axial N5 tensor makes the yield depend on the field angle.
	model := ToyFADO2()
	y0, err := SingletYieldAt(model, 0, B0Earth, EqualRates(1e6))
	if err != nil {
		t.Fatal(err)
	}
	y90, err := SingletYieldAt(model, math.Pi/2, B0Earth, EqualRates(1e6))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(y0-y90) < 1e-6 {
		t.Errorf("no angular contrast: yield(0)=%v yield(pi/2)=%v", y0, y90)
	}
}

func TestLiouvilleMatchesEigenAtEqualRates(t *testing.T) {
	model := ToyFADO2()
	sys, err := NewSystem(model.NSites)
	if err != nil {
		t.Fatal(err)
	}
	for _, theta := range []float64{0, 0.5, math.Pi / 2, 2.5} {
		h, err := sys.Hamiltonian(theta, B0Earth, model.HFC, 0)
		if err != nil {
			t.Fatal(err)
		}
		ye, err := sys.YieldEqual(h, 1e6)
		if err != nil {
			t.Fatal(err)
		}
		yl, err := sys.YieldLiouville(h, EqualRates(1e6))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(ye-yl) > 1e-6 {
			t.Errorf("theta=%v: eigen %v vs Liouville %v", theta, ye, yl)
		}
	}
}

func TestYieldUnequalRates(t *testing.T) {
	model := ToyFADO2()
	y, err := SingletYieldAt(model, math.Pi/4, B0Earth, Rates{KS: 1e6, KT: 5e5})
	if err != nil {
		t.Fatal(err)
	}
	if y < 0 || y > 1 {
		t.Errorf("unequal-rate yield %v outside [0,1]", y)
	}
}

func TestRelaxationWashesOutContrast(t *testing.T) {
	// Strong isotropic relaxation scrambles the spin state faster than
	// the field can steer it, so the angular contrast shrinks.
	model := ToyFADO2()
	contrast := func(r Rates) float64 {
		y0, err := SingletYieldAt(model, 0, B0Earth, r)
		if err != nil {
			t.Fatal(err)
		}
		y90, err := SingletYieldAt(model, math.Pi/2, B0Earth, r)
		if err != nil {
			t.Fatal(err)
		}
		return math.Abs(y0 - y90)
	}
	sharp := contrast(EqualRates(1e6))
	blurred := contrast(Rates{KS: 1e6, KT: 1e6, KRelaxA: 1e8, KRelaxB: 1e8})
	if blurred >= sharp {
		t.Errorf("relaxed contrast %v not below unrelaxed %v", blurred, sharp)
	}
}

func TestRatesValidation(t *testing.T) {
	model := ToyFADO2()
	tests := []struct {
		name string
		r    Rates
	}{
		{"zero kS", Rates{KS: 0, KT: 1e6}},
		{"negative kT", Rates{KS: 1e6, KT: -1}},
		{"negative relaxation", Rates{KS: 1e6, KT: 1e6, KRelaxA: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SingletYieldAt(model, 0, B0Earth, tt.r); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestErrIllConditionedIsWrappable(t *testing.T) {
	err := condError(2e12, EqualRates(1e6))
	if !errors.Is(err, ErrIllConditioned) {
		t.Error("wrapped error should match ErrIllConditioned")
	}
}
