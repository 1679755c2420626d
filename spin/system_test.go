package spin

import (
	"math"
	"testing"
)

const tol = 1e-10

func TestSingletProjectorIdempotent(t *testing.T) {
	for _, nSites := range []int{2, 3, 4} {
		sys, err := NewSystem(nSites)
		if err != nil {
			t.Fatalf("NewSystem(%d): %v", nSites, err)
		}
		d := sys.Dim()
		ps := sys.SingletProjector()
		sq := cMul(ps, ps, d)
		for i := range ps {
			if math.Abs(real(sq[i]-ps[i])) > tol || math.Abs(imag(sq[i]-ps[i])) > tol {
				t.Fatalf("nSites=%d: P_S^2 != P_S at flat index %d: %v vs %v", nSites, i, sq[i], ps[i])
			}
		}
	}
}

func TestSingletProjectorTrace(t *testing.T) {
	// Tr[P_S] = 1 * d_nuclear: one singlet state per nuclear configuration.
	for _, nSites := range []int{2, 3, 4, 5} {
		sys, err := NewSystem(nSites)
		if err != nil {
			t.Fatalf("NewSystem(%d): %v", nSites, err)
		}
		d := sys.Dim()
		ps := sys.SingletProjector()
		var trace complex128
		for i := 0; i < d; i++ {
			trace += ps[i*d+i]
		}
		want := float64(d) / 4.0
		if math.Abs(real(trace)-want) > tol || math.Abs(imag(trace)) > tol {
			t.Errorf("nSites=%d: Tr[P_S] = %v, want %v", nSites, trace, want)
		}
	}
}

func TestInitialStateUnitTrace(t *testing.T) {
	for _, nSites := range []int{2, 3, 4, 6} {
		sys, err := NewSystem(nSites)
		if err != nil {
			t.Fatalf("NewSystem(%d): %v", nSites, err)
		}
		d := sys.Dim()
		rho := sys.InitialState()
		var trace complex128
		for i := 0; i < d; i++ {
			trace += rho[i*d+i]
		}
		if math.Abs(real(trace)-1) > tol || math.Abs(imag(trace)) > tol {
			t.Errorf("nSites=%d: Tr[rho0] = %v, want 1", nSites, trace)
		}
	}
}

func TestNewSystemRejectsBadSizes(t *testing.T) {
	for _, nSites := range []int{-1, 0, 1, 11, 20} {
		if _, err := NewSystem(nSites); err == nil {
			t.Errorf("NewSystem(%d) should fail", nSites)
		}
	}
}

func TestHamiltonianHermitian(t *testing.T) {
	model := ToyFADTrp()
	sys, err := NewSystem(model.NSites)
	if err != nil {
		t.Fatal(err)
	}
	d := sys.Dim()
	for _, theta := range []float64{0, 0.7, math.Pi / 2, 2.9} {
		h, err := sys.Hamiltonian(theta, B0Earth, model.HFC, 0)
		if err != nil {
			t.Fatalf("Hamiltonian(theta=%v): %v", theta, err)
		}
		for i := 0; i < d; i++ {
			for j := 0; j < d; j++ {
				diff := h[i*d+j] - cconj(h[j*d+i])
				if math.Abs(real(diff)) > tol || math.Abs(imag(diff)) > tol {
					t.Fatalf("theta=%v: H[%d,%d] not conjugate of H[%d,%d]", theta, i, j, j, i)
				}
			}
		}
	}
}

func TestHamiltonianRejectsBadTensors(t *testing.T) {
	sys, err := NewSystem(3)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		hfc  HFCTensor
	}{
		{"site is an electron", AxialHFC(1e-4, 0, 1, 0)},
		{"site out of range", AxialHFC(1e-4, 0, 3, 0)},
		{"bad electron index", AxialHFC(1e-4, 0, 2, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sys.Hamiltonian(0, B0Earth, []HFCTensor{tt.hfc}, 0); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAxialHFCTraceIsIsotropic(t *testing.T) {
	// Tr[A]/3 must recover a_iso regardless of the anisotropy.
	hfc := AxialHFC(523e-6, 700e-6, 2, 0)
	trace := hfc.A[0][0] + hfc.A[1][1] + hfc.A[2][2]
	if math.Abs(trace/3-523e-6) > 1e-15 {
		t.Errorf("Tr[A]/3 = %v, want 523e-6", trace/3)
	}
	if math.Abs((hfc.A[2][2]-hfc.A[0][0])-700e-6) > 1e-15 {
		t.Errorf("a_par - a_perp = %v, want 700e-6", hfc.A[2][2]-hfc.A[0][0])
	}
}

func TestModelByName(t *testing.T) {
	tests := []struct {
		name   string
		nSites int
		nHFC   int
	}{
		{"toy_fad_o2", 3, 1},
		{"toy_fad_trp", 4, 2},
		{"intermediate_fad_o2", 4, 2},
		{"intermediate_fad_trp", 6, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ModelByName(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if m.NSites != tt.nSites {
				t.Errorf("NSites = %d, want %d", m.NSites, tt.nSites)
			}
			if len(m.HFC) != tt.nHFC {
				t.Errorf("len(HFC) = %d, want %d", len(m.HFC), tt.nHFC)
			}
		})
	}

	if _, err := ModelByName("no_such_model"); err == nil {
		t.Error("unknown model name should fail")
	}
}

func TestModelByNameReturnsFreshValues(t *testing.T) {
	a, _ := ModelByName("toy_fad_o2")
	a.HFC[0].A[0][0] = 99
	b, _ := ModelByName("toy_fad_o2")
	if b.HFC[0].A[0][0] == 99 {
		t.Error("mutating one returned model leaked into the next")
	}
}
