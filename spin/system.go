package spin

import (
	"fmt"
	"math"
)

// System holds the position-independent operators of a radical-pair
// spin system: the singlet projector and the initial density matrix.
// Immutable after construction.
type System struct {
	nSites int
	dim    int
	ps     []complex128
	rho0   []complex128
}

// NewSystem builds the operators for nSites spin-1/2 subsystems
// (2 electrons + nSites-2 nuclei).
func NewSystem(nSites int) (*System, error) {
	if nSites < 2 {
		return nil, fmt.Errorf("spin: need at least 2 sites (the electron pair), got %d", nSites)
	}
	if nSites > 10 {
		return nil, fmt.Errorf("spin: %d sites gives dimension %d, beyond what a dense solver can handle", nSites, 1<<nSites)
	}
	return &System{
		nSites: nSites,
		dim:    1 << nSites,
		ps:     singletProjector(nSites),
		rho0:   initialState(nSites),
	}, nil
}

// NSites returns the number of spin-1/2 subsystems.
func (s *System) NSites() int { return s.nSites }

// Dim returns the Hilbert-space dimension 2^nSites.
func (s *System) Dim() int { return s.dim }

// SingletProjector returns a copy of P_S (row-major dim x dim).
func (s *System) SingletProjector() []complex128 {
	out := make([]complex128, len(s.ps))
	copy(out, s.ps)
	return out
}

// InitialState returns a copy of rho0 (row-major dim x dim).
func (s *System) InitialState() []complex128 {
	out := make([]complex128, len(s.rho0))
	copy(out, s.rho0)
	return out
}

// Hamiltonian constructs H = Zeeman + hyperfine + exchange for a field
// of magnitude b0 (Tesla) at angle theta (rad) from the molecular
// z-axis. The field lies in the xz-plane by axial symmetry. Result is
// Hermitian, row-major dim x dim, units rad/s.
func (s *System) Hamiltonian(theta, b0 float64, hfc []HFCTensor, j float64) ([]complex128, error) {
	d := s.dim
	bHat := [3]float64{math.Sin(theta), 0, math.Cos(theta)}

	sa := siteOperators(0, s.nSites)
	sb := siteOperators(1, s.nSites)

	h := make([]complex128, d*d)

	// Zeeman: -gamma_e B . (S_A + S_B)
	for c := 0; c < 3; c++ {
		w := complex(-GammaE*b0*bHat[c], 0)
		if w == 0 {
			continue
		}
		for i := range h {
			h[i] += w * (sa[c][i] + sb[c][i])
		}
	}

	// Hyperfine: gamma_e S_e . A . I_k (A in Tesla)
	for _, t := range hfc {
		if t.Site < 2 || t.Site >= s.nSites {
			return nil, fmt.Errorf("spin: hyperfine tensor references site %d outside the nuclear range [2,%d)", t.Site, s.nSites)
		}
		if t.Electron != 0 && t.Electron != 1 {
			return nil, fmt.Errorf("spin: hyperfine tensor references electron %d (must be 0 or 1)", t.Electron)
		}
		se := siteOperators(t.Electron, s.nSites)
		ik := siteOperators(t.Site, s.nSites)
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				if math.Abs(t.A[a][b]) <= 1e-30 {
					continue
				}
				w := complex(GammaE*t.A[a][b], 0)
				prod := cMul(se[a], ik[b], d)
				for i := range h {
					h[i] += w * prod[i]
				}
			}
		}
	}

	// Exchange: J (1/4 + S_A . S_B)
	if math.Abs(j) > 1e-30 {
		jc := complex(j, 0)
		for i := 0; i < d; i++ {
			h[i*d+i] += 0.25 * jc
		}
		for c := 0; c < 3; c++ {
			prod := cMul(sa[c], sb[c], d)
			for i := range h {
				h[i] += jc * prod[i]
			}
		}
	}

	return h, nil
}
