// Package spin computes singlet yields of radical pairs from first
// principles: the spin Hamiltonian (Zeeman + hyperfine + exchange),
// Haberkorn recombination, and the singlet-born initial density matrix.
//
// Operators live on the 2^n product Hilbert space of n spin-1/2
// subsystems (2 electrons + nuclei) and are stored as dense row-major
// []complex128 matrices. Heavy factorizations are delegated to gonum
// through the real-symmetric embedding of Hermitian matrices.
//
// Units: HFC tensors and B0 in Tesla, rates in 1/s, angular
// frequencies in rad/s.
package spin

// Physical constants.
const (
	// GammaE is the electron gyromagnetic ratio (rad/s/T).
	GammaE = 1.761e11
	// B0Earth is a typical geomagnetic field magnitude (T).
	B0Earth = 50e-6
)

// Pauli matrices over 2.
var (
	sigmaX = []complex128{0, 1, 1, 0}
	sigmaY = []complex128{0, -1i, 1i, 0}
	sigmaZ = []complex128{1, 0, 0, -1}
)

// spinHalf returns the three spin-1/2 operators Sx, Sy, Sz (Pauli / 2).
func spinHalf() [3][]complex128 {
	var ops [3][]complex128
	for c, sigma := range [3][]complex128{sigmaX, sigmaY, sigmaZ} {
		op := make([]complex128, 4)
		for i, v := range sigma {
			op[i] = v / 2
		}
		ops[c] = op
	}
	return ops
}

// cIdentity returns the d-dimensional identity matrix.
func cIdentity(d int) []complex128 {
	m := make([]complex128, d*d)
	for i := 0; i < d; i++ {
		m[i*d+i] = 1
	}
	return m
}

// cKron returns the Kronecker product of a (da x da) and b (db x db).
func cKron(a []complex128, da int, b []complex128, db int) []complex128 {
	d := da * db
	out := make([]complex128, d*d)
	for ia := 0; ia < da; ia++ {
		for ja := 0; ja < da; ja++ {
			av := a[ia*da+ja]
			if av == 0 {
				continue
			}
			for ib := 0; ib < db; ib++ {
				for jb := 0; jb < db; jb++ {
					out[(ia*db+ib)*d+(ja*db+jb)] = av * b[ib*db+jb]
				}
			}
		}
	}
	return out
}

// cMul returns the product of two d x d matrices.
func cMul(a, b []complex128, d int) []complex128 {
	out := make([]complex128, d*d)
	for i := 0; i < d; i++ {
		for k := 0; k < d; k++ {
			av := a[i*d+k]
			if av == 0 {
				continue
			}
			row := b[k*d:]
			for j := 0; j < d; j++ {
				out[i*d+j] += av * row[j]
			}
		}
	}
	return out
}

// embedOperator embeds a single-site 2x2 operator into the full product
// space of nSites spin-1/2 subsystems (site 0 = electron A, 1 = electron B,
// 2+ = nuclei).
func embedOperator(op []complex128, site, nSites int) []complex128 {
	result := []complex128{1}
	dim := 1
	for s := 0; s < nSites; s++ {
		factor := cIdentity(2)
		if s == site {
			factor = op
		}
		result = cKron(result, dim, factor, 2)
		dim *= 2
	}
	return result
}

// siteOperators returns {Sx, Sy, Sz} for one subsystem in the full space.
func siteOperators(site, nSites int) [3][]complex128 {
	half := spinHalf()
	var ops [3][]complex128
	for c := 0; c < 3; c++ {
		ops[c] = embedOperator(half[c], site, nSites)
	}
	return ops
}

// singletProjector builds P_S = |S><S| (x) I_nuclear using the two
// spin-1/2 identity P_S = 1/4 I - S_A . S_B.
func singletProjector(nSites int) []complex128 {
	d := 1 << nSites
	sa := siteOperators(0, nSites)
	sb := siteOperators(1, nSites)

	ps := cIdentity(d)
	for i := range ps {
		ps[i] *= 0.25
	}
	for c := 0; c < 3; c++ {
		prod := cMul(sa[c], sb[c], d)
		for i := range ps {
			ps[i] -= prod[i]
		}
	}
	return ps
}

// initialState builds rho0 = |S><S| (x) I_nuc / d_nuc with Tr[rho0] = 1.
func initialState(nSites int) []complex128 {
	dNuc := complex(float64(int(1)<<(nSites-2)), 0)
	rho := singletProjector(nSites)
	for i := range rho {
		rho[i] /= dNuc
	}
	return rho
}
