package spin

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrIllConditioned reports a Liouvillian solve whose condition number
// exceeds the trustworthy range. Near-degenerate energy levels combined
// with vanishingly small recombination rates produce such systems; the
// solver surfaces them instead of returning a silently wrong yield.
var ErrIllConditioned = errors.New("spin: ill-conditioned Liouvillian solve")

// condLimit is the largest condition number accepted for the
// Liouvillian linear solve.
const condLimit = 1e12

// Rates holds the Haberkorn recombination rates and the optional
// per-electron isotropic relaxation rates, all in 1/s.
type Rates struct {
	KS      float64
	KT      float64
	KRelaxA float64
	KRelaxB float64
}

// EqualRates is the common k_S = k_T = k case with no relaxation.
func EqualRates(k float64) Rates { return Rates{KS: k, KT: k} }

func (r Rates) validate() error {
	if r.KS <= 0 || r.KT <= 0 {
		return fmt.Errorf("spin: recombination rates must be positive, got k_S=%g k_T=%g", r.KS, r.KT)
	}
	if r.KRelaxA < 0 || r.KRelaxB < 0 {
		return fmt.Errorf("spin: relaxation rates must be non-negative, got k_relax_A=%g k_relax_B=%g", r.KRelaxA, r.KRelaxB)
	}
	return nil
}

func (r Rates) hasRelaxation() bool { return r.KRelaxA > 0 || r.KRelaxB > 0 }

func (r Rates) equal() bool {
	return math.Abs(r.KS-r.KT) <= 1e-8+1e-5*math.Abs(r.KT)
}

// YieldEqual computes the singlet yield for equal recombination rates
// k_S = k_T = k via eigendecomposition:
//
//	Phi_S = k sum_{n,m} <m|P_S|n><n|rho0|m> / (k + i(E_n - E_m))
//
// The Hermitian Hamiltonian is embedded as the real symmetric 2d x 2d
// matrix [[A,-B],[B,A]] and factorized with gonum's EigenSym. The 2d
// real eigenvectors map back to complex eigenvectors of H forming a
// tight frame with frame constant 2, so the double sum over all 2d of
// them overcounts by exactly 4.
func (s *System) YieldEqual(h []complex128, k float64) (float64, error) {
	if k <= 0 {
		return 0, fmt.Errorf("spin: recombination rate must be positive, got k=%g", k)
	}
	d := s.dim
	n2 := 2 * d

	sym := mat.NewSymDense(n2, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			re := 0.5 * (real(h[i*d+j]) + real(h[j*d+i]))
			sym.SetSym(i, j, re)
			sym.SetSym(i+d, j+d, re)
		}
		for j := 0; j < d; j++ {
			im := 0.5 * (imag(h[i*d+j]) - imag(h[j*d+i]))
			sym.SetSym(i, j+d, -im)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return 0, fmt.Errorf("spin: eigendecomposition of the %dx%d embedded Hamiltonian failed to converge", n2, n2)
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Complex eigenvector frame: u_j = v[0:d,j] + i v[d:2d,j].
	u := make([]complex128, d*n2)
	for i := 0; i < d; i++ {
		for j := 0; j < n2; j++ {
			u[i*n2+j] = complex(vecs.At(i, j), vecs.At(i+d, j))
		}
	}

	pEig := frameTransform(s.ps, u, d)
	rEig := frameTransform(s.rho0, u, d)

	var sum complex128
	for n := 0; n < n2; n++ {
		for m := 0; m < n2; m++ {
			num := pEig[m*n2+n] * rEig[n*n2+m]
			if num == 0 {
				continue
			}
			sum += num / complex(k, vals[n]-vals[m])
		}
	}
	return real(complex(k, 0)*sum) / 4.0, nil
}

// frameTransform computes U^H A U for a d x d operator A and a d x 2d
// frame U, returning the 2d x 2d result.
func frameTransform(a, u []complex128, d int) []complex128 {
	n2 := 2 * d
	// au = A U (d x 2d)
	au := make([]complex128, d*n2)
	for i := 0; i < d; i++ {
		for k := 0; k < d; k++ {
			av := a[i*d+k]
			if av == 0 {
				continue
			}
			for j := 0; j < n2; j++ {
				au[i*n2+j] += av * u[k*n2+j]
			}
		}
	}
	// out = U^H au (2d x 2d)
	out := make([]complex128, n2*n2)
	for m := 0; m < n2; m++ {
		for i := 0; i < d; i++ {
			uc := cconj(u[i*n2+m])
			if uc == 0 {
				continue
			}
			for j := 0; j < n2; j++ {
				out[m*n2+j] += uc * au[i*n2+j]
			}
		}
	}
	return out
}

func cconj(z complex128) complex128 { return complex(real(z), -imag(z)) }

// YieldLiouville computes the singlet yield by direct inversion of the
// vectorized Liouvillian, covering unequal rates and spin relaxation:
// solve L sigma = -vec(rho0), Phi_S = k_S Re Tr[P_S sigma].
//
// Returns ErrIllConditioned (wrapped, with the condition number) when
// the linear system is not numerically trustworthy.
func (s *System) YieldLiouville(h []complex128, r Rates) (float64, error) {
	if err := r.validate(); err != nil {
		return 0, err
	}
	d := s.dim
	m := d * d

	id := cIdentity(d)
	pt := make([]complex128, m)
	for i := range pt {
		pt[i] = id[i] - s.ps[i]
	}
	hT := ctranspose(h, d)
	psT := ctranspose(s.ps, d)
	ptT := ctranspose(pt, d)

	// Column-stacked vectorization: vec(rho)[i + j*d] = rho[i,j].
	liou := make([]complex128, m*m)
	addKron := func(a, b []complex128, w complex128) {
		k := cKron(a, d, b, d)
		for i := range liou {
			liou[i] += w * k[i]
		}
	}
	addKron(h, id, -1i)
	addKron(id, hT, 1i)
	addKron(s.ps, id, complex(-0.5*r.KS, 0))
	addKron(id, psT, complex(-0.5*r.KS, 0))
	addKron(pt, id, complex(-0.5*r.KT, 0))
	addKron(id, ptT, complex(-0.5*r.KT, 0))

	// Isotropic random-field relaxation: per electron,
	// L_relax = k_r [ sum_q (Sq^T (x) Sq) - 3/4 I ].
	for site, kr := range [2]float64{r.KRelaxA, r.KRelaxB} {
		if kr == 0 {
			continue
		}
		ops := siteOperators(site, s.nSites)
		w := complex(kr, 0)
		for c := 0; c < 3; c++ {
			addKron(ctranspose(ops[c], d), ops[c], w)
		}
		for i := 0; i < m; i++ {
			liou[i*m+i] -= 0.75 * w
		}
	}

	// Real embedding of the complex m x m system.
	re := mat.NewDense(2*m, 2*m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			z := liou[i*m+j]
			re.Set(i, j, real(z))
			re.Set(i, j+m, -imag(z))
			re.Set(i+m, j, imag(z))
			re.Set(i+m, j+m, real(z))
		}
	}
	rhs := mat.NewVecDense(2*m, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			z := s.rho0[i*d+j]
			rhs.SetVec(i+j*d, -real(z))
			rhs.SetVec(i+j*d+m, -imag(z))
		}
	}

	var lu mat.LU
	lu.Factorize(re)
	if cond := lu.Cond(); cond > condLimit {
		return 0, condError(cond, r)
	}
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, rhs); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIllConditioned, err)
	}

	// Tr[P_S sigma] with sigma[i,j] = x[i + j*d] + i x[i + j*d + m].
	var tr complex128
	for i := 0; i < d; i++ {
		for k := 0; k < d; k++ {
			p := k + i*d
			tr += s.ps[i*d+k] * complex(x.AtVec(p), x.AtVec(p+m))
		}
	}
	return real(complex(r.KS, 0) * tr), nil
}

// SingletYieldAt solves one model at one field angle, picking the
// cheapest valid path: eigendecomposition for equal rates without
// relaxation, Liouvillian inversion otherwise.
func SingletYieldAt(model Model, theta, b0 float64, r Rates) (float64, error) {
	if err := r.validate(); err != nil {
		return 0, err
	}
	sys, err := NewSystem(model.NSites)
	if err != nil {
		return 0, err
	}
	h, err := sys.Hamiltonian(theta, b0, model.HFC, model.J)
	if err != nil {
		return 0, err
	}
	if !r.hasRelaxation() && r.equal() {
		return sys.YieldEqual(h, r.KS)
	}
	return sys.YieldLiouville(h, r)
}

func condError(cond float64, r Rates) error {
	return fmt.Errorf("%w: condition number %.3g (k_S=%g, k_T=%g, k_relax_A=%g, k_relax_B=%g)",
		ErrIllConditioned, cond, r.KS, r.KT, r.KRelaxA, r.KRelaxB)
}

func ctranspose(a []complex128, d int) []complex128 {
	out := make([]complex128, d*d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			out[j*d+i] = a[i*d+j]
		}
	}
	return out
}
