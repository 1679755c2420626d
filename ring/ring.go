// Package ring implements a rate-model ring attractor for heading
// representation, after the insect central-complex circuit: local
// cosine excitation between wedge neurons, activity-dependent global
// inhibition, compass input that anchors the activity bump to the
// magnetic field, and angular-velocity input that shifts it.
package ring

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
)

// Config parameterizes an Attractor. Start from DefaultConfig and
// override; zero noise or threshold is legal.
type Config struct {
	N          int     // neurons on the ring
	Tau        float64 // membrane time constant (s)
	WExc       float64 // local excitation amplitude (cosine positive lobe)
	WInh       float64 // global inhibition weight
	GMag       float64 // compass input gain
	GOmega     float64 // angular-velocity input gain
	Threshold  float64 // firing threshold
	RMax       float64 // saturation rate
	NoiseSigma float64 // intrinsic noise std dev per step
}

// DefaultConfig returns the standard ring parameters.
func DefaultConfig() Config {
	return Config{
		N:          8,
		Tau:        0.05,
		WExc:       1.5,
		WInh:       4.5,
		GMag:       2.0,
		GOmega:     0.5,
		Threshold:  0.0,
		RMax:       1.0,
		NoiseSigma: 0.01,
	}
}

// stabilityRatio is the minimum w_inh/w_exc for which the uniform mode
// stays suppressed and a localized bump survives.
const stabilityRatio = 2.4

// Attractor holds the ring state. Not safe for concurrent use.
type Attractor struct {
	cfg    Config
	theta  []float64 // preferred directions, uniform on [0, 2pi)
	wExc   []float64 // n x n excitatory connectivity, row-major
	r      []float64 // firing rates in [0, rMax]
	rng    *rand.Rand
	shift1 []float64 // scratch for the bump gradient
}

// New builds an Attractor with a weak bump at a random position.
// Configurations whose inhibition cannot suppress the uniform mode are
// rejected.
func New(cfg Config, rng *rand.Rand) (*Attractor, error) {
	if cfg.N < 3 {
		return nil, fmt.Errorf("ring: need at least 3 neurons, got %d", cfg.N)
	}
	if cfg.Tau <= 0 {
		return nil, fmt.Errorf("ring: time constant must be positive, got %g", cfg.Tau)
	}
	if cfg.RMax <= 0 {
		return nil, fmt.Errorf("ring: saturation rate must be positive, got %g", cfg.RMax)
	}
	if cfg.NoiseSigma < 0 {
		return nil, fmt.Errorf("ring: noise must be non-negative, got %g", cfg.NoiseSigma)
	}
	if cfg.WInh < stabilityRatio*cfg.WExc {
		return nil, fmt.Errorf("ring: w_inh=%g cannot stabilize a bump against w_exc=%g (need w_inh >= %g*w_exc)",
			cfg.WInh, cfg.WExc, stabilityRatio)
	}
	if rng == nil {
		return nil, fmt.Errorf("ring: rng must not be nil")
	}

	n := cfg.N
	a := &Attractor{
		cfg:    cfg,
		theta:  make([]float64, n),
		wExc:   make([]float64, n*n),
		r:      make([]float64, n),
		rng:    rng,
		shift1: make([]float64, n),
	}
	for i := range a.theta {
		a.theta[i] = 2 * math.Pi * float64(i) / float64(n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.wExc[i*n+j] = cfg.WExc * math.Max(0, math.Cos(a.theta[i]-a.theta[j]))
		}
	}
	a.initBump()
	return a, nil
}

// initBump seeds a weak bump at a random position to break symmetry.
func (a *Attractor) initBump() {
	n := a.cfg.N
	idx := a.rng.Intn(n)
	for i := 0; i < n; i++ {
		d := abs(i - idx)
		if n-d < d {
			d = n - d
		}
		a.r[i] = math.Max(0, 0.5-0.15*float64(d))
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Step advances the ring by dt seconds. compassInput is the per-channel
// sensor reading (nil when no compass signal is available); its length
// must match N. angularVelocity is the body rotation rate in rad/s,
// positive counterclockwise.
func (a *Attractor) Step(dt float64, compassInput []float64, angularVelocity float64) error {
	n := a.cfg.N
	if compassInput != nil && len(compassInput) != n {
		return fmt.Errorf("ring: compass input has %d channels, ring has %d neurons", len(compassInput), n)
	}

	drive := make([]float64, n)

	// Local excitation.
	for i := 0; i < n; i++ {
		var s float64
		row := a.wExc[i*n:]
		for j := 0; j < n; j++ {
			s += row[j] * a.r[j]
		}
		drive[i] = s
	}

	// Global inhibition, proportional to mean activity.
	var mean float64
	for _, v := range a.r {
		mean += v
	}
	mean /= float64(n)
	inh := a.cfg.WInh * mean
	for i := range drive {
		drive[i] -= inh
	}

	grad := a.bumpGradient()

	// Compass input. The cos 2a anisotropy puts two peaks on the ring,
	// so the heading is extracted in double-angle space and the bump is
	// shifted toward the nearest compatible heading, resolving the pi
	// ambiguity of the inclination compass.
	if compassInput != nil {
		var cm float64
		for _, v := range compassInput {
			cm += v
		}
		cm /= float64(n)
		var z complex128
		for i, v := range compassInput {
			z += complex(v-cm, 0) * cmplx.Exp(complex(0, 2*a.theta[i]))
		}
		if cmplx.Abs(z) > 1e-10 {
			doubleHeading := cmplx.Phase(z)
			doubleBump := 2.0 * a.Heading()
			err := cmplx.Phase(cmplx.Exp(complex(0, doubleHeading-doubleBump))) / 2.0
			g := a.cfg.GMag * err
			for i := range drive {
				drive[i] += g * grad[i]
			}
		}
	}

	// Angular velocity shifts the bump in the direction of rotation.
	if angularVelocity != 0 {
		g := a.cfg.GOmega * angularVelocity
		for i := range drive {
			drive[i] += g * grad[i]
		}
	}

	for i := range drive {
		drive[i] -= a.cfg.Threshold
		if a.cfg.NoiseSigma > 0 {
			drive[i] += a.rng.NormFloat64() * a.cfg.NoiseSigma
		}
		// Rectified-saturating activation, then leaky Euler update.
		activated := clamp(drive[i], 0, a.cfg.RMax)
		a.r[i] = clamp(a.r[i]+dt*(activated-a.r[i])/a.cfg.Tau, 0, a.cfg.RMax)
	}
	return nil
}

// bumpGradient returns r[i-1] - r[i+1] on the ring, the direction a
// shift input pushes each neuron.
func (a *Attractor) bumpGradient() []float64 {
	n := a.cfg.N
	for i := 0; i < n; i++ {
		a.shift1[i] = a.r[(i-1+n)%n] - a.r[(i+1)%n]
	}
	return a.shift1
}

// Heading decodes the bump position as a population vector, in [0, 2pi).
// A vanished bump decodes to 0.
func (a *Attractor) Heading() float64 {
	var z complex128
	for i, v := range a.r {
		z += complex(v, 0) * cmplx.Exp(complex(0, a.theta[i]))
	}
	if cmplx.Abs(z) < 1e-10 {
		return 0.0
	}
	h := math.Mod(cmplx.Phase(z), 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	return h
}

// BumpAmplitude is the peak-to-trough spread of ring activity.
func (a *Attractor) BumpAmplitude() float64 {
	lo, hi := a.r[0], a.r[0]
	for _, v := range a.r[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}

// Rates returns a copy of the firing rates.
func (a *Attractor) Rates() []float64 {
	out := make([]float64, len(a.r))
	copy(out, a.r)
	return out
}

// Reset clears the state and seeds a weak bump at a random position.
func (a *Attractor) Reset() {
	for i := range a.r {
		a.r[i] = 0
	}
	a.initBump()
}

// ResetTo clears the state and seeds a cosine bump centred on heading.
func (a *Attractor) ResetTo(heading float64) {
	for i := range a.r {
		d := math.Mod(a.theta[i]-heading+math.Pi, 2*math.Pi)
		if d < 0 {
			d += 2 * math.Pi
		}
		d -= math.Pi
		a.r[i] = math.Max(0, 0.5*math.Cos(d))
	}
}

// N returns the neuron count.
func (a *Attractor) N() int { return a.cfg.N }

// PreferredDirections returns a copy of the neuron tuning angles.
func (a *Attractor) PreferredDirections() []float64 {
	out := make([]float64, len(a.theta))
	copy(out, a.theta)
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
