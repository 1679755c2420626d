package spin

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// CompassConfig selects the spin model and field parameters for a
// precomputed yield table. Zero-valued fields take the documented
// defaults.
type CompassConfig struct {
	Model  string  // model name for ModelByName; default "toy_fad_o2"
	B0     float64 // field magnitude (T); default B0Earth
	K      float64 // recombination rate when Rates is nil (1/s); default 1e6
	Rates  *Rates  // full rate set; overrides K when non-nil
	NTheta int     // table resolution over [0, pi]; default 360
}

func (c CompassConfig) withDefaults() CompassConfig {
	if c.Model == "" {
		c.Model = "toy_fad_o2"
	}
	if c.B0 == 0 {
		c.B0 = B0Earth
	}
	if c.K == 0 {
		c.K = 1e6
	}
	if c.NTheta == 0 {
		c.NTheta = 360
	}
	return c
}

// Compass is a quantum-derived compass response: singlet yield as a
// function of the field angle relative to the molecular axis.
// The yield is precomputed on a uniform angle grid at construction and
// interpolated afterwards, so reads are cheap and the Compass is safe
// for shared concurrent use.
type Compass struct {
	cfg    CompassConfig
	thetas []float64
	yields []float64
	interp interp.PiecewiseLinear

	mean float64
	min  float64
	max  float64
}

// NewCompass solves the configured model at cfg.NTheta angles spanning
// [0, pi] inclusive and builds the interpolation table.
func NewCompass(cfg CompassConfig) (*Compass, error) {
	cfg = cfg.withDefaults()
	if cfg.NTheta < 2 {
		return nil, fmt.Errorf("spin: yield table needs at least 2 angles, got %d", cfg.NTheta)
	}
	model, err := ModelByName(cfg.Model)
	if err != nil {
		return nil, err
	}
	rates := EqualRates(cfg.K)
	if cfg.Rates != nil {
		rates = *cfg.Rates
	}

	sys, err := NewSystem(model.NSites)
	if err != nil {
		return nil, err
	}
	fastPath := !rates.hasRelaxation() && rates.equal()

	n := cfg.NTheta
	thetas := make([]float64, n)
	yields := make([]float64, n)
	step := math.Pi / float64(n-1)
	for i := 0; i < n; i++ {
		theta := float64(i) * step
		h, err := sys.Hamiltonian(theta, cfg.B0, model.HFC, model.J)
		if err != nil {
			return nil, err
		}
		var y float64
		if fastPath {
			y, err = sys.YieldEqual(h, rates.KS)
		} else {
			y, err = sys.YieldLiouville(h, rates)
		}
		if err != nil {
			return nil, fmt.Errorf("spin: yield at theta=%.4f: %w", theta, err)
		}
		thetas[i] = theta
		yields[i] = y
	}

	c := &Compass{cfg: cfg, thetas: thetas, yields: yields}
	if err := c.interp.Fit(thetas, yields); err != nil {
		return nil, fmt.Errorf("spin: fitting yield table: %w", err)
	}
	c.min, c.max = yields[0], yields[0]
	for _, y := range yields {
		c.mean += y
		c.min = math.Min(c.min, y)
		c.max = math.Max(c.max, y)
	}
	c.mean /= float64(n)
	return c, nil
}

// SingletYield returns the interpolated yield at any real angle.
// The response has period pi and is even in theta, so the angle is
// folded to [0, pi] before lookup.
func (c *Compass) SingletYield(theta float64) float64 {
	t := math.Mod(math.Abs(theta), math.Pi)
	return c.interp.Predict(t)
}

// MeanYield returns the table mean.
func (c *Compass) MeanYield() float64 { return c.mean }

// MinYield returns the table minimum.
func (c *Compass) MinYield() float64 { return c.min }

// MaxYield returns the table maximum.
func (c *Compass) MaxYield() float64 { return c.max }

// Contrast is the peak-to-peak modulation relative to the mean,
// (max - min) / mean.
func (c *Compass) Contrast() float64 {
	if c.mean == 0 {
		return 0
	}
	return (c.max - c.min) / c.mean
}

// YieldCurve returns copies of the angle grid and the tabulated yields.
func (c *Compass) YieldCurve() (thetas, yields []float64) {
	thetas = make([]float64, len(c.thetas))
	yields = make([]float64, len(c.yields))
	copy(thetas, c.thetas)
	copy(yields, c.yields)
	return thetas, yields
}
