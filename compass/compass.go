// Package compass models an array of oriented cryptochrome molecules
// acting as a magnetic compass. Each molecule reports a noisy singlet
// yield depending on the angle between its orientation and the local
// field; molecules are binned into channels whose population averages
// feed a heading estimator.
package compass

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/mayajiva/spin"
)

// SingletYield is the analytic axial-HFC approximation of the compass
// response: mean + 0.5*contrast*mean*(1 + cos 2a), where a is the angle
// between the sensor orientation and the field direction.
func SingletYield(alpha, contrast, meanYield float64) float64 {
	delta := contrast * meanYield
	return meanYield + 0.5*delta*(1.0+math.Cos(2.0*alpha))
}

// Config parameterizes a Sensor. Zero values are legal (a noiseless or
// contrast-free sensor is a valid experiment), so start from
// DefaultConfig and override.
type Config struct {
	NCry        int     // number of cryptochrome molecules
	NChannels   int     // compass channels (ring neuron count)
	Contrast    float64 // relative anisotropy delta/mean
	MeanYield   float64 // mean singlet yield
	SigmaSensor float64 // per-molecule noise std dev
}

// DefaultConfig returns the standard sensor parameters.
func DefaultConfig() Config {
	return Config{
		NCry:        1000,
		NChannels:   8,
		Contrast:    0.15,
		MeanYield:   0.5,
		SigmaSensor: 0.02,
	}
}

// Sensor is a fixed array of molecule orientations binned into
// channels. Reads draw per-molecule noise from the injected rng;
// everything else is immutable after construction.
type Sensor struct {
	cfg     Config
	quantum *spin.Compass // optional tabulated yield; nil uses the analytic form
	rng     *rand.Rand

	phi         []float64 // molecule orientations, uniform on [0, 2pi)
	centres     []float64 // channel centres
	assignments []int     // molecule -> channel
	counts      []int     // molecules per channel
}

// New builds a Sensor. A nil quantum compass selects the analytic yield
// form. Fails if the molecule grid leaves any channel empty.
func New(cfg Config, quantum *spin.Compass, rng *rand.Rand) (*Sensor, error) {
	if cfg.NCry < 1 {
		return nil, fmt.Errorf("compass: need at least one molecule, got %d", cfg.NCry)
	}
	if cfg.NChannels < 1 {
		return nil, fmt.Errorf("compass: need at least one channel, got %d", cfg.NChannels)
	}
	if cfg.SigmaSensor < 0 {
		return nil, fmt.Errorf("compass: sensor noise must be non-negative, got %g", cfg.SigmaSensor)
	}
	if rng == nil {
		return nil, fmt.Errorf("compass: rng must not be nil")
	}

	s := &Sensor{
		cfg:         cfg,
		quantum:     quantum,
		rng:         rng,
		phi:         make([]float64, cfg.NCry),
		centres:     make([]float64, cfg.NChannels),
		assignments: make([]int, cfg.NCry),
		counts:      make([]int, cfg.NChannels),
	}
	for k := range s.phi {
		s.phi[k] = 2 * math.Pi * float64(k) / float64(cfg.NCry)
	}
	for c := range s.centres {
		s.centres[c] = 2 * math.Pi * float64(c) / float64(cfg.NChannels)
	}

	// Nearest channel by wrapped angular distance, ties to the lower index.
	for k, p := range s.phi {
		best, bestDist := 0, math.Inf(1)
		for c, centre := range s.centres {
			d := math.Abs(wrapPi(p - centre))
			if d < bestDist {
				best, bestDist = c, d
			}
		}
		s.assignments[k] = best
		s.counts[best]++
	}
	for c, n := range s.counts {
		if n == 0 {
			return nil, fmt.Errorf("compass: channel %d has no molecules (n_cry=%d, n_channels=%d)",
				c, cfg.NCry, cfg.NChannels)
		}
	}
	return s, nil
}

// Read samples every molecule at the given heading relative to the
// field direction and returns the noisy population average per channel.
func (s *Sensor) Read(heading float64) []float64 {
	sums := make([]float64, s.cfg.NChannels)
	for k, p := range s.phi {
		alpha := heading - p
		var y float64
		if s.quantum != nil {
			y = s.quantum.SingletYield(alpha)
		} else {
			y = SingletYield(alpha, s.cfg.Contrast, s.cfg.MeanYield)
		}
		sums[s.assignments[k]] += y + s.rng.NormFloat64()*s.cfg.SigmaSensor
	}
	for c := range sums {
		sums[c] /= float64(s.counts[c])
	}
	return sums
}

// NChannels returns the channel count.
func (s *Sensor) NChannels() int { return s.cfg.NChannels }

// ChannelCentres returns a copy of the channel preferred directions.
func (s *Sensor) ChannelCentres() []float64 {
	out := make([]float64, len(s.centres))
	copy(out, s.centres)
	return out
}

// SignalToNoise is the theoretical per-channel SNR:
// (contrast * mean) / (sigma / sqrt(n_per_channel)).
func (s *Sensor) SignalToNoise() float64 {
	if s.cfg.SigmaSensor == 0 {
		return math.Inf(1)
	}
	nPer := float64(s.cfg.NCry) / float64(s.cfg.NChannels)
	return (s.cfg.Contrast * s.cfg.MeanYield) / (s.cfg.SigmaSensor / math.Sqrt(nPer))
}

// wrapPi wraps an angle to [-pi, pi].
func wrapPi(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
