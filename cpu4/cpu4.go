// Package cpu4 implements the central-complex path integration circuit:
// accumulator neurons with half-wave rectified cosine tuning integrate
// the velocity signal into a distributed home vector, optionally with a
// memory leak that bounds drift at the cost of the integration window.
package cpu4

import (
	"fmt"
	"math"
)

// Config parameterizes an Integrator.
type Config struct {
	N    int     // accumulator neurons
	Leak float64 // memory decay rate (1/s); 0 is a perfect integrator
	Gain float64 // integration gain on the speed input
}

// DefaultConfig returns the standard integrator parameters.
func DefaultConfig() Config {
	return Config{N: 8, Leak: 0, Gain: 1}
}

// Integrator accumulates displacement in a population code.
// Not safe for concurrent use.
type Integrator struct {
	cfg    Config
	phi    []float64
	memory []float64
}

// New builds an Integrator with zeroed memory.
func New(cfg Config) (*Integrator, error) {
	if cfg.N < 2 {
		return nil, fmt.Errorf("cpu4: need at least 2 neurons, got %d", cfg.N)
	}
	if cfg.Leak < 0 {
		return nil, fmt.Errorf("cpu4: leak must be non-negative, got %g", cfg.Leak)
	}
	p := &Integrator{
		cfg:    cfg,
		phi:    make([]float64, cfg.N),
		memory: make([]float64, cfg.N),
	}
	for i := range p.phi {
		p.phi[i] = 2 * math.Pi * float64(i) / float64(cfg.N)
	}
	return p, nil
}

// Update integrates one timestep of motion at the given heading
// estimate and forward speed. A neuron accumulates only when the motion
// aligns with its preferred direction.
func (p *Integrator) Update(heading, speed, dt float64) {
	decay := 1.0
	if p.cfg.Leak > 0 {
		decay = 1.0 - p.cfg.Leak*dt
	}
	for i, phi := range p.phi {
		drive := p.cfg.Gain * speed * math.Max(math.Cos(heading-phi), 0)
		p.memory[i] = p.memory[i]*decay + drive*dt
	}
}

// HomeVector decodes the accumulated population vector into the
// estimated distance from start and the direction pointing back home.
// The decoded distance carries the fixed population gain of the
// rectified-cosine code (n/4 for uniform tuning).
func (p *Integrator) HomeVector() (distance, direction float64) {
	dx, dy := p.Displacement()
	return math.Hypot(dx, dy), math.Atan2(-dy, -dx)
}

// Displacement returns the raw accumulated (x, y) estimate.
func (p *Integrator) Displacement() (dx, dy float64) {
	for i, m := range p.memory {
		dx += m * math.Cos(p.phi[i])
		dy += m * math.Sin(p.phi[i])
	}
	return dx, dy
}

// Memory returns a copy of the accumulator state.
func (p *Integrator) Memory() []float64 {
	out := make([]float64, len(p.memory))
	copy(out, p.memory)
	return out
}

// Reset zeroes the accumulators.
func (p *Integrator) Reset() {
	for i := range p.memory {
		p.memory[i] = 0
	}
}

// N returns the neuron count.
func (p *Integrator) N() int { return p.cfg.N }
