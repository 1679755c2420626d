// Package landscape models a 2D magnetic field landscape: a uniform
// geomagnetic background plus static local anomalies (buried dipoles,
// faults, regional gradients, Gaussian blobs). The navigating agent
// senses the horizontal field direction, so the package exposes the
// direction, horizontal intensity, and local inclination at any point.
package landscape

import (
	"fmt"
	"math"
	"math/rand"
)

// AnomalyType tags the perturbation model of one anomaly.
type AnomalyType string

const (
	Gaussian AnomalyType = "gaussian"
	Dipole   AnomalyType = "dipole"
	Fault    AnomalyType = "fault"
	Gradient AnomalyType = "gradient"
)

// Vec2 is a position in the landscape plane (body-lengths).
type Vec2 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Anomaly is one static field perturbation. Which fields are read
// depends on Type:
//
//	gaussian: Pos, Strength, Radius
//	dipole:   Pos, Strength, Depth
//	fault:    Pos, Azimuth, Contrast, Width
//	gradient: Magnitude, Direction, Ref (nil means the extent centre)
type Anomaly struct {
	Type      AnomalyType `yaml:"type" json:"type"`
	Pos       Vec2        `yaml:"pos" json:"pos"`
	Strength  float64     `yaml:"strength" json:"strength"` // peak perturbation (uT)
	Radius    float64     `yaml:"radius" json:"radius"`     // gaussian envelope scale
	Depth     float64     `yaml:"depth" json:"depth"`       // dipole burial depth
	Azimuth   float64     `yaml:"azimuth" json:"azimuth"`   // fault strike from N (rad)
	Contrast  float64     `yaml:"contrast" json:"contrast"` // field jump across the fault (uT)
	Width     float64     `yaml:"width" json:"width"`       // fault transition half-width
	Magnitude float64     `yaml:"magnitude" json:"magnitude"` // gradient slope (uT/BL)
	Direction float64     `yaml:"direction" json:"direction"` // gradient direction (rad)
	Ref       *Vec2       `yaml:"ref,omitempty" json:"ref,omitempty"`
}

func (a Anomaly) validate(i int) error {
	switch a.Type {
	case Gaussian:
		if a.Radius <= 0 {
			return fmt.Errorf("landscape: anomaly %d: gaussian radius must be positive, got %g", i, a.Radius)
		}
	case Dipole:
		if a.Depth <= 0 {
			return fmt.Errorf("landscape: anomaly %d: dipole depth must be positive, got %g", i, a.Depth)
		}
	case Fault:
		if a.Width <= 0 {
			return fmt.Errorf("landscape: anomaly %d: fault width must be positive, got %g", i, a.Width)
		}
	case Gradient:
		// Any magnitude, direction, and reference are legal.
	default:
		return fmt.Errorf("landscape: anomaly %d: unknown type %q", i, a.Type)
	}
	return nil
}

// Config parameterizes a Landscape.
type Config struct {
	Extent      Vec2      `yaml:"extent" json:"extent"`           // width, height (BL)
	B0          float64   `yaml:"b0" json:"b0"`                   // total field intensity (uT)
	Declination float64   `yaml:"declination" json:"declination"` // rad, positive eastward
	Inclination float64   `yaml:"inclination" json:"inclination"` // dip below horizontal (rad)
	Anomalies   []Anomaly `yaml:"anomalies" json:"anomalies"`
}

// DefaultConfig returns a mid-latitude landscape with no anomalies.
func DefaultConfig() Config {
	return Config{
		Extent:      Vec2{X: 1000, Y: 1000},
		B0:          50.0,
		Inclination: 65.0 * math.Pi / 180.0,
	}
}

// FieldSample is the local horizontal field at one point.
type FieldSample struct {
	Direction   float64 // horizontal field angle from geographic N (rad)
	Horizontal  float64 // horizontal intensity (uT)
	Inclination float64 // local dip angle (rad)
}

// Landscape is immutable after construction; queries are pure and safe
// for concurrent use.
type Landscape struct {
	cfg         Config
	bHorizontal float64
	bVertical   float64
}

// New validates the anomaly list and builds a Landscape.
func New(cfg Config) (*Landscape, error) {
	if cfg.Extent.X <= 0 || cfg.Extent.Y <= 0 {
		return nil, fmt.Errorf("landscape: extent must be positive, got (%g, %g)", cfg.Extent.X, cfg.Extent.Y)
	}
	if cfg.B0 <= 0 {
		return nil, fmt.Errorf("landscape: field intensity must be positive, got %g", cfg.B0)
	}
	for i, a := range cfg.Anomalies {
		if err := a.validate(i); err != nil {
			return nil, err
		}
	}
	anoms := make([]Anomaly, len(cfg.Anomalies))
	copy(anoms, cfg.Anomalies)
	cfg.Anomalies = anoms
	return &Landscape{
		cfg:         cfg,
		bHorizontal: cfg.B0 * math.Cos(cfg.Inclination),
		bVertical:   cfg.B0 * math.Sin(cfg.Inclination),
	}, nil
}

// MagneticDirection returns the local field at (x, y): the Cartesian
// sum of the background and every anomaly perturbation, reconverted to
// direction, horizontal intensity, and inclination.
func (l *Landscape) MagneticDirection(x, y float64) FieldSample {
	bx := l.bHorizontal * math.Cos(l.cfg.Declination)
	by := l.bHorizontal * math.Sin(l.cfg.Declination)
	bz := l.bVertical

	for i := range l.cfg.Anomalies {
		dx, dy, dz := l.cfg.Anomalies[i].perturbation(x, y, l.cfg.Extent)
		bx += dx
		by += dy
		bz += dz
	}

	bh := math.Hypot(bx, by)
	return FieldSample{
		Direction:   math.Atan2(by, bx),
		Horizontal:  bh,
		Inclination: math.Atan2(bz, bh),
	}
}

// DirectionDeviation is the local field direction minus the background
// declination, wrapped to [-pi, pi]. A positive deviation rotates the
// compass eastward.
func (l *Landscape) DirectionDeviation(x, y float64) float64 {
	s := l.MagneticDirection(x, y)
	d := math.Mod(s.Direction-l.cfg.Declination+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}

// InBounds reports whether (x, y) lies inside the landscape extent.
func (l *Landscape) InBounds(x, y float64) bool {
	return x >= 0 && x <= l.cfg.Extent.X && y >= 0 && y <= l.cfg.Extent.Y
}

// Extent returns the landscape size.
func (l *Landscape) Extent() Vec2 { return l.cfg.Extent }

func (a *Anomaly) perturbation(x, y float64, extent Vec2) (dbx, dby, dbz float64) {
	switch a.Type {
	case Gaussian:
		dx, dy := x-a.Pos.X, y-a.Pos.Y
		r := math.Hypot(dx, dy)
		if r >= 3*a.Radius || r <= 1e-6 {
			return 0, 0, 0
		}
		env := a.Strength * math.Exp(-0.5*(r/a.Radius)*(r/a.Radius))
		return env * dx / r, env * dy / r, 0

	case Dipole:
		// Buried vertical dipole: 1/R^5 closed form with the prefactor
		// normalised so the peak horizontal anomaly (at rho = depth/2)
		// equals Strength.
		dx, dy := x-a.Pos.X, y-a.Pos.Y
		rho2 := dx*dx + dy*dy
		r2 := rho2 + a.Depth*a.Depth
		r5 := math.Pow(r2, 2.5)
		alpha := a.Strength * math.Pow(5, 2.5) * a.Depth * a.Depth * a.Depth / 48.0
		return alpha * 3.0 * a.Depth * dx / r5,
			alpha * 3.0 * a.Depth * dy / r5,
			alpha * (2.0*a.Depth*a.Depth - rho2) / r5

	case Fault:
		// tanh step perpendicular to the fault strike.
		dPerp := (x-a.Pos.X)*math.Sin(a.Azimuth) - (y-a.Pos.Y)*math.Cos(a.Azimuth)
		profile := math.Tanh(dPerp / a.Width)
		return (a.Contrast / 2.0) * profile * math.Sin(a.Azimuth),
			-(a.Contrast / 2.0) * profile * math.Cos(a.Azimuth),
			0

	case Gradient:
		ref := Vec2{X: extent.X / 2, Y: extent.Y / 2}
		if a.Ref != nil {
			ref = *a.Ref
		}
		s := (x-ref.X)*math.Cos(a.Direction) + (y-ref.Y)*math.Sin(a.Direction)
		return a.Magnitude * s * math.Cos(a.Direction),
			a.Magnitude * s * math.Sin(a.Direction),
			0
	}
	return 0, 0, 0
}

// RandomDipoles generates n dipole anomalies at uniform random
// positions with random-sign strengths.
func RandomDipoles(n int, extent Vec2, strength, depth float64, rng *rand.Rand) []Anomaly {
	out := make([]Anomaly, n)
	for i := range out {
		s := strength
		if rng.Intn(2) == 0 {
			s = -strength
		}
		out[i] = Anomaly{
			Type:     Dipole,
			Pos:      Vec2{X: rng.Float64() * extent.X, Y: rng.Float64() * extent.Y},
			Strength: s,
			Depth:    depth,
		}
	}
	return out
}
