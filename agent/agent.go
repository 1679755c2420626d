// Package agent couples the compass sensor, the ring attractor, and
// optionally the path integrator into a bug navigating a magnetic
// landscape toward a goal heading, with Euler-Maruyama locomotion
// noise.
package agent

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/mayajiva/compass"
	"github.com/pthm-cable/mayajiva/cpu4"
	"github.com/pthm-cable/mayajiva/landscape"
	"github.com/pthm-cable/mayajiva/ring"
)

// Config parameterizes a Bug. Heading0 nil draws a uniform random
// initial heading.
type Config struct {
	X0          float64  // initial position (BL)
	Y0          float64
	Heading0    *float64 // initial heading (rad); nil for random
	GoalHeading float64  // desired magnetic heading (rad)
	Speed       float64  // forward speed (BL/s)
	Kappa       float64  // steering gain (rad/s)
	SigmaTheta  float64  // angular noise intensity (rad/sqrt(s))
	SigmaXY     float64  // translational noise intensity (BL/sqrt(s))
}

// DefaultConfig returns the standard bug parameters: start near the
// southern edge, goal heading 3pi/4.
func DefaultConfig() Config {
	return Config{
		X0:          500,
		Y0:          100,
		GoalHeading: 3 * math.Pi / 4,
		Speed:       1.0,
		Kappa:       2.0,
		SigmaTheta:  0.1,
		SigmaXY:     0.05,
	}
}

// History records the trajectory, one sample per step plus the initial
// state. Append-only.
type History struct {
	X                []float64
	Y                []float64
	Heading          []float64
	EstimatedHeading []float64
	BumpAmplitude    []float64
}

// Bug is one navigating agent. Not safe for concurrent use.
type Bug struct {
	cfg        Config
	sensor     *compass.Sensor
	attractor  *ring.Attractor
	integrator *cpu4.Integrator // optional home-vector memory
	rng        *rand.Rand

	x, y    float64
	heading float64
	history History
}

// New builds a Bug from its neural components. The integrator may be
// nil when the task needs no home vector. The attractor bump is seeded
// at the true initial heading.
func New(cfg Config, sensor *compass.Sensor, attractor *ring.Attractor, integrator *cpu4.Integrator, rng *rand.Rand) (*Bug, error) {
	if sensor == nil || attractor == nil {
		return nil, fmt.Errorf("agent: sensor and attractor must not be nil")
	}
	if rng == nil {
		return nil, fmt.Errorf("agent: rng must not be nil")
	}
	if sensor.NChannels() != attractor.N() {
		return nil, fmt.Errorf("agent: sensor has %d channels, attractor has %d neurons", sensor.NChannels(), attractor.N())
	}
	if cfg.Speed < 0 {
		return nil, fmt.Errorf("agent: speed must be non-negative, got %g", cfg.Speed)
	}
	if cfg.SigmaTheta < 0 || cfg.SigmaXY < 0 {
		return nil, fmt.Errorf("agent: noise intensities must be non-negative, got sigma_theta=%g sigma_xy=%g", cfg.SigmaTheta, cfg.SigmaXY)
	}

	b := &Bug{
		cfg:        cfg,
		sensor:     sensor,
		attractor:  attractor,
		integrator: integrator,
		rng:        rng,
		x:          cfg.X0,
		y:          cfg.Y0,
	}
	if cfg.Heading0 != nil {
		b.heading = *cfg.Heading0
	} else {
		b.heading = rng.Float64() * 2 * math.Pi
	}
	attractor.ResetTo(b.heading)
	b.record(attractor.Heading())
	return b, nil
}

func (b *Bug) record(estimated float64) {
	b.history.X = append(b.history.X, b.x)
	b.history.Y = append(b.history.Y, b.y)
	b.history.Heading = append(b.history.Heading, b.heading)
	b.history.EstimatedHeading = append(b.history.EstimatedHeading, estimated)
	b.history.BumpAmplitude = append(b.history.BumpAmplitude, b.attractor.BumpAmplitude())
}

// Step advances the bug by dt seconds and reports whether it is still
// inside the landscape.
func (b *Bug) Step(dt float64, land *landscape.Landscape) (bool, error) {
	// Local field and the heading the sensor array actually sees.
	field := land.MagneticDirection(b.x, b.y)
	relativeHeading := b.heading - field.Direction
	signal := b.sensor.Read(relativeHeading)

	// Steering command from the current heading estimate. The command
	// doubles as the angular-velocity input to the ring.
	estimated := b.attractor.Heading() + field.Direction
	command := b.cfg.Kappa * math.Sin(b.cfg.GoalHeading-estimated)

	if err := b.attractor.Step(dt, signal, command); err != nil {
		return false, err
	}

	b.heading += command*dt + b.cfg.SigmaTheta*math.Sqrt(dt)*b.rng.NormFloat64()
	b.heading = math.Mod(b.heading, 2*math.Pi)
	if b.heading < 0 {
		b.heading += 2 * math.Pi
	}

	b.x += b.cfg.Speed*math.Cos(b.heading)*dt + b.cfg.SigmaXY*math.Sqrt(dt)*b.rng.NormFloat64()
	b.y += b.cfg.Speed*math.Sin(b.heading)*dt + b.cfg.SigmaXY*math.Sqrt(dt)*b.rng.NormFloat64()

	estimated = b.attractor.Heading() + field.Direction
	if b.integrator != nil {
		b.integrator.Update(estimated, b.cfg.Speed, dt)
	}
	b.record(estimated)
	return land.InBounds(b.x, b.y), nil
}

// Run advances the bug for the given duration, stopping early if it
// leaves the landscape.
func (b *Bug) Run(land *landscape.Landscape, duration, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("agent: timestep must be positive, got %g", dt)
	}
	steps := int(duration / dt)
	for i := 0; i < steps; i++ {
		inBounds, err := b.Step(dt, land)
		if err != nil {
			return err
		}
		if !inBounds {
			break
		}
	}
	return nil
}

// Position returns the current (x, y).
func (b *Bug) Position() (x, y float64) { return b.x, b.y }

// Heading returns the current true heading in [0, 2pi).
func (b *Bug) Heading() float64 { return b.heading }

// History returns the recorded trajectory. The slices are shared with
// the bug; treat them as read-only.
func (b *Bug) History() *History { return &b.history }

// HomeVector decodes the path-integration memory; ok is false when the
// bug carries no integrator.
func (b *Bug) HomeVector() (distance, direction float64, ok bool) {
	if b.integrator == nil {
		return 0, 0, false
	}
	distance, direction = b.integrator.HomeVector()
	return distance, direction, true
}

// DistanceFromStart is the Euclidean distance from the starting point.
func (b *Bug) DistanceFromStart() float64 {
	return math.Hypot(b.x-b.history.X[0], b.y-b.history.Y[0])
}

// MeanHeadingError is the mean absolute wrapped deviation of the
// recorded headings from the goal.
func (b *Bug) MeanHeadingError() float64 {
	var sum float64
	for _, h := range b.history.Heading {
		d := math.Mod(h-b.cfg.GoalHeading+math.Pi, 2*math.Pi)
		if d < 0 {
			d += 2 * math.Pi
		}
		sum += math.Abs(d - math.Pi)
	}
	return sum / float64(len(b.history.Heading))
}
