// Package ensemble runs many bugs through the two-phase homing task at
// once: an outbound phase (goal-directed or free exploration) followed
// by path-integration homing. Bugs live as entities in an ECS world, so
// the per-step loop touches struct-of-arrays component storage instead
// of per-bug objects.
//
// The compass model is reduced relative to the full sensor array: the
// channel-averaged read collapses to a heading estimate with Gaussian
// noise sigma_compass = sigma_sensor / (delta * sqrt(2 * N/C)), plus a
// constant bias and the landscape's local field deviation. The CPU4
// memory integrates this estimate, not the true heading, which is what
// makes constant biases cancel at readout while spatially varying ones
// do not.
package ensemble

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/mayajiva/landscape"
)

// NCPU4 is the number of path-integration accumulators per bug.
const NCPU4 = 8

// Position is a bug's location in the landscape plane.
type Position struct {
	X float64
	Y float64
}

// Heading is a bug's true heading in [0, 2pi).
type Heading struct {
	Theta float64
}

// PathMemory is the CPU4 accumulator state.
type PathMemory struct {
	M [NCPU4]float64
}

// Mode selects how initial headings are drawn.
type Mode string

const (
	// Straight starts every bug aligned with the outbound goal.
	Straight Mode = "straight"
	// Explore starts every bug at a uniform random heading.
	Explore Mode = "explore"
)

// Config parameterizes an Experiment.
type Config struct {
	NBugs       int
	Dt          float64
	Kappa       float64 // steering gain (rad/s)
	SigmaTheta  float64 // angular noise (rad/sqrt(s))
	SigmaXY     float64 // translational noise (BL/sqrt(s))
	Contrast    float64 // compass contrast
	MeanYield   float64 // compass mean yield
	NCry        int     // molecules in the sensor array
	SigmaSensor float64 // per-molecule sensor noise
	Bias        float64 // constant additive compass bias (rad)
	GoalOut     float64 // outbound goal heading (rad)
	Speed       float64 // BL/s
	Leak        float64 // CPU4 memory decay (1/s)
	Mode        Mode
	Seed        int64
}

// DefaultConfig returns the standard homing-task parameters.
func DefaultConfig() Config {
	return Config{
		NBugs:       200,
		Dt:          0.05,
		Kappa:       2.0,
		SigmaTheta:  0.1,
		SigmaXY:     0.05,
		Contrast:    0.15,
		MeanYield:   0.5,
		NCry:        1000,
		SigmaSensor: 0.02,
		GoalOut:     3 * math.Pi / 4,
		Speed:       1.0,
		Mode:        Straight,
	}
}

type steering int

const (
	freeWalk steering = iota
	toGoal
	toHome
)

// Experiment holds the ECS world and the shared task state. Phases are
// driven explicitly: Explore or IntegrateOutbound first, then
// IntegrateHoming or ReverseHoming.
type Experiment struct {
	cfg  Config
	land *landscape.Landscape
	rng  *rand.Rand

	world  *ecs.World
	mapper *ecs.Map3[Position, Heading, PathMemory]
	filter *ecs.Filter3[Position, Heading, PathMemory]

	phi          [NCPU4]float64
	sigmaCompass float64
	startX       float64
	startY       float64
}

// New spawns cfg.NBugs bugs at the landscape centre.
func New(cfg Config, land *landscape.Landscape) (*Experiment, error) {
	if land == nil {
		return nil, fmt.Errorf("ensemble: landscape must not be nil")
	}
	if cfg.NBugs < 1 {
		return nil, fmt.Errorf("ensemble: need at least one bug, got %d", cfg.NBugs)
	}
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("ensemble: timestep must be positive, got %g", cfg.Dt)
	}
	if cfg.NCry < 1 {
		return nil, fmt.Errorf("ensemble: need at least one molecule, got %d", cfg.NCry)
	}
	switch cfg.Mode {
	case Straight, Explore:
	default:
		return nil, fmt.Errorf("ensemble: unknown mode %q", cfg.Mode)
	}

	world := ecs.NewWorld()
	e := &Experiment{
		cfg:    cfg,
		land:   land,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		world:  world,
		mapper: ecs.NewMap3[Position, Heading, PathMemory](world),
		filter: ecs.NewFilter3[Position, Heading, PathMemory](world),
		startX: land.Extent().X / 2,
		startY: land.Extent().Y / 2,
	}
	for i := range e.phi {
		e.phi[i] = 2 * math.Pi * float64(i) / float64(NCPU4)
	}

	// Reduced compass noise model: channel averaging buys sqrt(N), the
	// double-angle decode another sqrt(2), and the contrast delta sets
	// the radians-per-yield conversion.
	delta := cfg.Contrast * cfg.MeanYield
	nPerChannel := float64(cfg.NCry) / float64(NCPU4)
	if delta > 1e-10 {
		e.sigmaCompass = cfg.SigmaSensor / (delta * math.Sqrt(2*nPerChannel))
	} else {
		e.sigmaCompass = 10.0 // contrast-free compass carries no signal
	}

	for i := 0; i < cfg.NBugs; i++ {
		theta := cfg.GoalOut
		if cfg.Mode == Explore {
			theta = e.rng.Float64() * 2 * math.Pi
		}
		pos := Position{X: e.startX, Y: e.startY}
		head := Heading{Theta: theta}
		mem := PathMemory{}
		e.mapper.NewEntity(&pos, &head, &mem)
	}
	return e, nil
}

// SigmaCompass returns the reduced per-read heading noise.
func (e *Experiment) SigmaCompass() float64 { return e.sigmaCompass }

// Explore advances every bug through a free correlated random walk.
func (e *Experiment) Explore(duration float64) {
	e.phase(duration, freeWalk, 0)
}

// IntegrateOutbound steers every bug toward the outbound goal while the
// path memory accumulates.
func (e *Experiment) IntegrateOutbound(duration float64) {
	e.phase(duration, toGoal, e.cfg.GoalOut)
}

// IntegrateHoming steers every bug along its decoded home vector.
func (e *Experiment) IntegrateHoming(duration float64) {
	e.phase(duration, toHome, 0)
}

// ReverseHoming steers toward the reversed outbound goal, ignoring the
// path memory. The control condition for the homing task.
func (e *Experiment) ReverseHoming(duration float64) {
	goal := math.Mod(e.cfg.GoalOut+math.Pi, 2*math.Pi)
	e.phase(duration, toGoal, goal)
}

func (e *Experiment) phase(duration float64, mode steering, goal float64) {
	steps := int(duration / e.cfg.Dt)
	for i := 0; i < steps; i++ {
		e.step(mode, goal)
	}
}

func (e *Experiment) step(mode steering, goal float64) {
	cfg := e.cfg
	dt := cfg.Dt
	sqrtDt := math.Sqrt(dt)
	decay := 1.0
	if cfg.Leak > 0 {
		decay = 1.0 - cfg.Leak*dt
	}

	query := e.filter.Query()
	for query.Next() {
		pos, head, mem := query.Get()

		deltaPhi := e.land.DirectionDeviation(pos.X, pos.Y)
		headingEst := head.Theta + e.rng.NormFloat64()*e.sigmaCompass + cfg.Bias + deltaPhi

		for i := range mem.M {
			drive := cfg.Speed * math.Max(math.Cos(headingEst-e.phi[i]), 0) * dt
			mem.M[i] = mem.M[i]*decay + drive
		}

		var dTheta float64
		switch mode {
		case freeWalk:
			dTheta = cfg.SigmaTheta * sqrtDt * e.rng.NormFloat64()
		case toGoal:
			dTheta = cfg.Kappa*math.Sin(goal-headingEst)*dt +
				cfg.SigmaTheta*sqrtDt*e.rng.NormFloat64()
		case toHome:
			var dx, dy float64
			for i, m := range mem.M {
				dx += m * math.Cos(e.phi[i])
				dy += m * math.Sin(e.phi[i])
			}
			homeDir := math.Atan2(-dy, -dx)
			dTheta = cfg.Kappa*math.Sin(homeDir-headingEst)*dt +
				cfg.SigmaTheta*sqrtDt*e.rng.NormFloat64()
		}

		head.Theta = math.Mod(head.Theta+dTheta, 2*math.Pi)
		if head.Theta < 0 {
			head.Theta += 2 * math.Pi
		}
		pos.X += cfg.Speed*math.Cos(head.Theta)*dt + cfg.SigmaXY*sqrtDt*e.rng.NormFloat64()
		pos.Y += cfg.Speed*math.Sin(head.Theta)*dt + cfg.SigmaXY*sqrtDt*e.rng.NormFloat64()
	}
}

// HomingErrors returns every bug's distance from the start point.
func (e *Experiment) HomingErrors() []float64 {
	out := make([]float64, 0, e.cfg.NBugs)
	query := e.filter.Query()
	for query.Next() {
		pos, _, _ := query.Get()
		out = append(out, math.Hypot(pos.X-e.startX, pos.Y-e.startY))
	}
	return out
}

// Stats summarizes a sample of homing errors.
type Stats struct {
	Mean   float64
	Std    float64
	Median float64
	P90    float64
}

// HomingStats computes summary statistics over the current errors.
func (e *Experiment) HomingStats() Stats {
	errs := e.HomingErrors()
	sort.Float64s(errs)
	return Stats{
		Mean:   stat.Mean(errs, nil),
		Std:    stat.StdDev(errs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, errs, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, errs, nil),
	}
}
