// Command reference dumps deterministic JSON fixtures for each
// navigation component: yield curves, sensor readings, ring attractor
// evolutions, path-integration states, landscape field samples, and a
// short bug trajectory. The files serve cross-implementation checks.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pthm-cable/mayajiva/agent"
	"github.com/pthm-cable/mayajiva/compass"
	"github.com/pthm-cable/mayajiva/cpu4"
	"github.com/pthm-cable/mayajiva/landscape"
	"github.com/pthm-cable/mayajiva/ring"
)

func main() {
	outDir := flag.String("output", "reference", "Output directory for JSON fixtures")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	dumps := []struct {
		name string
		fn   func() (any, error)
	}{
		{"compass_reference.json", dumpCompass},
		{"ring_attractor_reference.json", dumpRingAttractor},
		{"cpu4_reference.json", dumpCPU4},
		{"landscape_reference.json", dumpLandscape},
		{"bug_reference.json", dumpBug},
	}
	for _, d := range dumps {
		data, err := d.fn()
		if err != nil {
			slog.Error("fixture generation failed", "file", d.name, "error", err)
			os.Exit(1)
		}
		if err := writeJSON(filepath.Join(*outDir, d.name), data); err != nil {
			slog.Error("fixture write failed", "file", d.name, "error", err)
			os.Exit(1)
		}
		slog.Info("fixture written", "file", d.name)
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}

func dumpCompass() (any, error) {
	// Yield curve at two contrasts over a full turn.
	const nAlpha = 32
	alphas := make([]float64, nAlpha)
	yieldsC015 := make([]float64, nAlpha)
	yieldsC001 := make([]float64, nAlpha)
	for i := range alphas {
		alphas[i] = 2 * math.Pi * float64(i) / float64(nAlpha-1)
		yieldsC015[i] = compass.SingletYield(alphas[i], 0.15, 0.5)
		yieldsC001[i] = compass.SingletYield(alphas[i], 0.01, 0.5)
	}

	headings := []float64{0, math.Pi / 4, math.Pi / 2, math.Pi, 3 * math.Pi / 2}

	cfg := compass.DefaultConfig()
	sensor, err := compass.New(cfg, nil, rand.New(rand.NewSource(42)))
	if err != nil {
		return nil, err
	}
	readings := map[string][]float64{}
	for _, h := range headings {
		readings[fmt.Sprintf("%.6f", h)] = sensor.Read(h)
	}

	quietCfg := cfg
	quietCfg.SigmaSensor = 0
	quiet, err := compass.New(quietCfg, nil, rand.New(rand.NewSource(0)))
	if err != nil {
		return nil, err
	}
	noiseless := map[string][]float64{}
	for _, h := range headings {
		noiseless[fmt.Sprintf("%.6f", h)] = quiet.Read(h)
	}

	return map[string]any{
		"singlet_yield": map[string]any{
			"alphas":      alphas,
			"yields_c015": yieldsC015,
			"yields_c001": yieldsC001,
		},
		"sensor_readings":    readings,
		"noiseless_readings": noiseless,
		"sensor_params": map[string]any{
			"n_cry":        cfg.NCry,
			"n_channels":   cfg.NChannels,
			"contrast":     cfg.Contrast,
			"mean_yield":   cfg.MeanYield,
			"sigma_sensor": cfg.SigmaSensor,
		},
	}, nil
}

type ringTrace struct {
	States   [][]float64 `json:"states"`
	Headings []float64   `json:"headings"`
}

func dumpRingAttractor() (any, error) {
	cfg := ring.DefaultConfig()
	cfg.NoiseSigma = 0
	ra, err := ring.New(cfg, rand.New(rand.NewSource(123)))
	if err != nil {
		return nil, err
	}

	const dt = 0.01
	record := func(t *ringTrace) {
		t.States = append(t.States, ra.Rates())
		t.Headings = append(t.Headings, ra.Heading())
	}
	evolve := func(steps int, input []float64, omega float64) (ringTrace, error) {
		ra.ResetTo(0)
		var t ringTrace
		record(&t)
		for i := 0; i < steps; i++ {
			if err := ra.Step(dt, input, omega); err != nil {
				return t, err
			}
			record(&t)
		}
		return t, nil
	}

	ra.ResetTo(0)
	initialState := ra.Rates()
	initialHeading := ra.Heading()

	noInput, err := evolve(100, nil, 0)
	if err != nil {
		return nil, err
	}

	// Compass signal peaked at pi/2.
	compassIn := make([]float64, cfg.N)
	for i := range compassIn {
		theta := 2 * math.Pi * float64(i) / float64(cfg.N)
		compassIn[i] = 0.5 + 0.075*(1+math.Cos(2*(theta-math.Pi/2)))
	}
	compassDrive, err := evolve(200, compassIn, 0)
	if err != nil {
		return nil, err
	}

	const omega = 1.0
	angular, err := evolve(100, nil, omega)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"params": map[string]any{
			"n": cfg.N, "tau": cfg.Tau, "w_exc": cfg.WExc, "w_inh": cfg.WInh,
			"g_mag": cfg.GMag, "g_omega": cfg.GOmega, "noise_sigma": cfg.NoiseSigma,
		},
		"dt":              dt,
		"initial_state":   initialState,
		"initial_heading": initialHeading,
		"no_input":        noInput,
		"compass_drive": map[string]any{
			"compass_input": compassIn,
			"states":        compassDrive.States,
			"headings":      compassDrive.Headings,
		},
		"angular_velocity": map[string]any{
			"omega":    omega,
			"states":   angular.States,
			"headings": angular.Headings,
		},
	}, nil
}

func dumpCPU4() (any, error) {
	p, err := cpu4.New(cpu4.DefaultConfig())
	if err != nil {
		return nil, err
	}

	const dt = 0.01
	snapshot := func(p *cpu4.Integrator, withDisplacement bool) map[string]any {
		dist, dir := p.HomeVector()
		out := map[string]any{
			"memory":         p.Memory(),
			"home_distance":  dist,
			"home_direction": dir,
		}
		if withDisplacement {
			dx, dy := p.Displacement()
			out["displacement"] = []float64{dx, dy}
		}
		return out
	}

	for i := 0; i < 100; i++ {
		p.Update(0, 1, dt)
	}
	afterNorth := snapshot(p, true)

	for i := 0; i < 100; i++ {
		p.Update(math.Pi/2, 1, dt)
	}
	afterNorthEast := snapshot(p, true)

	leakyCfg := cpu4.DefaultConfig()
	leakyCfg.Leak = 0.1
	leaky, err := cpu4.New(leakyCfg)
	if err != nil {
		return nil, err
	}
	for i := 0; i < 100; i++ {
		leaky.Update(0, 1, dt)
	}
	leakyOut := snapshot(leaky, false)
	leakyOut["params"] = map[string]any{"n": leakyCfg.N, "leak": leakyCfg.Leak, "gain": leakyCfg.Gain}

	cfg := cpu4.DefaultConfig()
	return map[string]any{
		"params":           map[string]any{"n": cfg.N, "leak": cfg.Leak, "gain": cfg.Gain},
		"dt":               dt,
		"after_north":      afterNorth,
		"after_north_east": afterNorthEast,
		"leaky":            leakyOut,
	}, nil
}

type fieldPoint struct {
	Direction   float64  `json:"direction"`
	Intensity   float64  `json:"intensity"`
	Inclination float64  `json:"inclination"`
	Deviation   *float64 `json:"deviation,omitempty"`
}

func dumpLandscape() (any, error) {
	base := landscape.DefaultConfig()
	uniform, err := landscape.New(base)
	if err != nil {
		return nil, err
	}
	centre := uniform.MagneticDirection(500, 500)

	points := [][2]float64{{400, 400}, {500, 500}, {600, 400}, {500, 600}, {450, 500}}
	sample := func(l *landscape.Landscape, withDeviation bool) map[string]fieldPoint {
		out := map[string]fieldPoint{}
		for _, pt := range points {
			s := l.MagneticDirection(pt[0], pt[1])
			fp := fieldPoint{Direction: s.Direction, Intensity: s.Horizontal, Inclination: s.Inclination}
			if withDeviation {
				dev := l.DirectionDeviation(pt[0], pt[1])
				fp.Deviation = &dev
			}
			out[fmt.Sprintf("%g,%g", pt[0], pt[1])] = fp
		}
		return out
	}

	dipole := landscape.Anomaly{
		Type: landscape.Dipole, Pos: landscape.Vec2{X: 500, Y: 500},
		Strength: 5.0, Depth: 50.0,
	}
	fault := landscape.Anomaly{
		Type: landscape.Fault, Pos: landscape.Vec2{X: 500, Y: 500},
		Azimuth: 0, Contrast: 3.0, Width: 50.0,
	}
	gradient := landscape.Anomaly{
		Type: landscape.Gradient, Magnitude: 0.01, Direction: 0,
	}

	withAnomaly := func(a landscape.Anomaly) (*landscape.Landscape, error) {
		cfg := base
		cfg.Anomalies = []landscape.Anomaly{a}
		return landscape.New(cfg)
	}

	dipoleLand, err := withAnomaly(dipole)
	if err != nil {
		return nil, err
	}
	faultLand, err := withAnomaly(fault)
	if err != nil {
		return nil, err
	}
	gradLand, err := withAnomaly(gradient)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"uniform": map[string]any{
			"params": map[string]any{
				"B0":              base.B0,
				"declination":     base.Declination,
				"inclination_deg": base.Inclination * 180 / math.Pi,
			},
			"centre": fieldPoint{
				Direction:   centre.Direction,
				Intensity:   centre.Horizontal,
				Inclination: centre.Inclination,
			},
		},
		"dipole":   map[string]any{"anomaly": dipole, "results": sample(dipoleLand, true)},
		"fault":    map[string]any{"anomaly": fault, "results": sample(faultLand, false)},
		"gradient": map[string]any{"anomaly": gradient, "results": sample(gradLand, false)},
	}, nil
}

func dumpBug() (any, error) {
	land, err := landscape.New(landscape.DefaultConfig())
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(42))
	sCfg := compass.DefaultConfig()
	sCfg.SigmaSensor = 0
	sensor, err := compass.New(sCfg, nil, rng)
	if err != nil {
		return nil, err
	}
	rCfg := ring.DefaultConfig()
	rCfg.NoiseSigma = 0
	attractor, err := ring.New(rCfg, rng)
	if err != nil {
		return nil, err
	}

	h0 := 0.0
	cfg := agent.DefaultConfig()
	cfg.Heading0 = &h0
	cfg.SigmaTheta = 0
	cfg.SigmaXY = 0
	bug, err := agent.New(cfg, sensor, attractor, nil, rng)
	if err != nil {
		return nil, err
	}

	const (
		dt     = 0.01
		nSteps = 200
	)
	if err := bug.Run(land, nSteps*dt, dt); err != nil {
		return nil, err
	}

	hist := bug.History()
	trajectory := map[string]map[string]float64{}
	for _, i := range []int{0, 50, 100, 150, 200} {
		trajectory[fmt.Sprintf("%d", i)] = map[string]float64{
			"x":                 hist.X[i],
			"y":                 hist.Y[i],
			"heading":           hist.Heading[i],
			"estimated_heading": hist.EstimatedHeading[i],
		}
	}

	return map[string]any{
		"params": map[string]any{
			"x0": cfg.X0, "y0": cfg.Y0, "heading0": h0,
			"goal_heading": cfg.GoalHeading,
			"speed":        cfg.Speed, "kappa": cfg.Kappa,
			"sigma_theta": cfg.SigmaTheta, "sigma_xy": cfg.SigmaXY,
			"seed": 42,
		},
		"landscape": map[string]any{
			"B0": 50.0, "declination": 0.0, "inclination_deg": 65.0,
		},
		"dt":         dt,
		"n_steps":    nSteps,
		"trajectory": trajectory,
	}, nil
}
