// Command mayajiva runs magnetoreception navigation experiments
// headless: a single bug trajectory, a homing ensemble, or the reversal
// control, with CSV output and structured logs.
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/mayajiva/agent"
	"github.com/pthm-cable/mayajiva/compass"
	"github.com/pthm-cable/mayajiva/config"
	"github.com/pthm-cable/mayajiva/cpu4"
	"github.com/pthm-cable/mayajiva/ensemble"
	"github.com/pthm-cable/mayajiva/landscape"
	"github.com/pthm-cable/mayajiva/ring"
	"github.com/pthm-cable/mayajiva/spin"
	"github.com/pthm-cable/mayajiva/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "single", "Experiment: single, homing, or reversal")
	quantum := flag.Bool("quantum", false, "Drive the sensor from the radical-pair yield table")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	duration := flag.Float64("duration", 0, "Run duration in seconds (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *seed != 0 {
		cfg.Run.Seed = *seed
	}
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}
	if *duration > 0 {
		cfg.Run.Duration = *duration
	}
	if *outputDir != "" {
		cfg.Run.OutputDir = *outputDir
	}

	om, err := telemetry.NewOutputManager(cfg.Run.OutputDir)
	if err != nil {
		slog.Error("failed to initialize output", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
		os.Exit(1)
	}

	land, err := landscape.New(cfg.LandscapeConfig())
	if err != nil {
		slog.Error("failed to build landscape", "error", err)
		os.Exit(1)
	}

	slog.Info("starting experiment",
		"mode", *mode,
		"seed", cfg.Run.Seed,
		"duration", cfg.Run.Duration,
		"output_dir", om.Dir(),
	)

	switch *mode {
	case "single":
		err = runSingle(cfg, land, om, *quantum)
	case "homing":
		err = runEnsemble(cfg, land, om, false)
	case "reversal":
		err = runEnsemble(cfg, land, om, true)
	default:
		slog.Error("unknown mode", "mode", *mode)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("experiment failed", "error", err)
		os.Exit(1)
	}
}

// runSingle walks one bug through the landscape and dumps its
// trajectory and summary.
func runSingle(cfg *config.Config, land *landscape.Landscape, om *telemetry.OutputManager, quantum bool) error {
	rng := rand.New(rand.NewSource(cfg.Run.Seed))

	var table *spin.Compass
	if quantum {
		c, err := spin.NewCompass(cfg.CompassConfig())
		if err != nil {
			return err
		}
		table = c
		slog.Info("quantum yield table ready",
			"model", cfg.Quantum.Model,
			"mean_yield", c.MeanYield(),
			"contrast", c.Contrast(),
		)
	}

	sensor, err := compass.New(cfg.SensorConfig(), table, rng)
	if err != nil {
		return err
	}
	attractor, err := ring.New(cfg.RingConfig(), rng)
	if err != nil {
		return err
	}
	var integrator *cpu4.Integrator
	if cfg.CPU4.Enabled {
		integrator, err = cpu4.New(cfg.CPU4Config())
		if err != nil {
			return err
		}
	}

	bug, err := agent.New(cfg.AgentConfig(), sensor, attractor, integrator, rng)
	if err != nil {
		return err
	}
	if err := bug.Run(land, cfg.Run.Duration, cfg.Run.Dt); err != nil {
		return err
	}

	if err := om.WriteTrajectory(telemetry.TrajectoryRecords(bug.History(), cfg.Run.Dt)); err != nil {
		return err
	}
	stats := telemetry.ComputeRunStats(bug, cfg.Run.Seed, cfg.Run.Dt)
	if err := om.WriteRun(stats); err != nil {
		return err
	}
	slog.Info("run complete", "stats", stats)
	return nil
}

// runEnsemble drives the two-phase homing task; reversal swaps the
// memory-guided return for steering at the reversed outbound goal.
func runEnsemble(cfg *config.Config, land *landscape.Landscape, om *telemetry.OutputManager, reversal bool) error {
	exp, err := ensemble.New(cfg.EnsembleConfig(), land)
	if err != nil {
		return err
	}
	slog.Info("ensemble ready",
		"n_bugs", cfg.Ensemble.NBugs,
		"sigma_compass", exp.SigmaCompass(),
	)

	writePhase := func(name string, elapsed float64) error {
		s := exp.HomingStats()
		ps := telemetry.PhaseStats{
			Phase:  name,
			Time:   elapsed,
			NBugs:  cfg.Ensemble.NBugs,
			Mean:   s.Mean,
			Std:    s.Std,
			Median: s.Median,
			P90:    s.P90,
		}
		slog.Info("phase complete", "stats", ps)
		return om.WritePhase(ps)
	}

	if cfg.Ensemble.Mode == string(ensemble.Explore) {
		exp.Explore(cfg.Ensemble.TOut)
	} else {
		exp.IntegrateOutbound(cfg.Ensemble.TOut)
	}
	if err := writePhase("outbound", cfg.Ensemble.TOut); err != nil {
		return err
	}

	if reversal {
		exp.ReverseHoming(cfg.Ensemble.THome)
		if err := writePhase("reversal", cfg.Ensemble.TOut+cfg.Ensemble.THome); err != nil {
			return err
		}
	} else {
		exp.IntegrateHoming(cfg.Ensemble.THome)
		if err := writePhase("homing", cfg.Ensemble.TOut+cfg.Ensemble.THome); err != nil {
			return err
		}
	}
	return nil
}
