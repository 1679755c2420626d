package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/mayajiva/config"
)

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir            string
	trajectoryFile *os.File
	runsFile       *os.File
	phasesFile     *os.File

	// Track if headers have been written
	trajectoryHeaderWritten bool
	runsHeaderWritten       bool
	phasesHeaderWritten     bool
}

// NewOutputManager creates a new output manager and initializes the
// output directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "trajectory.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating trajectory.csv: %w", err)
	}
	om.trajectoryFile = f

	f, err = os.Create(filepath.Join(dir, "runs.csv"))
	if err != nil {
		om.trajectoryFile.Close()
		return nil, fmt.Errorf("creating runs.csv: %w", err)
	}
	om.runsFile = f

	f, err = os.Create(filepath.Join(dir, "phases.csv"))
	if err != nil {
		om.trajectoryFile.Close()
		om.runsFile.Close()
		return nil, fmt.Errorf("creating phases.csv: %w", err)
	}
	om.phasesFile = f

	return om, nil
}

// WriteConfig saves the configuration snapshot as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTrajectory appends trajectory rows to trajectory.csv.
func (om *OutputManager) WriteTrajectory(records []TrajectoryRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}

	if !om.trajectoryHeaderWritten {
		if err := gocsv.Marshal(records, om.trajectoryFile); err != nil {
			return fmt.Errorf("writing trajectory: %w", err)
		}
		om.trajectoryHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.trajectoryFile); err != nil {
			return fmt.Errorf("writing trajectory: %w", err)
		}
	}

	return nil
}

// WriteRun appends a run summary to runs.csv.
func (om *OutputManager) WriteRun(stats RunStats) error {
	if om == nil {
		return nil
	}

	records := []RunStats{stats}

	if !om.runsHeaderWritten {
		if err := gocsv.Marshal(records, om.runsFile); err != nil {
			return fmt.Errorf("writing run stats: %w", err)
		}
		om.runsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.runsFile); err != nil {
			return fmt.Errorf("writing run stats: %w", err)
		}
	}

	return nil
}

// WritePhase appends an ensemble phase summary to phases.csv.
func (om *OutputManager) WritePhase(stats PhaseStats) error {
	if om == nil {
		return nil
	}

	records := []PhaseStats{stats}

	if !om.phasesHeaderWritten {
		if err := gocsv.Marshal(records, om.phasesFile); err != nil {
			return fmt.Errorf("writing phase stats: %w", err)
		}
		om.phasesHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.phasesFile); err != nil {
			return fmt.Errorf("writing phase stats: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	for _, f := range []*os.File{om.trajectoryFile, om.runsFile, om.phasesFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
