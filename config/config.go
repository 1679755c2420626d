// Package config provides configuration loading for the simulation.
// Embedded defaults are merged with an optional user YAML file; the
// loaded Config converts into the explicit per-component config structs
// rather than being read globally.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/mayajiva/agent"
	"github.com/pthm-cable/mayajiva/compass"
	"github.com/pthm-cable/mayajiva/cpu4"
	"github.com/pthm-cable/mayajiva/ensemble"
	"github.com/pthm-cable/mayajiva/landscape"
	"github.com/pthm-cable/mayajiva/ring"
	"github.com/pthm-cable/mayajiva/spin"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters.
type Config struct {
	Quantum   QuantumConfig   `yaml:"quantum"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Ring      RingConfig      `yaml:"ring"`
	CPU4      CPU4Config      `yaml:"cpu4"`
	Landscape LandscapeConfig `yaml:"landscape"`
	Agent     AgentConfig     `yaml:"agent"`
	Ensemble  EnsembleConfig  `yaml:"ensemble"`
	Run       RunConfig       `yaml:"run"`
}

// QuantumConfig selects the radical-pair model behind the compass.
type QuantumConfig struct {
	Enabled bool    `yaml:"enabled"` // use the quantum yield table instead of the analytic form
	Model   string  `yaml:"model"`
	B0      float64 `yaml:"b0"` // Tesla
	K       float64 `yaml:"k"`  // recombination rate (1/s)
	KS      float64 `yaml:"k_s"`
	KT      float64 `yaml:"k_t"`
	KRelaxA float64 `yaml:"k_relax_a"`
	KRelaxB float64 `yaml:"k_relax_b"`
	NTheta  int     `yaml:"n_theta"`
}

// SensorConfig holds the cryptochrome array parameters.
type SensorConfig struct {
	NCry        int     `yaml:"n_cry"`
	NChannels   int     `yaml:"n_channels"`
	Contrast    float64 `yaml:"contrast"`
	MeanYield   float64 `yaml:"mean_yield"`
	SigmaSensor float64 `yaml:"sigma_sensor"`
}

// RingConfig holds the ring attractor parameters.
type RingConfig struct {
	N          int     `yaml:"n"`
	Tau        float64 `yaml:"tau"`
	WExc       float64 `yaml:"w_exc"`
	WInh       float64 `yaml:"w_inh"`
	GMag       float64 `yaml:"g_mag"`
	GOmega     float64 `yaml:"g_omega"`
	Threshold  float64 `yaml:"threshold"`
	RMax       float64 `yaml:"r_max"`
	NoiseSigma float64 `yaml:"noise_sigma"`
}

// CPU4Config holds the path integrator parameters.
type CPU4Config struct {
	Enabled bool    `yaml:"enabled"`
	N       int     `yaml:"n"`
	Leak    float64 `yaml:"leak"`
	Gain    float64 `yaml:"gain"`
}

// LandscapeConfig holds the field landscape parameters. Inclination
// and declination are degrees in the file, radians everywhere else.
type LandscapeConfig struct {
	Width          float64             `yaml:"width"`
	Height         float64             `yaml:"height"`
	B0             float64             `yaml:"b0"` // uT
	DeclinationDeg float64             `yaml:"declination_deg"`
	InclinationDeg float64             `yaml:"inclination_deg"`
	Anomalies      []landscape.Anomaly `yaml:"anomalies"`
}

// AgentConfig holds the single-bug parameters.
type AgentConfig struct {
	X0          float64  `yaml:"x0"`
	Y0          float64  `yaml:"y0"`
	Heading0    *float64 `yaml:"heading0"` // absent means random
	GoalHeading float64  `yaml:"goal_heading"`
	Speed       float64  `yaml:"speed"`
	Kappa       float64  `yaml:"kappa"`
	SigmaTheta  float64  `yaml:"sigma_theta"`
	SigmaXY     float64  `yaml:"sigma_xy"`
}

// EnsembleConfig holds the homing-task parameters.
type EnsembleConfig struct {
	NBugs   int     `yaml:"n_bugs"`
	Dt      float64 `yaml:"dt"`
	TOut    float64 `yaml:"t_out"`
	THome   float64 `yaml:"t_home"`
	Bias    float64 `yaml:"bias"`
	GoalOut float64 `yaml:"goal_out"`
	Leak    float64 `yaml:"leak"`
	Mode    string  `yaml:"mode"`
}

// RunConfig holds runner-level settings.
type RunConfig struct {
	Duration  float64 `yaml:"duration"` // seconds
	Dt        float64 `yaml:"dt"`
	Seed      int64   `yaml:"seed"`
	OutputDir string  `yaml:"output_dir"`
}

// Load merges a user YAML file over the embedded defaults. An empty
// path loads the defaults alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return cfg, nil
}

// WriteYAML snapshots the configuration to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// CompassConfig converts the quantum section for spin.NewCompass.
func (c *Config) CompassConfig() spin.CompassConfig {
	out := spin.CompassConfig{
		Model:  c.Quantum.Model,
		B0:     c.Quantum.B0,
		K:      c.Quantum.K,
		NTheta: c.Quantum.NTheta,
	}
	if c.Quantum.KS != 0 || c.Quantum.KT != 0 || c.Quantum.KRelaxA != 0 || c.Quantum.KRelaxB != 0 {
		out.Rates = &spin.Rates{
			KS:      c.Quantum.KS,
			KT:      c.Quantum.KT,
			KRelaxA: c.Quantum.KRelaxA,
			KRelaxB: c.Quantum.KRelaxB,
		}
	}
	return out
}

// SensorConfig converts the sensor section for compass.New.
func (c *Config) SensorConfig() compass.Config {
	return compass.Config{
		NCry:        c.Sensor.NCry,
		NChannels:   c.Sensor.NChannels,
		Contrast:    c.Sensor.Contrast,
		MeanYield:   c.Sensor.MeanYield,
		SigmaSensor: c.Sensor.SigmaSensor,
	}
}

// RingConfig converts the ring section for ring.New.
func (c *Config) RingConfig() ring.Config {
	return ring.Config{
		N:          c.Ring.N,
		Tau:        c.Ring.Tau,
		WExc:       c.Ring.WExc,
		WInh:       c.Ring.WInh,
		GMag:       c.Ring.GMag,
		GOmega:     c.Ring.GOmega,
		Threshold:  c.Ring.Threshold,
		RMax:       c.Ring.RMax,
		NoiseSigma: c.Ring.NoiseSigma,
	}
}

// CPU4Config converts the cpu4 section for cpu4.New.
func (c *Config) CPU4Config() cpu4.Config {
	return cpu4.Config{N: c.CPU4.N, Leak: c.CPU4.Leak, Gain: c.CPU4.Gain}
}

// LandscapeConfig converts the landscape section for landscape.New.
func (c *Config) LandscapeConfig() landscape.Config {
	return landscape.Config{
		Extent:      landscape.Vec2{X: c.Landscape.Width, Y: c.Landscape.Height},
		B0:          c.Landscape.B0,
		Declination: c.Landscape.DeclinationDeg * math.Pi / 180,
		Inclination: c.Landscape.InclinationDeg * math.Pi / 180,
		Anomalies:   c.Landscape.Anomalies,
	}
}

// AgentConfig converts the agent section for agent.New.
func (c *Config) AgentConfig() agent.Config {
	return agent.Config{
		X0:          c.Agent.X0,
		Y0:          c.Agent.Y0,
		Heading0:    c.Agent.Heading0,
		GoalHeading: c.Agent.GoalHeading,
		Speed:       c.Agent.Speed,
		Kappa:       c.Agent.Kappa,
		SigmaTheta:  c.Agent.SigmaTheta,
		SigmaXY:     c.Agent.SigmaXY,
	}
}

// EnsembleConfig converts the ensemble section for ensemble.New.
func (c *Config) EnsembleConfig() ensemble.Config {
	return ensemble.Config{
		NBugs:       c.Ensemble.NBugs,
		Dt:          c.Ensemble.Dt,
		Kappa:       c.Agent.Kappa,
		SigmaTheta:  c.Agent.SigmaTheta,
		SigmaXY:     c.Agent.SigmaXY,
		Contrast:    c.Sensor.Contrast,
		MeanYield:   c.Sensor.MeanYield,
		NCry:        c.Sensor.NCry,
		SigmaSensor: c.Sensor.SigmaSensor,
		Bias:        c.Ensemble.Bias,
		GoalOut:     c.Ensemble.GoalOut,
		Speed:       c.Agent.Speed,
		Leak:        c.Ensemble.Leak,
		Mode:        ensemble.Mode(c.Ensemble.Mode),
		Seed:        c.Run.Seed,
	}
}
