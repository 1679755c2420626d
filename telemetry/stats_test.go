package telemetry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/mayajiva/agent"
	"github.com/pthm-cable/mayajiva/compass"
	"github.com/pthm-cable/mayajiva/cpu4"
	"github.com/pthm-cable/mayajiva/landscape"
	"github.com/pthm-cable/mayajiva/ring"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeErrorStats(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	mean, std, p50, p90 := ComputeErrorStats(values)

	if math.Abs(mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	if math.Abs(std-2.8723) > 0.001 {
		t.Errorf("std = %v, want ~2.8723", std)
	}
	if math.Abs(p50-5.5) > 0.01 {
		t.Errorf("p50 = %v, want 5.5", p50)
	}
	if math.Abs(p90-9.1) > 0.01 {
		t.Errorf("p90 = %v, want 9.1", p90)
	}
}

func TestComputeErrorStatsEmpty(t *testing.T) {
	mean, std, p50, p90 := ComputeErrorStats([]float64{})

	if mean != 0 || std != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func quietBug(t *testing.T) *agent.Bug {
	t.Helper()
	rng := rand.New(rand.NewSource(3))

	sCfg := compass.DefaultConfig()
	sCfg.SigmaSensor = 0
	sensor, err := compass.New(sCfg, nil, rng)
	if err != nil {
		t.Fatal(err)
	}
	rCfg := ring.DefaultConfig()
	rCfg.NoiseSigma = 0
	attractor, err := ring.New(rCfg, rng)
	if err != nil {
		t.Fatal(err)
	}
	integrator, err := cpu4.New(cpu4.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	h0 := 0.0
	cfg := agent.DefaultConfig()
	cfg.Heading0 = &h0
	cfg.GoalHeading = 0
	cfg.SigmaTheta = 0
	cfg.SigmaXY = 0
	b, err := agent.New(cfg, sensor, attractor, integrator, rng)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestTrajectoryRecords(t *testing.T) {
	b := quietBug(t)
	land, err := landscape.New(landscape.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Run(land, 1, 0.01); err != nil {
		t.Fatal(err)
	}

	recs := TrajectoryRecords(b.History(), 0.01)
	if len(recs) != 101 {
		t.Fatalf("got %d records, want 101", len(recs))
	}
	if recs[0].Step != 0 || recs[0].Time != 0 {
		t.Errorf("first record step/time = %d/%v, want 0/0", recs[0].Step, recs[0].Time)
	}
	last := recs[len(recs)-1]
	if math.Abs(last.Time-1.0) > 1e-9 {
		t.Errorf("last record time = %v, want 1.0", last.Time)
	}
	if last.X <= recs[0].X {
		t.Errorf("x did not advance: %v -> %v", recs[0].X, last.X)
	}
}

func TestComputeRunStats(t *testing.T) {
	b := quietBug(t)
	land, err := landscape.New(landscape.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Run(land, 5, 0.01); err != nil {
		t.Fatal(err)
	}

	s := ComputeRunStats(b, 3, 0.01)
	if s.Steps != 500 {
		t.Errorf("steps = %d, want 500", s.Steps)
	}
	if math.Abs(s.Duration-5.0) > 1e-9 {
		t.Errorf("duration = %v, want 5.0", s.Duration)
	}
	if math.Abs(s.DistanceFromStart-5.0) > 0.1 {
		t.Errorf("distance from start = %v, want ~5", s.DistanceFromStart)
	}
	if s.HomeDistance <= 0 {
		t.Errorf("home distance = %v, want positive with an integrator attached", s.HomeDistance)
	}
	if d := math.Abs(math.Mod(s.HomeDirection-math.Pi+math.Pi, 2*math.Pi) - math.Pi); d > 0.2 {
		t.Errorf("home direction = %v, want ~pi", s.HomeDirection)
	}
	if s.MeanBumpAmplitude <= 0 {
		t.Errorf("mean bump amplitude = %v, want positive", s.MeanBumpAmplitude)
	}
}
