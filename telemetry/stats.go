package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"github.com/pthm-cable/mayajiva/agent"
)

// TrajectoryRecord is one sampled point of a bug's path.
type TrajectoryRecord struct {
	Step             int     `csv:"step"`
	Time             float64 `csv:"time"`
	X                float64 `csv:"x"`
	Y                float64 `csv:"y"`
	Heading          float64 `csv:"heading"`
	EstimatedHeading float64 `csv:"estimated_heading"`
	BumpAmplitude    float64 `csv:"bump_amplitude"`
}

// TrajectoryRecords converts a recorded history into CSV rows, one per
// step at spacing dt.
func TrajectoryRecords(h *agent.History, dt float64) []TrajectoryRecord {
	out := make([]TrajectoryRecord, len(h.X))
	for i := range h.X {
		out[i] = TrajectoryRecord{
			Step:             i,
			Time:             float64(i) * dt,
			X:                h.X[i],
			Y:                h.Y[i],
			Heading:          h.Heading[i],
			EstimatedHeading: h.EstimatedHeading[i],
			BumpAmplitude:    h.BumpAmplitude[i],
		}
	}
	return out
}

// RunStats summarizes a single bug run.
type RunStats struct {
	Seed              int64   `csv:"seed"`
	Steps             int     `csv:"steps"`
	Duration          float64 `csv:"duration"`
	FinalX            float64 `csv:"final_x"`
	FinalY            float64 `csv:"final_y"`
	DistanceFromStart float64 `csv:"distance_from_start"`
	MeanHeadingError  float64 `csv:"mean_heading_error"`
	MeanBumpAmplitude float64 `csv:"mean_bump_amplitude"`
	HomeDistance      float64 `csv:"home_distance"`
	HomeDirection     float64 `csv:"home_direction"`
}

// ComputeRunStats summarizes a finished bug. Home-vector fields stay
// zero when the bug carries no integrator.
func ComputeRunStats(b *agent.Bug, seed int64, dt float64) RunStats {
	h := b.History()
	steps := len(h.X) - 1
	x, y := b.Position()

	var bumpSum float64
	for _, a := range h.BumpAmplitude {
		bumpSum += a
	}

	s := RunStats{
		Seed:              seed,
		Steps:             steps,
		Duration:          float64(steps) * dt,
		FinalX:            x,
		FinalY:            y,
		DistanceFromStart: b.DistanceFromStart(),
		MeanHeadingError:  b.MeanHeadingError(),
		MeanBumpAmplitude: bumpSum / float64(len(h.BumpAmplitude)),
	}
	if dist, dir, ok := b.HomeVector(); ok {
		s.HomeDistance = dist
		s.HomeDirection = dir
	}
	return s
}

// PhaseStats is one ensemble phase's homing-error summary.
type PhaseStats struct {
	Phase  string  `csv:"phase"`
	Time   float64 `csv:"time"`
	NBugs  int     `csv:"n_bugs"`
	Mean   float64 `csv:"mean"`
	Std    float64 `csv:"std"`
	Median float64 `csv:"median"`
	P90    float64 `csv:"p90"`
}

// Percentile calculates the p-th percentile of a sorted slice by linear
// interpolation. p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeErrorStats calculates mean, std, and percentiles from a sample
// of homing errors.
func ComputeErrorStats(values []float64) (mean, std, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	var sqDiffSum float64
	for _, v := range values {
		d := v - mean
		sqDiffSum += d * d
	}
	std = math.Sqrt(sqDiffSum / float64(n))

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s RunStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("seed", s.Seed),
		slog.Int("steps", s.Steps),
		slog.Float64("duration", s.Duration),
		slog.Float64("final_x", s.FinalX),
		slog.Float64("final_y", s.FinalY),
		slog.Float64("distance_from_start", s.DistanceFromStart),
		slog.Float64("mean_heading_error", s.MeanHeadingError),
		slog.Float64("mean_bump_amplitude", s.MeanBumpAmplitude),
		slog.Float64("home_distance", s.HomeDistance),
		slog.Float64("home_direction", s.HomeDirection),
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PhaseStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("phase", s.Phase),
		slog.Float64("time", s.Time),
		slog.Int("n_bugs", s.NBugs),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("median", s.Median),
		slog.Float64("p90", s.P90),
	)
}
