// Package telemetry collects windowed trail statistics and tick timings.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Counts at window end
	Live  int `csv:"live"`
	Pools int `csv:"pools"`

	// Events during window
	Spawned  int `csv:"spawned"`
	Expired  int `csv:"expired"`
	Dropped  int `csv:"dropped"` // spawn attempts skipped on an exhausted pool
	Rebuilds int `csv:"rebuilds"`

	// Age distribution (sampled at window end), as a fraction of lifespan
	AgeMean float64 `csv:"age_mean"`
	AgeP10  float64 `csv:"age_p10"`
	AgeP50  float64 `csv:"age_p50"`
	AgeP90  float64 `csv:"age_p90"`

	// Scale distribution (sampled at window end)
	ScaleMean float64 `csv:"scale_mean"`
	ScaleStd  float64 `csv:"scale_std"`

	// Gradient blend state at window end
	GradientA int     `csv:"gradient_a"`
	GradientB int     `csv:"gradient_b"`
	Mix       float64 `csv:"mix"`
	Cycles    int     `csv:"cycles"`
}

// Summary is the distribution of a sampled value.
type Summary struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes mean, standard deviation and empirical quantiles.
// values is not modified. An empty slice yields the zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var s Summary
	s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		s.Std = 0
	}
	s.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("live", s.Live),
		slog.Int("pools", s.Pools),
		slog.Int("spawned", s.Spawned),
		slog.Int("expired", s.Expired),
		slog.Int("dropped", s.Dropped),
		slog.Int("rebuilds", s.Rebuilds),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("age_p50", s.AgeP50),
		slog.Float64("scale_mean", s.ScaleMean),
		slog.Int("gradient_a", s.GradientA),
		slog.Int("gradient_b", s.GradientB),
		slog.Float64("mix", s.Mix),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"live", s.Live,
		"spawned", s.Spawned,
		"expired", s.Expired,
		"dropped", s.Dropped,
		"age_p50", s.AgeP50,
		"mix", s.Mix,
	)
}
