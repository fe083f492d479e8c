package trail

import (
	"log/slog"

	"github.com/yaelren/3DTrail/telemetry"
)

// Stats is a snapshot of the engine for HUDs and tests.
type Stats struct {
	Tick  int64
	Clock float64

	Live     int
	Pools    int
	Capacity int // summed over pools
	PoolUsed []int

	Spawned  int
	Expired  int
	Dropped  int
	Rebuilds int

	GradientA, GradientB int
	Mix                  float64
	Cycles               int

	AssetSource string
	AssetLoaded bool
}

// Stats returns the current counters.
func (e *Engine) Stats() Stats {
	a, b := e.controller.Pair()
	s := Stats{
		Tick:        e.tick,
		Clock:       e.clock,
		Live:        e.live,
		Pools:       len(e.pools),
		PoolUsed:    make([]int, len(e.pools)),
		Spawned:     e.counters.spawned,
		Expired:     e.counters.expired,
		Dropped:     e.counters.dropped,
		Rebuilds:    e.counters.rebuilds,
		GradientA:   a,
		GradientB:   b,
		Mix:         e.controller.Eased(),
		Cycles:      e.controller.Cycles(),
		AssetSource: e.asset.Source,
		AssetLoaded: e.asset.Loaded(),
	}
	for i, p := range e.pools {
		s.Capacity += p.Cap()
		s.PoolUsed[i] = p.Used()
	}
	return s
}

// Perf returns the rolling tick timings.
func (e *Engine) Perf() telemetry.PerfStats { return e.perf.Stats() }

// RecordFrame marks a rendered frame for FPS reporting.
func (e *Engine) RecordFrame() { e.perf.RecordFrame() }

// flushTelemetry closes the stats window when it is due and hands it to the
// log and the CSV output.
func (e *Engine) flushTelemetry() {
	if !e.collector.ShouldFlush(e.clock) {
		return
	}

	sample := telemetry.Sample{
		Tick:   e.tick,
		Time:   e.clock,
		Live:   e.live,
		Pools:  len(e.pools),
		Cycles: e.controller.Cycles(),
		Mix:    e.controller.Eased(),
	}
	sample.GradientA, sample.GradientB = e.controller.Pair()
	query := e.filter.Query()
	for query.Next() {
		t, _, l, _ := query.Get()
		sample.AgeRatio = append(sample.AgeRatio, float64(l.Ratio()))
		sample.Scales = append(sample.Scales, float64(t.Scale))
	}

	stats := e.collector.Flush(sample)
	perf := e.perf.Stats()
	if e.logStats {
		stats.LogStats()
		perf.LogStats()
	}
	if err := e.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := e.output.WritePerf(perf, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
