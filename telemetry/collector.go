package telemetry

// Collector accumulates events within time windows and produces WindowStats.
// Windows are measured on the engine clock, since ticks follow the frame rate.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartTick int64
	windowStartTime float64

	// Event counters for current window
	spawned  int
	expired  int
	dropped  int
	rebuilds int
}

// Sample is the engine state handed to Flush at the end of a window.
type Sample struct {
	Tick     int64
	Time     float64
	Live     int
	Pools    int
	AgeRatio []float64 // age/lifespan of every live particle
	Scales   []float64

	GradientA, GradientB int
	Mix                  float64
	Cycles               int
}

// NewCollector creates a collector flushing every windowDurationSec seconds
// of engine time.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 5
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordSpawn records a particle entering a pool.
func (c *Collector) RecordSpawn() { c.spawned++ }

// RecordExpire records a particle reaching its lifespan.
func (c *Collector) RecordExpire() { c.expired++ }

// RecordDrop records a spawn skipped because the pool was full.
func (c *Collector) RecordDrop() { c.dropped++ }

// RecordRebuild records a pool teardown and rebuild.
func (c *Collector) RecordRebuild() { c.rebuilds++ }

// ShouldFlush returns true once the current window has lasted long enough.
func (c *Collector) ShouldFlush(now float64) bool {
	return now-c.windowStartTime >= c.windowDurationSec
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(s Sample) WindowStats {
	age := Summarize(s.AgeRatio)
	scale := Summarize(s.Scales)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   s.Tick,
		SimTimeSec:      s.Time,

		Live:  s.Live,
		Pools: s.Pools,

		Spawned:  c.spawned,
		Expired:  c.expired,
		Dropped:  c.dropped,
		Rebuilds: c.rebuilds,

		AgeMean: age.Mean,
		AgeP10:  age.P10,
		AgeP50:  age.P50,
		AgeP90:  age.P90,

		ScaleMean: scale.Mean,
		ScaleStd:  scale.Std,

		GradientA: s.GradientA,
		GradientB: s.GradientB,
		Mix:       s.Mix,
		Cycles:    s.Cycles,
	}

	c.windowStartTick = s.Tick
	c.windowStartTime = s.Time
	c.spawned = 0
	c.expired = 0
	c.dropped = 0
	c.rebuilds = 0

	return stats
}
