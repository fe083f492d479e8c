package gradient

import "strings"

// Mode selects which gradients are visible.
type Mode uint8

const (
	ModeSingle            Mode = iota // one active gradient
	ModeRandomPerParticle             // one pool per gradient, picked at spawn
	ModeTimeCycle                     // shared pool cross-fading through the set
)

var modeNames = [...]string{"single", "random", "cycle"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode maps a config name to a Mode.
func ParseMode(name string) (Mode, bool) {
	for i, n := range modeNames {
		if strings.EqualFold(n, name) {
			return Mode(i), true
		}
	}
	return ModeSingle, false
}

// Controller is the blend state machine. Transitions only happen through
// Configure; Tick advances the cross-fade in cycle mode.
type Controller struct {
	mode   Mode // effective mode
	count  int
	active int

	indexA, indexB int
	mix            float64
	// slots holds the gradient bound to each of the two samplers; primary is
	// the sampler currently showing indexA.
	slots   [2]int
	primary int
	cycles  int
}

// NewController returns a controller in single mode over one gradient.
func NewController() *Controller {
	c := &Controller{count: 1}
	c.resetCycle()
	return c
}

// Configure applies an external configuration. It returns true when the pool
// layout changed: random mode was entered or left, or the number of
// per-gradient pools differs. Random mode needs at least two gradients and
// degrades to single otherwise.
func (c *Controller) Configure(mode Mode, count, active int) (rebuild bool) {
	if count < 1 {
		count = 1
	}
	if active < 0 || active >= count {
		active = 0
	}
	if mode == ModeRandomPerParticle && count < 2 {
		mode = ModeSingle
	}

	prevPools := c.PoolCount()
	prevMode := c.mode
	prevCount := c.count

	c.mode = mode
	c.count = count
	c.active = active

	if mode == ModeTimeCycle && (prevMode != ModeTimeCycle || prevCount != count) {
		c.resetCycle()
	}

	wasRandom := prevMode == ModeRandomPerParticle
	isRandom := mode == ModeRandomPerParticle
	return wasRandom != isRandom || prevPools != c.PoolCount()
}

func (c *Controller) resetCycle() {
	c.indexA = 0
	c.indexB = 0
	if c.count > 1 {
		c.indexB = 1
	}
	c.mix = 0
	c.primary = 0
	c.slots = [2]int{c.indexA, c.indexB}
}

// Tick advances the cross-fade by speed*dt. On reaching 1 the pair moves to
// the next adjacent gradients, the ratio restarts at 0, and the samplers swap
// roles so the gradient already on screen stays bound.
func (c *Controller) Tick(dt, speed float64) {
	if c.mode != ModeTimeCycle || c.count < 2 || dt <= 0 || speed <= 0 {
		return
	}
	c.mix += speed * dt
	if c.mix < 1 {
		return
	}
	c.mix = 0
	c.indexA = c.indexB
	c.indexB = (c.indexB + 1) % c.count
	c.primary = 1 - c.primary
	c.slots[c.primary] = c.indexA
	c.slots[1-c.primary] = c.indexB
	c.cycles++
}

// Mode returns the effective mode.
func (c *Controller) Mode() Mode { return c.mode }

// Pair returns the current interpolation endpoints.
func (c *Controller) Pair() (a, b int) { return c.indexA, c.indexB }

// Mix returns the raw linear ratio in [0, 1).
func (c *Controller) Mix() float64 { return c.mix }

// Eased returns smoothstep(Mix()).
func (c *Controller) Eased() float64 { return Smoothstep(c.mix) }

// Cycles returns how many pair advances have happened.
func (c *Controller) Cycles() int { return c.cycles }

// Samplers returns the gradient bound to each sampler and the weight of
// sampler 1, such that the displayed color is mix(s0, s1, weight).
func (c *Controller) Samplers() (s0, s1 int, weight float64) {
	switch c.mode {
	case ModeTimeCycle:
		if c.count < 2 {
			return c.active, c.active, 0
		}
		e := c.Eased()
		if c.primary == 1 {
			e = 1 - e
		}
		return c.slots[0], c.slots[1], e
	default:
		return c.active, c.active, 0
	}
}

// PoolCount returns how many instance pools the mode needs.
func (c *Controller) PoolCount() int {
	if c.mode == ModeRandomPerParticle {
		return c.count
	}
	return 1
}

// PoolGradient returns the gradient shown by pool i.
func (c *Controller) PoolGradient(i int) int {
	if c.mode == ModeRandomPerParticle {
		return i
	}
	return c.active
}

// Smoothstep is 3t^2 - 2t^3 with t clamped to [0, 1].
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
