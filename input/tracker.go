// Package input turns pointer devices into the world-space pointer the trail
// engine follows.
package input

import (
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Trigger selects when the pointer spawns particles.
type Trigger uint8

const (
	TriggerMove  Trigger = iota // whenever the pointer moves over the plane
	TriggerPress                // only while the primary button is held
)

var triggerNames = [...]string{"move", "press"}

func (t Trigger) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return "unknown"
}

// ParseTrigger maps a config name to a Trigger.
func ParseTrigger(name string) (Trigger, bool) {
	for i, n := range triggerNames {
		if strings.EqualFold(n, name) {
			return Trigger(i), true
		}
	}
	return TriggerMove, false
}

// minMove is the distance under which the pointer counts as stationary.
const minMove = 1e-3

// Tracker derives speed and movement from successive pointer positions.
type Tracker struct {
	// Smoothing is the weight of the newest speed sample in (0, 1].
	Smoothing float32

	last     mgl32.Vec3
	lastTime float64
	hasLast  bool
	speed    float32
	moved    bool
}

// NewTracker returns a tracker with moderate smoothing.
func NewTracker() *Tracker {
	return &Tracker{Smoothing: 0.35}
}

// Observe records the pointer position at time now. A missing position
// resets the history so re-entry does not register as a jump.
func (t *Tracker) Observe(pos mgl32.Vec3, ok bool, now float64) {
	if !ok {
		t.hasLast = false
		t.moved = false
		t.speed = 0
		return
	}
	if !t.hasLast {
		t.last, t.lastTime, t.hasLast = pos, now, true
		t.moved = false
		return
	}

	dist := pos.Sub(t.last).Len()
	dt := float32(now - t.lastTime)
	t.moved = dist > minMove
	if dt > 0 {
		k := mgl32.Clamp(t.Smoothing, 0.01, 1)
		t.speed += (dist/dt - t.speed) * k
	}
	t.last, t.lastTime = pos, now
}

// Speed returns the smoothed pointer speed in world units per second.
func (t *Tracker) Speed() float32 {
	if math32.IsNaN(t.speed) {
		return 0
	}
	return t.speed
}

// Moved reports whether the last observation moved the pointer.
func (t *Tracker) Moved() bool { return t.moved }
