// Package components defines ECS components for trail particles.
package components

import "github.com/go-gl/mathgl/mgl32"

// Transform is the visual placement of a particle.
// Rotation is an XYZ euler triple in radians.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    float32
}

// Motion holds the kinematic state driving a particle each tick.
type Motion struct {
	Velocity        mgl32.Vec3 // units per 1/60s tick
	AngularVelocity mgl32.Vec3 // radians per second
	Spin            mgl32.Vec3 // accumulated angular velocity, layered over facing modes
	Facing          mgl32.Vec3 // eased pointer-facing orientation (mouse mode)
}

// Life holds the temporal state of a particle.
// Lifespan is copied from the configuration at spawn and never changes.
type Life struct {
	ID           uint32
	Age          float64 // seconds, monotonically non-decreasing
	Lifespan     float64 // seconds, > 0
	SpawnTime    float64 // engine clock at spawn
	Phase        float32 // random offset for float motion
	InitialScale float32
}

// Ratio returns the fraction of life consumed, clamped to [0, 1].
func (l *Life) Ratio() float32 {
	if l.Lifespan <= 0 {
		return 1
	}
	r := l.Age / l.Lifespan
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return float32(r)
}

// Remaining returns the seconds left before expiry (never negative).
func (l *Life) Remaining() float64 {
	rem := l.Lifespan - l.Age
	if rem < 0 {
		return 0
	}
	return rem
}

// Slot is a back-reference into the owning instance pool.
// It does not own the slot; the pool does.
type Slot struct {
	Pool  int // index into the engine's active pool list
	Index int // instance slot within that pool
}
