package systems

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/components"
)

// SpawnScale picks the initial scale of a new particle. In speed mode the
// pointer speed is normalized against ReferenceSpeed and clamped to 1.
func SpawnScale(p *Params, speed float32, rng *rand.Rand) float32 {
	switch p.ScaleMode {
	case components.ScaleRandom:
		return p.ScaleMin + rng.Float32()*(p.ScaleMax-p.ScaleMin)
	case components.ScaleSpeed:
		n := mgl32.Clamp(speed/ReferenceSpeed, 0, 1)
		return p.ScaleMin + n*(p.ScaleMax-p.ScaleMin)
	default:
		return p.Scale
	}
}

// InitialRotation returns the spawn orientation for the facing mode.
func InitialRotation(p *Params, rng *rand.Rand) mgl32.Vec3 {
	switch p.Facing {
	case components.FacingRandom:
		return mgl32.Vec3{
			rng.Float32() * 2 * math.Pi,
			rng.Float32() * 2 * math.Pi,
			rng.Float32() * 2 * math.Pi,
		}
	case components.FacingFixed:
		return p.FixedAngles
	default:
		return mgl32.Vec3{}
	}
}

// Spawn builds the components of a particle born at pos.
func Spawn(id uint32, pos mgl32.Vec3, speed float32, now float64, p *Params, rng *rand.Rand) (components.Transform, components.Motion, components.Life) {
	scale := SpawnScale(p, speed, rng)
	rot := InitialRotation(p, rng)

	signed := func(limit float32) float32 { return (rng.Float32()*2 - 1) * limit }
	motion := components.Motion{
		AngularVelocity: mgl32.Vec3{signed(p.TumbleSpeed), signed(p.TumbleSpeed), signed(p.SpinSpeed)},
	}
	if p.Facing == components.FacingMouse {
		motion.Facing = rot
	}

	life := components.Life{
		ID:           id,
		Lifespan:     p.Lifespan,
		SpawnTime:    now,
		Phase:        rng.Float32() * 2 * math.Pi,
		InitialScale: scale,
	}
	if p.ExitDuration > 0 && p.Disappear != components.DisappearSnap && p.Lifespan <= p.ExitDuration {
		// The whole life is exit window; start from the window's scale.
		scale = ExitScale(scale, 0, p.Lifespan, p.ExitDuration, p.Disappear)
	}

	return components.Transform{Position: pos, Rotation: rot, Scale: scale}, motion, life
}
