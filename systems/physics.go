package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/components"
)

// ApplyFollow pulls velocity toward target. Nothing happens within
// FollowEpsilon of the target, where the direction is undefined.
func ApplyFollow(t *components.Transform, m *components.Motion, target mgl32.Vec3, strength, dt float32) {
	toward := target.Sub(t.Position)
	dist := toward.Len()
	if dist <= FollowEpsilon {
		return
	}
	m.Velocity = m.Velocity.Add(toward.Mul(strength * dt * TickRate / dist))
}

// ApplyBounce clamps a particle that fell through the floor and reflects its
// vertical velocity, attenuated by amount.
func ApplyBounce(t *components.Transform, m *components.Motion, floor, amount float32) {
	if t.Position[1] >= floor {
		return
	}
	t.Position[1] = floor
	if m.Velocity[1] < 0 {
		m.Velocity[1] = -m.Velocity[1] * amount
	}
}
