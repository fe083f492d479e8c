package systems

import (
	"github.com/yaelren/3DTrail/components"
)

// Step advances one particle by env.DT. The rules run in a fixed order since
// later rules read the position and velocity written by earlier ones.
// It returns false once the particle has expired; the caller must then
// release its slot without reading the transform.
func Step(t *components.Transform, m *components.Motion, l *components.Life, p *Params, env *Env) bool {
	dt := float32(env.DT)

	// Age
	l.Age += env.DT
	if l.Age >= l.Lifespan {
		return false
	}

	if p.FloatEnabled {
		ApplyFloat(t, m, l, p, env)
	}

	if p.GravityEnabled {
		m.Velocity[1] -= p.GravityStrength * dt
	}

	if p.FollowEnabled && env.HasTarget {
		ApplyFollow(t, m, env.Target, p.FollowStrength, dt)
	}

	// Drag
	m.Velocity = m.Velocity.Mul(Damping)

	t.Position = t.Position.Add(m.Velocity.Mul(dt * TickRate))

	if p.BounceEnabled {
		ApplyBounce(t, m, p.Floor, p.BounceAmount)
	}

	m.Spin = m.Spin.Add(m.AngularVelocity.Mul(dt))

	ApplyFacing(t, m, l, p, env)

	t.Scale = ExitScale(l.InitialScale, l.Age, l.Lifespan, p.ExitDuration, p.Disappear)
	return true
}

// ExitScale returns the scale of a particle at the given age. Over the last
// exit seconds of its life the scale falls linearly from initial to zero;
// snap mode keeps the initial scale until expiry.
func ExitScale(initial float32, age, lifespan, exit float64, mode components.DisappearMode) float32 {
	if mode == components.DisappearSnap || exit <= 0 {
		return initial
	}
	remaining := lifespan - age
	if remaining >= exit {
		return initial
	}
	if remaining <= 0 {
		return 0
	}
	return initial * float32(remaining/exit)
}
