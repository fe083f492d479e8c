package systems

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/components"
)

// lookDepth places the pointer in front of the trail plane when computing
// pointer-facing orientation, so particles turn toward it instead of edge-on.
const lookDepth = 4

// ApplyFacing resolves the rotation of a particle for the active facing mode.
func ApplyFacing(t *components.Transform, m *components.Motion, l *components.Life, p *Params, env *Env) {
	dt := float32(env.DT)

	switch p.Facing {
	case components.FacingBillboard:
		t.Rotation = env.CameraEuler.Add(m.Spin)

	case components.FacingMouse:
		// Without a target the last eased orientation is held.
		if env.HasTarget {
			target := FacingTarget(t.Position, env.Target)
			k := facingEase(l.Ratio(), dt)
			m.Facing = ClampFacing(m.Facing.Add(target.Sub(m.Facing).Mul(k)))
		}
		// Only the roll spin is layered on, so pitch and yaw stay within
		// their clamps.
		t.Rotation = m.Facing.Add(mgl32.Vec3{0, 0, m.Spin[2]})

	default:
		t.Rotation = t.Rotation.Add(m.AngularVelocity.Mul(dt))
	}
}

// FacingTarget returns the clamped euler orientation (pitch, yaw, roll) that
// turns a particle at pos toward the pointer.
func FacingTarget(pos, pointer mgl32.Vec3) mgl32.Vec3 {
	d := pointer.Sub(pos)
	d[2] += lookDepth
	yaw := math32.Atan2(d[0], d[2])
	pitch := -math32.Atan2(d[1], math32.Hypot(d[0], d[2]))
	return ClampFacing(mgl32.Vec3{pitch, yaw, -yaw * 0.25})
}

// ClampFacing limits each euler axis to its maximum deflection.
func ClampFacing(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(v[0], -MaxPitch, MaxPitch),
		mgl32.Clamp(v[1], -MaxYaw, MaxYaw),
		mgl32.Clamp(v[2], -MaxRoll, MaxRoll),
	}
}

// facingEase is the exponential smoothing factor for one tick. Older
// particles track the pointer faster.
func facingEase(lifeRatio, dt float32) float32 {
	rate := 3 + 9*lifeRatio
	return 1 - math32.Exp(-rate*dt)
}
