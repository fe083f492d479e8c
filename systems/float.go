package systems

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/components"
)

// ApplyFloat perturbs a particle according to the configured float style.
func ApplyFloat(t *components.Transform, m *components.Motion, l *components.Life, p *Params, env *Env) {
	dt := float32(env.DT)
	amp := p.FloatAmplitude

	switch p.FloatStyle {
	case components.FloatOscillate:
		t.Position = t.Position.Add(oscillate(env.Time, p.FloatSpeed, l.Phase).Mul(amp * dt))

	case components.FloatRandom:
		if env.Rand == nil {
			return
		}
		jitter := mgl32.Vec3{
			env.Rand.Float32()*2 - 1,
			env.Rand.Float32()*2 - 1,
			env.Rand.Float32()*2 - 1,
		}
		m.Velocity = m.Velocity.Add(jitter.Mul(amp * dt))

	case components.FloatPerlin:
		t.Position = t.Position.Add(pseudoNoise(env.Time, p.FloatSpeed, l.ID).Mul(amp * dt))
	}
}

// oscillate is a phase-shifted sine/cosine drift in [-1, 1] per axis.
func oscillate(now float64, speed, phase float32) mgl32.Vec3 {
	arg := now*float64(speed) + float64(phase)
	return mgl32.Vec3{
		float32(math.Sin(arg)),
		float32(math.Cos(arg * 0.8)),
		float32(math.Sin(arg*0.6 + 1.3)),
	}
}

// pseudoNoise is a smooth, deterministic field over time and particle ID.
// Products of incommensurate sines stand in for gradient noise.
func pseudoNoise(now float64, speed float32, id uint32) mgl32.Vec3 {
	seed := float32(id%4096) * 0.7548777
	tt := float32(math.Mod(now*float64(speed), 2048))
	return mgl32.Vec3{
		math32.Sin(tt*0.53+seed) * math32.Cos(tt*0.31+seed*1.7),
		math32.Cos(tt*0.47+seed*2.3) * math32.Sin(tt*0.29+seed*0.9),
		math32.Sin(tt*0.37+seed*3.1) * math32.Cos(tt*0.23+seed*1.3),
	}
}
