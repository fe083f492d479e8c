// Package systems contains the per-tick particle rules.
package systems

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/components"
	"github.com/yaelren/3DTrail/config"
)

// Fixed tuning constants of the update rules.
const (
	Damping        = 0.99               // velocity decay per tick
	TickRate       = 60                 // velocity is expressed in units per 1/TickRate s
	FollowEpsilon  = 0.01               // follow is skipped closer than this to the target
	ReferenceSpeed = 50                 // pointer speed mapped to the top of the scale range
	MaxYaw         = 1.2566370614359172 // pi/2.5
	MaxPitch       = 0.7853981633974483 // pi/4
	MaxRoll        = 0.3141592653589793 // pi/10
)

// Params is the configuration snapshot read by the update rules.
// It is rebuilt whenever the configuration changes.
type Params struct {
	FloatEnabled   bool
	FloatStyle     components.FloatStyle
	FloatAmplitude float32
	FloatSpeed     float32

	GravityEnabled  bool
	GravityStrength float32

	FollowEnabled  bool
	FollowStrength float32

	BounceEnabled bool
	Floor         float32
	BounceAmount  float32

	Facing       components.FacingMode
	FixedAngles  mgl32.Vec3
	SpinSpeed    float32 // radians/s around Z
	TumbleSpeed  float32 // radians/s around X and Y
	Disappear    components.DisappearMode
	ExitDuration float64

	Lifespan  float64
	ScaleMode components.ScaleMode
	Scale     float32
	ScaleMin  float32
	ScaleMax  float32
}

// NewParams extracts the update parameters from a loaded config.
func NewParams(cfg *config.Config) Params {
	d := cfg.Derived
	return Params{
		FloatEnabled:   cfg.Float.Enabled,
		FloatStyle:     d.FloatStyle,
		FloatAmplitude: float32(cfg.Float.Amplitude),
		FloatSpeed:     float32(cfg.Float.Speed),

		GravityEnabled:  cfg.Physics.Gravity.Enabled,
		GravityStrength: float32(cfg.Physics.Gravity.Strength),

		FollowEnabled:  cfg.Physics.Follow.Enabled,
		FollowStrength: float32(cfg.Physics.Follow.Strength),

		BounceEnabled: cfg.Physics.Bounce.Enabled,
		Floor:         float32(cfg.Physics.Bounce.Floor),
		BounceAmount:  float32(cfg.Physics.Bounce.Amount),

		Facing:       d.Facing,
		FixedAngles:  mgl32.Vec3(d.FixedRadians),
		SpinSpeed:    d.SpinRadians,
		TumbleSpeed:  d.TumbleRadians,
		Disappear:    d.Disappear,
		ExitDuration: cfg.Trail.ExitDuration,

		Lifespan:  cfg.Trail.Lifespan,
		ScaleMode: d.ScaleMode,
		Scale:     float32(cfg.Trail.Scale),
		ScaleMin:  float32(cfg.Trail.ScaleMin),
		ScaleMax:  float32(cfg.Trail.ScaleMax),
	}
}

// Env is the per-tick context shared by every particle.
type Env struct {
	Time        float64 // engine clock in seconds
	DT          float64
	Target      mgl32.Vec3 // pointer world position, valid when HasTarget
	HasTarget   bool
	CameraEuler mgl32.Vec3 // camera orientation for billboards
	Rand        *rand.Rand
}
