package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/components"
	"github.com/yaelren/3DTrail/config"
)

func baseParams() Params {
	return Params{
		Facing:       components.FacingNone,
		Disappear:    components.DisappearFade,
		ExitDuration: 1.0,
		Lifespan:     3.0,
		ScaleMode:    components.ScaleFixed,
		Scale:        1,
		ScaleMin:     0.5,
		ScaleMax:     1.5,
	}
}

func newParticle(lifespan float64) (components.Transform, components.Motion, components.Life) {
	return components.Transform{Scale: 1},
		components.Motion{},
		components.Life{Lifespan: lifespan, InitialScale: 1}
}

// ---------- Exit scaling ----------

func TestExitScale(t *testing.T) {
	tests := []struct {
		name string
		mode components.DisappearMode
		age  float64
		want float32
	}{
		{"fade before window", components.DisappearFade, 1.0, 1},
		{"fade window start", components.DisappearFade, 2.0, 1},
		{"fade half", components.DisappearFade, 2.5, 0.5},
		{"fade end", components.DisappearFade, 3.0, 0},
		{"shrink half", components.DisappearShrink, 2.5, 0.5},
		{"shrink end", components.DisappearShrink, 3.0, 0},
		{"snap late", components.DisappearSnap, 2.9, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExitScale(1, tt.age, 3.0, 1.0, tt.mode)
			if got != tt.want {
				t.Errorf("ExitScale(age=%v) = %v, want %v", tt.age, got, tt.want)
			}
		})
	}
}

func TestExitScaleZeroDuration(t *testing.T) {
	if got := ExitScale(2, 2.99, 3, 0, components.DisappearFade); got != 2 {
		t.Errorf("zero exit duration should keep scale, got %v", got)
	}
}

// ---------- Lifecycle ----------

func TestFadeScenario(t *testing.T) {
	p := baseParams()
	tr, m, l := newParticle(3.0)
	env := &Env{DT: 0.5}

	// Ages 0.5 .. 2.5 survive.
	var scales []float32
	for i := 0; i < 5; i++ {
		if !Step(&tr, &m, &l, &p, env) {
			t.Fatalf("particle removed early at age %v", l.Age)
		}
		scales = append(scales, tr.Scale)
	}
	if scales[3] != 1 {
		t.Errorf("scale at age 2.0 = %v, want 1", scales[3])
	}
	if scales[4] != 0.5 {
		t.Errorf("scale at age 2.5 = %v, want 0.5", scales[4])
	}

	if Step(&tr, &m, &l, &p, env) {
		t.Errorf("particle should be removed at age %v", l.Age)
	}
}

func TestRemovedOnFirstTickPastLifespan(t *testing.T) {
	p := baseParams()
	dts := []float64{1.0 / 60, 1.0 / 30, 0.1, 0.37}

	for _, dt := range dts {
		tr, m, l := newParticle(1.0)
		env := &Env{DT: dt}
		ticks := 0
		for Step(&tr, &m, &l, &p, env) {
			ticks++
			if l.Age >= l.Lifespan {
				t.Fatalf("dt=%v: alive with age %v >= lifespan", dt, l.Age)
			}
			if ticks > 10000 {
				t.Fatal("particle never expired")
			}
		}
		if l.Age < l.Lifespan {
			t.Errorf("dt=%v: removed at age %v before lifespan", dt, l.Age)
		}
		if l.Age-dt >= l.Lifespan+1e-9 {
			t.Errorf("dt=%v: removal lagged, age %v", dt, l.Age)
		}
	}
}

func TestAgeMonotonic(t *testing.T) {
	p := baseParams()
	p.FloatEnabled = true
	p.FloatStyle = components.FloatRandom
	p.FloatAmplitude = 1
	tr, m, l := newParticle(5)
	env := &Env{DT: 1.0 / 60, Rand: rand.New(rand.NewSource(1))}

	prev := l.Age
	for Step(&tr, &m, &l, &p, env) {
		if l.Age < prev {
			t.Fatalf("age decreased: %v -> %v", prev, l.Age)
		}
		prev = l.Age
	}
}

// ---------- Physics ----------

func TestDampingAndIntegration(t *testing.T) {
	p := baseParams()
	tr, m, l := newParticle(10)
	m.Velocity = mgl32.Vec3{1, 0, 0}
	env := &Env{DT: 1.0 / 60}

	Step(&tr, &m, &l, &p, env)
	if math.Abs(float64(m.Velocity[0]-0.99)) > 1e-6 {
		t.Errorf("velocity after damping = %v, want 0.99", m.Velocity[0])
	}
	if math.Abs(float64(tr.Position[0]-0.99)) > 1e-5 {
		t.Errorf("position after one 60Hz tick = %v, want 0.99", tr.Position[0])
	}
}

func TestGravity(t *testing.T) {
	p := baseParams()
	p.GravityEnabled = true
	p.GravityStrength = 0.6
	tr, m, l := newParticle(10)
	env := &Env{DT: 0.5}

	Step(&tr, &m, &l, &p, env)
	want := float32(-0.3 * Damping)
	if math.Abs(float64(m.Velocity[1]-want)) > 1e-6 {
		t.Errorf("vertical velocity = %v, want %v", m.Velocity[1], want)
	}
}

func TestFollow(t *testing.T) {
	tests := []struct {
		name   string
		pos    mgl32.Vec3
		target mgl32.Vec3
		moved  bool
	}{
		{"far target", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{10, 0, 0}, true},
		{"at target", mgl32.Vec3{1, 1, 0}, mgl32.Vec3{1, 1, 0}, false},
		{"within epsilon", mgl32.Vec3{1, 1, 0}, mgl32.Vec3{1.005, 1, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := components.Transform{Position: tt.pos}
			m := components.Motion{}
			ApplyFollow(&tr, &m, tt.target, 0.1, 1.0/60)
			moved := m.Velocity.Len() > 0
			if moved != tt.moved {
				t.Errorf("velocity changed = %v, want %v (v=%v)", moved, tt.moved, m.Velocity)
			}
			if moved && m.Velocity[0] <= 0 {
				t.Errorf("velocity should point toward target, got %v", m.Velocity)
			}
			for _, c := range m.Velocity {
				if math.IsNaN(float64(c)) {
					t.Fatal("NaN velocity")
				}
			}
		})
	}
}

func TestFollowNeedsTarget(t *testing.T) {
	p := baseParams()
	p.FollowEnabled = true
	p.FollowStrength = 1
	tr, m, l := newParticle(10)
	env := &Env{DT: 1.0 / 60, Target: mgl32.Vec3{5, 5, 0}, HasTarget: false}

	Step(&tr, &m, &l, &p, env)
	if m.Velocity.Len() != 0 {
		t.Errorf("follow applied without a target: %v", m.Velocity)
	}
}

func TestBounce(t *testing.T) {
	tr := components.Transform{Position: mgl32.Vec3{0, -6.5, 0}}
	m := components.Motion{Velocity: mgl32.Vec3{0, -2, 0}}
	ApplyBounce(&tr, &m, -6, 0.5)

	if tr.Position[1] != -6 {
		t.Errorf("position should clamp to floor, got %v", tr.Position[1])
	}
	if m.Velocity[1] != 1 {
		t.Errorf("vertical velocity = %v, want 1", m.Velocity[1])
	}

	// Above the floor nothing changes.
	tr.Position[1] = 0
	m.Velocity[1] = -3
	ApplyBounce(&tr, &m, -6, 0.5)
	if m.Velocity[1] != -3 {
		t.Errorf("bounce applied above floor")
	}
}

// ---------- Float ----------

func TestFloatOscillateMovesPosition(t *testing.T) {
	p := baseParams()
	p.FloatEnabled = true
	p.FloatStyle = components.FloatOscillate
	p.FloatAmplitude = 1
	p.FloatSpeed = 1
	tr, m, l := newParticle(10)
	l.Phase = 0.5
	env := &Env{Time: 1, DT: 0.1}

	ApplyFloat(&tr, &m, &l, &p, env)
	if tr.Position.Len() == 0 {
		t.Error("oscillate should move the position")
	}
	if m.Velocity.Len() != 0 {
		t.Error("oscillate should not touch velocity")
	}
}

func TestFloatPerlinDeterministic(t *testing.T) {
	a := pseudoNoise(3.25, 1.5, 17)
	b := pseudoNoise(3.25, 1.5, 17)
	if a != b {
		t.Errorf("pseudoNoise not deterministic: %v vs %v", a, b)
	}
	if a == pseudoNoise(3.25, 1.5, 18) {
		t.Error("different particles should get different noise")
	}
	for _, c := range a {
		if c < -1 || c > 1 {
			t.Errorf("noise component %v outside [-1, 1]", c)
		}
	}
}

func TestFloatRandomBounded(t *testing.T) {
	p := baseParams()
	p.FloatEnabled = true
	p.FloatStyle = components.FloatRandom
	p.FloatAmplitude = 2
	env := &Env{DT: 0.1, Rand: rand.New(rand.NewSource(7))}

	for i := 0; i < 100; i++ {
		tr, m, l := newParticle(10)
		ApplyFloat(&tr, &m, &l, &p, env)
		for _, c := range m.Velocity {
			if math.Abs(float64(c)) > 0.2+1e-6 {
				t.Fatalf("jitter %v exceeds amplitude*dt", c)
			}
		}
	}
}

// ---------- Facing ----------

func TestMouseFacingClamp(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := baseParams()
	p.Facing = components.FacingMouse

	for i := 0; i < 500; i++ {
		tr, m, l := newParticle(10)
		l.Age = rng.Float64() * 9
		tr.Position = mgl32.Vec3{rng.Float32()*40 - 20, rng.Float32()*40 - 20, 0}
		env := &Env{
			DT:        1.0 / 60,
			Target:    mgl32.Vec3{rng.Float32()*400 - 200, rng.Float32()*400 - 200, rng.Float32()*400 - 200},
			HasTarget: true,
		}
		for j := 0; j < 300; j++ {
			ApplyFacing(&tr, &m, &l, &p, env)
		}
		if math.Abs(float64(tr.Rotation[1])) > MaxYaw+1e-6 {
			t.Fatalf("yaw %v exceeds %v", tr.Rotation[1], MaxYaw)
		}
		if math.Abs(float64(tr.Rotation[0])) > MaxPitch+1e-6 {
			t.Fatalf("pitch %v exceeds %v", tr.Rotation[0], MaxPitch)
		}
		if math.Abs(float64(tr.Rotation[2])) > MaxRoll+1e-6 {
			t.Fatalf("roll %v exceeds %v", tr.Rotation[2], MaxRoll)
		}
	}
}

func TestMouseFacingClampWithSpin(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	p := baseParams()
	p.Facing = components.FacingMouse
	p.TumbleSpeed = math.Pi / 4
	p.SpinSpeed = math.Pi / 2

	env := &Env{DT: 1.0 / 60, Target: mgl32.Vec3{100, 0, 0}, HasTarget: true, Rand: rng}
	var maxYaw, maxPitch float64
	for i := 0; i < 200; i++ {
		tr, m, l := Spawn(uint32(i), mgl32.Vec3{}, 0, 0, &p, rng)
		for Step(&tr, &m, &l, &p, env) {
			maxYaw = math.Max(maxYaw, math.Abs(float64(tr.Rotation[1])))
			maxPitch = math.Max(maxPitch, math.Abs(float64(tr.Rotation[0])))
		}
	}
	if maxYaw > MaxYaw+1e-6 {
		t.Errorf("max |yaw| = %v, want <= %v", maxYaw, MaxYaw)
	}
	if maxPitch > MaxPitch+1e-6 {
		t.Errorf("max |pitch| = %v, want <= %v", maxPitch, MaxPitch)
	}
}

func TestMouseFacingKeepsRollSpin(t *testing.T) {
	p := baseParams()
	p.Facing = components.FacingMouse
	tr, m, l := newParticle(10)
	m.Spin = mgl32.Vec3{2, 2, 0.5}
	env := &Env{DT: 1.0 / 60}
	ApplyFacing(&tr, &m, &l, &p, env)
	want := mgl32.Vec3{0, 0, 0.5}
	if !tr.Rotation.ApproxEqual(want) {
		t.Errorf("rotation = %v, want %v", tr.Rotation, want)
	}
}

func TestFacingTargetDirection(t *testing.T) {
	right := FacingTarget(mgl32.Vec3{}, mgl32.Vec3{3, 0, 0})
	left := FacingTarget(mgl32.Vec3{}, mgl32.Vec3{-3, 0, 0})
	if right[1] <= 0 || left[1] >= 0 {
		t.Errorf("yaw should follow pointer side: right=%v left=%v", right[1], left[1])
	}
	if right[2] >= 0 {
		t.Errorf("roll should counter yaw, got %v", right[2])
	}
	up := FacingTarget(mgl32.Vec3{}, mgl32.Vec3{0, 3, 0})
	if up[0] >= 0 {
		t.Errorf("pitch should be negative for a pointer above, got %v", up[0])
	}
}

func TestMouseFacingEasesFasterWhenOld(t *testing.T) {
	young := facingEase(0, 1.0/60)
	old := facingEase(1, 1.0/60)
	if !(old > young) {
		t.Errorf("ease factor should grow with life ratio: young=%v old=%v", young, old)
	}
	if young <= 0 || old > 1 {
		t.Errorf("ease factor out of (0, 1]: %v %v", young, old)
	}
}

func TestMouseFacingHoldsWithoutTarget(t *testing.T) {
	p := baseParams()
	p.Facing = components.FacingMouse
	tr, m, l := newParticle(10)
	m.Facing = mgl32.Vec3{0.1, 0.2, 0}
	m.Spin = mgl32.Vec3{0, 0, 0.5}

	ApplyFacing(&tr, &m, &l, &p, &Env{DT: 1.0 / 60})
	want := mgl32.Vec3{0.1, 0.2, 0.5}
	if !tr.Rotation.ApproxEqual(want) {
		t.Errorf("rotation = %v, want %v", tr.Rotation, want)
	}
}

func TestBillboardLayersSpin(t *testing.T) {
	p := baseParams()
	p.Facing = components.FacingBillboard
	tr, m, l := newParticle(10)
	m.AngularVelocity = mgl32.Vec3{0, 0, 1}
	env := &Env{DT: 0.5, CameraEuler: mgl32.Vec3{0.3, 0, 0}}

	Step(&tr, &m, &l, &p, env)
	Step(&tr, &m, &l, &p, env)
	want := mgl32.Vec3{0.3, 0, 1}
	if !tr.Rotation.ApproxEqual(want) {
		t.Errorf("billboard rotation = %v, want %v", tr.Rotation, want)
	}
}

func TestFreeRotationIntegrates(t *testing.T) {
	for _, mode := range []components.FacingMode{components.FacingNone, components.FacingRandom, components.FacingFixed} {
		p := baseParams()
		p.Facing = mode
		tr, m, l := newParticle(10)
		m.AngularVelocity = mgl32.Vec3{1, 2, 3}

		Step(&tr, &m, &l, &p, &Env{DT: 0.25})
		want := mgl32.Vec3{0.25, 0.5, 0.75}
		if !tr.Rotation.ApproxEqual(want) {
			t.Errorf("%s: rotation = %v, want %v", mode, tr.Rotation, want)
		}
		if !m.Spin.ApproxEqual(want) {
			t.Errorf("%s: spin = %v, want %v", mode, m.Spin, want)
		}
	}
}

// ---------- Spawn ----------

func TestSpawnScale(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	p := baseParams()

	p.ScaleMode = components.ScaleFixed
	if got := SpawnScale(&p, 100, rng); got != 1 {
		t.Errorf("fixed scale = %v, want 1", got)
	}

	p.ScaleMode = components.ScaleSpeed
	tests := []struct {
		speed float32
		want  float32
	}{
		{0, 0.5},
		{25, 1.0},
		{50, 1.5},
		{500, 1.5},
	}
	for _, tt := range tests {
		if got := SpawnScale(&p, tt.speed, rng); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("speed %v: scale = %v, want %v", tt.speed, got, tt.want)
		}
	}

	p.ScaleMode = components.ScaleRandom
	for i := 0; i < 200; i++ {
		got := SpawnScale(&p, 0, rng)
		if got < p.ScaleMin || got > p.ScaleMax {
			t.Fatalf("random scale %v outside [%v, %v]", got, p.ScaleMin, p.ScaleMax)
		}
	}
}

func TestSpawnCopiesLifespan(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	p := baseParams()
	p.Facing = components.FacingFixed
	p.FixedAngles = mgl32.Vec3{0.1, 0.2, 0.3}
	p.SpinSpeed = 2
	p.TumbleSpeed = 1

	tr, m, l := Spawn(9, mgl32.Vec3{1, 2, 3}, 0, 12.5, &p, rng)
	p.Lifespan = 99 // later config changes do not reach spawned particles

	if l.Lifespan != 3.0 || l.ID != 9 || l.SpawnTime != 12.5 {
		t.Errorf("life = %+v", l)
	}
	if l.Phase < 0 || l.Phase >= 2*math.Pi {
		t.Errorf("phase %v outside [0, 2pi)", l.Phase)
	}
	if tr.Rotation != p.FixedAngles {
		t.Errorf("fixed rotation = %v, want %v", tr.Rotation, p.FixedAngles)
	}
	if math.Abs(float64(m.AngularVelocity[2])) > 2 || math.Abs(float64(m.AngularVelocity[0])) > 1 {
		t.Errorf("angular velocity out of range: %v", m.AngularVelocity)
	}
	if tr.Position != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("position = %v", tr.Position)
	}
}

func TestNewParamsFromDefaults(t *testing.T) {
	cfg := config.Default()
	p := NewParams(cfg)
	if p.Lifespan != cfg.Trail.Lifespan {
		t.Errorf("lifespan = %v, want %v", p.Lifespan, cfg.Trail.Lifespan)
	}
	if p.Facing != cfg.Derived.Facing {
		t.Errorf("facing = %v, want %v", p.Facing, cfg.Derived.Facing)
	}
	wantSpin := float32(cfg.Spin.Speed * math.Pi / 180)
	if math.Abs(float64(p.SpinSpeed-wantSpin)) > 1e-6 {
		t.Errorf("spin = %v, want %v", p.SpinSpeed, wantSpin)
	}
}
