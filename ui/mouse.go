package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/camera"
	"github.com/yaelren/3DTrail/input"
)

// Mouse maps the raylib mouse onto the trail plane z = 0.
type Mouse struct {
	cam     *camera.Camera
	trigger input.Trigger
	tracker *input.Tracker

	// Blocked, when set, suppresses the pointer (e.g. over the control panel).
	Blocked func(x, y float32) bool

	pos     mgl32.Vec3
	ok      bool
	pressed bool
}

// NewMouse creates a mouse pointer projected through cam.
func NewMouse(cam *camera.Camera, trigger input.Trigger) *Mouse {
	return &Mouse{cam: cam, trigger: trigger, tracker: input.NewTracker()}
}

// SetTrigger changes the spawn trigger.
func (m *Mouse) SetTrigger(t input.Trigger) { m.trigger = t }

// Poll reads the device. Call once per frame before the engine tick.
func (m *Mouse) Poll(now float64) {
	mp := rl.GetMousePosition()
	m.pressed = rl.IsMouseButtonDown(rl.MouseButtonLeft)

	if m.Blocked != nil && m.Blocked(mp.X, mp.Y) {
		m.ok = false
	} else {
		m.pos, m.ok = m.cam.ScreenToPlane(mp.X, mp.Y, 0)
	}
	m.tracker.Observe(m.pos, m.ok, now)
}

// WorldPosition implements the engine pointer.
func (m *Mouse) WorldPosition() (mgl32.Vec3, bool) { return m.pos, m.ok }

// TriggerActive implements the engine pointer.
func (m *Mouse) TriggerActive() bool {
	if !m.ok {
		return false
	}
	if m.trigger == input.TriggerPress {
		return m.pressed
	}
	return m.tracker.Moved()
}

// Speed implements the engine pointer.
func (m *Mouse) Speed() float32 { return m.tracker.Speed() }
