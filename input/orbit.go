package input

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Orbit is a scripted pointer tracing a Lissajous loop on the trail plane.
// Headless runs use it in place of a mouse.
type Orbit struct {
	Center  mgl32.Vec3
	RadiusX float32
	RadiusY float32
	Rate    float32 // radians per second

	// Gap hides the pointer for this many seconds out of every Period,
	// exercising the missing-target path.
	Gap, Period float64

	now     float64
	pos     mgl32.Vec3
	visible bool
	tracker *Tracker
}

// NewOrbit returns an orbit around center.
func NewOrbit(center mgl32.Vec3, radius float32) *Orbit {
	o := &Orbit{
		Center:  center,
		RadiusX: radius,
		RadiusY: radius * 0.6,
		Rate:    1.3,
		tracker: NewTracker(),
	}
	o.Advance(0)
	return o
}

// Advance moves the pointer forward by dt seconds.
func (o *Orbit) Advance(dt float64) {
	o.now += dt
	a := float32(o.now) * o.Rate
	o.pos = o.Center.Add(mgl32.Vec3{
		o.RadiusX * math32.Sin(a),
		o.RadiusY * math32.Sin(2*a),
		0,
	})

	o.visible = true
	if o.Period > 0 && o.Gap > 0 {
		phase := o.now - float64(int(o.now/o.Period))*o.Period
		o.visible = phase >= o.Gap
	}
	o.tracker.Observe(o.pos, o.visible, o.now)
}

// WorldPosition implements the engine pointer.
func (o *Orbit) WorldPosition() (mgl32.Vec3, bool) { return o.pos, o.visible }

// TriggerActive implements the engine pointer.
func (o *Orbit) TriggerActive() bool { return o.visible }

// Speed implements the engine pointer.
func (o *Orbit) Speed() float32 { return o.tracker.Speed() }
