package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestCamera() *Camera {
	return New(1280, 720, mgl32.Vec3{0, 0, 20}, mgl32.Vec3{}, 45)
}

func TestScreenCenterHitsTarget(t *testing.T) {
	cam := newTestCamera()

	p, ok := cam.ScreenToPlane(640, 360, 0)
	if !ok {
		t.Fatal("center ray should hit the plane")
	}
	if p.Len() > 1e-3 {
		t.Errorf("expected target (0,0,0), got %v", p)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := newTestCamera()

	sx, sy, visible := cam.WorldToScreen(mgl32.Vec3{})
	if !visible {
		t.Fatal("target should be visible")
	}
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToPlaneRoundtrip(t *testing.T) {
	cam := newTestCamera()

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		p, ok := cam.ScreenToPlane(tc.sx, tc.sy, 0)
		if !ok {
			t.Fatalf("(%v,%v) missed the plane", tc.sx, tc.sy)
		}
		sx, sy, _ := cam.WorldToScreen(p)
		if math.Abs(float64(sx-tc.sx)) > 0.05 || math.Abs(float64(sy-tc.sy)) > 0.05 {
			t.Errorf("roundtrip failed: (%f,%f) -> %v -> (%f,%f)", tc.sx, tc.sy, p, sx, sy)
		}
	}
}

func TestScreenYIsDown(t *testing.T) {
	cam := newTestCamera()
	top, _ := cam.ScreenToPlane(640, 10, 0)
	bottom, _ := cam.ScreenToPlane(640, 710, 0)
	if top[1] <= bottom[1] {
		t.Errorf("top of screen should map to higher world Y: %v vs %v", top, bottom)
	}
}

func TestBehindCameraNotVisible(t *testing.T) {
	cam := newTestCamera()
	if _, _, visible := cam.WorldToScreen(mgl32.Vec3{0, 0, 30}); visible {
		t.Error("point behind camera reported visible")
	}
}

func TestIntersectZ(t *testing.T) {
	tests := []struct {
		name   string
		origin mgl32.Vec3
		dir    mgl32.Vec3
		ok     bool
	}{
		{"toward plane", mgl32.Vec3{1, 2, 10}, mgl32.Vec3{0, 0, -1}, true},
		{"parallel", mgl32.Vec3{1, 2, 10}, mgl32.Vec3{1, 0, 0}, false},
		{"away", mgl32.Vec3{1, 2, 10}, mgl32.Vec3{0, 0, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := IntersectZ(tt.origin, tt.dir, 0)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !p.ApproxEqual(mgl32.Vec3{1, 2, 0}) {
				t.Errorf("hit = %v", p)
			}
		})
	}
}

func TestEulerFacingForward(t *testing.T) {
	cam := newTestCamera()
	if e := cam.Euler(); !e.ApproxEqualThreshold(mgl32.Vec3{}, 1e-5) {
		t.Errorf("camera looking down -Z should have zero euler, got %v", e)
	}
}

func TestEulerFollowsOrbit(t *testing.T) {
	cam := newTestCamera()
	cam.Orbit(0.5, 0)

	e := cam.Euler()
	if math.Abs(float64(e[1]-0.5)) > 1e-4 {
		t.Errorf("yaw = %v, want 0.5", e[1])
	}
	if math.Abs(float64(e[0])) > 1e-4 || math.Abs(float64(e[2])) > 1e-4 {
		t.Errorf("pure yaw orbit produced %v", e)
	}
	if math.Abs(float64(cam.Distance()-20)) > 1e-3 {
		t.Errorf("orbit changed distance to %v", cam.Distance())
	}
}

func TestDollyClamped(t *testing.T) {
	cam := newTestCamera()
	cam.Dolly(2)
	if math.Abs(float64(cam.Distance()-10)) > 1e-4 {
		t.Errorf("distance = %v, want 10", cam.Distance())
	}
	cam.Dolly(1000)
	if cam.Distance() < cam.MinDistance-1e-4 {
		t.Errorf("distance %v below minimum", cam.Distance())
	}
	cam.Reset()
	if cam.Distance() != 20 {
		t.Errorf("reset distance = %v", cam.Distance())
	}
}
