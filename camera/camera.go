// Package camera provides the perspective camera looking at the trail plane.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera orbiting a target point.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	// Fovy is the vertical field of view in degrees
	Fovy      float32
	Near, Far float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Dolly constraints, as distance to target
	MinDistance, MaxDistance float32

	home mgl32.Vec3
}

// New creates a camera at position looking at target.
func New(viewportW, viewportH float32, position, target mgl32.Vec3, fovy float32) *Camera {
	return &Camera{
		Position:    position,
		Target:      target,
		Up:          mgl32.Vec3{0, 1, 0},
		Fovy:        fovy,
		Near:        0.1,
		Far:         1000,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: 2,
		MaxDistance: 200,
		home:        position,
	}
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns the perspective matrix for the current viewport.
func (c *Camera) Projection() mgl32.Mat4 {
	aspect := float32(1)
	if c.ViewportH > 0 {
		aspect = c.ViewportW / c.ViewportH
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fovy), aspect, c.Near, c.Far)
}

// WorldToScreen converts a world point to screen pixels (origin top-left).
// visible is false for points behind the camera.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy float32, visible bool) {
	if p.Sub(c.Position).Dot(c.forward()) <= 0 {
		return 0, 0, false
	}
	win := mgl32.Project(p, c.View(), c.Projection(), 0, 0, int(c.ViewportW), int(c.ViewportH))
	return win[0], c.ViewportH - win[1], true
}

// ScreenRay returns the world-space ray through a screen pixel.
func (c *Camera) ScreenRay(sx, sy float32) (origin, dir mgl32.Vec3, ok bool) {
	if c.ViewportW <= 0 || c.ViewportH <= 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	forward := c.forward()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward)

	tanHalf := math32.Tan(mgl32.DegToRad(c.Fovy) / 2)
	ndcX := 2*sx/c.ViewportW - 1
	ndcY := 1 - 2*sy/c.ViewportH

	d := forward.
		Add(right.Mul(ndcX * tanHalf * c.ViewportW / c.ViewportH)).
		Add(up.Mul(ndcY * tanHalf))
	return c.Position, d.Normalize(), true
}

// ScreenToPlane intersects the ray through a screen pixel with the plane
// z = planeZ. ok is false when the ray is parallel to or points away from
// the plane.
func (c *Camera) ScreenToPlane(sx, sy, planeZ float32) (p mgl32.Vec3, ok bool) {
	origin, dir, ok := c.ScreenRay(sx, sy)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return IntersectZ(origin, dir, planeZ)
}

// IntersectZ intersects a ray with the plane z = planeZ.
func IntersectZ(origin, dir mgl32.Vec3, planeZ float32) (mgl32.Vec3, bool) {
	if math32.Abs(dir[2]) < 1e-6 {
		return mgl32.Vec3{}, false
	}
	t := (planeZ - origin[2]) / dir[2]
	if t < 0 {
		return mgl32.Vec3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}

// Euler returns the camera orientation as XYZ euler angles, in the same
// convention instance transforms use, so a billboard with this rotation
// faces the camera.
func (c *Camera) Euler() mgl32.Vec3 {
	v := c.View()
	// The camera's world rotation is the transpose of the view rotation.
	r := func(row, col int) float32 { return v.At(col, row) }

	y := math32.Asin(mgl32.Clamp(r(0, 2), -1, 1))
	x := math32.Atan2(-r(1, 2), r(2, 2))
	z := math32.Atan2(-r(0, 1), r(0, 0))
	return mgl32.Vec3{x, y, z}
}

// Distance returns the distance to the target.
func (c *Camera) Distance() float32 {
	return c.Position.Sub(c.Target).Len()
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Dolly moves the camera toward the target by factor (> 1 moves closer),
// clamped to the distance constraints.
func (c *Camera) Dolly(factor float32) {
	if factor <= 0 {
		return
	}
	offset := c.Position.Sub(c.Target)
	d := mgl32.Clamp(offset.Len()/factor, c.MinDistance, c.MaxDistance)
	c.Position = c.Target.Add(offset.Normalize().Mul(d))
}

// Orbit rotates the camera around the target by yaw (around Up) and pitch
// (around the camera's right axis), in radians. Pitch stops short of the poles.
func (c *Camera) Orbit(yaw, pitch float32) {
	offset := c.Position.Sub(c.Target)
	dist := offset.Len()
	if dist == 0 {
		return
	}
	theta := math32.Atan2(offset[0], offset[2])
	phi := math32.Asin(mgl32.Clamp(offset[1]/dist, -1, 1))

	theta += yaw
	phi = mgl32.Clamp(phi+pitch, -1.5, 1.5)

	c.Position = c.Target.Add(mgl32.Vec3{
		dist * math32.Cos(phi) * math32.Sin(theta),
		dist * math32.Sin(phi),
		dist * math32.Cos(phi) * math32.Cos(theta),
	})
}

// Reset returns the camera to its initial position.
func (c *Camera) Reset() {
	c.Position = c.home
}

func (c *Camera) forward() mgl32.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}
