// Package renderer draws instance pools with raylib. It is the GPU side of
// pool.Backend, gradient.Sink and asset.Decoder.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/camera"
)

// toMatrix converts a column-major mgl32 matrix. raylib names elements by
// their column-major index, so m[i] lands in Mi.
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.NewMatrix(
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	)
}

func toVector3(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v[0], v[1], v[2])
}

// ToColor converts a linear [0,1] triple to an opaque raylib color.
func ToColor(c [3]float32) color.RGBA {
	to8 := func(v float32) uint8 {
		return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
	}
	return rl.NewColor(to8(c[0]), to8(c[1]), to8(c[2]), 255)
}

// Camera3D converts the engine camera for BeginMode3D.
func Camera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   toVector3(c.Position),
		Target:     toVector3(c.Target),
		Up:         toVector3(c.Up),
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}
