package renderer

import (
	"fmt"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/yaelren/3DTrail/camera"
)

// Scene owns the GPU side of the trail: pools, gradient textures and the
// backdrop.
type Scene struct {
	Textures *Textures
	Backend  *Backend
	backdrop *Backdrop
	cam      *camera.Camera

	// Background is the linear backdrop tint.
	Background [3]float32
}

// NewScene creates a scene viewed through cam.
func NewScene(cam *camera.Camera, background [3]float32) *Scene {
	tex := NewTextures()
	return &Scene{
		Textures:   tex,
		Backend:    NewBackend(tex),
		backdrop:   NewBackdrop(int32(cam.ViewportW), int32(cam.ViewportH)),
		cam:        cam,
		Background: background,
	}
}

// Draw renders the backdrop and every pool into the current target at
// width x height.
func (s *Scene) Draw(width, height int32) {
	rl.ClearBackground(ToColor(s.Background))
	s.backdrop.Resize(width, height)
	s.backdrop.Draw(s.Background)

	rl.BeginMode3D(Camera3D(s.cam))
	s.Backend.Draw()
	rl.EndMode3D()
}

// Export implements the trail exporter: the scene is drawn once into an
// offscreen target scale times the window size and written to path.
// The window and camera are left as they were.
func (s *Scene) Export(scale int, path string) error {
	if scale < 1 {
		scale = 1
	}
	w := int32(s.cam.ViewportW) * int32(scale)
	h := int32(s.cam.ViewportH) * int32(scale)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	target := rl.LoadRenderTexture(w, h)
	if target.ID == 0 {
		return fmt.Errorf("allocating %dx%d render target", w, h)
	}
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	s.Draw(w, h)
	rl.EndTextureMode()

	img := rl.LoadImageFromTexture(target.Texture)
	defer rl.UnloadImage(img)
	// Render targets are stored bottom-up.
	rl.ImageFlipVertical(img)
	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("writing %s", path)
	}
	return nil
}

// Unload frees every GPU resource of the scene.
func (s *Scene) Unload() {
	s.backdrop.Unload()
	s.Textures.Unload()
}
