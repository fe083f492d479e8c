package renderer

import (
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Textures holds one GPU texture per gradient slot. It implements
// gradient.Sink, so the gradient cache drives uploads and disposal.
type Textures struct {
	slots map[int]rl.Texture2D
}

// NewTextures creates an empty texture table.
func NewTextures() *Textures {
	return &Textures{slots: make(map[int]rl.Texture2D)}
}

// Replace uploads img into slot, unloading the texture it supersedes.
func (t *Textures) Replace(slot int, img *image.RGBA) {
	t.Dispose(slot)
	cpu := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(cpu)
	rl.UnloadImage(cpu)
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	t.slots[slot] = tex
}

// Dispose unloads slot.
func (t *Textures) Dispose(slot int) {
	if tex, ok := t.slots[slot]; ok {
		rl.UnloadTexture(tex)
		delete(t.slots, slot)
	}
}

// Get returns the texture of slot, or raylib's default white texture.
func (t *Textures) Get(slot int) rl.Texture2D {
	if tex, ok := t.slots[slot]; ok {
		return tex
	}
	return rl.Texture2D{ID: rl.GetTextureIdDefault(), Width: 1, Height: 1, Mipmaps: 1, Format: rl.UncompressedR8g8b8a8}
}

// Unload frees every texture.
func (t *Textures) Unload() {
	for slot := range t.slots {
		t.Dispose(slot)
	}
}
