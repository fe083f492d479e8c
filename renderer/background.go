package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

const backdropShader = `#version 330
in vec2 fragTexCoord;
uniform vec2 resolution;
uniform vec3 baseColor;
out vec4 finalColor;

void main() {
    vec2 uv = gl_FragCoord.xy / resolution;
    float d = distance(uv, vec2(0.5, 0.55));
    float glow = 1.0 - smoothstep(0.0, 0.9, d);
    vec3 col = baseColor * (0.55 + 0.75 * glow);
    finalColor = vec4(col, 1.0);
}
`

// Backdrop renders a soft radial vignette behind the trail.
type Backdrop struct {
	shader        rl.Shader
	resolutionLoc int32
	baseColorLoc  int32

	screenW, screenH float32
	initialized      bool
}

// NewBackdrop creates a backdrop for a screen of the given size.
func NewBackdrop(screenW, screenH int32) *Backdrop {
	return &Backdrop{screenW: float32(screenW), screenH: float32(screenH)}
}

// Init compiles the shader (must be called after the raylib window is created).
func (b *Backdrop) Init() {
	if b.initialized {
		return
	}
	b.shader = rl.LoadShaderFromMemory("", backdropShader)
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.baseColorLoc = rl.GetShaderLocation(b.shader, "baseColor")
	b.initialized = true
}

// Resize updates the target size.
func (b *Backdrop) Resize(screenW, screenH int32) {
	b.screenW, b.screenH = float32(screenW), float32(screenH)
}

// Draw fills the target with the vignette tinted by base.
func (b *Backdrop) Draw(base [3]float32) {
	if !b.initialized {
		b.Init()
	}
	rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{b.screenW, b.screenH}, rl.ShaderUniformVec2)
	rl.SetShaderValue(b.shader, b.baseColorLoc, base[:], rl.ShaderUniformVec3)

	rl.BeginShaderMode(b.shader)
	rl.DrawRectangle(0, 0, int32(b.screenW), int32(b.screenH), rl.White)
	rl.EndShaderMode()
}

// Unload frees resources.
func (b *Backdrop) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
