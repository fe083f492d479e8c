package renderer

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/material"
	"github.com/yaelren/3DTrail/pool"
)

// Shape is a loaded model. Its meshes are drawn instanced, one call per
// mesh per pool.
type Shape struct {
	name  string
	model rl.Model
}

// Name implements pool.Shape.
func (s *Shape) Name() string { return s.name }

// gpuPool is the GPU state behind one pool.Handle.
type gpuPool struct {
	shape      *Shape
	spec       material.Spec
	shader     rl.Shader
	material   rl.Material
	locs       map[string]int32
	transforms []rl.Matrix
	uniforms   material.Uniforms
	inScene    bool
}

// Backend implements pool.Backend on raylib.
type Backend struct {
	textures *Textures
	pools    map[pool.Handle]*gpuPool
	order    []pool.Handle
	next     pool.Handle
}

// NewBackend creates a backend sampling gradient textures from textures.
func NewBackend(textures *Textures) *Backend {
	return &Backend{textures: textures, pools: make(map[pool.Handle]*gpuPool)}
}

// CreatePool compiles the material for spec and allocates capacity
// instance transforms.
func (b *Backend) CreatePool(shape pool.Shape, spec material.Spec, capacity int) (pool.Handle, error) {
	s, ok := shape.(*Shape)
	if !ok {
		return 0, fmt.Errorf("renderer: shape %s was not loaded by the renderer", shape.Name())
	}
	vs, fs := material.Compose(spec)
	shader := rl.LoadShaderFromMemory(vs, fs)
	if shader.ID == 0 || shader.ID == rl.GetShaderIdDefault() {
		return 0, fmt.Errorf("renderer: compiling %s shader failed", spec.Mode)
	}
	shader.UpdateLocation(rl.ShaderLocMatrixModel, rl.GetShaderLocationAttrib(shader, "instanceTransform"))
	shader.UpdateLocation(rl.ShaderLocMapMetalness, rl.GetShaderLocation(shader, "textureB"))

	p := &gpuPool{
		shape:      s,
		spec:       spec,
		shader:     shader,
		material:   rl.LoadMaterialDefault(),
		locs:       make(map[string]int32),
		transforms: make([]rl.Matrix, capacity),
	}
	p.material.Shader = shader
	p.material.GetMap(rl.MapDiffuse).Color = spec.Base.Color
	for _, name := range material.UniformNames(spec) {
		p.locs[name] = rl.GetShaderLocation(shader, name)
	}

	b.next++
	b.pools[b.next] = p
	b.order = append(b.order, b.next)
	slog.Debug("gpu pool created", "handle", b.next, "shape", s.name, "capacity", capacity, "shader", spec.Mode.String())
	return b.next, nil
}

// DestroyPool unloads the pool's shader and material. Gradient textures
// belong to Textures and are detached first.
func (b *Backend) DestroyPool(h pool.Handle) {
	p, ok := b.pools[h]
	if !ok {
		return
	}
	def := rl.Texture2D{ID: rl.GetTextureIdDefault()}
	p.material.GetMap(rl.MapDiffuse).Texture = def
	p.material.GetMap(rl.MapMetalness).Texture = def
	rl.UnloadMaterial(p.material)
	delete(b.pools, h)
	for i, o := range b.order {
		if o == h {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// AddToScene implements pool.Backend.
func (b *Backend) AddToScene(h pool.Handle) {
	if p, ok := b.pools[h]; ok {
		p.inScene = true
	}
}

// RemoveFromScene implements pool.Backend.
func (b *Backend) RemoveFromScene(h pool.Handle) {
	if p, ok := b.pools[h]; ok {
		p.inScene = false
	}
}

// Commit implements pool.Backend.
func (b *Backend) Commit(h pool.Handle, transforms []mgl32.Mat4) {
	p, ok := b.pools[h]
	if !ok {
		return
	}
	for i, m := range transforms {
		if i >= len(p.transforms) {
			break
		}
		p.transforms[i] = toMatrix(m)
	}
}

// SetUniforms implements pool.Backend.
func (b *Backend) SetUniforms(h pool.Handle, u material.Uniforms) {
	if p, ok := b.pools[h]; ok {
		p.uniforms = u
	}
}

// Draw renders every pool in the scene. Call between BeginMode3D and
// EndMode3D.
func (b *Backend) Draw() {
	for _, h := range b.order {
		p := b.pools[h]
		if !p.inScene || len(p.transforms) == 0 {
			continue
		}
		p.bind(b.textures)
		for _, mesh := range p.shape.model.GetMeshes() {
			rl.DrawMeshInstanced(mesh, p.material, p.transforms, len(p.transforms))
		}
	}
}

// Pools returns the number of live GPU pools.
func (b *Backend) Pools() int { return len(b.pools) }

func (p *gpuPool) bind(textures *Textures) {
	u := &p.uniforms
	if p.spec.Mode != material.ModeStandard {
		p.material.GetMap(rl.MapDiffuse).Texture = textures.Get(u.TextureA)
		p.material.GetMap(rl.MapMetalness).Texture = textures.Get(u.TextureB)
	}

	p.setVec3("lightColor", u.LightColor)
	p.setFloat("lightIntensity", u.LightIntensity)
	p.setFloat("mixRatio", u.Mix)
	p.setFloat("toonSteps", u.ToonSteps)
	p.setVec3("rimColor", u.RimColor)
	p.setFloat("rimIntensity", u.RimIntensity)
	p.setFloat("rimPower", u.RimPower)
}

func (p *gpuPool) setFloat(name string, v float32) {
	if loc, ok := p.locs[name]; ok && loc >= 0 {
		rl.SetShaderValue(p.shader, loc, []float32{v}, rl.ShaderUniformFloat)
	}
}

func (p *gpuPool) setVec3(name string, v [3]float32) {
	if loc, ok := p.locs[name]; ok && loc >= 0 {
		rl.SetShaderValue(p.shader, loc, v[:], rl.ShaderUniformVec3)
	}
}
