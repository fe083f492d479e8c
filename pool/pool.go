// Package pool manages fixed-capacity sets of instanced draw slots.
package pool

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/material"
)

// Shape is an opaque drawable produced by the asset collaborator.
type Shape interface {
	Name() string
}

// NamedShape is a Shape that is nothing but a name. Headless runs and tests
// use it in place of a loaded model.
type NamedShape string

// Name returns the shape name.
func (s NamedShape) Name() string { return string(s) }

// Handle identifies a pool inside a Backend.
type Handle uint32

// Backend is the render back-end collaborator.
type Backend interface {
	CreatePool(shape Shape, spec material.Spec, capacity int) (Handle, error)
	DestroyPool(h Handle)
	AddToScene(h Handle)
	RemoveFromScene(h Handle)
	// Commit replaces every instance transform of h in one call.
	Commit(h Handle, transforms []mgl32.Mat4)
	SetUniforms(h Handle, u material.Uniforms)
}

// zeroScale renders an instance invisible.
var zeroScale = mgl32.Scale3D(0, 0, 0)

// InstancePool owns the slots of one shape+material pair.
type InstancePool struct {
	backend  Backend
	handle   Handle
	spec     material.Spec
	free     []int // stack of free slot indices
	held     []bool
	staged   []mgl32.Mat4
	dirty    bool
	commits  int
	capacity int
}

// New creates a pool on the back-end and commits every slot at zero scale.
func New(backend Backend, shape Shape, spec material.Spec, capacity int) (*InstancePool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("pool capacity must be positive, got %d", capacity)
	}
	h, err := backend.CreatePool(shape, spec, capacity)
	if err != nil {
		return nil, fmt.Errorf("creating pool for %s: %w", shape.Name(), err)
	}

	p := &InstancePool{
		backend:  backend,
		handle:   h,
		spec:     spec,
		free:     make([]int, capacity),
		held:     make([]bool, capacity),
		staged:   make([]mgl32.Mat4, capacity),
		capacity: capacity,
	}
	// Push in reverse so slot 0 is acquired first.
	for i := 0; i < capacity; i++ {
		p.free[i] = capacity - 1 - i
		p.staged[i] = zeroScale
	}
	p.dirty = true
	p.Commit()
	backend.AddToScene(h)
	return p, nil
}

// Acquire takes a free slot. ok is false when the pool is exhausted.
func (p *InstancePool) Acquire() (slot int, ok bool) {
	n := len(p.free)
	if n == 0 {
		return -1, false
	}
	slot = p.free[n-1]
	p.free = p.free[:n-1]
	p.held[slot] = true
	return slot, true
}

// Release hides slot and returns it to the free set.
// Releasing a slot that is not held is a caller error and is ignored.
func (p *InstancePool) Release(slot int) {
	if slot < 0 || slot >= p.capacity || !p.held[slot] {
		return
	}
	p.held[slot] = false
	p.staged[slot] = zeroScale
	p.dirty = true
	p.free = append(p.free, slot)
}

// WriteTransform stages the transform of slot for the next Commit.
func (p *InstancePool) WriteTransform(slot int, position, rotation mgl32.Vec3, scale float32) {
	if slot < 0 || slot >= p.capacity {
		return
	}
	p.staged[slot] = Compose(position, rotation, scale)
	p.dirty = true
}

// Commit flushes staged transforms to the back-end in a single call.
func (p *InstancePool) Commit() {
	if !p.dirty {
		return
	}
	p.backend.Commit(p.handle, p.staged)
	p.dirty = false
	p.commits++
}

// SetUniforms forwards shading values to the pool's material.
func (p *InstancePool) SetUniforms(u material.Uniforms) {
	p.backend.SetUniforms(p.handle, u)
}

// Destroy removes the pool from the scene and frees back-end resources.
// Held slots are dropped; the pool must not be used afterwards.
func (p *InstancePool) Destroy() {
	p.backend.RemoveFromScene(p.handle)
	p.backend.DestroyPool(p.handle)
	p.free = p.free[:0]
	p.held = nil
	p.capacity = 0
	p.dirty = false
}

// Held reports whether slot is currently assigned.
func (p *InstancePool) Held(slot int) bool {
	return slot >= 0 && slot < p.capacity && p.held[slot]
}

// Used returns the number of held slots.
func (p *InstancePool) Used() int { return p.capacity - len(p.free) }

// Free returns the number of free slots.
func (p *InstancePool) Free() int { return len(p.free) }

// Cap returns the pool capacity.
func (p *InstancePool) Cap() int { return p.capacity }

// Handle returns the back-end handle.
func (p *InstancePool) Handle() Handle { return p.handle }

// Spec returns the material the pool was built with.
func (p *InstancePool) Spec() material.Spec { return p.spec }

// Commits returns how many back-end commits the pool has issued.
func (p *InstancePool) Commits() int { return p.commits }

// Compose builds a translate * rotateXYZ * scale matrix.
func Compose(position, rotation mgl32.Vec3, scale float32) mgl32.Mat4 {
	rot := mgl32.HomogRotate3DX(rotation[0]).
		Mul4(mgl32.HomogRotate3DY(rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(rotation[2]))
	return mgl32.Translate3D(position[0], position[1], position[2]).
		Mul4(rot).
		Mul4(mgl32.Scale3D(scale, scale, scale))
}
