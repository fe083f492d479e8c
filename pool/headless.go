package pool

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/material"
)

// Headless is a Backend that keeps transforms in memory and draws nothing.
type Headless struct {
	next  Handle
	Pools map[Handle]*HeadlessPool
}

// HeadlessPool is the in-memory state of one headless pool.
type HeadlessPool struct {
	Shape      Shape
	Spec       material.Spec
	Capacity   int
	InScene    bool
	Commits    int
	Transforms []mgl32.Mat4
	Uniforms   material.Uniforms
}

// NewHeadless creates an empty headless back-end.
func NewHeadless() *Headless {
	return &Headless{Pools: make(map[Handle]*HeadlessPool)}
}

// CreatePool implements Backend.
func (b *Headless) CreatePool(shape Shape, spec material.Spec, capacity int) (Handle, error) {
	b.next++
	b.Pools[b.next] = &HeadlessPool{
		Shape:      shape,
		Spec:       spec,
		Capacity:   capacity,
		Transforms: make([]mgl32.Mat4, capacity),
	}
	return b.next, nil
}

// DestroyPool implements Backend.
func (b *Headless) DestroyPool(h Handle) {
	delete(b.Pools, h)
}

// AddToScene implements Backend.
func (b *Headless) AddToScene(h Handle) {
	if p, ok := b.Pools[h]; ok {
		p.InScene = true
	}
}

// RemoveFromScene implements Backend.
func (b *Headless) RemoveFromScene(h Handle) {
	if p, ok := b.Pools[h]; ok {
		p.InScene = false
	}
}

// Commit implements Backend.
func (b *Headless) Commit(h Handle, transforms []mgl32.Mat4) {
	p, ok := b.Pools[h]
	if !ok {
		return
	}
	copy(p.Transforms, transforms)
	p.Commits++
}

// SetUniforms implements Backend.
func (b *Headless) SetUniforms(h Handle, u material.Uniforms) {
	if p, ok := b.Pools[h]; ok {
		p.Uniforms = u
	}
}
