package trail

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/yaelren/3DTrail/asset"
	"github.com/yaelren/3DTrail/config"
	"github.com/yaelren/3DTrail/gradient"
	"github.com/yaelren/3DTrail/material"
	"github.com/yaelren/3DTrail/pool"
	"github.com/yaelren/3DTrail/systems"
)

// layoutKey is everything the pool set depends on. Pools are rebuilt
// whenever it changes and only then.
type layoutKey struct {
	assetGen uint64
	pools    int
	capacity int
	material material.Options
}

func (e *Engine) currentLayout() layoutKey {
	if !e.asset.Loaded() {
		return layoutKey{}
	}
	return layoutKey{
		assetGen: e.assetGen,
		pools:    e.controller.PoolCount(),
		capacity: e.cfg.Trail.Capacity,
		material: material.Options{
			Mode:  e.cfg.Derived.Shader,
			Rim:   e.cfg.Material.Rim.Enabled,
			Blend: e.controller.Mode() == gradient.ModeTimeCycle,
		},
	}
}

// applyPending runs at the tick boundary: configuration, finished asset
// loads, then any pool rebuild the two require.
func (e *Engine) applyPending() {
	if cfg := e.pendingCfg; cfg != nil {
		e.pendingCfg = nil
		e.applyConfig(cfg)
	}
	if e.loader != nil {
		if res, ok := e.loader.Poll(); ok {
			e.handleAssetResult(res)
		}
	}
	if a := e.pendingAsset; a != nil {
		e.pendingAsset = nil
		if err := e.swapAsset(*a); err != nil {
			slog.Error("asset swap failed", "source", a.Source, "error", err)
			e.releaseAsset(*a)
		}
	}
	if e.dirty {
		e.reconfigure()
	}
}

func (e *Engine) applyConfig(cfg *config.Config) {
	set, err := gradient.NewSet(cfg.Derived.Gradients)
	if err == nil {
		err = set.SetActive(cfg.Gradients.Active)
	}
	if err != nil {
		slog.Error("rejecting config", "error", err)
		return
	}
	e.cfg = cfg
	e.params = systems.NewParams(cfg)
	e.gradients = set
	e.textures.SetSize(cfg.Gradients.TextureSize)
	e.dirty = true
	slog.Info("config applied",
		"density", cfg.Trail.Density,
		"gradients", set.Len(),
		"mode", cfg.Derived.BlendMode.String(),
		"shader", cfg.Derived.Shader.String(),
	)
}

// reconfigure feeds the controller and rebuilds the pools if the layout
// moved. A failed rebuild keeps the previous pools.
func (e *Engine) reconfigure() {
	e.dirty = false
	e.controller.Configure(e.cfg.Derived.BlendMode, e.gradients.Len(), e.gradients.Active())
	key := e.currentLayout()
	if e.built && key == e.layout {
		return
	}
	if err := e.rebuild(key); err != nil {
		slog.Error("pool rebuild failed", "error", err)
	}
}

// rebuild builds the complete pool set for key, then retires the old set
// with every particle in it.
func (e *Engine) rebuild(key layoutKey) error {
	next := make([]*pool.InstancePool, 0, key.pools)
	for i := 0; i < key.pools; i++ {
		spec := material.Build(key.material, e.asset.Base, e.controller.PoolGradient(i))
		p, err := pool.New(e.backend, e.asset.Shape, spec, key.capacity)
		if err != nil {
			for _, q := range next {
				q.Destroy()
			}
			return fmt.Errorf("building pool %d of %d: %w", i+1, key.pools, err)
		}
		next = append(next, p)
	}

	e.teardown()
	e.pools = next
	e.layout = key
	e.built = true
	e.counters.rebuilds++
	e.collector.RecordRebuild()
	slog.Info("pools rebuilt",
		"pools", key.pools,
		"capacity", key.capacity,
		"shader", key.material.Mode.String(),
		"rim", key.material.Rim,
		"blend", key.material.Blend,
	)
	return nil
}

// teardown removes every particle and destroys every pool.
func (e *Engine) teardown() {
	var entities []ecs.Entity
	query := e.filter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}
	for _, entity := range entities {
		e.mapper.Remove(entity)
	}
	e.live = 0

	for _, p := range e.pools {
		p.Destroy()
	}
	e.pools = nil
	e.built = false
}

func (e *Engine) handleAssetResult(res asset.Result) {
	if res.Err != nil {
		slog.Warn("asset load failed", "source", res.Source, "user", res.UserTriggered, "error", res.Err)
		if res.UserTriggered && e.onAssetError != nil {
			e.onAssetError(res.Err)
		}
		return
	}
	if err := e.swapAsset(res.Asset); err != nil {
		slog.Error("asset swap failed", "source", res.Source, "error", err)
		e.releaseAsset(res.Asset)
		if res.UserTriggered && e.onAssetError != nil {
			e.onAssetError(err)
		}
	}
}

// swapAsset makes a the current asset. The old asset is released only once
// pools for the new one exist.
func (e *Engine) swapAsset(a asset.Asset) error {
	if !a.Loaded() {
		return asset.NoMesh(a.Source)
	}
	old, oldGen := e.asset, e.assetGen
	e.asset = a
	e.assetGen++

	e.controller.Configure(e.cfg.Derived.BlendMode, e.gradients.Len(), e.gradients.Active())
	if err := e.rebuild(e.currentLayout()); err != nil {
		e.asset, e.assetGen = old, oldGen
		return err
	}
	e.releaseAsset(old)
	slog.Info("asset swapped in", "source", a.Source, "shape", a.Shape.Name())
	return nil
}

func (e *Engine) releaseAsset(a asset.Asset) {
	if a.Loaded() && e.loader != nil {
		e.loader.Release(a)
	}
}

// syncMaterials regenerates changed gradient textures and pushes this
// tick's uniforms to every pool.
func (e *Engine) syncMaterials() {
	light := gradient.Light{X: e.cfg.Material.Light.X, Y: e.cfg.Material.Light.Y}
	e.textures.Sync(e.gradients.Definitions(), light)
	for i, p := range e.pools {
		p.SetUniforms(e.uniforms(i))
	}
}

func (e *Engine) uniforms(poolIndex int) material.Uniforms {
	m := &e.cfg.Material
	d := &e.cfg.Derived
	u := material.Uniforms{
		LightColor:     d.LightColor,
		LightIntensity: float32(m.Light.Intensity),
		RimColor:       d.RimColor,
		RimIntensity:   float32(m.Rim.Intensity),
		RimPower:       float32(m.Rim.Power),
		ToonSteps:      float32(m.ToonSteps),
	}
	if e.controller.Mode() == gradient.ModeRandomPerParticle {
		g := e.controller.PoolGradient(poolIndex)
		u.TextureA, u.TextureB = g, g
		return u
	}
	a, b, w := e.controller.Samplers()
	u.TextureA, u.TextureB, u.Mix = a, b, float32(w)
	return u
}
