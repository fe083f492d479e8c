// Package trail runs the pointer trail: it spawns particles under the
// pointer, steps them every tick, and keeps the instance pools, gradient
// textures and blend controller in line with the configuration.
package trail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/yaelren/3DTrail/asset"
	"github.com/yaelren/3DTrail/components"
	"github.com/yaelren/3DTrail/config"
	"github.com/yaelren/3DTrail/gradient"
	"github.com/yaelren/3DTrail/pool"
	"github.com/yaelren/3DTrail/systems"
	"github.com/yaelren/3DTrail/telemetry"
)

// ErrInvalidGradient is returned by the gradient mutations when the change
// would leave the set out of bounds. The engine state is unchanged.
var ErrInvalidGradient = gradient.ErrInvalidConfig

var errNoLoader = errors.New("trail: engine has no asset loader")

// Pointer is the input collaborator. The engine never reads raw device
// events.
type Pointer interface {
	// WorldPosition returns the pointer on the trail plane; ok is false
	// when the pointer is off the plane.
	WorldPosition() (pos mgl32.Vec3, ok bool)
	TriggerActive() bool
	// Speed is the pointer speed in world units per second.
	Speed() float32
}

// Viewer supplies the camera orientation billboards face.
type Viewer interface {
	Euler() mgl32.Vec3
}

// Exporter renders one frame at an integer multiple of the window size.
type Exporter interface {
	Export(scale int, path string) error
}

// Options configure a new Engine. Config and Backend are required.
type Options struct {
	Config  *config.Config
	Backend pool.Backend
	// Sink receives generated gradient textures; nil keeps them in memory.
	Sink    gradient.Sink
	Pointer Pointer
	Viewer  Viewer
	// Loader fetches assets for RequestAsset; nil disables it.
	Loader *asset.Loader
	Seed   int64

	Output   *telemetry.OutputManager
	LogStats bool

	// OnAssetError is called on the tick thread when a user-triggered load
	// fails. Failures of other loads are only logged.
	OnAssetError func(err error)
}

type particles = ecs.Map4[components.Transform, components.Motion, components.Life, components.Slot]
type particleFilter = ecs.Filter4[components.Transform, components.Motion, components.Life, components.Slot]

// Engine is the trail context. It is not safe for concurrent use: every
// method must be called from the thread that ticks it.
type Engine struct {
	cfg        *config.Config
	pendingCfg *config.Config
	params     systems.Params
	dirty      bool

	world  *ecs.World
	mapper *particles
	filter *particleFilter

	backend pool.Backend
	pools   []*pool.InstancePool
	layout  layoutKey
	built   bool

	gradients  *gradient.Set
	controller *gradient.Controller
	textures   *gradient.Cache

	pointer      Pointer
	viewer       Viewer
	loader       *asset.Loader
	asset        asset.Asset
	assetGen     uint64
	pendingAsset *asset.Asset
	onAssetError func(error)

	rng        *rand.Rand
	clock      float64
	tick       int64
	sinceSpawn float64
	nextID     uint32
	live       int
	counters   counters

	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	logStats      bool
	expiredBuffer []expired
}

type counters struct {
	spawned, expired, dropped, rebuilds int
}

// New creates an engine. Pools are built on the first tick once an asset is
// available.
func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, errors.New("trail: nil config")
	}
	if opts.Backend == nil {
		return nil, errors.New("trail: nil backend")
	}
	cfg := opts.Config.Clone()
	set, err := gradient.NewSet(cfg.Derived.Gradients)
	if err != nil {
		return nil, fmt.Errorf("building gradient set: %w", err)
	}
	if err := set.SetActive(cfg.Gradients.Active); err != nil {
		return nil, fmt.Errorf("selecting active gradient: %w", err)
	}

	world := ecs.NewWorld()
	e := &Engine{
		cfg:          cfg,
		params:       systems.NewParams(cfg),
		dirty:        true,
		world:        world,
		mapper:       ecs.NewMap4[components.Transform, components.Motion, components.Life, components.Slot](world),
		filter:       ecs.NewFilter4[components.Transform, components.Motion, components.Life, components.Slot](world),
		backend:      opts.Backend,
		gradients:    set,
		controller:   gradient.NewController(),
		textures:     gradient.NewCache(cfg.Gradients.TextureSize, opts.Sink),
		pointer:      opts.Pointer,
		viewer:       opts.Viewer,
		loader:       opts.Loader,
		onAssetError: opts.OnAssetError,
		rng:          rand.New(rand.NewSource(opts.Seed)),
		collector:    telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perf:         telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:       opts.Output,
		logStats:     opts.LogStats,
	}
	if e.pointer == nil {
		e.pointer = noPointer{}
	}
	e.sinceSpawn = cfg.Derived.SpawnInterval
	return e, nil
}

// Tick advances the trail by dt seconds. Pending configuration, gradient and
// asset changes are applied first, so a tick always sees one consistent
// layout.
func (e *Engine) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}
	e.perf.StartTick()

	e.perf.StartPhase(telemetry.PhaseSwap)
	e.applyPending()

	e.clock += dt
	e.tick++

	e.perf.StartPhase(telemetry.PhaseSpawn)
	target, hasTarget := e.pointer.WorldPosition()
	e.sinceSpawn += dt
	if hasTarget && e.pointer.TriggerActive() && e.sinceSpawn >= e.cfg.Derived.SpawnInterval {
		if e.spawn(target, e.pointer.Speed()) {
			e.sinceSpawn = 0
		}
	}

	e.perf.StartPhase(telemetry.PhaseBlend)
	e.controller.Tick(dt, e.cfg.Gradients.CycleSpeed)
	e.syncMaterials()

	e.perf.StartPhase(telemetry.PhaseUpdate)
	env := systems.Env{
		Time:      e.clock,
		DT:        dt,
		Target:    target,
		HasTarget: hasTarget,
		Rand:      e.rng,
	}
	if e.viewer != nil {
		env.CameraEuler = e.viewer.Euler()
	}
	e.update(&env)

	e.perf.StartPhase(telemetry.PhaseCommit)
	for _, p := range e.pools {
		p.Commit()
	}
	e.perf.EndTick()

	e.flushTelemetry()
}

// SetConfig replaces the configuration at the next tick boundary.
// Gradient sets in cfg replace any gradients edited through the engine.
func (e *Engine) SetConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	e.pendingCfg = cfg.Clone()
}

// Config returns a copy of the configuration in effect, including gradient
// edits made through the engine.
func (e *Engine) Config() *config.Config {
	return e.cfg.Clone()
}

// SetAsset swaps a, which must already be decoded, in at the next tick
// boundary.
func (e *Engine) SetAsset(a asset.Asset) {
	e.pendingAsset = &a
}

// RequestAsset starts an asynchronous load of src. The result is picked up
// on a later tick; a newer request supersedes this one.
func (e *Engine) RequestAsset(src string, userTriggered bool) error {
	if e.loader == nil {
		return errNoLoader
	}
	slog.Info("loading asset", "source", src, "user", userTriggered)
	e.loader.Request(context.Background(), src, userTriggered)
	return nil
}

// Loading reports whether an asset request is in flight.
func (e *Engine) Loading() bool {
	return e.loader != nil && e.loader.Busy()
}

// Reset drops every particle and rebuilds the pools from scratch.
func (e *Engine) Reset() {
	e.teardown()
	e.sinceSpawn = e.cfg.Derived.SpawnInterval
	e.dirty = true
	e.applyPending()
}

// Export renders the current frame through exp at scale times the window
// size. Scale values below 1 use the configured export scale. Engine state
// is not touched.
func (e *Engine) Export(exp Exporter, scale int, path string) error {
	if scale < 1 {
		scale = e.cfg.Export.Scale
	}
	if err := exp.Export(scale, path); err != nil {
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	slog.Info("exported frame", "path", path, "scale", scale)
	return nil
}

// Textures returns the gradient texture cache.
func (e *Engine) Textures() *gradient.Cache { return e.textures }

// Close releases pools, textures and the current asset.
func (e *Engine) Close() {
	if e.loader != nil {
		e.loader.Close()
	}
	e.teardown()
	e.textures.Release()
	e.releaseAsset(e.asset)
	e.asset = asset.Asset{}
	if e.pendingAsset != nil {
		e.releaseAsset(*e.pendingAsset)
		e.pendingAsset = nil
	}
}

type noPointer struct{}

func (noPointer) WorldPosition() (mgl32.Vec3, bool) { return mgl32.Vec3{}, false }
func (noPointer) TriggerActive() bool               { return false }
func (noPointer) Speed() float32                    { return 0 }
