package trail

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yaelren/3DTrail/asset"
	"github.com/yaelren/3DTrail/config"
	"github.com/yaelren/3DTrail/gradient"
	"github.com/yaelren/3DTrail/material"
	"github.com/yaelren/3DTrail/pool"
	"github.com/yaelren/3DTrail/telemetry"
)

type fakePointer struct {
	pos    mgl32.Vec3
	ok     bool
	active bool
	speed  float32
}

func (p *fakePointer) WorldPosition() (mgl32.Vec3, bool) { return p.pos, p.ok }
func (p *fakePointer) TriggerActive() bool               { return p.active }
func (p *fakePointer) Speed() float32                    { return p.speed }

// testConfig returns defaults with motion that would blur assertions turned off.
func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Float.Enabled = false
	cfg.Facing.Mode = "none"
	cfg.Trail.ScaleMode = "fixed"
	cfg.Trail.Scale = 1
	cfg.Telemetry.StatsWindow = 1e9
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Recompute(); err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	return cfg
}

type harness struct {
	engine  *Engine
	backend *pool.Headless
	pointer *fakePointer
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	h := &harness{
		backend: pool.NewHeadless(),
		pointer: &fakePointer{ok: true, active: true},
	}
	e, err := New(Options{
		Config:  testConfig(t, mutate),
		Backend: h.backend,
		Pointer: h.pointer,
		Seed:    7,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(e.Close)
	h.engine = e
	return h
}

func (h *harness) loadShape() {
	h.engine.SetAsset(asset.Asset{Shape: pool.NamedShape("cube"), Source: "cube.glb"})
}

func (h *harness) headlessPool(i int) *pool.HeadlessPool {
	return h.backend.Pools[h.engine.pools[i].Handle()]
}

func TestNoShapeNoSpawn(t *testing.T) {
	h := newHarness(t, nil)
	for i := 0; i < 30; i++ {
		h.engine.Tick(1.0 / 60)
	}
	s := h.engine.Stats()
	if s.Live != 0 || s.Pools != 0 || s.Spawned != 0 {
		t.Errorf("spawned without a shape: %+v", s)
	}
}

func TestSpawnInterval(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Trail.Density = 8 })
	h.loadShape()
	for i := 0; i < 10; i++ {
		h.engine.Tick(0.0625)
	}
	if got := h.engine.Stats().Spawned; got != 5 {
		t.Errorf("spawned = %d, want 5", got)
	}
}

func TestMissingTargetSkipsSpawn(t *testing.T) {
	h := newHarness(t, nil)
	h.loadShape()
	h.pointer.ok = false
	for i := 0; i < 10; i++ {
		h.engine.Tick(0.1)
	}
	if got := h.engine.Stats().Spawned; got != 0 {
		t.Errorf("spawned = %d without a target", got)
	}
	h.pointer.ok = true
	h.engine.Tick(0.1)
	if got := h.engine.Stats().Spawned; got != 1 {
		t.Errorf("spawned = %d after target returned, want 1", got)
	}
}

func TestParticleLifecycle(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Trail.Density = 1
		c.Trail.Lifespan = 3
		c.Trail.ExitDuration = 1
		c.Trail.Disappear = "fade"
	})
	h.loadShape()
	h.pointer.pos = mgl32.Vec3{1, 2, 0}

	// The spawn tick ages the particle too.
	wantScale := []float64{1, 1, 1, 1, 0.5}
	for i, want := range wantScale {
		h.engine.Tick(0.5)
		h.pointer.active = false
		if h.engine.Stats().Live != 1 {
			t.Fatalf("tick %d: live = %d, want 1", i+1, h.engine.Stats().Live)
		}
		m := h.headlessPool(0).Transforms[0]
		got := float64(m.Col(0).Vec3().Len())
		if math.Abs(got-want) > 1e-5 {
			t.Errorf("tick %d (age %.1f): scale = %v, want %v", i+1, 0.5*float64(i+1), got, want)
		}
	}

	h.engine.Tick(0.5)
	s := h.engine.Stats()
	if s.Live != 0 || s.Expired != 1 {
		t.Fatalf("at age 3.0: live = %d expired = %d, want 0 and 1", s.Live, s.Expired)
	}
	if h.engine.pools[0].Used() != 0 {
		t.Error("slot not released")
	}
	if got := h.headlessPool(0).Transforms[0]; got != mgl32.Scale3D(0, 0, 0) {
		t.Errorf("released slot transform = %v, want zero scale", got)
	}
}

func TestPoolExhaustion(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Trail.Capacity = 4
		c.Trail.Density = 1000
		c.Trail.Lifespan = 10
	})
	h.loadShape()
	for i := 0; i < 6; i++ {
		h.engine.Tick(1.0 / 60)
	}
	s := h.engine.Stats()
	if s.Live != 4 || s.Dropped != 2 {
		t.Errorf("live = %d dropped = %d, want 4 and 2", s.Live, s.Dropped)
	}
	if used := h.engine.pools[0].Used(); used+h.engine.pools[0].Free() != 4 {
		t.Errorf("used+free = %d, want 4", used+h.engine.pools[0].Free())
	}
}

func twoGradientRandom(capacity int) func(*config.Config) {
	return func(c *config.Config) {
		c.Gradients.Sets = c.Gradients.Sets[:2]
		c.Gradients.Mode = "random"
		c.Trail.Capacity = capacity
		c.Trail.Density = 1000
		c.Trail.Lifespan = 100
		c.Trail.ExitDuration = 1
	}
}

func TestRandomPoolFairness(t *testing.T) {
	h := newHarness(t, twoGradientRandom(1000))
	h.loadShape()
	const spawns = 1000
	for i := 0; i < spawns; i++ {
		h.engine.Tick(1.0 / 60)
	}

	s := h.engine.Stats()
	if s.Pools != 2 || s.Spawned != spawns {
		t.Fatalf("pools = %d spawned = %d, want 2 and %d", s.Pools, s.Spawned, spawns)
	}
	k := float64(s.PoolUsed[0])
	b := distuv.Binomial{N: spawns, P: 0.5}
	lower, upper := b.CDF(k), 1-b.CDF(k-1)
	if lower < 1e-4 || upper < 1e-4 {
		t.Errorf("pool 0 got %v of %d spawns (tails %.2g, %.2g)", k, spawns, lower, upper)
	}
	for i := 0; i < 2; i++ {
		if u := h.headlessPool(i).Uniforms; u.TextureA != i || u.TextureB != i {
			t.Errorf("pool %d samples gradients %d/%d", i, u.TextureA, u.TextureB)
		}
	}
}

func TestRandomPoolCapacityBound(t *testing.T) {
	h := newHarness(t, twoGradientRandom(50))
	h.loadShape()
	for i := 0; i < 300; i++ {
		h.engine.Tick(1.0 / 60)
		s := h.engine.Stats()
		if s.Live > s.Capacity {
			t.Fatalf("tick %d: live %d exceeds capacity %d", i, s.Live, s.Capacity)
		}
		if sum := s.PoolUsed[0] + s.PoolUsed[1]; sum != s.Live {
			t.Fatalf("tick %d: pools hold %d, live %d", i, sum, s.Live)
		}
	}
	s := h.engine.Stats()
	if s.Live != 100 || s.Dropped == 0 {
		t.Errorf("live = %d dropped = %d, want full pools with drops", s.Live, s.Dropped)
	}
}

func TestCycleModeUniforms(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Gradients.Mode = "cycle"
		c.Gradients.CycleSpeed = 0.5
	})
	h.loadShape()
	h.pointer.active = false

	h.engine.Tick(0.5)
	hp := h.headlessPool(0)
	if !hp.Spec.Stages.Has(material.StageBlend) {
		t.Error("cycle pool built without blend stage")
	}
	u := hp.Uniforms
	if u.TextureA != 0 || u.TextureB != 1 || math.Abs(float64(u.Mix)-gradient.Smoothstep(0.25)) > 1e-6 {
		t.Errorf("after 0.5s: uniforms = %+v", u)
	}

	for i := 0; i < 3; i++ {
		h.engine.Tick(0.5)
	}
	s := h.engine.Stats()
	if s.GradientA != 1 || s.GradientB != 2 || s.Cycles != 1 {
		t.Errorf("after one cycle: pair = (%d,%d) cycles = %d", s.GradientA, s.GradientB, s.Cycles)
	}
	// The gradient on screen stays on its sampler.
	u = h.headlessPool(0).Uniforms
	if u.TextureB != 1 || u.Mix != 1 {
		t.Errorf("after swap: uniforms = %+v, want gradient 1 fully weighted on sampler 1", u)
	}
}

func TestModeSwitchRebuildsPools(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Trail.Density = 1000 })
	h.loadShape()
	for i := 0; i < 5; i++ {
		h.engine.Tick(1.0 / 60)
	}
	before := h.engine.Stats()
	if before.Pools != 1 || before.Live != 5 {
		t.Fatalf("setup: %+v", before)
	}

	h.pointer.active = false
	cfg := h.engine.Config()
	cfg.Gradients.Mode = "random"
	if err := cfg.Recompute(); err != nil {
		t.Fatal(err)
	}
	h.engine.SetConfig(cfg)
	if h.engine.Stats().Pools != 1 {
		t.Error("config applied before the tick boundary")
	}
	h.engine.Tick(1.0 / 60)

	s := h.engine.Stats()
	if s.Pools != 3 || s.Live != 0 || s.Rebuilds != before.Rebuilds+1 {
		t.Errorf("after switch to random: %+v", s)
	}
	if len(h.backend.Pools) != 3 {
		t.Errorf("backend holds %d pools, want 3", len(h.backend.Pools))
	}

	// Unrelated changes keep the layout.
	cfg = h.engine.Config()
	cfg.Trail.Density = 5
	if err := cfg.Recompute(); err != nil {
		t.Fatal(err)
	}
	h.engine.SetConfig(cfg)
	h.engine.Tick(1.0 / 60)
	if got := h.engine.Stats().Rebuilds; got != s.Rebuilds {
		t.Errorf("density change rebuilt pools (%d -> %d)", s.Rebuilds, got)
	}
}

func TestRandomModeNeedsTwoGradients(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Gradients.Sets = c.Gradients.Sets[:1]
		c.Gradients.Mode = "random"
	})
	h.loadShape()
	h.engine.Tick(1.0 / 60)
	if got := h.engine.Stats().Pools; got != 1 {
		t.Errorf("pools = %d, want single-mode fallback", got)
	}
}

func TestGradientMutations(t *testing.T) {
	h := newHarness(t, nil)
	h.loadShape()
	h.engine.Tick(1.0 / 60)
	generated := h.engine.Textures().Generated()
	before, _ := h.engine.Gradient(0)

	one := []gradient.Stop{before.Stops[0]}
	if err := h.engine.SetGradientStops(0, one); !errors.Is(err, ErrInvalidGradient) {
		t.Fatalf("single stop error = %v, want ErrInvalidGradient", err)
	}
	after, _ := h.engine.Gradient(0)
	if !reflect.DeepEqual(before, after) {
		t.Error("rejected mutation changed the gradient")
	}

	red, _ := gradient.ParseStop("#ff0000", 0)
	blue, _ := gradient.ParseStop("#0000ff", 100)
	if err := h.engine.SetGradientStops(0, []gradient.Stop{red, blue}); err != nil {
		t.Fatalf("SetGradientStops() error = %v", err)
	}
	h.engine.Tick(1.0 / 60)
	if got := h.engine.Textures().Generated(); got != generated+1 {
		t.Errorf("regenerated %d textures, want 1", got-generated)
	}
	stops := h.engine.Config().Gradients.Sets[0].Stops
	if len(stops) != 2 || stops[0].Color != "#ff0000" || stops[1].Position != 100 {
		t.Errorf("config stops = %+v", stops)
	}

	if err := h.engine.SetActiveGradient(2); err != nil {
		t.Fatal(err)
	}
	h.engine.Tick(1.0 / 60)
	if u := h.headlessPool(0).Uniforms; u.TextureA != 2 {
		t.Errorf("active gradient 2 not bound: %+v", u)
	}

	for h.engine.GradientCount() > 1 {
		if err := h.engine.RemoveGradient(0); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.engine.RemoveGradient(0); !errors.Is(err, ErrInvalidGradient) {
		t.Errorf("removing last gradient error = %v", err)
	}
	h.engine.Tick(1.0 / 60)
	if h.engine.Textures().Len() != 1 {
		t.Errorf("texture slots = %d, want 1", h.engine.Textures().Len())
	}
}

func TestResetClearsParticles(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Trail.Density = 1000 })
	h.loadShape()
	for i := 0; i < 10; i++ {
		h.engine.Tick(1.0 / 60)
	}
	h.engine.Reset()
	s := h.engine.Stats()
	if s.Live != 0 || s.Pools != 1 || s.PoolUsed[0] != 0 {
		t.Errorf("after reset: %+v", s)
	}
	if len(h.backend.Pools) != 1 {
		t.Errorf("backend holds %d pools, want 1", len(h.backend.Pools))
	}
}

type fakeExporter struct {
	scale int
	path  string
}

func (f *fakeExporter) Export(scale int, path string) error {
	f.scale, f.path = scale, path
	return nil
}

func TestExportLeavesStateUntouched(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Trail.Density = 1000 })
	h.loadShape()
	for i := 0; i < 10; i++ {
		h.engine.Tick(1.0 / 60)
	}
	before := h.engine.Stats()
	exp := &fakeExporter{}
	if err := h.engine.Export(exp, 0, "out.png"); err != nil {
		t.Fatal(err)
	}
	if exp.scale != 2 || exp.path != "out.png" {
		t.Errorf("exporter got scale %d path %q", exp.scale, exp.path)
	}
	if after := h.engine.Stats(); !reflect.DeepEqual(before, after) {
		t.Errorf("export changed state:\n before %+v\n after  %+v", before, after)
	}
}

const cubeOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func TestAssetLoading(t *testing.T) {
	dir := t.TempDir()
	cube := filepath.Join(dir, "cube.obj")
	tri := filepath.Join(dir, "tri.obj")
	for _, p := range []string{cube, tri} {
		if err := os.WriteFile(p, []byte(cubeOBJ), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	dec := &asset.HeadlessDecoder{}
	var userErrs []error
	e, err := New(Options{
		Config:       testConfig(t, nil),
		Backend:      pool.NewHeadless(),
		Loader:       asset.NewLoader(dec, nil),
		OnAssetError: func(err error) { userErrs = append(userErrs, err) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	waitFor := func(cond func() bool) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for !cond() {
			if time.Now().After(deadline) {
				t.Fatal("timed out")
			}
			time.Sleep(5 * time.Millisecond)
			e.Tick(1.0 / 60)
		}
	}

	if err := e.RequestAsset(cube, false); err != nil {
		t.Fatal(err)
	}
	waitFor(func() bool { return e.Stats().AssetLoaded })
	if s := e.Stats(); s.AssetSource != cube || s.Pools != 1 {
		t.Errorf("after load: %+v", s)
	}

	e.RequestAsset(filepath.Join(dir, "missing.glb"), true)
	waitFor(func() bool { return len(userErrs) > 0 })
	if !errors.Is(userErrs[0], asset.ErrFetch) {
		t.Errorf("user error = %v, want ErrFetch", userErrs[0])
	}
	if s := e.Stats(); !s.AssetLoaded || s.AssetSource != cube {
		t.Errorf("failed load replaced the asset: %+v", s)
	}

	e.RequestAsset(tri, true)
	waitFor(func() bool { return e.Stats().AssetSource == tri })
	if dec.Released != 1 {
		t.Errorf("released %d assets, want the superseded one", dec.Released)
	}
}

func TestRequestAssetWithoutLoader(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.engine.RequestAsset("x.glb", true); err == nil {
		t.Error("expected error without a loader")
	}
}

func TestTelemetryOutput(t *testing.T) {
	dir := t.TempDir()
	out, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, func(c *config.Config) { c.Telemetry.StatsWindow = 1 })
	e, err := New(Options{
		Config:  cfg,
		Backend: pool.NewHeadless(),
		Pointer: &fakePointer{ok: true, active: true},
		Output:  out,
	})
	if err != nil {
		t.Fatal(err)
	}
	e.SetAsset(asset.Asset{Shape: pool.NamedShape("cube")})
	for i := 0; i < 8; i++ {
		e.Tick(0.25)
	}
	e.Close()
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2 windows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,") {
		t.Errorf("header = %q", lines[0])
	}
}
