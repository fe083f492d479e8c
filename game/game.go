// Package game is the application shell around the trail engine: it owns the
// window-side collaborators (camera, mouse, scene, panels) in graphical mode
// and a scripted pointer in headless mode.
package game

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/yaelren/3DTrail/asset"
	"github.com/yaelren/3DTrail/camera"
	"github.com/yaelren/3DTrail/config"
	"github.com/yaelren/3DTrail/input"
	"github.com/yaelren/3DTrail/pool"
	"github.com/yaelren/3DTrail/renderer"
	"github.com/yaelren/3DTrail/telemetry"
	"github.com/yaelren/3DTrail/trail"
	"github.com/yaelren/3DTrail/ui"
)

// Options configure a Game.
type Options struct {
	Config     *config.Config
	ConfigPath string // written by "Save config"; empty saves to trail.yaml
	Asset      string // model loaded at startup; empty uses the config default
	Seed       int64
	Headless   bool
	OutputDir  string
	LogStats   bool
	Watch      bool
}

// statusDuration is how long a status message stays on screen.
const statusDuration = 4 * time.Second

// Game runs one trail session.
type Game struct {
	opts   Options
	engine *trail.Engine
	output *telemetry.OutputManager

	// Graphical mode
	camera   *camera.Camera
	mouse    *ui.Mouse
	scene    *renderer.Scene
	hud      *ui.HUD
	perf     *ui.PerfPanel
	controls *ui.ControlsPanel
	overlays *ui.OverlayRegistry
	watcher  *config.Watcher

	// Headless mode
	orbit *input.Orbit
	dt    float64

	screenWidth, screenHeight float32
	paused                    bool
	exportRequested           bool

	status      string
	statusErr   bool
	statusUntil time.Time
}

// NewGame creates a game. In graphical mode the raylib window must already
// be open.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	g := &Game{opts: opts, dt: 1 / float64(max(cfg.Screen.TargetFPS, 1))}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, fmt.Errorf("writing config snapshot: %w", err)
		}
		g.output = om
	}

	engineOpts := trail.Options{
		Config:       cfg,
		Seed:         opts.Seed,
		Output:       g.output,
		LogStats:     opts.LogStats,
		OnAssetError: func(err error) { g.setStatus(err.Error(), true) },
	}

	if opts.Headless {
		g.orbit = input.NewOrbit(mgl32.Vec3{}, 5)
		engineOpts.Backend = pool.NewHeadless()
		engineOpts.Pointer = g.orbit
		engineOpts.Loader = asset.NewLoader(&asset.HeadlessDecoder{}, nil)
	} else {
		g.initGraphics(cfg)
		engineOpts.Backend = g.scene.Backend
		engineOpts.Sink = g.scene.Textures
		engineOpts.Pointer = g.mouse
		engineOpts.Viewer = g.camera
		engineOpts.Loader = asset.NewLoader(renderer.ModelDecoder{}, nil)
	}

	engine, err := trail.New(engineOpts)
	if err != nil {
		g.closeOutput()
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	g.engine = engine

	if !opts.Headless {
		g.controls = ui.NewControlsPanel(engine, 300)
		g.layoutPanels()
		g.mouse.Blocked = func(x, y float32) bool {
			return g.overlays.IsEnabled(ui.OverlayControls) && g.controls.Contains(x, y)
		}
	}

	if opts.Watch {
		g.startWatcher()
	}

	src := opts.Asset
	if src == "" {
		src = cfg.Asset.Default
	}
	if src != "" {
		if err := engine.RequestAsset(src, opts.Asset != ""); err != nil {
			slog.Warn("no startup asset", "error", err)
		}
	}
	return g, nil
}

func (g *Game) startWatcher() {
	if g.opts.ConfigPath == "" {
		slog.Warn("-watch has no effect without -config")
		return
	}
	w, err := config.Watch(g.opts.ConfigPath)
	if err != nil {
		slog.Warn("config watch disabled", "error", err)
		return
	}
	g.watcher = w
	slog.Info("watching config", "path", g.opts.ConfigPath, "headless", g.opts.Headless)
}

func (g *Game) initGraphics(cfg *config.Config) {
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())
	g.camera = camera.New(g.screenWidth, g.screenHeight,
		mgl32.Vec3(cfg.Camera.Position), mgl32.Vec3(cfg.Camera.Target), cfg.Camera.Fovy)

	trigger, _ := input.ParseTrigger(cfg.Trail.Trigger)
	g.mouse = ui.NewMouse(g.camera, trigger)
	g.scene = renderer.NewScene(g.camera, cfg.Derived.Background)
	g.hud = ui.NewHUD()
	g.perf = ui.NewPerfPanel(10, 0)
	g.overlays = ui.NewOverlayRegistry()
}

// Update advances one frame in graphical mode.
func (g *Game) Update() {
	if g.exportRequested {
		g.exportRequested = false
		g.export()
	}
	g.handleInput()
	g.drainReloads()

	g.mouse.Poll(rl.GetTime())
	if !g.paused {
		g.engine.Tick(float64(rl.GetFrameTime()))
	}
	g.engine.RecordFrame()
}

// UpdateHeadless advances one fixed step with the scripted pointer.
func (g *Game) UpdateHeadless() {
	g.drainReloads()
	g.orbit.Advance(g.dt)
	g.engine.Tick(g.dt)
}

// Tick returns the engine tick count.
func (g *Game) Tick() int64 { return g.engine.Stats().Tick }

// Engine returns the trail engine.
func (g *Game) Engine() *trail.Engine { return g.engine }

// Unload releases the engine, GPU resources and telemetry files.
func (g *Game) Unload() {
	if g.watcher != nil {
		g.watcher.Close()
	}
	g.engine.Close()
	if g.scene != nil {
		g.scene.Unload()
	}
	g.closeOutput()
}

func (g *Game) closeOutput() {
	if g.output == nil {
		return
	}
	if err := g.output.Close(); err != nil {
		slog.Warn("closing telemetry output", "error", err)
	}
}

// applyConfig pushes cfg to the engine and the collaborators that read it
// directly.
func (g *Game) applyConfig(cfg *config.Config) {
	g.engine.SetConfig(cfg)
	g.syncCollaborators(cfg)
}

func (g *Game) syncCollaborators(cfg *config.Config) {
	if g.opts.Headless {
		return
	}
	if t, ok := input.ParseTrigger(cfg.Trail.Trigger); ok {
		g.mouse.SetTrigger(t)
	}
	g.scene.Background = cfg.Derived.Background
}

func (g *Game) drainReloads() {
	if g.watcher == nil {
		return
	}
	select {
	case cfg := <-g.watcher.Updates():
		g.applyConfig(cfg)
		g.setStatus("config reloaded", false)
	default:
	}
}

func (g *Game) export() {
	cfg := g.engine.Config()
	name := fmt.Sprintf("trail-%s.png", time.Now().Format("20060102-150405"))
	path := filepath.Join(cfg.Export.Dir, name)
	if err := g.engine.Export(g.scene, 0, path); err != nil {
		g.setStatus(err.Error(), true)
		return
	}
	g.setStatus("exported "+path, false)
}

func (g *Game) saveConfig() {
	path := g.opts.ConfigPath
	if path == "" {
		path = "trail.yaml"
	}
	if err := g.engine.Config().WriteYAML(path); err != nil {
		g.setStatus(err.Error(), true)
		return
	}
	g.setStatus("config saved to "+path, false)
}

func (g *Game) setStatus(msg string, isErr bool) {
	g.status, g.statusErr = msg, isErr
	g.statusUntil = time.Now().Add(statusDuration)
	if isErr {
		slog.Warn("status", "message", msg)
	}
}
