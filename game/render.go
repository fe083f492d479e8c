package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/yaelren/3DTrail/ui"
)

const controlsLegend = "Move: Draw | Right-drag: Orbit | Wheel: Zoom | Drop model: Load | SPACE: Pause | C: Clear | E: Export | F1: Help"

// Draw renders one frame in graphical mode.
func (g *Game) Draw() {
	w, h := int32(g.screenWidth), int32(g.screenHeight)

	rl.BeginDrawing()
	g.scene.Draw(w, h)
	g.drawUI(w, h)
	rl.EndDrawing()
}

func (g *Game) drawUI(w, h int32) {
	stats := g.engine.Stats()
	data := ui.HUDData{
		Stats:   stats,
		Mode:    g.engine.Config().Derived.BlendMode,
		Names:   g.gradientNames(),
		Loading: g.engine.Loading(),
		FPS:     rl.GetFPS(),
	}
	if time.Now().Before(g.statusUntil) {
		data.Message, data.IsError = g.status, g.statusErr
	}
	if g.paused {
		data.Message, data.IsError = "PAUSED", false
	}

	if g.overlays.IsEnabled(ui.OverlayHUD) {
		g.hud.Draw(data)
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perf.Draw(g.engine.Perf())
	}
	if g.overlays.IsEnabled(ui.OverlayControls) {
		g.handleActions(g.controls.Draw())
	}
	if g.overlays.IsEnabled(ui.OverlayHelp) {
		g.hud.DrawHelp(w, h, g.overlays, [][2]string{
			{"Space", "Pause"},
			{"C", "Clear trail"},
			{"E", "Export PNG"},
			{"Ctrl+S", "Save config"},
			{"Home", "Reset camera"},
		})
	}

	g.hud.DrawStatus(h, data)
	g.hud.DrawControls(h, controlsLegend)
}

// handleActions applies what the control panel asked for this frame.
func (g *Game) handleActions(act ui.Actions) {
	if act.Err != nil {
		g.setStatus(act.Err.Error(), true)
	}
	if act.ConfigChanged {
		g.syncCollaborators(act.Config)
	}
	if act.ReloadAsset {
		src := g.opts.Asset
		if src == "" {
			src = g.engine.Config().Asset.Default
		}
		if err := g.engine.RequestAsset(src, true); err != nil {
			g.setStatus(err.Error(), true)
		}
	}
	if act.Export {
		g.exportRequested = true
	}
	if act.Reset {
		g.engine.Reset()
	}
	if act.SaveConfig {
		g.saveConfig()
	}
}

func (g *Game) gradientNames() []string {
	names := make([]string, g.engine.GradientCount())
	for i := range names {
		if def, err := g.engine.Gradient(i); err == nil {
			names[i] = def.Name
		}
	}
	return names
}
