package game

import rl "github.com/gen2brain/raylib-go/raylib"

// orbitSpeed is radians of camera orbit per pixel of right-drag.
const orbitSpeed = 0.005

// handleInput processes keyboard input, dropped files and camera controls.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.engine.Reset()
	}
	if rl.IsKeyPressed(rl.KeyE) {
		g.exportRequested = true
	}
	if rl.IsKeyPressed(rl.KeyS) && (rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)) {
		g.saveConfig()
	}
	g.overlays.HandleKeys()

	g.handleDroppedFiles()
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.camera.Resize(w, h)
	g.layoutPanels()
}

// layoutPanels anchors the control panel right and the perf panel below
// the HUD.
func (g *Game) layoutPanels() {
	g.controls.SetPosition(int32(g.screenWidth)-310, 10)
	g.perf.SetPosition(10, 240)
}

// handleDroppedFiles loads the first model dropped on the window.
func (g *Game) handleDroppedFiles() {
	if !rl.IsFileDropped() {
		return
	}
	files := rl.LoadDroppedFiles()
	defer rl.UnloadDroppedFiles()
	if len(files) == 0 {
		return
	}
	if err := g.engine.RequestAsset(files[0], true); err != nil {
		g.setStatus(err.Error(), true)
		return
	}
	g.setStatus("loading "+files[0], false)
}

// handleCameraInput orbits on right-drag and dollies on the wheel.
func (g *Game) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Orbit(-d.X*orbitSpeed, d.Y*orbitSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.Dolly(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
