package ui

import (
	"fmt"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/yaelren/3DTrail/config"
	"github.com/yaelren/3DTrail/gradient"
	"github.com/yaelren/3DTrail/trail"
)

// Option lists shown in combo boxes, in the order their parsers accept.
var (
	disappearOptions = []string{"fade", "shrink", "snap"}
	scaleOptions     = []string{"fixed", "random", "speed"}
	triggerOptions   = []string{"move", "press"}
	floatOptions     = []string{"oscillate", "random", "perlin"}
	facingOptions    = []string{"none", "random", "fixed", "billboard", "mouse"}
	blendOptions     = []string{"single", "random", "cycle"}
	shaderOptions    = []string{"matcap", "toon", "standard"}
	shapeOptions     = []string{"radial", "linear"}
)

type tab int

const (
	tabTrail tab = iota
	tabMotion
	tabLook
	tabColors
)

var tabNames = []string{"Trail", "Motion", "Look", "Colors"}

// Actions reports what the user asked for in one frame of the panel.
type Actions struct {
	ConfigChanged bool
	Config        *config.Config // the submitted config when ConfigChanged
	ReloadAsset   bool
	Export        bool
	Reset         bool
	SaveConfig    bool

	// Err is the last rejected edit, e.g. removing the only gradient.
	Err error
}

// ControlsPanel edits the engine's settings with raygui widgets. Config
// edits go through SetConfig and take effect at the next tick; gradient
// edits use the engine's gradient API.
type ControlsPanel struct {
	renderer *Renderer
	engine   *trail.Engine
	x, y     int32
	width    int32
	height   int32
	tab      tab
	stop     int // selected stop of the active gradient
}

// NewControlsPanel creates a panel of the given width editing engine.
func NewControlsPanel(engine *trail.Engine, width int32) *ControlsPanel {
	return &ControlsPanel{renderer: NewRenderer(), engine: engine, width: width, y: 10}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Contains reports whether a screen point is over the panel, so pointer
// input there does not spawn particles.
func (c *ControlsPanel) Contains(x, y float32) bool {
	return x >= float32(c.x) && x < float32(c.x+c.width) &&
		y >= float32(c.y) && y < float32(c.y+c.height)
}

// row lays widgets out top to bottom.
type row struct {
	x, y, w float32
	label   float32
}

const rowHeight = 20

func (r *row) next() (label, widget rl.Rectangle) {
	label = rl.Rectangle{X: r.x, Y: r.y, Width: r.label - 4, Height: rowHeight}
	widget = rl.Rectangle{X: r.x + r.label, Y: r.y, Width: r.w - r.label - 48, Height: rowHeight}
	r.y += rowHeight + 4
	return label, widget
}

func (r *row) full() rl.Rectangle {
	rect := rl.Rectangle{X: r.x, Y: r.y, Width: r.w, Height: rowHeight}
	r.y += rowHeight + 4
	return rect
}

// split returns n equal rectangles on one line.
func (r *row) split(n int) []rl.Rectangle {
	const gap = 4
	w := (r.w - gap*float32(n-1)) / float32(n)
	out := make([]rl.Rectangle, n)
	for i := range out {
		out[i] = rl.Rectangle{X: r.x + float32(i)*(w+gap), Y: r.y, Width: w, Height: rowHeight}
	}
	r.y += rowHeight + 4
	return out
}

func (r *row) skip(h float32) { r.y += h }

// Draw renders the panel and applies the edits made this frame.
func (c *ControlsPanel) Draw() Actions {
	var act Actions
	t := c.renderer.Theme
	c.renderer.DrawPanel(c.x, c.y, c.width, c.height)

	pad := float32(t.Padding)
	r := &row{x: float32(c.x) + pad, y: float32(c.y) + pad, w: float32(c.width) - 2*pad, label: 96}

	for i, rect := range r.split(len(tabNames)) {
		if gui.Toggle(rect, tabNames[i], c.tab == tab(i)) {
			c.tab = tab(i)
		}
	}
	r.skip(4)

	cfg := c.engine.Config()
	gradientsEdited := false
	switch c.tab {
	case tabTrail:
		act.ConfigChanged = c.drawTrail(r, cfg)
	case tabMotion:
		act.ConfigChanged = c.drawMotion(r, cfg)
	case tabLook:
		act.ConfigChanged = c.drawLook(r, cfg)
	case tabColors:
		act.ConfigChanged, gradientsEdited, act.Err = c.drawColors(r, cfg)
	}

	r.skip(6)
	buttons := r.split(2)
	act.ReloadAsset = gui.Button(buttons[0], "Reload model")
	act.Export = gui.Button(buttons[1], "Export PNG")
	buttons = r.split(2)
	act.Reset = gui.Button(buttons[0], "Clear trail")
	act.SaveConfig = gui.Button(buttons[1], "Save config")

	c.height = int32(r.y-float32(c.y)) + t.Padding/2

	if act.ConfigChanged {
		if gradientsEdited {
			fresh := c.engine.Config()
			cfg.Gradients.Sets = fresh.Gradients.Sets
			cfg.Gradients.Active = fresh.Gradients.Active
		}
		if err := cfg.Recompute(); err != nil {
			act.ConfigChanged = false
			act.Err = err
		} else {
			c.engine.SetConfig(cfg)
			act.Config = cfg
		}
	}
	return act
}

func (c *ControlsPanel) drawTrail(r *row, cfg *config.Config) bool {
	tc := &cfg.Trail
	changed := c.slider(r, "Density", "%.0f/s", &tc.Density, 0, 120)
	changed = c.slider(r, "Lifespan", "%.1fs", &tc.Lifespan, 0.2, 10) || changed
	changed = c.slider(r, "Exit", "%.1fs", &tc.ExitDuration, 0, tc.Lifespan) || changed
	changed = c.combo(r, "Disappear", disappearOptions, &tc.Disappear) || changed
	changed = c.combo(r, "Scale mode", scaleOptions, &tc.ScaleMode) || changed
	if strings.EqualFold(tc.ScaleMode, "fixed") {
		changed = c.slider(r, "Scale", "%.2f", &tc.Scale, 0.1, 3) || changed
	} else {
		changed = c.slider(r, "Scale min", "%.2f", &tc.ScaleMin, 0.1, 3) || changed
		changed = c.slider(r, "Scale max", "%.2f", &tc.ScaleMax, 0.1, 3) || changed
	}
	changed = c.combo(r, "Spawn on", triggerOptions, &tc.Trigger) || changed
	changed = c.intSlider(r, "Capacity", &tc.Capacity, 50, 2000) || changed
	return changed
}

func (c *ControlsPanel) drawMotion(r *row, cfg *config.Config) bool {
	changed := c.checkBox(r, "Float", &cfg.Float.Enabled)
	if cfg.Float.Enabled {
		changed = c.combo(r, "Style", floatOptions, &cfg.Float.Style) || changed
		changed = c.slider(r, "Amplitude", "%.2f", &cfg.Float.Amplitude, 0, 3) || changed
		changed = c.slider(r, "Speed", "%.2f", &cfg.Float.Speed, 0, 5) || changed
	}
	ph := &cfg.Physics
	changed = c.checkBox(r, "Gravity", &ph.Gravity.Enabled) || changed
	if ph.Gravity.Enabled {
		changed = c.slider(r, "Strength", "%.3f", &ph.Gravity.Strength, 0, 0.2) || changed
	}
	changed = c.checkBox(r, "Follow pointer", &ph.Follow.Enabled) || changed
	if ph.Follow.Enabled {
		changed = c.slider(r, "Strength", "%.3f", &ph.Follow.Strength, 0, 0.1) || changed
	}
	changed = c.checkBox(r, "Bounce", &ph.Bounce.Enabled) || changed
	if ph.Bounce.Enabled {
		changed = c.slider(r, "Floor", "%.1f", &ph.Bounce.Floor, -15, 0) || changed
		changed = c.slider(r, "Amount", "%.2f", &ph.Bounce.Amount, 0, 1) || changed
	}
	changed = c.combo(r, "Facing", facingOptions, &cfg.Facing.Mode) || changed
	changed = c.slider(r, "Spin", "%.0f", &cfg.Spin.Speed, 0, 360) || changed
	changed = c.slider(r, "Tumble", "%.0f", &cfg.Spin.Tumble, 0, 360) || changed
	return changed
}

func (c *ControlsPanel) drawLook(r *row, cfg *config.Config) bool {
	m := &cfg.Material
	changed := c.combo(r, "Shader", shaderOptions, &m.Shader)
	if strings.EqualFold(m.Shader, "toon") {
		changed = c.intSlider(r, "Toon steps", &m.ToonSteps, 2, 8) || changed
	}
	changed = c.slider(r, "Light X", "%.2f", &m.Light.X, -1, 1) || changed
	changed = c.slider(r, "Light Y", "%.2f", &m.Light.Y, -1, 1) || changed
	changed = c.slider(r, "Intensity", "%.2f", &m.Light.Intensity, 0, 3) || changed
	changed = c.checkBox(r, "Rim light", &m.Rim.Enabled) || changed
	if m.Rim.Enabled {
		changed = c.slider(r, "Rim amount", "%.2f", &m.Rim.Intensity, 0, 2) || changed
		changed = c.slider(r, "Rim power", "%.1f", &m.Rim.Power, 0.5, 8) || changed
	}
	changed = c.intSlider(r, "Export x", &cfg.Export.Scale, 1, 4) || changed
	return changed
}

// drawColors edits the gradient set. It reports config edits and gradient
// edits separately since the latter are already applied to the engine.
func (c *ControlsPanel) drawColors(r *row, cfg *config.Config) (changed, edited bool, err error) {
	g := &cfg.Gradients
	changed = c.combo(r, "Mode", blendOptions, &g.Mode)
	if strings.EqualFold(g.Mode, "cycle") {
		changed = c.slider(r, "Cycle speed", "%.2f", &g.CycleSpeed, 0, 2) || changed
	}

	e := c.engine
	active := e.ActiveGradient()
	def, gerr := e.Gradient(active)
	if gerr != nil {
		return changed, false, gerr
	}

	// Gradient selector.
	nav := r.split(3)
	if gui.Button(nav[0], "<") && active > 0 {
		err = e.SetActiveGradient(active - 1)
		edited, c.stop = true, 0
	}
	c.label(nav[1], fmt.Sprintf("%d/%d %s", active+1, e.GradientCount(), def.Name))
	if gui.Button(nav[2], ">") && active < e.GradientCount()-1 {
		err = e.SetActiveGradient(active + 1)
		edited, c.stop = true, 0
	}
	if edited {
		return changed, edited, err
	}

	strip := r.full()
	r.skip(8)
	c.renderer.DrawGradientStrip(int32(strip.X), int32(strip.Y), int32(strip.Width), int32(strip.Height), def)

	shape := def.Shape.String()
	if c.combo(r, "Shape", shapeOptions, &shape) {
		s, _ := gradient.ParseShape(shape)
		err = e.SetGradientShape(active, s)
		edited = true
	}

	// Stop selector and editor.
	if c.stop >= len(def.Stops) {
		c.stop = len(def.Stops) - 1
	}
	nav = r.split(3)
	if gui.Button(nav[0], "<") && c.stop > 0 {
		c.stop--
	}
	c.label(nav[1], fmt.Sprintf("stop %d/%d", c.stop+1, len(def.Stops)))
	if gui.Button(nav[2], ">") && c.stop < len(def.Stops)-1 {
		c.stop++
	}

	st := def.Stops[c.stop]
	lbl, _ := r.next()
	c.renderer.DrawColorSwatch(int32(lbl.X), int32(lbl.Y)+4, st.Hex(), rl.Color{R: unit8(st.Color.R), G: unit8(st.Color.G), B: unit8(st.Color.B), A: 255})
	h, s, v := st.Color.Hsv()
	pos := st.Position
	stopChanged := c.slider(r, "Position", "%.0f", &pos, 0, 100)
	stopChanged = c.slider(r, "Hue", "%.0f", &h, 0, 360) || stopChanged
	stopChanged = c.slider(r, "Saturation", "%.2f", &s, 0, 1) || stopChanged
	stopChanged = c.slider(r, "Value", "%.2f", &v, 0, 1) || stopChanged
	if stopChanged {
		stops := append([]gradient.Stop(nil), def.Stops...)
		stops[c.stop] = gradient.Stop{Color: colorful.Hsv(h, s, v), Position: pos}
		err = e.SetGradientStops(active, stops)
		edited = true
	}

	btn := r.split(2)
	if gui.Button(btn[0], "+ stop") {
		err = e.AddGradientStop(active, midStop(def.Stops, c.stop))
		if err == nil {
			c.stop = len(def.Stops)
		}
		edited = true
	}
	if gui.Button(btn[1], "- stop") {
		err = e.RemoveGradientStop(active, c.stop)
		edited = true
	}
	btn = r.split(2)
	if gui.Button(btn[0], "+ gradient") {
		dup := def.Clone()
		dup.Name = fmt.Sprintf("%s-%d", def.Name, e.GradientCount()+1)
		if err = e.AddGradient(dup); err == nil {
			err = e.SetActiveGradient(e.GradientCount() - 1)
			c.stop = 0
		}
		edited = true
	}
	if gui.Button(btn[1], "- gradient") {
		err = e.RemoveGradient(active)
		c.stop = 0
		edited = true
	}
	return changed, edited, err
}

// midStop returns a stop halfway between stop i and its neighbor, colored
// as the gradient already is there.
func midStop(stops []gradient.Stop, i int) gradient.Stop {
	j := i + 1
	if j >= len(stops) {
		j = i - 1
	}
	pos := stops[i].Position
	if j >= 0 {
		pos = (stops[i].Position + stops[j].Position) / 2
	}
	c := gradient.ColorAt(stops, pos)
	return gradient.Stop{Color: colorful.Color{R: c.R, G: c.G, B: c.B}, Position: pos}
}

func (c *ControlsPanel) slider(r *row, label, format string, v *float64, lo, hi float64) bool {
	lbl, rect := r.next()
	c.label(lbl, label)
	old := float32(*v)
	nv := gui.SliderBar(rect, "", fmt.Sprintf(format, *v), old, float32(lo), float32(hi))
	if nv == old {
		return false
	}
	*v = float64(nv)
	return true
}

func (c *ControlsPanel) intSlider(r *row, label string, v *int, lo, hi int) bool {
	f := float64(*v)
	if !c.slider(r, label, "%.0f", &f, float64(lo), float64(hi)) {
		return false
	}
	n := int(f + 0.5)
	if n == *v {
		return false
	}
	*v = n
	return true
}

func (c *ControlsPanel) checkBox(r *row, label string, v *bool) bool {
	rect := r.full()
	rect.Width, rect.Height = 16, 16
	nv := gui.CheckBox(rect, label, *v)
	if nv == *v {
		return false
	}
	*v = nv
	return true
}

func (c *ControlsPanel) combo(r *row, label string, options []string, current *string) bool {
	lbl, rect := r.next()
	c.label(lbl, label)
	idx := optionIndex(options, *current)
	n := int(gui.ComboBox(rect, strings.Join(options, ";"), int32(idx)))
	if n == idx || n < 0 || n >= len(options) {
		return false
	}
	*current = options[n]
	return true
}

func (c *ControlsPanel) label(rect rl.Rectangle, text string) {
	t := c.renderer.Theme
	rl.DrawText(text, int32(rect.X), int32(rect.Y)+(rowHeight-t.FontSize)/2, t.FontSize, t.LabelColor)
}

func optionIndex(options []string, name string) int {
	for i, o := range options {
		if strings.EqualFold(o, name) {
			return i
		}
	}
	return 0
}
