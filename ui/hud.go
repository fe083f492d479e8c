package ui

import (
	"fmt"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gogpu/gg"

	"github.com/yaelren/3DTrail/gradient"
	"github.com/yaelren/3DTrail/telemetry"
	"github.com/yaelren/3DTrail/trail"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Stats   trail.Stats
	Mode    gradient.Mode
	Names   []string // gradient names by index
	Loading bool
	Message string // last status line, empty for none
	IsError bool
	FPS     int32
}

func hud(data any) *HUDData { return data.(*HUDData) }

func gradientName(d *HUDData, i int) string {
	if i >= 0 && i < len(d.Names) {
		return d.Names[i]
	}
	return fmt.Sprintf("#%d", i)
}

var hudSections = []SectionDescriptor{
	{
		ID:    "particles",
		Title: "Particles",
		Fields: []FieldDescriptor{
			{ID: "live", Label: "Live", Widget: WidgetText, TextGetter: func(d any) string {
				s := hud(d).Stats
				return fmt.Sprintf("%d / %d", s.Live, s.Capacity)
			}},
			{ID: "fill", Label: "Fill", Widget: WidgetBar, Getter: func(d any) float32 {
				s := hud(d).Stats
				if s.Capacity == 0 {
					return 0
				}
				return float32(s.Live) / float32(s.Capacity)
			}},
			{ID: "spawned", Label: "Spawned", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d", hud(d).Stats.Spawned)
			}},
			{ID: "dropped", Label: "Dropped", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d", hud(d).Stats.Dropped)
			}},
		},
	},
	{
		ID:    "blend",
		Title: "Gradients",
		Fields: []FieldDescriptor{
			{ID: "mode", Label: "Mode", Widget: WidgetText, TextGetter: func(d any) string {
				return hud(d).Mode.String()
			}},
			{ID: "pair", Label: "Showing", Widget: WidgetText, TextGetter: func(d any) string {
				h := hud(d)
				if h.Mode == gradient.ModeSingle {
					return gradientName(h, h.Stats.GradientA)
				}
				return gradientName(h, h.Stats.GradientA) + " / " + gradientName(h, h.Stats.GradientB)
			}},
			{ID: "mix", Label: "Mix", Widget: WidgetBar,
				Visible: func(d any) bool { return hud(d).Mode == gradient.ModeTimeCycle },
				Getter:  func(d any) float32 { return float32(hud(d).Stats.Mix) }},
			{ID: "cycles", Label: "Cycles", Widget: WidgetText, Format: "%.0f",
				Visible: func(d any) bool { return hud(d).Mode == gradient.ModeTimeCycle },
				Getter:  func(d any) float32 { return float32(hud(d).Stats.Cycles) }},
			{ID: "pools", Label: "Pools", Widget: WidgetText, Format: "%.0f",
				Getter: func(d any) float32 { return float32(hud(d).Stats.Pools) }},
		},
	},
	{
		ID:    "asset",
		Title: "Model",
		Fields: []FieldDescriptor{
			{ID: "source", Label: "Source", Widget: WidgetText, TextGetter: func(d any) string {
				h := hud(d)
				switch {
				case h.Loading:
					return "loading..."
				case !h.Stats.AssetLoaded:
					return "none"
				}
				return filepath.Base(h.Stats.AssetSource)
			}},
			{ID: "rebuilds", Label: "Rebuilds", Widget: WidgetText, Format: "%.0f",
				Getter: func(d any) float32 { return float32(hud(d).Stats.Rebuilds) }},
		},
	},
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer(), width: 220}
}

// Draw renders the stats panel in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	pad := r.Theme.Padding

	height := pad*2 + r.Theme.LineHeight + 4
	for _, sd := range hudSections {
		height += r.SectionHeight(sd, &data)
	}
	r.DrawPanel(pad, pad, h.width, height)

	x, y := pad*2, pad*2
	y = r.DrawTitle(x, y, fmt.Sprintf("Trail  %d fps", data.FPS))
	for _, sd := range hudSections {
		y = r.DrawSection(x, y, sd, &data, h.width-pad*2)
	}
}

// DrawStatus renders the status message above the control legend.
func (h *HUD) DrawStatus(screenHeight int32, data HUDData) {
	if data.Message == "" {
		return
	}
	color := h.renderer.Theme.ValueColor
	if data.IsError {
		color = h.renderer.Theme.ErrorColor
	}
	rl.DrawText(data.Message, 10, screenHeight-45, 14, color)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// DrawHelp lists every overlay key.
func (h *HUD) DrawHelp(screenWidth, screenHeight int32, overlays *OverlayRegistry, extra [][2]string) {
	r := h.renderer
	rows := overlays.All()
	width := int32(260)
	height := r.Theme.Padding*2 + r.Theme.LineHeight*int32(len(rows)+len(extra)+1) + 4
	x, y := (screenWidth-width)/2, (screenHeight-height)/2
	r.DrawPanel(x, y, width, height)

	x += r.Theme.Padding
	y = r.DrawTitle(x, y+r.Theme.Padding, "Keys")
	for _, d := range rows {
		y = r.DrawLabelValue(x, y, d.KeyLabel, d.Name)
	}
	for _, kv := range extra {
		y = r.DrawLabelValue(x, y, kv[0], kv[1])
	}
}

// PerfPanel renders per-phase tick timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	width := int32(220)
	height := r.Theme.Padding*2 + r.Theme.LineHeight*int32(len(stats.PhaseAvg)+3) + 4
	r.DrawPanel(p.x, p.y, width, height)

	x, y := p.x+r.Theme.Padding, p.y+r.Theme.Padding
	y = r.DrawTitle(x, y, "Tick Performance")
	y = r.DrawLabelValue(x, y, "Avg", stats.AvgTickDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "Max", stats.MaxTickDuration.Round(time.Microsecond).String())

	for ph, avg := range stats.PhaseAvg {
		pct := stats.PhasePct[ph]
		color := r.Theme.LabelColor
		if pct > 50 {
			color = r.Theme.ErrorColor
		} else if pct > 25 {
			color = r.Theme.WarnColor
		}
		rl.DrawText(
			fmt.Sprintf("%-8s %8s %5.1f%%", telemetry.Phase(ph), avg.Round(time.Microsecond), pct),
			x, y, r.Theme.FontSize, color,
		)
		y += r.Theme.LineHeight
	}
}

func colorFromGG(c gg.RGBA) rl.Color {
	return rl.Color{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}
}

func unit8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
