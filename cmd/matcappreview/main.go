// Matcap preview tool - writes the matcap of every configured gradient as a
// PNG, or shows them live with light sliders.
//
// Usage: go run ./cmd/matcappreview -config config.yaml -out previews
//
//	go run ./cmd/matcappreview -interactive
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/yaelren/3DTrail/config"
	"github.com/yaelren/3DTrail/gradient"
)

const (
	windowWidth  = 1000
	windowHeight = 620
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outDir := flag.String("out", "matcaps", "Output directory for PNG files")
	size := flag.Int("size", 0, "Texture size (0 = use config)")
	interactive := flag.Bool("interactive", false, "Open a window with live light controls")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	texSize := cfg.Gradients.TextureSize
	if *size > 0 {
		texSize = *size
	}
	light := gradient.Light{X: cfg.Material.Light.X, Y: cfg.Material.Light.Y}

	if *interactive {
		runInteractive(cfg, light)
		return
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	for i, def := range cfg.Derived.Gradients {
		name := fmt.Sprintf("%02d-%s.png", i, sanitize(def.Name))
		path := filepath.Join(*outDir, name)
		if err := gradient.Render(def, light, texSize).SavePNG(path); err != nil {
			slog.Error("failed to write matcap", "gradient", def.Name, "error", err)
			os.Exit(1)
		}
		fmt.Printf("Matcap written to: %s (%dx%d, %s)\n", path, texSize, texSize, def.Shape)
	}
}

func runInteractive(cfg *config.Config, light gradient.Light) {
	rl.InitWindow(windowWidth, windowHeight, "Matcap Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defs := cfg.Derived.Gradients
	active := cfg.Gradients.Active
	size := cfg.Gradients.TextureSize

	var texture rl.Texture2D
	upload := func() {
		if texture.ID != 0 {
			rl.UnloadTexture(texture)
		}
		img := rl.NewImageFromImage(gradient.Generate(defs[active], light, size))
		texture = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		rl.SetTextureFilter(texture, rl.FilterBilinear)
	}
	upload()
	defer func() { rl.UnloadTexture(texture) }()

	for !rl.WindowShouldClose() {
		needsRegen := false

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(texture.Width), Height: float32(texture.Height)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)
		rl.DrawText("Matcap Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText(fmt.Sprintf("Gradient %d/%d: %s (%s)", active+1, len(defs), defs[active].Name, defs[active].Shape),
			int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 20
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Previous") && active > 0 {
			active--
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Next") && active < len(defs)-1 {
			active++
			needsRegen = true
		}
		panelY += 45

		rl.DrawText("Light X (highlight offset)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newX := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"-1", "1",
			float32(light.X), -1, 1,
		)
		if newX != float32(light.X) {
			light.X = float64(newX)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Light Y (highlight offset)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newY := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"-1", "1",
			float32(light.Y), -1, 1,
		)
		if newY != float32(light.Y) {
			light.Y = float64(newY)
			needsRegen = true
		}
		panelY += 45

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yamlText := lightYAML(light)
		for _, line := range strings.Split(yamlText, "\n") {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yamlText)
		}

		rl.EndDrawing()

		if needsRegen {
			upload()
		}
	}
}

func lightYAML(light gradient.Light) string {
	return fmt.Sprintf("material:\n  light:\n    x: %.2f\n    y: %.2f", light.X, light.Y)
}

func sanitize(name string) string {
	if name == "" {
		return "gradient"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
