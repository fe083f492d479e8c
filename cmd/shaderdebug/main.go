// Shader debug tool - prints or writes the composed trail shaders for a
// config, optionally compiling them in a hidden window.
//
// Usage: go run ./cmd/shaderdebug -config config.yaml -shader toon -rim on -out shaders
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/yaelren/3DTrail/config"
	"github.com/yaelren/3DTrail/gradient"
	"github.com/yaelren/3DTrail/material"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	shaderName := flag.String("shader", "", "Shader mode override: matcap, toon, standard")
	rim := flag.String("rim", "", "Rim override: on, off")
	blend := flag.String("blend", "", "Blend override: on, off (default: on in cycle mode)")
	outDir := flag.String("out", "", "Write .vs/.fs files here instead of printing")
	compile := flag.Bool("compile", false, "Compile the program in a hidden window")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	opts := material.Options{
		Mode:  cfg.Derived.Shader,
		Rim:   cfg.Material.Rim.Enabled,
		Blend: cfg.Derived.BlendMode == gradient.ModeTimeCycle,
	}
	if *shaderName != "" {
		mode, ok := material.ParseMode(*shaderName)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown shader mode: %s\n", *shaderName)
			os.Exit(1)
		}
		opts.Mode = mode
	}
	opts.Rim = override(*rim, opts.Rim)
	opts.Blend = override(*blend, opts.Blend)

	spec := material.Build(opts, material.Base{Name: "debug"}, 0)
	vs, fs := material.Compose(spec)

	if *outDir == "" {
		fmt.Printf("// mode=%s uniforms=%s\n", spec.Mode, strings.Join(material.UniformNames(spec), ","))
		fmt.Println("// ---- vertex ----")
		fmt.Print(vs)
		fmt.Println("// ---- fragment ----")
		fmt.Print(fs)
	} else {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
			os.Exit(1)
		}
		base := filepath.Join(*outDir, "trail_"+spec.Mode.String())
		for ext, src := range map[string]string{".vs": vs, ".fs": fs} {
			if err := os.WriteFile(base+ext, []byte(src), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write shader: %v\n", err)
				os.Exit(1)
			}
		}
		fmt.Printf("Shaders written to: %s.{vs,fs}\n", base)
	}

	if *compile {
		rl.SetConfigFlags(rl.FlagWindowHidden)
		rl.InitWindow(64, 64, "Shader Debug")
		defer rl.CloseWindow()

		shader := rl.LoadShaderFromMemory(vs, fs)
		if shader.ID == 0 || shader.ID == rl.GetShaderIdDefault() {
			fmt.Fprintf(os.Stderr, "Failed to compile %s shader\n", spec.Mode)
			os.Exit(1)
		}
		defer rl.UnloadShader(shader)
		for _, name := range material.UniformNames(spec) {
			fmt.Printf("uniform %-16s loc=%d\n", name, rl.GetShaderLocation(shader, name))
		}
		fmt.Printf("Shader compiled: %s (id %d)\n", spec.Mode, shader.ID)
	}
}

func override(flagValue string, current bool) bool {
	switch strings.ToLower(flagValue) {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}
	return current
}
