package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yaelren/3DTrail/components"
	"github.com/yaelren/3DTrail/gradient"
	"github.com/yaelren/3DTrail/material"
)

func TestDefaultsLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Trail.Lifespan != 3.0 || cfg.Trail.ExitDuration != 1.0 {
		t.Errorf("trail = %+v", cfg.Trail)
	}
	if got := len(cfg.Derived.Gradients); got != 3 {
		t.Errorf("gradients = %d, want 3", got)
	}
	if math.Abs(cfg.Derived.SpawnInterval-1.0/30) > 1e-12 {
		t.Errorf("spawn interval = %v", cfg.Derived.SpawnInterval)
	}
	if cfg.Derived.Shader != material.ModeMatcap {
		t.Errorf("shader = %v", cfg.Derived.Shader)
	}
}

func TestParseOverridesOnlyPresentFields(t *testing.T) {
	cfg, err := Parse([]byte(`
trail:
  density: 10
  disappear: snap
facing:
  mode: mouse
gradients:
  mode: cycle
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Trail.Density != 10 || cfg.Derived.SpawnInterval != 0.1 {
		t.Errorf("density = %v interval = %v", cfg.Trail.Density, cfg.Derived.SpawnInterval)
	}
	if cfg.Trail.Lifespan != 3.0 {
		t.Errorf("untouched lifespan changed to %v", cfg.Trail.Lifespan)
	}
	if cfg.Derived.Disappear != components.DisappearSnap {
		t.Errorf("disappear = %v", cfg.Derived.Disappear)
	}
	if cfg.Derived.Facing != components.FacingMouse {
		t.Errorf("facing = %v", cfg.Derived.Facing)
	}
	if cfg.Derived.BlendMode != gradient.ModeTimeCycle {
		t.Errorf("blend mode = %v", cfg.Derived.BlendMode)
	}
}

func TestClamps(t *testing.T) {
	cfg, err := Parse([]byte(`
trail:
  density: -5
  lifespan: 2
  exit_duration: 9
  capacity: 0
  scale_min: 3
  scale_max: 1
physics:
  bounce:
    amount: 4
material:
  light:
    x: 7
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tr := cfg.Trail
	if tr.Density != 0 || !math.IsInf(cfg.Derived.SpawnInterval, 1) {
		t.Errorf("density %v interval %v", tr.Density, cfg.Derived.SpawnInterval)
	}
	if tr.ExitDuration != 2 {
		t.Errorf("exit duration should clamp to lifespan, got %v", tr.ExitDuration)
	}
	if tr.Capacity != 1 {
		t.Errorf("capacity = %d", tr.Capacity)
	}
	if tr.ScaleMin != 1 || tr.ScaleMax != 3 {
		t.Errorf("scale range = [%v, %v]", tr.ScaleMin, tr.ScaleMax)
	}
	if cfg.Physics.Bounce.Amount != 1 {
		t.Errorf("bounce amount = %v", cfg.Physics.Bounce.Amount)
	}
	if cfg.Material.Light.X != 1 {
		t.Errorf("light x = %v", cfg.Material.Light.X)
	}
}

func TestInvalidGradients(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"one stop", `
gradients:
  sets:
    - name: a
      stops:
        - { color: "#ffffff", position: 0 }
`},
		{"bad color", `
gradients:
  sets:
    - name: a
      stops:
        - { color: "white", position: 0 }
        - { color: "#000000", position: 100 }
`},
		{"no gradients", `
gradients:
  sets: []
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, gradient.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestActiveClampedToSet(t *testing.T) {
	cfg, err := Parse([]byte(`
gradients:
  active: 7
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gradients.Active != 2 {
		t.Errorf("active = %d, want 2", cfg.Gradients.Active)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	c := cfg.Clone()
	c.Gradients.Sets[0].Stops[0].Color = "#000000"
	c.Derived.Gradients[0].Stops[0].Position = 55
	if cfg.Gradients.Sets[0].Stops[0].Color == "#000000" {
		t.Error("clone shares yaml stops")
	}
	if cfg.Derived.Gradients[0].Stops[0].Position == 55 {
		t.Error("clone shares parsed stops")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Trail.Density = 12
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Trail.Density != 12 {
		t.Errorf("density = %v, want 12", back.Trail.Density)
	}
}

func TestWatcherPublishesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trail.yaml")
	if err := os.WriteFile(path, []byte("trail:\n  density: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("trail:\n  density: 42\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-w.Updates():
			if cfg.Trail.Density == 42 {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
