package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yaelren/3DTrail/config"
)

func newHeadlessGame(t *testing.T, configPath string, watch bool) *Game {
	t.Helper()
	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Asset.Default = ""
	g, err := NewGame(Options{
		Config:     cfg,
		ConfigPath: configPath,
		Seed:       1,
		Headless:   true,
		Watch:      watch,
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestHeadlessWatchAppliesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.yaml")
	if err := os.WriteFile(path, []byte("trail:\n  density: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	g := newHeadlessGame(t, path, true)
	if g.watcher == nil {
		t.Fatal("headless game with -watch should start a watcher")
	}

	if err := os.WriteFile(path, []byte("trail:\n  density: 42\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		g.UpdateHeadless()
		if got := g.Engine().Config().Trail.Density; got == 42 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("density = %v after reload, want 42", g.Engine().Config().Trail.Density)
}

func TestHeadlessWithoutWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.yaml")
	if err := os.WriteFile(path, []byte("trail:\n  density: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	g := newHeadlessGame(t, path, false)
	if g.watcher != nil {
		t.Error("watcher started without -watch")
	}
	g.UpdateHeadless()
	if g.Tick() != 1 {
		t.Errorf("tick = %d, want 1", g.Tick())
	}
}
