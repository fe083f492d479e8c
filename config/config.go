// Package config provides configuration loading and access for the trail tool.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/yaelren/3DTrail/components"
	"github.com/yaelren/3DTrail/gradient"
	"github.com/yaelren/3DTrail/material"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable of the tool.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	Trail     TrailConfig     `yaml:"trail"`
	Float     FloatConfig     `yaml:"float"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Spin      SpinConfig      `yaml:"spin"`
	Facing    FacingConfig    `yaml:"facing"`
	Gradients GradientsConfig `yaml:"gradients"`
	Material  MaterialConfig  `yaml:"material"`
	Asset     AssetConfig     `yaml:"asset"`
	Export    ExportConfig    `yaml:"export"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	TargetFPS  int    `yaml:"target_fps"`
	Background string `yaml:"background"` // hex clear color
}

// CameraConfig places the perspective camera.
type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
	Fovy     float32    `yaml:"fovy"` // degrees
}

// TrailConfig holds spawning and lifetime parameters.
type TrailConfig struct {
	Density      float64 `yaml:"density"`       // spawns per second
	Lifespan     float64 `yaml:"lifespan"`      // seconds, copied into each particle at spawn
	ExitDuration float64 `yaml:"exit_duration"` // seconds of shrink before expiry
	Disappear    string  `yaml:"disappear"`     // fade, shrink, snap
	ScaleMode    string  `yaml:"scale_mode"`    // fixed, random, speed
	Scale        float64 `yaml:"scale"`
	ScaleMin     float64 `yaml:"scale_min"`
	ScaleMax     float64 `yaml:"scale_max"`
	Capacity     int     `yaml:"capacity"` // instance slots per pool
	Trigger      string  `yaml:"trigger"`  // move, press
}

// FloatConfig holds float-motion parameters.
type FloatConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Style     string  `yaml:"style"` // oscillate, random, perlin
	Amplitude float64 `yaml:"amplitude"`
	Speed     float64 `yaml:"speed"` // time multiplier for oscillate/perlin
}

// PhysicsConfig holds gravity, attraction, and floor bounce.
type PhysicsConfig struct {
	Gravity GravityConfig `yaml:"gravity"`
	Follow  FollowConfig  `yaml:"follow"`
	Bounce  BounceConfig  `yaml:"bounce"`
}

// GravityConfig pulls particles down.
type GravityConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Strength float64 `yaml:"strength"`
}

// FollowConfig attracts particles toward the pointer.
type FollowConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Strength float64 `yaml:"strength"`
}

// BounceConfig reflects particles off a floor.
type BounceConfig struct {
	Enabled bool    `yaml:"enabled"`
	Floor   float64 `yaml:"floor"`  // world Y of the floor
	Amount  float64 `yaml:"amount"` // restitution in [0, 1]
}

// SpinConfig sets the random angular velocity range, in degrees per second.
type SpinConfig struct {
	Speed  float64 `yaml:"speed"`  // around Z
	Tumble float64 `yaml:"tumble"` // around X and Y
}

// FacingConfig selects the rotation policy.
type FacingConfig struct {
	Mode  string     `yaml:"mode"`  // none, random, fixed, billboard, mouse
	Fixed [3]float64 `yaml:"fixed"` // degrees, used by fixed mode
}

// GradientsConfig holds the gradient set and blend mode.
type GradientsConfig struct {
	Mode        string           `yaml:"mode"` // single, random, cycle
	Active      int              `yaml:"active"`
	CycleSpeed  float64          `yaml:"cycle_speed"` // mix ratio per second
	TextureSize int              `yaml:"texture_size"`
	Sets        []GradientConfig `yaml:"sets"`
}

// GradientConfig is one gradient as written in YAML.
type GradientConfig struct {
	Name  string       `yaml:"name"`
	Shape string       `yaml:"shape"` // radial, linear
	Stops []StopConfig `yaml:"stops"`
}

// StopConfig is one color stop as written in YAML.
type StopConfig struct {
	Color    string  `yaml:"color"`
	Position float64 `yaml:"position"` // 0-100
}

// MaterialConfig holds shading parameters.
type MaterialConfig struct {
	Shader    string      `yaml:"shader"` // matcap, toon, standard
	Light     LightConfig `yaml:"light"`
	Rim       RimConfig   `yaml:"rim"`
	ToonSteps int         `yaml:"toon_steps"`
}

// LightConfig positions the matcap highlight and tints the result.
type LightConfig struct {
	X         float64 `yaml:"x"` // -1..1
	Y         float64 `yaml:"y"` // -1..1
	Intensity float64 `yaml:"intensity"`
	Color     string  `yaml:"color"`
}

// RimConfig holds the fresnel rim term.
type RimConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Color     string  `yaml:"color"`
	Intensity float64 `yaml:"intensity"`
	Power     float64 `yaml:"power"`
}

// AssetConfig names the model loaded at startup.
type AssetConfig struct {
	Default string `yaml:"default"` // file path or URL
}

// ExportConfig holds high-resolution export settings.
type ExportConfig struct {
	Scale int    `yaml:"scale"`
	Dir   string `yaml:"dir"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds
	PerfWindow  int     `yaml:"perf_window"`  // ticks
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Disappear     components.DisappearMode
	ScaleMode     components.ScaleMode
	FloatStyle    components.FloatStyle
	Facing        components.FacingMode
	BlendMode     gradient.Mode
	Shader        material.Mode
	SpawnInterval float64    // seconds between spawns, +Inf when density is 0
	FixedRadians  [3]float32 // Facing.Fixed in radians
	SpinRadians   float32    // Spin.Speed in radians/s
	TumbleRadians float32    // Spin.Tumble in radians/s
	LightColor    [3]float32
	RimColor      [3]float32
	Background    [3]float32
	Gradients     []gradient.Definition
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse is Load for an in-memory YAML document layered over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy, with derived values recomputed.
func (c *Config) Clone() *Config {
	out := *c
	out.Gradients.Sets = make([]GradientConfig, len(c.Gradients.Sets))
	for i, g := range c.Gradients.Sets {
		g.Stops = append([]StopConfig(nil), g.Stops...)
		out.Gradients.Sets[i] = g
	}
	out.Derived.Gradients = make([]gradient.Definition, len(c.Derived.Gradients))
	for i, d := range c.Derived.Gradients {
		out.Derived.Gradients[i] = d.Clone()
	}
	return &out
}

// Recompute refreshes derived values after fields were edited in place.
func (c *Config) Recompute() error {
	return c.computeDerived()
}

// computeDerived clamps ranges and calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.clamp()

	d := &c.Derived
	var ok bool
	if d.Disappear, ok = components.ParseDisappearMode(c.Trail.Disappear); !ok {
		slog.Warn("unknown disappear mode, using fade", "value", c.Trail.Disappear)
	}
	if d.ScaleMode, ok = components.ParseScaleMode(c.Trail.ScaleMode); !ok {
		slog.Warn("unknown scale mode, using fixed", "value", c.Trail.ScaleMode)
	}
	if d.FloatStyle, ok = components.ParseFloatStyle(c.Float.Style); !ok {
		slog.Warn("unknown float style, using oscillate", "value", c.Float.Style)
	}
	if d.Facing, ok = components.ParseFacingMode(c.Facing.Mode); !ok {
		slog.Warn("unknown facing mode, using none", "value", c.Facing.Mode)
	}
	if d.BlendMode, ok = gradient.ParseMode(c.Gradients.Mode); !ok {
		slog.Warn("unknown gradient mode, using single", "value", c.Gradients.Mode)
	}
	if d.Shader, ok = material.ParseMode(c.Material.Shader); !ok {
		slog.Warn("unknown shader mode, using matcap", "value", c.Material.Shader)
	}

	d.SpawnInterval = math.Inf(1)
	if c.Trail.Density > 0 {
		d.SpawnInterval = 1 / c.Trail.Density
	}
	for i, deg := range c.Facing.Fixed {
		d.FixedRadians[i] = float32(deg * math.Pi / 180)
	}
	d.SpinRadians = float32(c.Spin.Speed * math.Pi / 180)
	d.TumbleRadians = float32(c.Spin.Tumble * math.Pi / 180)

	var err error
	if d.LightColor, err = parseColor(c.Material.Light.Color); err != nil {
		return fmt.Errorf("material.light.color: %w", err)
	}
	if d.RimColor, err = parseColor(c.Material.Rim.Color); err != nil {
		return fmt.Errorf("material.rim.color: %w", err)
	}
	if d.Background, err = parseColor(c.Screen.Background); err != nil {
		return fmt.Errorf("screen.background: %w", err)
	}

	defs, err := c.Gradients.Definitions()
	if err != nil {
		return fmt.Errorf("gradients: %w", err)
	}
	d.Gradients = defs
	if c.Gradients.Active >= len(defs) {
		c.Gradients.Active = len(defs) - 1
	}
	return nil
}

// Definitions parses the YAML gradient sets.
func (g GradientsConfig) Definitions() ([]gradient.Definition, error) {
	if n := len(g.Sets); n < gradient.MinGradients || n > gradient.MaxGradients {
		return nil, fmt.Errorf("%w: %d gradients, want %d-%d",
			gradient.ErrInvalidConfig, n, gradient.MinGradients, gradient.MaxGradients)
	}
	defs := make([]gradient.Definition, len(g.Sets))
	for i, set := range g.Sets {
		shape, ok := gradient.ParseShape(set.Shape)
		if !ok && set.Shape != "" {
			slog.Warn("unknown gradient shape, using radial", "gradient", set.Name, "value", set.Shape)
		}
		def := gradient.Definition{Name: set.Name, Shape: shape, Stops: make([]gradient.Stop, 0, len(set.Stops))}
		for _, sc := range set.Stops {
			stop, err := gradient.ParseStop(sc.Color, sc.Position)
			if err != nil {
				return nil, fmt.Errorf("gradient %q: %w", set.Name, err)
			}
			def.Stops = append(def.Stops, stop)
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		defs[i] = def
	}
	return defs, nil
}

// clamp keeps values inside the ranges the engine relies on.
func (c *Config) clamp() {
	t := &c.Trail
	t.Density = math.Max(t.Density, 0)
	t.Lifespan = math.Max(t.Lifespan, 0.05)
	t.ExitDuration = math.Min(math.Max(t.ExitDuration, 0), t.Lifespan)
	if t.Capacity < 1 {
		t.Capacity = 1
	}
	if t.ScaleMin > t.ScaleMax {
		t.ScaleMin, t.ScaleMax = t.ScaleMax, t.ScaleMin
	}

	b := &c.Physics.Bounce
	b.Amount = math.Min(math.Max(b.Amount, 0), 1)

	g := &c.Gradients
	g.CycleSpeed = math.Max(g.CycleSpeed, 0)
	if g.Active < 0 {
		g.Active = 0
	}
	if g.TextureSize <= 0 {
		g.TextureSize = gradient.DefaultTextureSize
	}

	l := &c.Material.Light
	l.X = math.Min(math.Max(l.X, -1), 1)
	l.Y = math.Min(math.Max(l.Y, -1), 1)
	if c.Material.ToonSteps < 2 {
		c.Material.ToonSteps = 2
	}
	if c.Export.Scale < 1 {
		c.Export.Scale = 1
	}
}

func parseColor(hex string) ([3]float32, error) {
	if hex == "" {
		return [3]float32{1, 1, 1}, nil
	}
	col, err := colorful.Hex(hex)
	if err != nil {
		return [3]float32{}, err
	}
	return [3]float32{float32(col.R), float32(col.G), float32(col.B)}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
