// Package material describes the shading pipeline applied to instance pools.
//
// A Spec is built once per pool from configuration. Optional stages (rim
// light, toon posterization, dual-texture blend) are selected at build time;
// per-tick values travel separately as Uniforms.
package material

import (
	"image/color"
	"strings"
)

// Mode selects the base shading model.
type Mode uint8

const (
	ModeMatcap   Mode = iota // procedural gradient matcap
	ModeToon                 // matcap with posterized steps
	ModeStandard             // asset's own base material, no gradient
)

var modeNames = [...]string{"matcap", "toon", "standard"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode maps a config name to a Mode.
func ParseMode(name string) (Mode, bool) {
	for i, n := range modeNames {
		if strings.EqualFold(n, name) {
			return Mode(i), true
		}
	}
	return ModeMatcap, false
}

// Stage is a named extension point of the shading pipeline.
type Stage uint8

const (
	StageRim   Stage = 1 << iota // fresnel rim term
	StageToon                    // posterize lighting into steps
	StageBlend                   // cross-fade between two gradient textures
)

// Stages is a set of enabled stages.
type Stages uint8

// Has reports whether s is enabled.
func (ss Stages) Has(s Stage) bool { return ss&Stages(s) != 0 }

// With returns the set with s enabled.
func (ss Stages) With(s Stage) Stages { return ss | Stages(s) }

// Base is the shading description that ships with a loaded asset.
type Base struct {
	Name  string
	Color color.RGBA
}

// Spec is the build-time description of a pool's material.
type Spec struct {
	Mode   Mode
	Stages Stages
	Base   Base
	// Gradient is the texture slot sampled by single-texture pools.
	Gradient int
}

// Options are the build-time switches read from configuration.
type Options struct {
	Mode  Mode
	Rim   bool
	Blend bool
}

// Build composes a Spec from options. The standard mode never samples a
// gradient, so toon and blend stages are dropped for it.
func Build(opts Options, base Base, gradient int) Spec {
	spec := Spec{Mode: opts.Mode, Base: base, Gradient: gradient}
	if opts.Rim {
		spec.Stages = spec.Stages.With(StageRim)
	}
	if opts.Mode == ModeStandard {
		return spec
	}
	if opts.Mode == ModeToon {
		spec.Stages = spec.Stages.With(StageToon)
	}
	if opts.Blend {
		spec.Stages = spec.Stages.With(StageBlend)
	}
	return spec
}

// Uniforms are the per-tick shading values shared by a pool's material.
type Uniforms struct {
	TextureA int     // gradient slot bound to the primary sampler
	TextureB int     // gradient slot bound to the secondary sampler
	Mix      float32 // eased blend weight of TextureB

	LightColor     [3]float32
	LightIntensity float32

	RimColor     [3]float32
	RimIntensity float32
	RimPower     float32

	ToonSteps float32
}
