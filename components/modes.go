package components

import "strings"

// FloatStyle selects the float-motion rule applied to a particle.
type FloatStyle uint8

const (
	FloatOscillate FloatStyle = iota // sine/cosine drift integrated into position
	FloatRandom                      // uniform noise added to velocity
	FloatPerlin                      // smooth pseudo-noise from time and particle ID
)

var floatStyleNames = [...]string{"oscillate", "random", "perlin"}

func (s FloatStyle) String() string {
	if int(s) < len(floatStyleNames) {
		return floatStyleNames[s]
	}
	return "unknown"
}

// ParseFloatStyle maps a config name to a FloatStyle.
func ParseFloatStyle(name string) (FloatStyle, bool) {
	for i, n := range floatStyleNames {
		if strings.EqualFold(n, name) {
			return FloatStyle(i), true
		}
	}
	return FloatOscillate, false
}

// FacingMode selects how a particle's rotation is resolved each tick.
type FacingMode uint8

const (
	FacingNone FacingMode = iota
	FacingRandom
	FacingFixed
	FacingBillboard
	FacingMouse
)

var facingModeNames = [...]string{"none", "random", "fixed", "billboard", "mouse"}

func (m FacingMode) String() string {
	if int(m) < len(facingModeNames) {
		return facingModeNames[m]
	}
	return "unknown"
}

// ParseFacingMode maps a config name to a FacingMode.
func ParseFacingMode(name string) (FacingMode, bool) {
	for i, n := range facingModeNames {
		if strings.EqualFold(n, name) {
			return FacingMode(i), true
		}
	}
	return FacingNone, false
}

// DisappearMode selects how a particle leaves the scene at end of life.
// Fade and Shrink both scale linearly to zero over the exit window.
type DisappearMode uint8

const (
	DisappearFade DisappearMode = iota
	DisappearShrink
	DisappearSnap
)

var disappearModeNames = [...]string{"fade", "shrink", "snap"}

func (m DisappearMode) String() string {
	if int(m) < len(disappearModeNames) {
		return disappearModeNames[m]
	}
	return "unknown"
}

// ParseDisappearMode maps a config name to a DisappearMode.
func ParseDisappearMode(name string) (DisappearMode, bool) {
	for i, n := range disappearModeNames {
		if strings.EqualFold(n, name) {
			return DisappearMode(i), true
		}
	}
	return DisappearFade, false
}

// ScaleMode selects how a particle's initial scale is chosen at spawn.
type ScaleMode uint8

const (
	ScaleFixed  ScaleMode = iota
	ScaleRandom           // uniform in [min, max]
	ScaleSpeed            // pointer speed mapped into [min, max]
)

var scaleModeNames = [...]string{"fixed", "random", "speed"}

func (m ScaleMode) String() string {
	if int(m) < len(scaleModeNames) {
		return scaleModeNames[m]
	}
	return "unknown"
}

// ParseScaleMode maps a config name to a ScaleMode.
func ParseScaleMode(name string) (ScaleMode, bool) {
	for i, n := range scaleModeNames {
		if strings.EqualFold(n, name) {
			return ScaleMode(i), true
		}
	}
	return ScaleFixed, false
}
