// Package gradient defines the color-stop gradients that shade trail
// particles, the matcap textures generated from them, and the controller
// deciding which gradients are visible.
package gradient

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Bounds on gradient sets.
const (
	MinStops     = 2
	MaxStops     = 6
	MinGradients = 1
	MaxGradients = 5
)

// ErrInvalidConfig is returned when a mutation would leave a gradient or the
// gradient set out of bounds. The prior state is retained.
var ErrInvalidConfig = errors.New("gradient: invalid configuration")

// Shape is the interpolation shape of a gradient.
type Shape uint8

const (
	Radial Shape = iota
	Linear
)

func (s Shape) String() string {
	if s == Linear {
		return "linear"
	}
	return "radial"
}

// ParseShape maps a config name to a Shape.
func ParseShape(name string) (Shape, bool) {
	switch strings.ToLower(name) {
	case "radial":
		return Radial, true
	case "linear":
		return Linear, true
	}
	return Radial, false
}

// Stop is one color at a position in [0, 100].
type Stop struct {
	Color    colorful.Color
	Position float64
}

// ParseStop parses a hex color ("#rrggbb" or "#rgb") and position.
func ParseStop(hex string, position float64) (Stop, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Stop{}, fmt.Errorf("%w: stop color %q: %v", ErrInvalidConfig, hex, err)
	}
	return Stop{Color: c, Position: clampPosition(position)}, nil
}

// Hex returns the stop color as "#rrggbb".
func (s Stop) Hex() string { return s.Color.Clamped().Hex() }

func clampPosition(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Definition is one gradient: ordered stops plus a shape.
// Stops are kept in the order given; interpretation does not sort them.
type Definition struct {
	Name  string
	Shape Shape
	Stops []Stop
}

// Validate checks the stop count bounds.
func (d Definition) Validate() error {
	if n := len(d.Stops); n < MinStops || n > MaxStops {
		return fmt.Errorf("%w: %q has %d stops, want %d-%d", ErrInvalidConfig, d.Name, n, MinStops, MaxStops)
	}
	return nil
}

// Clone returns a deep copy.
func (d Definition) Clone() Definition {
	d.Stops = append([]Stop(nil), d.Stops...)
	return d
}

// Set is the active collection of gradients and the index being edited or
// shown in single mode.
type Set struct {
	defs   []Definition
	active int
}

// NewSet validates defs and returns a set with active index 0.
func NewSet(defs []Definition) (*Set, error) {
	if n := len(defs); n < MinGradients || n > MaxGradients {
		return nil, fmt.Errorf("%w: %d gradients, want %d-%d", ErrInvalidConfig, n, MinGradients, MaxGradients)
	}
	s := &Set{defs: make([]Definition, len(defs))}
	for i, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		s.defs[i] = d.Clone()
	}
	return s, nil
}

// Len returns the number of gradients.
func (s *Set) Len() int { return len(s.defs) }

// Active returns the active index.
func (s *Set) Active() int { return s.active }

// At returns gradient i. The returned stops must not be modified.
func (s *Set) At(i int) Definition { return s.defs[i] }

// Definitions returns the gradients in order. The slice must not be modified.
func (s *Set) Definitions() []Definition { return s.defs }

// SetActive selects the active gradient.
func (s *Set) SetActive(i int) error {
	if i < 0 || i >= len(s.defs) {
		return fmt.Errorf("%w: active index %d out of range", ErrInvalidConfig, i)
	}
	s.active = i
	return nil
}

// SetStops replaces the stops of gradient i.
func (s *Set) SetStops(i int, stops []Stop) error {
	if i < 0 || i >= len(s.defs) {
		return fmt.Errorf("%w: gradient index %d out of range", ErrInvalidConfig, i)
	}
	next := s.defs[i]
	next.Stops = append([]Stop(nil), stops...)
	if err := next.Validate(); err != nil {
		return err
	}
	s.defs[i] = next
	return nil
}

// SetShape changes the shape of gradient i.
func (s *Set) SetShape(i int, shape Shape) error {
	if i < 0 || i >= len(s.defs) {
		return fmt.Errorf("%w: gradient index %d out of range", ErrInvalidConfig, i)
	}
	s.defs[i].Shape = shape
	return nil
}

// AddStop appends a stop to gradient i.
func (s *Set) AddStop(i int, stop Stop) error {
	if i < 0 || i >= len(s.defs) {
		return fmt.Errorf("%w: gradient index %d out of range", ErrInvalidConfig, i)
	}
	stops := append(append([]Stop(nil), s.defs[i].Stops...), stop)
	return s.SetStops(i, stops)
}

// RemoveStop removes stop j from gradient i.
func (s *Set) RemoveStop(i, j int) error {
	if i < 0 || i >= len(s.defs) {
		return fmt.Errorf("%w: gradient index %d out of range", ErrInvalidConfig, i)
	}
	old := s.defs[i].Stops
	if j < 0 || j >= len(old) {
		return fmt.Errorf("%w: stop index %d out of range", ErrInvalidConfig, j)
	}
	stops := make([]Stop, 0, len(old)-1)
	stops = append(stops, old[:j]...)
	stops = append(stops, old[j+1:]...)
	return s.SetStops(i, stops)
}

// Add appends a gradient.
func (s *Set) Add(d Definition) error {
	if len(s.defs) >= MaxGradients {
		return fmt.Errorf("%w: already %d gradients", ErrInvalidConfig, MaxGradients)
	}
	if err := d.Validate(); err != nil {
		return err
	}
	s.defs = append(s.defs, d.Clone())
	return nil
}

// Remove deletes gradient i, keeping the active index in range.
func (s *Set) Remove(i int) error {
	if i < 0 || i >= len(s.defs) {
		return fmt.Errorf("%w: gradient index %d out of range", ErrInvalidConfig, i)
	}
	if len(s.defs) <= MinGradients {
		return fmt.Errorf("%w: cannot remove the last gradient", ErrInvalidConfig)
	}
	// Fresh backing array: slices returned by Definitions stay intact.
	s.defs = slices.Delete(slices.Clone(s.defs), i, i+1)
	if s.active >= len(s.defs) {
		s.active = len(s.defs) - 1
	}
	return nil
}
