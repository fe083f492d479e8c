package trail

import (
	"fmt"

	"github.com/yaelren/3DTrail/config"
	"github.com/yaelren/3DTrail/gradient"
)

// Gradient returns a copy of gradient i.
func (e *Engine) Gradient(i int) (gradient.Definition, error) {
	if i < 0 || i >= e.gradients.Len() {
		return gradient.Definition{}, fmt.Errorf("%w: gradient index %d out of range", ErrInvalidGradient, i)
	}
	return e.gradients.At(i).Clone(), nil
}

// GradientCount returns the number of gradients.
func (e *Engine) GradientCount() int { return e.gradients.Len() }

// ActiveGradient returns the index shown in single mode.
func (e *Engine) ActiveGradient() int { return e.gradients.Active() }

// SetGradientStops replaces the stops of gradient i.
func (e *Engine) SetGradientStops(i int, stops []gradient.Stop) error {
	return e.mutateGradients(func(s *gradient.Set) error { return s.SetStops(i, stops) })
}

// SetGradientShape changes the shape of gradient i.
func (e *Engine) SetGradientShape(i int, shape gradient.Shape) error {
	return e.mutateGradients(func(s *gradient.Set) error { return s.SetShape(i, shape) })
}

// AddGradientStop appends a stop to gradient i.
func (e *Engine) AddGradientStop(i int, stop gradient.Stop) error {
	return e.mutateGradients(func(s *gradient.Set) error { return s.AddStop(i, stop) })
}

// RemoveGradientStop removes stop j of gradient i.
func (e *Engine) RemoveGradientStop(i, j int) error {
	return e.mutateGradients(func(s *gradient.Set) error { return s.RemoveStop(i, j) })
}

// AddGradient appends a gradient to the set.
func (e *Engine) AddGradient(def gradient.Definition) error {
	return e.mutateGradients(func(s *gradient.Set) error { return s.Add(def) })
}

// RemoveGradient deletes gradient i.
func (e *Engine) RemoveGradient(i int) error {
	return e.mutateGradients(func(s *gradient.Set) error { return s.Remove(i) })
}

// SetActiveGradient selects the gradient shown in single mode.
func (e *Engine) SetActiveGradient(i int) error {
	return e.mutateGradients(func(s *gradient.Set) error { return s.SetActive(i) })
}

// mutateGradients applies fn to the live set. Texture and pool changes it
// implies happen at the next tick boundary.
func (e *Engine) mutateGradients(fn func(*gradient.Set) error) error {
	if err := fn(e.gradients); err != nil {
		return err
	}
	e.storeGradients()
	e.dirty = true
	return nil
}

// storeGradients writes the live set back into the engine's config so
// Config() round-trips through YAML.
func (e *Engine) storeGradients() {
	defs := e.gradients.Definitions()
	sets := make([]config.GradientConfig, len(defs))
	derived := make([]gradient.Definition, len(defs))
	for i, d := range defs {
		gc := config.GradientConfig{Name: d.Name, Shape: d.Shape.String()}
		for _, s := range d.Stops {
			gc.Stops = append(gc.Stops, config.StopConfig{Color: s.Hex(), Position: s.Position})
		}
		sets[i] = gc
		derived[i] = d.Clone()
	}
	e.cfg.Gradients.Sets = sets
	e.cfg.Gradients.Active = e.gradients.Active()
	e.cfg.Derived.Gradients = derived
}
