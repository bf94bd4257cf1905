package horizon

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadius is the mean Earth radius in thousands of kilometers.
const EarthRadius = 6.371

// DefaultCoefficient is the empirical refraction coefficient. Refraction is
// modeled as an inflation of the effective planetary radius
// (EarthRadius * 1.2055 ≈ 7.68), not an integrated ray-bending model. It is
// a fixed average for standard conditions; temperature inversions and
// humidity are not modeled, so results are only valid in the
// small-angle/thin-atmosphere regime.
const DefaultCoefficient = 1.2055

// ErrNegativeInput is returned when a height or distance argument is
// negative. The formulas take square roots, so negative inputs have no
// meaning in this domain.
var ErrNegativeInput = errors.New("horizon: negative input")

// Mode selects whether atmospheric refraction is applied.
type Mode int

const (
	WithoutRefraction Mode = iota
	WithRefraction
)

func (m Mode) String() string {
	if m == WithRefraction {
		return "refraction"
	}
	return "no-refraction"
}

// Model evaluates horizon distances for a fixed refraction choice.
// The zero value is a usable no-refraction model.
type Model struct {
	mode        Mode
	coefficient float64
}

// New creates a Model with the default refraction coefficient.
func New(mode Mode) Model {
	return NewWithCoefficient(mode, DefaultCoefficient)
}

// NewWithCoefficient creates a Model with a caller-supplied refraction
// coefficient. Values <= 0 fall back to the default.
func NewWithCoefficient(mode Mode, coefficient float64) Model {
	if coefficient <= 0 {
		coefficient = DefaultCoefficient
	}
	return Model{mode: mode, coefficient: coefficient}
}

// Mode returns the refraction mode the model was built with.
func (m Model) Mode() Mode {
	return m.mode
}

// Coefficient returns the refraction coefficient in effect.
func (m Model) Coefficient() float64 {
	if m.coefficient <= 0 {
		return DefaultCoefficient
	}
	return m.coefficient
}

// Radius returns the effective planetary radius in thousands of kilometers.
func (m Model) Radius() float64 {
	if m.mode == WithRefraction {
		return EarthRadius * m.Coefficient()
	}
	return EarthRadius
}

// factor is sqrt(2R), the shared term of Distance and MinVisibleHeight.
// With R in thousands of km and heights in meters, distances come out in km.
func (m Model) factor() float64 {
	return math.Sqrt(2 * m.Radius())
}

// Distance returns the maximum line-of-sight distance in kilometers between
// an observer viewHeight meters above its local ground and a target
// objectHeight meters above its own ground, derived from the tangent-line
// geometry d ≈ sqrt(2Rh) for h ≪ R. It is monotonically non-decreasing in
// both heights.
func (m Model) Distance(viewHeight, objectHeight float64) (float64, error) {
	if viewHeight < 0 {
		return 0, fmt.Errorf("%w: view height %.3f m", ErrNegativeInput, viewHeight)
	}
	if objectHeight < 0 {
		return 0, fmt.Errorf("%w: object height %.3f m", ErrNegativeInput, objectHeight)
	}
	return m.factor() * (math.Sqrt(viewHeight) + math.Sqrt(objectHeight)), nil
}

// MinVisibleHeight returns the minimum height in meters a target must rise
// above its local ground to clear the horizon at distanceKm. The boolean is
// false when no height is required: the requested distance is already inside
// the observer's own horizon radius, so ground level there is visible. That
// is an expected outcome, not an error.
//
// Whenever the boolean is true, Distance(viewHeight, height) recovers
// distanceKm to within floating-point tolerance.
func (m Model) MinVisibleHeight(viewHeight, distanceKm float64) (float64, bool, error) {
	if viewHeight < 0 {
		return 0, false, fmt.Errorf("%w: view height %.3f m", ErrNegativeInput, viewHeight)
	}
	if distanceKm < 0 {
		return 0, false, fmt.Errorf("%w: distance %.3f km", ErrNegativeInput, distanceKm)
	}
	term := distanceKm/m.factor() - math.Sqrt(viewHeight)
	if term < 0 {
		return 0, false, nil
	}
	return term * term, true, nil
}
