// pkg/core/types.go
package core

import "math"

// Position is a point on the encounter map in feet.
// The map uses screen orientation: +X is east and +Y is south, so north is -Y.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vector is a displacement in feet, same orientation as Position.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the position displaced by v.
func (p Position) Add(v Vector) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the vector pointing from o to p.
func (p Position) Sub(o Position) Vector {
	return Vector{X: p.X - o.X, Y: p.Y - o.Y}
}

// IsZero reports whether the vector has no length.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Size is the extent of an axis-aligned rectangle.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Phase is the encounter phase reported by the turn tracker.
type Phase string

const (
	PhaseSetup  Phase = "setup"
	PhaseCombat Phase = "combat"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p == PhaseSetup || p == PhaseCombat
}

// NormalizeDegrees maps any angle into [0, 360).
// NaN and infinities map to 0.
func NormalizeDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -0 and tiny negatives rounding up to 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}
