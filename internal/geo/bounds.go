package geo

import (
	"math"

	"github.com/OCAP2/chase/pkg/core"
)

// Bounds is the rectangle entities are kept inside, usually derived from the
// background image of the encounter map.
type Bounds struct {
	MinX float64 `json:"minX" mapstructure:"minX"`
	MinY float64 `json:"minY" mapstructure:"minY"`
	MaxX float64 `json:"maxX" mapstructure:"maxX"`
	MaxY float64 `json:"maxY" mapstructure:"maxY"`
}

// NewBounds validates and returns a bounds rectangle.
func NewBounds(minX, minY, maxX, maxY float64) (Bounds, error) {
	if minX > maxX || minY > maxY {
		return Bounds{}, ErrInvalidBounds
	}
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, nil
}

// BoundsFromImage derives bounds from an image placed with its top-left
// corner at origin and the given size in feet.
func BoundsFromImage(origin core.Position, width, height float64) (Bounds, error) {
	return NewBounds(origin.X, origin.Y, origin.X+width, origin.Y+height)
}

// Contains reports whether p lies inside the bounds, edges included.
func (b Bounds) Contains(p core.Position) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Clamp moves p to the nearest point inside the bounds, one axis at a time.
func (b Bounds) Clamp(p core.Position) core.Position {
	return core.Position{
		X: math.Min(math.Max(p.X, b.MinX), b.MaxX),
		Y: math.Min(math.Max(p.Y, b.MinY), b.MaxY),
	}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Position core.Position
	Size     core.Size
}

// Contains reports whether p lies inside the rectangle, edges included.
// Rectangles with a negative size contain nothing.
func (r Rect) Contains(p core.Position) bool {
	if r.Size.Width < 0 || r.Size.Height < 0 {
		return false
	}
	return p.X >= r.Position.X && p.X <= r.Position.X+r.Size.Width &&
		p.Y >= r.Position.Y && p.Y <= r.Position.Y+r.Size.Height
}
