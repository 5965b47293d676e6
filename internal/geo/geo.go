package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/OCAP2/chase/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Vector math runs on simplefeatures XY values so persisted points (WKB) and
// in-engine arithmetic share one representation.
// Angles follow the map convention: 0 is north (-Y), clockwise positive.

// ErrInvalidBounds is returned when a bounds rectangle has min greater than max
var ErrInvalidBounds = errors.New("invalid bounds: min exceeds max")

// ErrInvalidCoordinates is returned when a position cannot be stored as a point.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

func posXY(p core.Position) geom.XY {
	return geom.XY{X: p.X, Y: p.Y}
}

func vecXY(v core.Vector) geom.XY {
	return geom.XY{X: v.X, Y: v.Y}
}

func toVector(xy geom.XY) core.Vector {
	return core.Vector{X: xy.X, Y: xy.Y}
}

// Distance returns the straight-line distance between two positions in feet.
func Distance(a, b core.Position) float64 {
	return posXY(b).Sub(posXY(a)).Length()
}

// AngleTo returns the bearing from one position to another in degrees,
// computed as atan2(dx, -dy) and normalized to [0, 360).
func AngleTo(from, to core.Position) float64 {
	d := posXY(to).Sub(posXY(from))
	deg := math.Atan2(d.X, -d.Y) * 180 / math.Pi
	return core.NormalizeDegrees(deg)
}

// Magnitude returns the length of v.
func Magnitude(v core.Vector) float64 {
	return vecXY(v).Length()
}

// Scale multiplies v by factor.
func Scale(v core.Vector, factor float64) core.Vector {
	return toVector(vecXY(v).Scale(factor))
}

// ScaleTo returns v with the same direction and the given length.
// A zero vector stays zero.
func ScaleTo(v core.Vector, length float64) core.Vector {
	m := Magnitude(v)
	if m == 0 {
		return core.Vector{}
	}
	return Scale(v, length/m)
}

// FacingUnit returns the unit vector pointing along a facing.
func FacingUnit(facing float64) core.Vector {
	rad := core.NormalizeDegrees(facing) * math.Pi / 180
	return core.Vector{X: math.Sin(rad), Y: -math.Cos(rad)}
}

// Project returns the component of v along unit. unit must have length 1.
func Project(v, unit core.Vector) core.Vector {
	u := vecXY(unit)
	return toVector(u.Scale(vecXY(v).Dot(u)))
}

// ToPoint converts a position into a simplefeatures point for storage.
// A non-finite coordinate yields an empty point and ErrInvalidCoordinates.
func ToPoint(p core.Position) (geom.Point, error) {
	pt, err := posXY(p).AsPoint()
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY), fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return pt, nil
}

// FromPoint converts a stored point back into a position.
// Returns false for an empty point.
func FromPoint(pt geom.Point) (core.Position, bool) {
	xy, ok := pt.XY()
	if !ok {
		return core.Position{}, false
	}
	return core.Position{X: xy.X, Y: xy.Y}, true
}
