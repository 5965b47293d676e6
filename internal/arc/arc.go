// Package arc computes the attack arc between a shooter and a vehicle and the
// cover a station on that vehicle provides from it.
package arc

import (
	"math"

	"github.com/OCAP2/chase/internal/geo"
	"github.com/OCAP2/chase/pkg/core"
)

// ACBonusUnbounded marks a target that cannot be hit at all.
const ACBonusUnbounded = math.MaxInt32

// AttackArc buckets an attack into one of four 90 degree arcs of the target.
// attackAngle is the bearing from attacker to target; the 180 degree offset
// turns it into the bearing from the target back to the attacker.
//
//	front [315,45)  right [45,135)  rear [135,225)  left [225,315)
func AttackArc(attackAngle, targetFacing float64) core.Arc {
	relative := core.NormalizeDegrees(attackAngle - targetFacing + 180)
	switch {
	case relative >= 315 || relative < 45:
		return core.ArcFront
	case relative < 135:
		return core.ArcRight
	case relative < 225:
		return core.ArcRear
	default:
		return core.ArcLeft
	}
}

// ACBonus maps a cover category to its armor class bonus.
// Full cover maps to ACBonusUnbounded.
func ACBonus(c core.Cover) int {
	switch c {
	case core.CoverHalf:
		return 2
	case core.CoverThreeQuarters:
		return 5
	case core.CoverFull:
		return ACBonusUnbounded
	default:
		return 0
	}
}

// Attacker is the shooter side of a cover query.
// VehicleID is set when the shooter is aboard a vehicle.
type Attacker struct {
	Position  core.Position `json:"position"`
	VehicleID string        `json:"vehicleId,omitempty"`
}

// CoverResult is the outcome of a cover query.
// Arc is empty for attacks from aboard the same vehicle.
type CoverResult struct {
	Arc          core.Arc   `json:"arc,omitempty"`
	Cover        core.Cover `json:"cover"`
	ACBonus      int        `json:"acBonus"`
	Untargetable bool       `json:"untargetable"`
	IsVisible    bool       `json:"isVisible"`
	SameVehicle  bool       `json:"sameVehicle"`
}

func fromCover(c core.Cover) CoverResult {
	if c == "" {
		c = core.CoverNone
	}
	return CoverResult{
		Cover:        c,
		ACBonus:      ACBonus(c),
		Untargetable: c == core.CoverFull,
		IsVisible:    true,
	}
}

// Cover resolves the cover of zone on target against attacker.
// Cover is a fixed property of the station; range and elevation never change it.
func Cover(attacker Attacker, target *core.Vehicle, zone core.VehicleZone) CoverResult {
	if attacker.VehicleID != "" && attacker.VehicleID == target.ID {
		r := fromCover(zone.Cover)
		r.SameVehicle = true
		return r
	}

	a := AttackArc(geo.AngleTo(attacker.Position, target.Position), target.Facing)
	if !zone.VisibleFrom(a) {
		return CoverResult{
			Arc:          a,
			Cover:        core.CoverFull,
			ACBonus:      ACBonusUnbounded,
			Untargetable: true,
			IsVisible:    false,
		}
	}

	r := fromCover(zone.Cover)
	r.Arc = a
	return r
}
