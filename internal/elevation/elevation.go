// Package elevation resolves ground height from overlapping zones and the
// attack and range modifiers an elevation difference grants.
//
// Elevation only ever changes attack and range numbers. It never upgrades a
// target's cover category.
package elevation

import (
	"github.com/OCAP2/chase/internal/geo"
	"github.com/OCAP2/chase/pkg/core"
)

const (
	// AdvantageStep is the height difference, in feet, that grants the attack modifier.
	AdvantageStep = 10
	// AttackBonus is applied when firing down from AdvantageStep or more.
	AttackBonus = 2
	// rangeBonusPercent is the range gained per AdvantageStep of height.
	rangeBonusPercent = 10
)

// At returns the elevation at position: the highest zone containing it,
// or 0 when no zone does.
func At(position core.Position, zones []core.ElevationZone) int {
	best := 0
	found := false
	for _, z := range zones {
		r := geo.Rect{Position: z.Position, Size: z.Size}
		if !r.Contains(position) {
			continue
		}
		if !found || z.Elevation > best {
			best = z.Elevation
			found = true
		}
	}
	return best
}

// AttackModifier returns +2 when the attacker is at least 10ft above the
// target, -2 when at least 10ft below, and 0 otherwise.
// diff is attacker elevation minus target elevation.
func AttackModifier(diff int) int {
	switch {
	case diff >= AdvantageStep:
		return AttackBonus
	case diff <= -AdvantageStep:
		return -AttackBonus
	default:
		return 0
	}
}

// ExtendedRange adds 10% of baseRange per full 10ft the attacker stands above
// the target. Melee (baseRange 0) and level or upward shots are unchanged.
func ExtendedRange(baseRange, diff int) int {
	if baseRange <= 0 || diff <= 0 {
		return baseRange
	}
	steps := diff / AdvantageStep
	// integer form of floor(baseRange * 0.1 * steps), exact for all inputs
	return baseRange + baseRange*steps*rangeBonusPercent/100
}

// Effects is the combined elevation outcome for one attack.
type Effects struct {
	AttackerElevation int `json:"attackerElevation"`
	TargetElevation   int `json:"targetElevation"`
	Diff              int `json:"diff"`
	AttackModifier    int `json:"attackModifier"`
	ExtendedRange     int `json:"extendedRange"`
}

// Resolve computes the elevation effects between two positions for a weapon
// with the given base range.
func Resolve(attacker, target core.Position, zones []core.ElevationZone, weaponRange int) Effects {
	ae := At(attacker, zones)
	te := At(target, zones)
	diff := ae - te
	return Effects{
		AttackerElevation: ae,
		TargetElevation:   te,
		Diff:              diff,
		AttackModifier:    AttackModifier(diff),
		ExtendedRange:     ExtendedRange(weaponRange, diff),
	}
}
