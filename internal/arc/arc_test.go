package arc

import (
	"testing"

	"github.com/OCAP2/chase/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestAttackArc_Buckets(t *testing.T) {
	// relative = attackAngle - facing + 180, so with facing 0 an attack angle
	// of 180 gives relative 0.
	tests := []struct {
		attackAngle float64
		facing      float64
		want        core.Arc
	}{
		{180, 0, core.ArcFront},
		{135, 0, core.ArcFront},  // relative 315
		{224.9, 0, core.ArcFront}, // relative 44.9
		{225, 0, core.ArcRight},  // relative 45
		{314.9, 0, core.ArcRight},
		{315, 0, core.ArcRear}, // relative 135
		{0, 0, core.ArcRear},   // relative 180
		{44.9, 0, core.ArcRear},
		{45, 0, core.ArcLeft}, // relative 225
		{134.9, 0, core.ArcLeft},
		{270, 90, core.ArcFront},
		{-270, 270, core.ArcFront},
		{720, 0, core.ArcRear},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AttackArc(tt.attackAngle, tt.facing), "angle %v facing %v", tt.attackAngle, tt.facing)
	}
}

func TestAttackArc_PartitionsCircle(t *testing.T) {
	counts := map[core.Arc]int{}
	for tenth := 0; tenth < 3600; tenth++ {
		a := AttackArc(float64(tenth)/10, 0)
		counts[a]++
	}
	assert.Len(t, counts, 4)
	for arc, n := range counts {
		assert.Equal(t, 900, n, "arc %s should span exactly 90 degrees", arc)
	}
}

func TestCover_AttackerNorthOfNorthFacingVehicle(t *testing.T) {
	// (0,-100) is north of (0,0) on a Y-down map: the shooter is ahead of the vehicle.
	target := &core.Vehicle{ID: "rig", Position: core.Position{}, Facing: 0}
	zone := core.VehicleZone{ID: "driver", Cover: core.CoverHalf, VisibleFromArcs: []core.Arc{core.ArcFront, core.ArcRear}}

	r := Cover(Attacker{Position: core.Position{X: 0, Y: -100}}, target, zone)
	assert.Equal(t, core.ArcFront, r.Arc)

	r = Cover(Attacker{Position: core.Position{X: 0, Y: 100}}, target, zone)
	assert.Equal(t, core.ArcRear, r.Arc)
}

func TestCover_SideArcs(t *testing.T) {
	target := &core.Vehicle{ID: "rig", Facing: 0}
	zone := core.VehicleZone{Cover: core.CoverNone, VisibleFromArcs: []core.Arc{core.ArcLeft, core.ArcRight}}

	assert.Equal(t, core.ArcRight, Cover(Attacker{Position: core.Position{X: 100}}, target, zone).Arc)
	assert.Equal(t, core.ArcLeft, Cover(Attacker{Position: core.Position{X: -100}}, target, zone).Arc)
}

func TestCover_NotVisibleFromArcIsFullCover(t *testing.T) {
	target := &core.Vehicle{ID: "rig", Facing: 0}
	zone := core.VehicleZone{ID: "gunner", Cover: core.CoverNone, VisibleFromArcs: []core.Arc{core.ArcRear}}

	r := Cover(Attacker{Position: core.Position{X: 0, Y: -50}}, target, zone)
	assert.Equal(t, CoverResult{
		Arc:          core.ArcFront,
		Cover:        core.CoverFull,
		ACBonus:      ACBonusUnbounded,
		Untargetable: true,
		IsVisible:    false,
	}, r)
}

func TestCover_IntrinsicCoverUnchanged(t *testing.T) {
	target := &core.Vehicle{ID: "rig", Facing: 90}
	allArcs := []core.Arc{core.ArcFront, core.ArcRight, core.ArcRear, core.ArcLeft}

	tests := []struct {
		cover        core.Cover
		bonus        int
		untargetable bool
	}{
		{core.CoverNone, 0, false},
		{core.CoverHalf, 2, false},
		{core.CoverThreeQuarters, 5, false},
		{core.CoverFull, ACBonusUnbounded, true},
	}
	for _, tt := range tests {
		zone := core.VehicleZone{Cover: tt.cover, VisibleFromArcs: allArcs}
		// near and far shooters get the same cover
		for _, x := range []float64{10, 10000} {
			r := Cover(Attacker{Position: core.Position{X: x}}, target, zone)
			assert.Equal(t, tt.cover, r.Cover)
			assert.Equal(t, tt.bonus, r.ACBonus)
			assert.Equal(t, tt.untargetable, r.Untargetable)
			assert.True(t, r.IsVisible)
		}
	}
}

func TestCover_SameVehicleBypassesArc(t *testing.T) {
	target := &core.Vehicle{ID: "rig", Facing: 0}
	// the station is invisible from every arc, but a crewmate aboard still sees it
	zone := core.VehicleZone{Cover: core.CoverThreeQuarters}

	r := Cover(Attacker{Position: core.Position{X: 0, Y: -5}, VehicleID: "rig"}, target, zone)
	assert.True(t, r.SameVehicle)
	assert.True(t, r.IsVisible)
	assert.Equal(t, core.Arc(""), r.Arc)
	assert.Equal(t, core.CoverThreeQuarters, r.Cover)
	assert.Equal(t, 5, r.ACBonus)
}

func TestACBonus_UnknownIsZero(t *testing.T) {
	assert.Equal(t, 0, ACBonus(""))
	assert.Equal(t, 0, ACBonus("heavy"))
}
