package elevation

import (
	"testing"

	"github.com/OCAP2/chase/pkg/core"
	"github.com/stretchr/testify/assert"
)

func zone(id string, x, y, w, h float64, elev int) core.ElevationZone {
	return core.ElevationZone{
		ID:        id,
		Position:  core.Position{X: x, Y: y},
		Size:      core.Size{Width: w, Height: h},
		Elevation: elev,
	}
}

func TestAt(t *testing.T) {
	zones := []core.ElevationZone{
		zone("mesa", 0, 0, 100, 100, 20),
		zone("tower", 40, 40, 10, 10, 60),
		zone("pit", 200, 0, 50, 50, -15),
	}

	assert.Equal(t, 20, At(core.Position{X: 10, Y: 10}, zones))
	assert.Equal(t, 60, At(core.Position{X: 45, Y: 45}, zones), "highest overlapping zone wins")
	assert.Equal(t, -15, At(core.Position{X: 210, Y: 10}, zones))
	assert.Equal(t, 0, At(core.Position{X: 500, Y: 500}, zones))
	assert.Equal(t, 0, At(core.Position{}, nil))
}

func TestAt_OverlapOrderDoesNotMatter(t *testing.T) {
	a := []core.ElevationZone{zone("low", 0, 0, 10, 10, 5), zone("high", 0, 0, 10, 10, 30)}
	b := []core.ElevationZone{a[1], a[0]}
	p := core.Position{X: 5, Y: 5}
	assert.Equal(t, At(p, a), At(p, b))
}

func TestAttackModifier(t *testing.T) {
	tests := []struct {
		diff int
		want int
	}{
		{0, 0},
		{9, 0},
		{10, 2},
		{45, 2},
		{-9, 0},
		{-10, -2},
		{-100, -2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AttackModifier(tt.diff), "diff %d", tt.diff)
	}
}

func TestExtendedRange(t *testing.T) {
	tests := []struct {
		name string
		base int
		diff int
		want int
	}{
		{"twenty feet up", 100, 20, 120},
		{"partial step floors", 100, 19, 110},
		{"under one step", 100, 9, 100},
		{"melee unchanged", 0, 50, 0},
		{"level", 100, 0, 100},
		{"firing upward", 100, -30, 100},
		{"fractional bonus floors", 25, 10, 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtendedRange(tt.base, tt.diff))
		})
	}
}

func TestResolve(t *testing.T) {
	zones := []core.ElevationZone{zone("ridge", 0, 0, 50, 50, 20)}

	eff := Resolve(core.Position{X: 10, Y: 10}, core.Position{X: 300, Y: 0}, zones, 100)
	assert.Equal(t, Effects{
		AttackerElevation: 20,
		TargetElevation:   0,
		Diff:              20,
		AttackModifier:    2,
		ExtendedRange:     120,
	}, eff)

	// the defender on the ground firing back gets the penalty and no range bonus
	back := Resolve(core.Position{X: 300, Y: 0}, core.Position{X: 10, Y: 10}, zones, 100)
	assert.Equal(t, -2, back.AttackModifier)
	assert.Equal(t, 100, back.ExtendedRange)
}
