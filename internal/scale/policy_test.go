package scale

import (
	"testing"

	"github.com/OCAP2/chase/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_SetupAppliesUnconditionally(t *testing.T) {
	p := NewPolicy(MustDefaultTable())

	c, changed := p.Apply(core.PhaseSetup, 1500)
	require.True(t, changed)
	assert.Equal(t, core.TierPointBlank, c.From)
	assert.Equal(t, core.TierApproach, c.To)
	assert.False(t, c.Manual)

	_, changed = p.Apply(core.PhaseSetup, 20)
	require.True(t, changed)
	assert.Equal(t, core.TierPointBlank, p.Current().Name)
}

func TestPolicy_CombatOnlyNarrows(t *testing.T) {
	p := NewPolicy(MustDefaultTable())
	_, _ = p.Apply(core.PhaseSetup, 3000)
	require.Equal(t, core.TierStrategic, p.Current().Name)

	c, changed := p.Apply(core.PhaseCombat, 300)
	require.True(t, changed)
	assert.Equal(t, core.TierTactical, c.To)

	// the gap opens again, but combat never auto-widens
	_, changed = p.Apply(core.PhaseCombat, 5000)
	assert.False(t, changed)
	assert.Equal(t, core.TierTactical, p.Current().Name)
}

func TestPolicy_SameTierIsNoChange(t *testing.T) {
	p := NewPolicy(MustDefaultTable())
	_, changed := p.Apply(core.PhaseCombat, 10)
	assert.False(t, changed)
}

func TestPolicy_SelectWidensManually(t *testing.T) {
	p := NewPolicy(MustDefaultTable())

	c, changed, err := p.Select(core.TierStrategic)
	require.NoError(t, err)
	require.True(t, changed)
	assert.True(t, c.Manual)
	assert.Equal(t, core.TierStrategic, p.Current().Name)

	_, changed, err = p.Select(core.TierStrategic)
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = p.Select("nope")
	assert.ErrorIs(t, err, ErrUnknownTier)
}
