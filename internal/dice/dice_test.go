package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoll_StaysInRange(t *testing.T) {
	src := NewSeeded(42)
	for i := 0; i < 1000; i++ {
		r := Roll(src, 20)
		require.GreaterOrEqual(t, r, 1)
		require.LessOrEqual(t, r, 20)
	}
}

func TestSeeded_Deterministic(t *testing.T) {
	a := NewSeeded(7)
	b := NewSeeded(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, Roll(a, 20), Roll(b, 20))
	}
	assert.Equal(t, int64(7), a.Seed())
}

func TestRoll_DegenerateSides(t *testing.T) {
	src := NewSeeded(1)
	assert.Equal(t, 1, Roll(src, 1))
	assert.Equal(t, 1, Roll(src, 0))
	assert.Equal(t, 1, Roll(src, -3))
}

func TestFixed_Cycles(t *testing.T) {
	src := NewFixed(3, 20, 25)
	assert.Equal(t, 3, Roll(src, 20))
	assert.Equal(t, 20, Roll(src, 20))
	assert.Equal(t, 20, Roll(src, 20), "faces above sides are capped")
	assert.Equal(t, 3, Roll(src, 20))
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	require.NoError(t, err)
	b, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
