// Package scale resolves which combat scale tier governs an encounter and how
// far entities may move per round under it.
package scale

import (
	"errors"
	"fmt"
	"math"

	"github.com/OCAP2/chase/pkg/core"
)

var (
	// ErrInvalidTable is returned when a tier table does not partition [0, +Inf).
	ErrInvalidTable = errors.New("invalid scale tier table")
	// ErrUnknownTier is returned when a tier name is not in the table.
	ErrUnknownTier = errors.New("unknown scale tier")
)

// DefaultTiers is the canonical tier table.
// Prose such as "melee 0-30ft" in older rules text is stale; these values win.
func DefaultTiers() []core.ScaleTier {
	return []core.ScaleTier{
		{Name: core.TierPointBlank, DistanceThreshold: 100, SpeedMultiplier: 1, Duration: "6 seconds"},
		{Name: core.TierTactical, DistanceThreshold: 500, SpeedMultiplier: 2, Duration: "12 seconds"},
		{Name: core.TierApproach, DistanceThreshold: 2000, SpeedMultiplier: 10, Duration: "1 minute"},
		{Name: core.TierStrategic, DistanceThreshold: math.Inf(1), SpeedMultiplier: 100, Duration: "10 minutes"},
	}
}

// Table is an ordered, validated list of tiers, closest first.
type Table struct {
	tiers []core.ScaleTier
}

// NewTable validates tiers and returns a table.
// Thresholds must be positive and strictly ascending, the last one unbounded,
// and multipliers non-negative.
func NewTable(tiers []core.ScaleTier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}
	seen := make(map[core.TierName]bool, len(tiers))
	prev := 0.0
	for i, t := range tiers {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: tier %d has no name", ErrInvalidTable, i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("%w: duplicate tier %q", ErrInvalidTable, t.Name)
		}
		seen[t.Name] = true
		if math.IsNaN(t.DistanceThreshold) || t.DistanceThreshold <= prev {
			return nil, fmt.Errorf("%w: threshold of %q must exceed %v", ErrInvalidTable, t.Name, prev)
		}
		if t.SpeedMultiplier < 0 || math.IsNaN(t.SpeedMultiplier) {
			return nil, fmt.Errorf("%w: negative multiplier on %q", ErrInvalidTable, t.Name)
		}
		prev = t.DistanceThreshold
	}
	if !math.IsInf(prev, 1) {
		return nil, fmt.Errorf("%w: last tier must be unbounded", ErrInvalidTable)
	}
	cp := make([]core.ScaleTier, len(tiers))
	copy(cp, tiers)
	return &Table{tiers: cp}, nil
}

// MustDefaultTable returns the canonical table. It cannot fail.
func MustDefaultTable() *Table {
	t, err := NewTable(DefaultTiers())
	if err != nil {
		panic(err)
	}
	return t
}

// Tiers returns a copy of the tiers, closest first.
func (t *Table) Tiers() []core.ScaleTier {
	cp := make([]core.ScaleTier, len(t.tiers))
	copy(cp, t.tiers)
	return cp
}

// Closest returns the closest tier.
func (t *Table) Closest() core.ScaleTier {
	return t.tiers[0]
}

// Index returns the position of a tier in the table, 0 being closest.
func (t *Table) Index(name core.TierName) (int, error) {
	for i, tier := range t.tiers {
		if tier.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownTier, name)
}

// Tier looks up a tier by name.
func (t *Table) Tier(name core.TierName) (core.ScaleTier, error) {
	i, err := t.Index(name)
	if err != nil {
		return core.ScaleTier{}, err
	}
	return t.tiers[i], nil
}

// TierForDistance returns the closest tier whose threshold exceeds distance.
// A distance equal to a threshold falls into the next tier out.
// Negative and NaN distances are treated as 0.
func (t *Table) TierForDistance(distance float64) core.ScaleTier {
	if math.IsNaN(distance) || distance < 0 {
		distance = 0
	}
	for _, tier := range t.tiers {
		if distance < tier.DistanceThreshold {
			return tier
		}
	}
	// unreachable for a validated table unless distance is +Inf
	return t.tiers[len(t.tiers)-1]
}

// MovementAllowance returns the feet an entity with the given speed may move
// in one round at tier. Negative speed is treated as 0.
func MovementAllowance(speed float64, tier core.ScaleTier) float64 {
	if math.IsNaN(speed) || speed < 0 {
		return 0
	}
	return speed * tier.SpeedMultiplier
}
