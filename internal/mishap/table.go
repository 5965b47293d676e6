package mishap

import "github.com/OCAP2/chase/pkg/core"

// Entry maps a band of d20 faces to a mishap.
type Entry struct {
	Min    int
	Max    int
	Mishap core.Mishap
	// Rounds seeds RoundsRemaining for DurationRounds mishaps.
	Rounds           int
	Stackable        bool
	RequiresWeapons  bool
	RequiresStations bool
}

// Covers reports whether face falls inside the entry's band.
func (e Entry) Covers(face int) bool {
	return face >= e.Min && face <= e.Max
}

// DefaultTable is the d20 vehicle mishap table.
func DefaultTable() []Entry {
	return []Entry{
		{Min: 1, Max: 1, Mishap: core.Mishap{
			Name:     "Engine Flare",
			Effect:   "Flames burst from the engine. Every creature aboard takes fire damage.",
			Duration: core.DurationInstant,
		}},
		{Min: 2, Max: 3, Mishap: core.Mishap{
			Name:     core.MishapLockedSteering,
			Effect:   "The vehicle can only move in a straight line along its heading.",
			Duration: core.DurationUntilRepaired,
		}},
		{Min: 4, Max: 5, Mishap: core.Mishap{
			Name:             "Furnace Rupture",
			Effect:           "The engine loses power.",
			Duration:         core.DurationUntilRepaired,
			MechanicalEffect: &core.MechanicalEffect{SpeedReduction: 20},
		}},
		{Min: 6, Max: 7, Rounds: 2, Mishap: core.Mishap{
			Name:     "Fiendish Surge",
			Effect:   "The vehicle lurches unpredictably. Attacks against it have advantage.",
			Duration: core.DurationRounds,
		}},
		{Min: 8, Max: 9, RequiresWeapons: true, Mishap: core.Mishap{
			Name:     "Weapon Jam",
			Effect:   "One mounted weapon cannot be fired.",
			Duration: core.DurationUntilRepaired,
		}},
		{Min: 10, Max: 11, Stackable: true, Mishap: core.Mishap{
			Name:             "Cracked Chassis",
			Effect:           "The frame buckles and lets more damage through.",
			Duration:         core.DurationUntilRepaired,
			MechanicalEffect: &core.MechanicalEffect{DamageThresholdReduction: 5},
		}},
		{Min: 12, Max: 13, RequiresStations: true, Mishap: core.Mishap{
			Name:     "Crew Thrown",
			Effect:   "One crew member is thrown from their station.",
			Duration: core.DurationInstant,
		}},
		{Min: 14, Max: 15, Rounds: 3, Mishap: core.Mishap{
			Name:     "Smoke Plume",
			Effect:   "Black smoke heavily obscures the vehicle.",
			Duration: core.DurationRounds,
		}},
		{Min: 16, Max: 17, Stackable: true, Mishap: core.Mishap{
			Name:             "Shredded Tires",
			Effect:           "A wheel is torn apart.",
			Duration:         core.DurationUntilRepaired,
			MechanicalEffect: &core.MechanicalEffect{SpeedReduction: 10},
		}},
		{Min: 18, Max: 19, Rounds: 2, Mishap: core.Mishap{
			Name:             "Loose Armor",
			Effect:           "Armor plates hang loose.",
			Duration:         core.DurationRounds,
			MechanicalEffect: &core.MechanicalEffect{DamageThresholdReduction: 3},
		}},
		{Min: 20, Max: 20, Mishap: core.Mishap{
			Name:     "Spinout",
			Effect:   "The vehicle spins and ends facing a random direction.",
			Duration: core.DurationInstant,
		}},
	}
}
