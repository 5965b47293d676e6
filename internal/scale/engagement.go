package scale

import (
	"math"

	"github.com/OCAP2/chase/internal/geo"
	"github.com/OCAP2/chase/pkg/core"
)

// combatant is an entity able to act, flattened for the pairwise scan.
type combatant struct {
	faction  string
	position core.Position
}

func activeCombatants(entities []core.Entity) []combatant {
	out := make([]combatant, 0, len(entities))
	for _, e := range entities {
		switch e.Kind {
		case core.KindVehicle:
			if e.Vehicle == nil || !e.Vehicle.CanAct() {
				continue
			}
			out = append(out, combatant{faction: e.Vehicle.Faction, position: e.Vehicle.Position})
		case core.KindCreature:
			// creatures riding a vehicle move with it and are covered by its position
			if e.Creature == nil || !e.Creature.CanAct() || e.Creature.AssignedVehicleID != "" {
				continue
			}
			out = append(out, combatant{faction: e.Creature.Faction, position: e.Creature.Position})
		}
	}
	return out
}

// EngagementDistance returns the minimum distance between any two active
// combatants of different factions. ok is false when no such pair exists.
func EngagementDistance(entities []core.Entity) (distance float64, ok bool) {
	cs := activeCombatants(entities)
	distance = math.Inf(1)
	for i := 0; i < len(cs); i++ {
		for j := i + 1; j < len(cs); j++ {
			if cs[i].faction == cs[j].faction {
				continue
			}
			if d := geo.Distance(cs[i].position, cs[j].position); d < distance {
				distance = d
				ok = true
			}
		}
	}
	if !ok {
		return 0, false
	}
	return distance, true
}
