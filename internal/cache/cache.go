package cache

import (
	"sort"
	"sync"

	"github.com/OCAP2/chase/pkg/core"
)

// EntityCache holds the vehicle and creature snapshots of the running
// encounter. The engine proposes positions and mishap sets; the cache is where
// they get committed.
type EntityCache struct {
	m         sync.Mutex
	Vehicles  map[string]core.Vehicle
	Creatures map[string]core.Creature
}

func NewEntityCache() *EntityCache {
	return &EntityCache{
		m:         sync.Mutex{},
		Vehicles:  make(map[string]core.Vehicle),
		Creatures: make(map[string]core.Creature),
	}
}

func (c *EntityCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Vehicles = make(map[string]core.Vehicle)
	c.Creatures = make(map[string]core.Creature)
}

func (c *EntityCache) GetVehicle(id string) (core.Vehicle, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if v, ok := c.Vehicles[id]; ok {
		return cloneVehicle(v), true
	}
	return core.Vehicle{}, false
}

func (c *EntityCache) GetCreature(id string) (core.Creature, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if cr, ok := c.Creatures[id]; ok {
		return cr, true
	}
	return core.Creature{}, false
}

func (c *EntityCache) AddVehicle(v core.Vehicle) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Vehicles[v.ID] = cloneVehicle(v)
}

func (c *EntityCache) AddCreature(cr core.Creature) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Creatures[cr.ID] = cr
}

// Entity returns a snapshot of the entity behind key.
func (c *EntityCache) Entity(key core.EntityKey) (core.Entity, bool) {
	switch key.Kind {
	case core.KindVehicle:
		if v, ok := c.GetVehicle(key.ID); ok {
			return core.VehicleEntity(&v), true
		}
	case core.KindCreature:
		if cr, ok := c.GetCreature(key.ID); ok {
			return core.CreatureEntity(&cr), true
		}
	}
	return core.Entity{}, false
}

// Entities snapshots everything in the cache, vehicles first, each group
// ordered by ID so callers see a stable order.
func (c *EntityCache) Entities() []core.Entity {
	c.m.Lock()
	defer c.m.Unlock()

	out := make([]core.Entity, 0, len(c.Vehicles)+len(c.Creatures))
	for _, id := range sortedKeys(c.Vehicles) {
		v := cloneVehicle(c.Vehicles[id])
		out = append(out, core.VehicleEntity(&v))
	}
	for _, id := range sortedKeys(c.Creatures) {
		cr := c.Creatures[id]
		out = append(out, core.CreatureEntity(&cr))
	}
	return out
}

// CommitPosition stores a position proposed by the movement ledger.
// It reports false when the entity is unknown.
func (c *EntityCache) CommitPosition(key core.EntityKey, pos core.Position) bool {
	c.m.Lock()
	defer c.m.Unlock()

	switch key.Kind {
	case core.KindVehicle:
		v, ok := c.Vehicles[key.ID]
		if !ok {
			return false
		}
		v.Position = pos
		c.Vehicles[key.ID] = v
		return true
	case core.KindCreature:
		cr, ok := c.Creatures[key.ID]
		if !ok {
			return false
		}
		cr.Position = pos
		c.Creatures[key.ID] = cr
		return true
	}
	return false
}

// ApplyDamage adds hpDelta to the vehicle's HP, floored at zero, and replaces
// its active mishaps with the proposed set.
func (c *EntityCache) ApplyDamage(vehicleID string, hpDelta int, active []core.Mishap) (core.Vehicle, bool) {
	c.m.Lock()
	defer c.m.Unlock()

	v, ok := c.Vehicles[vehicleID]
	if !ok {
		return core.Vehicle{}, false
	}
	v.HP += hpDelta
	if v.HP < 0 {
		v.HP = 0
	}
	v.ActiveMishaps = append([]core.Mishap(nil), active...)
	c.Vehicles[vehicleID] = v
	return cloneVehicle(v), true
}

// AddMishap appends a lasting mishap to the vehicle's active set.
func (c *EntityCache) AddMishap(vehicleID string, m core.Mishap) bool {
	c.m.Lock()
	defer c.m.Unlock()

	v, ok := c.Vehicles[vehicleID]
	if !ok {
		return false
	}
	v.ActiveMishaps = append(append([]core.Mishap(nil), v.ActiveMishaps...), m)
	c.Vehicles[vehicleID] = v
	return true
}

func cloneVehicle(v core.Vehicle) core.Vehicle {
	if v.ActiveMishaps != nil {
		v.ActiveMishaps = append([]core.Mishap(nil), v.ActiveMishaps...)
	}
	return v
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
