// pkg/core/vehicle.go
package core

import (
	"fmt"
	"math"
)

// EntityKind tags which variant a movable entity is.
type EntityKind string

const (
	KindVehicle  EntityKind = "vehicle"
	KindCreature EntityKind = "creature"
)

// EntityKey identifies an entity in the movement ledger.
// Vehicles and creatures live in separate key spaces, so a vehicle "7"
// and a creature "7" never share a budget.
type EntityKey struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.ID)
}

// Movable is the capability shared by everything the ledger can move.
type Movable interface {
	Key() EntityKey
	CurrentPosition() Position
	EffectiveSpeed() float64
}

// Vehicle is a snapshot of a vehicle taken from the encounter state store.
type Vehicle struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	TemplateID    string   `json:"templateId"`
	Faction       string   `json:"faction"`
	Position      Position `json:"position"`
	Facing        float64  `json:"facing"`
	CurrentSpeed  float64  `json:"currentSpeed"`
	HP            int      `json:"hp"`
	Inoperative   bool     `json:"inoperative"`
	StationCount  int      `json:"stationCount"`
	WeaponCount   int      `json:"weaponCount"`
	ActiveMishaps []Mishap `json:"activeMishaps"`
}

// Key returns the ledger key for the vehicle.
func (v *Vehicle) Key() EntityKey {
	return EntityKey{Kind: KindVehicle, ID: v.ID}
}

// CurrentPosition returns the vehicle position.
func (v *Vehicle) CurrentPosition() Position {
	return v.Position
}

// EffectiveSpeed is the current speed minus every active speed reduction,
// never below zero.
func (v *Vehicle) EffectiveSpeed() float64 {
	speed := v.CurrentSpeed
	for _, m := range v.ActiveMishaps {
		if m.MechanicalEffect != nil {
			speed -= float64(m.MechanicalEffect.SpeedReduction)
		}
	}
	if math.IsNaN(speed) || speed < 0 {
		return 0
	}
	return speed
}

// HasMishap reports whether a mishap with the given name is active.
func (v *Vehicle) HasMishap(name string) bool {
	for _, m := range v.ActiveMishaps {
		if m.Name == name {
			return true
		}
	}
	return false
}

// CanAct reports whether the vehicle takes part in engagement checks.
func (v *Vehicle) CanAct() bool {
	return !v.Inoperative && v.HP > 0
}

// CreatureSpeed mirrors the statblock speed block; only walk is used for movement.
type CreatureSpeed struct {
	Walk  float64 `json:"walk"`
	Fly   float64 `json:"fly,omitempty"`
	Swim  float64 `json:"swim,omitempty"`
	Climb float64 `json:"climb,omitempty"`
}

// Statblock is the subset of a creature statblock the engine reads.
type Statblock struct {
	Speed CreatureSpeed `json:"speed"`
}

// Creature is a snapshot of a creature on the encounter map.
// AssignedVehicleID is empty when the creature stands on the battlefield.
type Creature struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Faction           string    `json:"faction"`
	Position          Position  `json:"position"`
	HP                int       `json:"hp"`
	AssignedVehicleID string    `json:"assignedVehicleId,omitempty"`
	Statblock         Statblock `json:"statblock"`
}

// Key returns the ledger key for the creature.
func (c *Creature) Key() EntityKey {
	return EntityKey{Kind: KindCreature, ID: c.ID}
}

// CurrentPosition returns the creature position.
func (c *Creature) CurrentPosition() Position {
	return c.Position
}

// EffectiveSpeed is the walking speed, never below zero.
func (c *Creature) EffectiveSpeed() float64 {
	if math.IsNaN(c.Statblock.Speed.Walk) || c.Statblock.Speed.Walk < 0 {
		return 0
	}
	return c.Statblock.Speed.Walk
}

// CanAct reports whether the creature takes part in engagement checks.
func (c *Creature) CanAct() bool {
	return c.HP > 0
}

// Entity is the tagged union of movable things.
// Exactly one of Vehicle or Creature is set, matching Kind.
type Entity struct {
	Kind     EntityKind `json:"kind"`
	Vehicle  *Vehicle   `json:"vehicle,omitempty"`
	Creature *Creature  `json:"creature,omitempty"`
}

// VehicleEntity wraps a vehicle snapshot.
func VehicleEntity(v *Vehicle) Entity {
	return Entity{Kind: KindVehicle, Vehicle: v}
}

// CreatureEntity wraps a creature snapshot.
func CreatureEntity(c *Creature) Entity {
	return Entity{Kind: KindCreature, Creature: c}
}

// Movable returns the capability view of the variant, or nil if the entity is malformed.
func (e Entity) Movable() Movable {
	switch e.Kind {
	case KindVehicle:
		if e.Vehicle != nil {
			return e.Vehicle
		}
	case KindCreature:
		if e.Creature != nil {
			return e.Creature
		}
	}
	return nil
}

// Faction returns the faction of the wrapped entity.
func (e Entity) Faction() string {
	switch {
	case e.Kind == KindVehicle && e.Vehicle != nil:
		return e.Vehicle.Faction
	case e.Kind == KindCreature && e.Creature != nil:
		return e.Creature.Faction
	}
	return ""
}
