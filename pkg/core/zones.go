// pkg/core/zones.go
package core

import (
	"encoding/json"
	"math"
)

// TierName names a combat scale tier.
type TierName string

const (
	TierPointBlank TierName = "point_blank"
	TierTactical   TierName = "tactical"
	TierApproach   TierName = "approach"
	TierStrategic  TierName = "strategic"
)

// ScaleTier is one distance bracket of the encounter scale.
// DistanceThreshold is the exclusive upper bound of the bracket in feet.
type ScaleTier struct {
	Name              TierName `json:"name" mapstructure:"name"`
	DistanceThreshold float64  `json:"distanceThreshold" mapstructure:"distanceThreshold"`
	SpeedMultiplier   float64  `json:"speedMultiplier" mapstructure:"speedMultiplier"`
	Duration          string   `json:"duration" mapstructure:"duration"`
}

// MarshalJSON writes an unbounded threshold as null, since JSON has no infinity.
func (t ScaleTier) MarshalJSON() ([]byte, error) {
	type plain ScaleTier
	out := struct {
		plain
		DistanceThreshold *float64 `json:"distanceThreshold"`
	}{plain: plain(t)}
	if !math.IsInf(t.DistanceThreshold, 0) && !math.IsNaN(t.DistanceThreshold) {
		out.DistanceThreshold = &t.DistanceThreshold
	}
	return json.Marshal(out)
}

// ElevationZone is an axis-aligned raised area. Position is the top-left corner.
type ElevationZone struct {
	ID        string   `json:"id"`
	Position  Position `json:"position"`
	Size      Size     `json:"size"`
	Elevation int      `json:"elevation"`
}

// Cover is the protection category of a vehicle station.
type Cover string

const (
	CoverNone          Cover = "none"
	CoverHalf          Cover = "half"
	CoverThreeQuarters Cover = "three_quarters"
	CoverFull          Cover = "full"
)

// Arc is a 90 degree quadrant relative to a vehicle's facing.
type Arc string

const (
	ArcFront Arc = "front"
	ArcRight Arc = "right"
	ArcRear  Arc = "rear"
	ArcLeft  Arc = "left"
)

// VehicleZone is a crew station on a vehicle template.
type VehicleZone struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Cover           Cover  `json:"cover"`
	Capacity        int    `json:"capacity"`
	VisibleFromArcs []Arc  `json:"visibleFromArcs"`
}

// VisibleFrom reports whether the station can be seen from the arc.
func (z VehicleZone) VisibleFrom(a Arc) bool {
	for _, v := range z.VisibleFromArcs {
		if v == a {
			return true
		}
	}
	return false
}

// VehicleTemplate is the static definition a vehicle is built from.
type VehicleTemplate struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	DamageThreshold int           `json:"damageThreshold"`
	MishapThreshold int           `json:"mishapThreshold"`
	Zones           []VehicleZone `json:"zones"`
}

// Zone looks up a station by ID.
func (t VehicleTemplate) Zone(id string) (VehicleZone, bool) {
	for _, z := range t.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return VehicleZone{}, false
}
