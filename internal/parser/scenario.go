package parser

import (
	"fmt"
	"math"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/internal/encounter"
	"github.com/OCAP2/chase/internal/scale"
	"github.com/OCAP2/chase/pkg/core"
)

// Scenario is the static setup of a replayed encounter: map features, vehicle
// templates and the starting entities.
type Scenario struct {
	Name           string                 `json:"name"`
	Tag            string                 `json:"tag,omitempty"`
	Seed           int64                  `json:"seed,omitempty"`
	Tiers          []core.ScaleTier       `json:"tiers,omitempty"`
	Bounds         *config.BoundsConfig   `json:"bounds,omitempty"`
	ElevationZones []core.ElevationZone   `json:"elevationZones,omitempty"`
	Templates      []core.VehicleTemplate `json:"templates"`
	Vehicles       []core.Vehicle         `json:"vehicles"`
	Creatures      []core.Creature        `json:"creatures,omitempty"`
}

func (s *Scenario) validate() error {
	templates := make(map[string]bool, len(s.Templates))
	for _, t := range s.Templates {
		if t.ID == "" {
			return fmt.Errorf("%w: template without id", ErrInvalidScenario)
		}
		if templates[t.ID] {
			return fmt.Errorf("%w: duplicate template %q", ErrInvalidScenario, t.ID)
		}
		// a mishap threshold under the damage threshold would roll on every applied hit
		if t.MishapThreshold < t.DamageThreshold {
			return fmt.Errorf("%w: template %q has mishap threshold %d below damage threshold %d",
				ErrInvalidScenario, t.ID, t.MishapThreshold, t.DamageThreshold)
		}
		templates[t.ID] = true
	}

	vehicles := make(map[string]bool, len(s.Vehicles))
	for _, v := range s.Vehicles {
		if v.ID == "" {
			return fmt.Errorf("%w: vehicle without id", ErrInvalidScenario)
		}
		if vehicles[v.ID] {
			return fmt.Errorf("%w: duplicate vehicle %q", ErrInvalidScenario, v.ID)
		}
		if !templates[v.TemplateID] {
			return fmt.Errorf("%w: vehicle %q uses %w %q", ErrInvalidScenario, v.ID, encounter.ErrUnknownTemplate, v.TemplateID)
		}
		vehicles[v.ID] = true
	}

	creatures := make(map[string]bool, len(s.Creatures))
	for _, c := range s.Creatures {
		if c.ID == "" {
			return fmt.Errorf("%w: creature without id", ErrInvalidScenario)
		}
		if creatures[c.ID] {
			return fmt.Errorf("%w: duplicate creature %q", ErrInvalidScenario, c.ID)
		}
		if c.AssignedVehicleID != "" && !vehicles[c.AssignedVehicleID] {
			return fmt.Errorf("%w: creature %q assigned to unknown vehicle %q", ErrInvalidScenario, c.ID, c.AssignedVehicleID)
		}
		creatures[c.ID] = true
	}
	return nil
}

// EncounterConfig merges the scenario with the engine settings. Scenario
// tiers, bounds and seed win over the configured ones when present.
func (s *Scenario) EncounterConfig(engine config.EngineConfig) (encounter.Config, error) {
	cfg := encounter.Config{
		Name:              s.Name,
		Tag:               s.Tag,
		ElevationZones:    s.ElevationZones,
		Templates:         s.Templates,
		MaxMishapAttempts: engine.MaxMishapAttempts,
		Seed:              engine.Seed,
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}

	tiers := engine.Tiers
	if len(s.Tiers) > 0 {
		tiers = s.Tiers
	}
	if len(tiers) > 0 {
		table, err := scale.NewTable(tiers)
		if err != nil {
			return cfg, err
		}
		cfg.Table = table
	}

	bounds := engine.Bounds
	if s.Bounds != nil {
		bounds = *s.Bounds
	}
	b, err := bounds.Bounds()
	if err != nil {
		return cfg, err
	}
	cfg.Bounds = b
	return cfg, nil
}

// unboundLastTier treats a last tier without a threshold as unbounded, since
// JSON cannot spell infinity.
func unboundLastTier(tiers []core.ScaleTier) []core.ScaleTier {
	out := append([]core.ScaleTier(nil), tiers...)
	if last := &out[len(out)-1]; last.DistanceThreshold == 0 {
		last.DistanceThreshold = math.Inf(1)
	}
	return out
}
