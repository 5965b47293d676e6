// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/OCAP2/chase/internal/geo"
	"github.com/OCAP2/chase/internal/model"
	"github.com/OCAP2/chase/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// point stores p as a geometry. Non-finite positions never come out of the
// engine, but they are stored as an empty point rather than failing the row.
func point(p core.Position) geom.Point {
	pt, _ := geo.ToPoint(p)
	return pt
}

// CoreToEncounter converts a core.Encounter to a GORM model.Encounter.
func CoreToEncounter(e core.Encounter) model.Encounter {
	m := model.Encounter{
		Name:      e.Name,
		StartTime: e.StartTime,
		Seed:      e.Seed,
		Tag:       e.Tag,
	}
	m.ID = e.ID
	return m
}

// CoreToMovement converts a core.MovementEvent to a GORM model.Movement.
func CoreToMovement(e core.MovementEvent) model.Movement {
	return model.Movement{
		Time:        e.Time,
		EncounterID: e.EncounterID,
		Round:       e.Round,
		Phase:       string(e.Phase),
		Tier:        string(e.Tier),
		EntityKind:  string(e.Entity.Kind),
		EntityID:    e.Entity.ID,
		From:        point(e.From),
		To:          point(e.To),
		RequestedX:  e.Requested.X,
		RequestedY:  e.Requested.Y,
		AcceptedX:   e.Accepted.X,
		AcceptedY:   e.Accepted.Y,
		FeetMoved:   e.FeetMoved,
		Rejected:    e.Rejected,
		Reason:      e.Reason,
		Clamped:     e.Clamped,
	}
}

// CoreToUndo converts a core.UndoEvent to a GORM model.Undo.
func CoreToUndo(e core.UndoEvent) model.Undo {
	return model.Undo{
		Time:         e.Time,
		EncounterID:  e.EncounterID,
		Round:        e.Round,
		EntityKind:   string(e.Entity.Kind),
		EntityID:     e.Entity.ID,
		Restored:     point(e.Restored),
		FeetRefunded: e.FeetRefunded,
	}
}

// CoreToScaleChange converts a core.ScaleChangeEvent to a GORM model.ScaleChange.
func CoreToScaleChange(e core.ScaleChangeEvent) model.ScaleChange {
	return model.ScaleChange{
		Time:        e.Time,
		EncounterID: e.EncounterID,
		Round:       e.Round,
		FromTier:    string(e.From),
		ToTier:      string(e.To),
		Distance:    e.Distance,
		Manual:      e.Manual,
	}
}

// CoreToRoundReset converts a core.RoundResetEvent to a GORM model.RoundReset.
func CoreToRoundReset(e core.RoundResetEvent) model.RoundReset {
	return model.RoundReset{
		Time:           e.Time,
		EncounterID:    e.EncounterID,
		PreviousRound:  e.PreviousRound,
		Round:          e.Round,
		Phase:          string(e.Phase),
		DiscardedMoves: e.DiscardedMoves,
	}
}

// CoreToDamageEvent converts a core.DamageEvent to a GORM model.DamageEvent.
func CoreToDamageEvent(e core.DamageEvent) model.DamageEvent {
	return model.DamageEvent{
		Time:            e.Time,
		EncounterID:     e.EncounterID,
		Round:           e.Round,
		VehicleID:       e.VehicleID,
		Damage:          e.Damage,
		Threshold:       e.Threshold,
		MishapThreshold: e.MishapThreshold,
		HPDelta:         e.HPDelta,
		Absorbed:        e.Absorbed,
		MishapRolled:    e.MishapRolled,
	}
}

// CoreToMishapEvent converts a core.MishapEvent to a GORM model.MishapEvent.
// The rolled mishap is stored as JSON; a nil mishap is stored as JSON null.
func CoreToMishapEvent(e core.MishapEvent) model.MishapEvent {
	payload := datatypes.JSON("null")
	name := ""
	if e.Mishap != nil {
		name = e.Mishap.Name
		if data, err := json.Marshal(e.Mishap); err == nil {
			payload = datatypes.JSON(data)
		}
	}
	return model.MishapEvent{
		Time:        e.Time,
		EncounterID: e.EncounterID,
		Round:       e.Round,
		VehicleID:   e.VehicleID,
		Roll:        e.Roll,
		RerollCount: e.RerollCount,
		Name:        name,
		Mishap:      payload,
		Manual:      e.Manual,
	}
}
