package convert

import (
	"encoding/json"

	"github.com/OCAP2/chase/internal/geo"
	"github.com/OCAP2/chase/internal/model"
	"github.com/OCAP2/chase/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// pointToPosition converts a stored point to a position; empty points map to the origin.
func pointToPosition(p geom.Point) core.Position {
	pos, _ := geo.FromPoint(p)
	return pos
}

func entityKey(kind, id string) core.EntityKey {
	return core.EntityKey{Kind: core.EntityKind(kind), ID: id}
}

// EncounterToCore converts a GORM Encounter to a core.Encounter.
func EncounterToCore(e model.Encounter) core.Encounter {
	return core.Encounter{
		ID:        e.ID,
		Name:      e.Name,
		StartTime: e.StartTime,
		Seed:      e.Seed,
		Tag:       e.Tag,
	}
}

// MovementToCore converts a GORM Movement to a core.MovementEvent.
func MovementToCore(m model.Movement) core.MovementEvent {
	return core.MovementEvent{
		EncounterID: m.EncounterID,
		Time:        m.Time,
		Round:       m.Round,
		Phase:       core.Phase(m.Phase),
		Tier:        core.TierName(m.Tier),
		Entity:      entityKey(m.EntityKind, m.EntityID),
		From:        pointToPosition(m.From),
		To:          pointToPosition(m.To),
		Requested:   core.Vector{X: m.RequestedX, Y: m.RequestedY},
		Accepted:    core.Vector{X: m.AcceptedX, Y: m.AcceptedY},
		FeetMoved:   m.FeetMoved,
		Rejected:    m.Rejected,
		Reason:      m.Reason,
		Clamped:     m.Clamped,
	}
}

// UndoToCore converts a GORM Undo to a core.UndoEvent.
func UndoToCore(u model.Undo) core.UndoEvent {
	return core.UndoEvent{
		EncounterID:  u.EncounterID,
		Time:         u.Time,
		Round:        u.Round,
		Entity:       entityKey(u.EntityKind, u.EntityID),
		Restored:     pointToPosition(u.Restored),
		FeetRefunded: u.FeetRefunded,
	}
}

// ScaleChangeToCore converts a GORM ScaleChange to a core.ScaleChangeEvent.
func ScaleChangeToCore(s model.ScaleChange) core.ScaleChangeEvent {
	return core.ScaleChangeEvent{
		EncounterID: s.EncounterID,
		Time:        s.Time,
		Round:       s.Round,
		From:        core.TierName(s.FromTier),
		To:          core.TierName(s.ToTier),
		Distance:    s.Distance,
		Manual:      s.Manual,
	}
}

// RoundResetToCore converts a GORM RoundReset to a core.RoundResetEvent.
func RoundResetToCore(r model.RoundReset) core.RoundResetEvent {
	return core.RoundResetEvent{
		EncounterID:    r.EncounterID,
		Time:           r.Time,
		PreviousRound:  r.PreviousRound,
		Round:          r.Round,
		Phase:          core.Phase(r.Phase),
		DiscardedMoves: r.DiscardedMoves,
	}
}

// DamageEventToCore converts a GORM DamageEvent to a core.DamageEvent.
func DamageEventToCore(d model.DamageEvent) core.DamageEvent {
	return core.DamageEvent{
		EncounterID:     d.EncounterID,
		Time:            d.Time,
		Round:           d.Round,
		VehicleID:       d.VehicleID,
		Damage:          d.Damage,
		Threshold:       d.Threshold,
		MishapThreshold: d.MishapThreshold,
		HPDelta:         d.HPDelta,
		Absorbed:        d.Absorbed,
		MishapRolled:    d.MishapRolled,
	}
}

// MishapEventToCore converts a GORM MishapEvent to a core.MishapEvent.
func MishapEventToCore(m model.MishapEvent) core.MishapEvent {
	ev := core.MishapEvent{
		EncounterID: m.EncounterID,
		Time:        m.Time,
		Round:       m.Round,
		VehicleID:   m.VehicleID,
		Roll:        m.Roll,
		RerollCount: m.RerollCount,
		Manual:      m.Manual,
	}
	if len(m.Mishap) > 0 {
		var mishap core.Mishap
		if err := json.Unmarshal(m.Mishap, &mishap); err == nil && mishap.Name != "" {
			ev.Mishap = &mishap
		}
	}
	return ev
}

// EncounterLog assembles an event log from a preloaded GORM Encounter.
func EncounterLog(e model.Encounter) core.EventLog {
	log := core.EventLog{Encounter: EncounterToCore(e)}
	if e.EndTime != nil {
		log.EndTime = *e.EndTime
	}
	for _, m := range e.Movements {
		log.Movements = append(log.Movements, MovementToCore(m))
	}
	for _, u := range e.Undos {
		log.Undos = append(log.Undos, UndoToCore(u))
	}
	for _, s := range e.ScaleChanges {
		log.ScaleChanges = append(log.ScaleChanges, ScaleChangeToCore(s))
	}
	for _, r := range e.RoundResets {
		log.RoundResets = append(log.RoundResets, RoundResetToCore(r))
	}
	for _, d := range e.DamageEvents {
		log.Damages = append(log.Damages, DamageEventToCore(d))
	}
	for _, m := range e.MishapEvents {
		log.Mishaps = append(log.Mishaps, MishapEventToCore(m))
	}
	return log
}
