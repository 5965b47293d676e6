package v1

import (
	"sort"
	"time"

	"github.com/OCAP2/chase/pkg/core"
)

// event kinds in the compact events array
const (
	KindMoved  = "moved"
	KindDenied = "denied"
	KindUndo   = "undo"
	KindScale  = "scale"
	KindRound  = "round"
	KindDamage = "damaged"
	KindMishap = "mishap"
)

type timedEvent struct {
	time time.Time
	row  []any
}

// Build creates an Export from an encounter event log.
// Events are ordered by time; events sharing a timestamp keep the order of
// their kind in the log.
func Build(log *core.EventLog) Export {
	export := Export{
		FormatVersion: FormatVersion,
		EncounterID:   log.Encounter.ID,
		EncounterName: log.Encounter.Name,
		Tags:          log.Encounter.Tag,
		Seed:          log.Encounter.Seed,
		StartTime:     formatTime(log.Encounter.StartTime),
		EndTime:       formatTime(log.EndTime),
		Entities:      make([]Entity, 0),
		Events:        make([][]any, 0),
	}

	entities := make(map[core.EntityKey]*Entity)
	entity := func(k core.EntityKey) *Entity {
		e, ok := entities[k]
		if !ok {
			e = &Entity{Kind: string(k.Kind), ID: k.ID, Track: make([][]any, 0)}
			entities[k] = e
		}
		return e
	}

	var timed []timedEvent
	endRound := 0
	seeRound := func(r int) {
		if r > endRound {
			endRound = r
		}
	}

	for _, m := range log.Movements {
		seeRound(m.Round)
		if m.Rejected {
			timed = append(timed, timedEvent{m.Time, []any{m.Round, KindDenied, m.Entity.String(), m.Reason}})
			continue
		}
		e := entity(m.Entity)
		e.Moves++
		e.FeetMoved += m.FeetMoved
		e.Track = append(e.Track, []any{m.Round, []float64{m.To.X, m.To.Y}, m.FeetMoved})
		timed = append(timed, timedEvent{m.Time, []any{m.Round, KindMoved, m.Entity.String(), []float64{m.To.X, m.To.Y}, m.FeetMoved}})
	}
	for _, u := range log.Undos {
		seeRound(u.Round)
		e := entity(u.Entity)
		e.Moves--
		e.FeetMoved -= u.FeetRefunded
		e.Track = append(e.Track, []any{u.Round, []float64{u.Restored.X, u.Restored.Y}, -u.FeetRefunded})
		timed = append(timed, timedEvent{u.Time, []any{u.Round, KindUndo, u.Entity.String(), u.FeetRefunded}})
	}
	for _, s := range log.ScaleChanges {
		seeRound(s.Round)
		timed = append(timed, timedEvent{s.Time, []any{s.Round, KindScale, string(s.From), string(s.To), s.Manual}})
	}
	for _, r := range log.RoundResets {
		seeRound(r.Round)
		timed = append(timed, timedEvent{r.Time, []any{r.Round, KindRound, r.PreviousRound, r.DiscardedMoves}})
	}
	for _, d := range log.Damages {
		seeRound(d.Round)
		timed = append(timed, timedEvent{d.Time, []any{d.Round, KindDamage, d.VehicleID, d.Damage, d.HPDelta, boolToInt(d.Absorbed)}})
	}
	for _, m := range log.Mishaps {
		seeRound(m.Round)
		name := ""
		if m.Mishap != nil {
			name = m.Mishap.Name
		}
		timed = append(timed, timedEvent{m.Time, []any{m.Round, KindMishap, m.VehicleID, m.Roll, name, m.RerollCount, boolToInt(m.Manual)}})
	}

	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].time.Before(timed[j].time)
	})
	for _, t := range timed {
		export.Events = append(export.Events, t.row)
	}

	keys := make([]core.EntityKey, 0, len(entities))
	for k := range entities {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	for _, k := range keys {
		export.Entities = append(export.Entities, *entities[k])
	}

	export.EndRound = endRound
	return export
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
