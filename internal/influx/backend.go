package influx

import (
	"context"
	"strconv"
	"sync"

	"github.com/OCAP2/chase/pkg/core"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names, one per event kind.
const (
	MeasurementEncounter   = "encounter"
	MeasurementMovement    = "movement"
	MeasurementUndo        = "undo"
	MeasurementScaleChange = "scale_change"
	MeasurementRoundReset  = "round_reset"
	MeasurementDamage      = "damage"
	MeasurementMishap      = "mishap"
)

// Backend is a storage backend that turns every event into a point.
// Each point is tagged with the encounter so dashboards can filter by it.
type Backend struct {
	m *Manager

	mu        sync.Mutex
	encounter core.Encounter
}

// NewBackend wraps a manager.
func NewBackend(m *Manager) *Backend {
	return &Backend{m: m}
}

// Init connects the manager.
func (b *Backend) Init() error {
	return b.m.Connect(context.Background())
}

// Close flushes and disconnects.
func (b *Backend) Close() error {
	return b.m.Close()
}

func (b *Backend) point(measurement string) *influxdb2_write.Point {
	b.mu.Lock()
	enc := b.encounter
	b.mu.Unlock()
	return influxdb2_write.NewPointWithMeasurement(measurement).
		AddTag("encounter", enc.Name).
		AddTag("encounterId", strconv.FormatUint(uint64(enc.ID), 10))
}

// StartEncounter remembers the encounter for tagging and writes a start point.
func (b *Backend) StartEncounter(e *core.Encounter) error {
	b.mu.Lock()
	b.encounter = *e
	b.mu.Unlock()
	return b.m.WritePoint(b.point(MeasurementEncounter).
		AddField("seed", e.Seed).
		AddField("state", "started").
		SetTime(e.StartTime))
}

// EndEncounter writes an end point.
func (b *Backend) EndEncounter() error {
	return b.m.WritePoint(b.point(MeasurementEncounter).
		AddField("state", "ended"))
}

func (b *Backend) RecordMovement(e *core.MovementEvent) error {
	return b.m.WritePoint(b.point(MeasurementMovement).
		AddTag("entityKind", string(e.Entity.Kind)).
		AddTag("entityId", e.Entity.ID).
		AddTag("tier", string(e.Tier)).
		AddTag("phase", string(e.Phase)).
		AddField("round", e.Round).
		AddField("feetMoved", e.FeetMoved).
		AddField("x", e.To.X).
		AddField("y", e.To.Y).
		AddField("rejected", e.Rejected).
		AddField("clamped", e.Clamped).
		SetTime(e.Time))
}

func (b *Backend) RecordUndo(e *core.UndoEvent) error {
	return b.m.WritePoint(b.point(MeasurementUndo).
		AddTag("entityKind", string(e.Entity.Kind)).
		AddTag("entityId", e.Entity.ID).
		AddField("round", e.Round).
		AddField("feetRefunded", e.FeetRefunded).
		SetTime(e.Time))
}

func (b *Backend) RecordScaleChange(e *core.ScaleChangeEvent) error {
	return b.m.WritePoint(b.point(MeasurementScaleChange).
		AddTag("from", string(e.From)).
		AddTag("to", string(e.To)).
		AddField("round", e.Round).
		AddField("distance", e.Distance).
		AddField("manual", e.Manual).
		SetTime(e.Time))
}

func (b *Backend) RecordRoundReset(e *core.RoundResetEvent) error {
	return b.m.WritePoint(b.point(MeasurementRoundReset).
		AddTag("phase", string(e.Phase)).
		AddField("round", e.Round).
		AddField("previousRound", e.PreviousRound).
		AddField("discardedMoves", e.DiscardedMoves).
		SetTime(e.Time))
}

func (b *Backend) RecordDamage(e *core.DamageEvent) error {
	return b.m.WritePoint(b.point(MeasurementDamage).
		AddTag("vehicleId", e.VehicleID).
		AddField("round", e.Round).
		AddField("damage", e.Damage).
		AddField("threshold", e.Threshold).
		AddField("hpDelta", e.HPDelta).
		AddField("absorbed", e.Absorbed).
		AddField("mishapRolled", e.MishapRolled).
		SetTime(e.Time))
}

func (b *Backend) RecordMishap(e *core.MishapEvent) error {
	name := ""
	if e.Mishap != nil {
		name = e.Mishap.Name
	}
	return b.m.WritePoint(b.point(MeasurementMishap).
		AddTag("vehicleId", e.VehicleID).
		AddTag("mishap", name).
		AddField("round", e.Round).
		AddField("roll", e.Roll).
		AddField("rerollCount", e.RerollCount).
		AddField("manual", e.Manual).
		SetTime(e.Time))
}
