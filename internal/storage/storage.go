// internal/storage/storage.go
package storage

import "github.com/OCAP2/chase/pkg/core"

// Backend is the interface all event sinks must satisfy.
// An encounter context writes to it after every state transition.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Encounter management (StartEncounter assigns the ID to the passed pointer)
	StartEncounter(e *core.Encounter) error
	EndEncounter() error

	// Event recording
	RecordMovement(e *core.MovementEvent) error
	RecordUndo(e *core.UndoEvent) error
	RecordScaleChange(e *core.ScaleChangeEvent) error
	RecordRoundReset(e *core.RoundResetEvent) error
	RecordDamage(e *core.DamageEvent) error
	RecordMishap(e *core.MishapEvent) error
}

// Exportable is an optional interface for backends that write the event log
// to a file when the encounter ends.
type Exportable interface {
	GetExportedFilePath() string
}

// Nop discards every event.
type Nop struct{}

func (Nop) Init() error { return nil }
func (Nop) Close() error { return nil }
func (Nop) StartEncounter(*core.Encounter) error { return nil }
func (Nop) EndEncounter() error { return nil }
func (Nop) RecordMovement(*core.MovementEvent) error { return nil }
func (Nop) RecordUndo(*core.UndoEvent) error { return nil }
func (Nop) RecordScaleChange(*core.ScaleChangeEvent) error { return nil }
func (Nop) RecordRoundReset(*core.RoundResetEvent) error { return nil }
func (Nop) RecordDamage(*core.DamageEvent) error { return nil }
func (Nop) RecordMishap(*core.MishapEvent) error { return nil }
