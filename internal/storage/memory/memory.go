// internal/storage/memory/memory.go
package memory

import (
	"sync"
	"time"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/pkg/core"
)

// Backend keeps the encounter event log in memory and exports it to JSON
// when the encounter ends.
type Backend struct {
	cfg config.MemoryConfig
	log core.EventLog

	started        bool
	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartEncounter begins recording a new encounter and assigns its ID.
func (b *Backend) StartEncounter(e *core.Encounter) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	e.ID = b.idCounter

	// Reset all collections
	b.log = core.EventLog{Encounter: *e}
	b.started = true
	b.lastExportPath = ""
	return nil
}

// EndEncounter finalizes and exports the event log.
func (b *Backend) EndEncounter() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil
	}
	b.log.EndTime = time.Now()
	b.started = false
	return b.exportJSON()
}

// GetExportedFilePath returns the path of the last export, empty before the
// first encounter ends.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// Snapshot returns a copy of the current event log.
func (b *Backend) Snapshot() core.EventLog {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cp := b.log
	cp.Movements = append([]core.MovementEvent(nil), b.log.Movements...)
	cp.Undos = append([]core.UndoEvent(nil), b.log.Undos...)
	cp.ScaleChanges = append([]core.ScaleChangeEvent(nil), b.log.ScaleChanges...)
	cp.RoundResets = append([]core.RoundResetEvent(nil), b.log.RoundResets...)
	cp.Damages = append([]core.DamageEvent(nil), b.log.Damages...)
	cp.Mishaps = append([]core.MishapEvent(nil), b.log.Mishaps...)
	return cp
}

// RecordMovement appends a movement event
func (b *Backend) RecordMovement(e *core.MovementEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Movements = append(b.log.Movements, *e)
	return nil
}

// RecordUndo appends an undo event
func (b *Backend) RecordUndo(e *core.UndoEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Undos = append(b.log.Undos, *e)
	return nil
}

// RecordScaleChange appends a scale change event
func (b *Backend) RecordScaleChange(e *core.ScaleChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.ScaleChanges = append(b.log.ScaleChanges, *e)
	return nil
}

// RecordRoundReset appends a round reset event
func (b *Backend) RecordRoundReset(e *core.RoundResetEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.RoundResets = append(b.log.RoundResets, *e)
	return nil
}

// RecordDamage appends a damage event
func (b *Backend) RecordDamage(e *core.DamageEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Damages = append(b.log.Damages, *e)
	return nil
}

// RecordMishap appends a mishap event. The mishap is copied so later edits by
// the caller do not leak into the log.
func (b *Backend) RecordMishap(e *core.MishapEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ev := *e
	if e.Mishap != nil {
		m := *e.Mishap
		ev.Mishap = &m
	}
	b.log.Mishaps = append(b.log.Mishaps, ev)
	return nil
}
