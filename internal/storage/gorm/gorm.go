// Package gormstorage implements the storage.Backend interface on GORM with
// internal queues and a background DB writer goroutine. The postgres and
// sqlite backends embed it and only differ in how the connection is opened.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/chase/internal/model"
	"github.com/OCAP2/chase/internal/model/convert"
	"github.com/OCAP2/chase/internal/queue"
	"github.com/OCAP2/chase/pkg/core"

	"gorm.io/gorm"
)

// DefaultFlushInterval is how often the writer drains the queues.
const DefaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Movements    *queue.Queue[model.Movement]
	Undos        *queue.Queue[model.Undo]
	ScaleChanges *queue.Queue[model.ScaleChange]
	RoundResets  *queue.Queue[model.RoundReset]
	Damages      *queue.Queue[model.DamageEvent]
	Mishaps      *queue.Queue[model.MishapEvent]
}

func newQueues() *queues {
	return &queues{
		Movements:    queue.New[model.Movement](),
		Undos:        queue.New[model.Undo](),
		ScaleChanges: queue.New[model.ScaleChange](),
		RoundResets:  queue.New[model.RoundReset](),
		Damages:      queue.New[model.DamageEvent](),
		Mishaps:      queue.New[model.MishapEvent](),
	}
}

func (q *queues) pending() int {
	return q.Movements.Len() + q.Undos.Len() + q.ScaleChanges.Len() +
		q.RoundResets.Len() + q.Damages.Len() + q.Mishaps.Len()
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
// Without a DB it runs in queue-only mode, which the tests use.
type Backend struct {
	deps        Dependencies
	queues      *queues
	encounterID atomic.Uint64
	started     atomic.Bool

	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection, nil in queue-only mode.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init creates internal queues, runs schema migration, and starts the DB writer goroutine.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})

	if b.deps.DB == nil {
		close(b.done)
		return nil
	}

	b.deps.Logger.Info("Migrating schema", "dialect", b.deps.DB.Name())
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	go b.writerLoop()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	select {
	case <-b.stopChan:
		return nil
	default:
		close(b.stopChan)
	}
	<-b.done
	return b.Flush()
}

// StartEncounter inserts the encounter row and assigns the DB-generated ID.
func (b *Backend) StartEncounter(e *core.Encounter) error {
	if b.deps.DB != nil {
		row := convert.CoreToEncounter(*e)
		if err := b.deps.DB.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert encounter: %w", err)
		}
		e.ID = row.ID
	}
	b.encounterID.Store(uint64(e.ID))
	b.started.Store(true)
	return nil
}

// SetEncounterID sets the current encounter ID for the DB writer (used by CLI tools).
func (b *Backend) SetEncounterID(id uint) {
	b.encounterID.Store(uint64(id))
	b.started.Store(true)
}

// EndEncounter writes the remaining queues and stamps the end time.
// Ending without a started encounter is a no-op.
func (b *Backend) EndEncounter() error {
	if !b.started.Swap(false) {
		return nil
	}
	if err := b.Flush(); err != nil {
		return err
	}
	if b.deps.DB == nil {
		return nil
	}
	id := uint(b.encounterID.Load())
	if err := b.deps.DB.Model(&model.Encounter{}).Where("id = ?", id).
		Update("end_time", time.Now()).Error; err != nil {
		return fmt.Errorf("failed to close encounter %d: %w", id, err)
	}
	return nil
}

// RecordMovement converts and queues a movement.
func (b *Backend) RecordMovement(e *core.MovementEvent) error {
	b.queues.Movements.Push(convert.CoreToMovement(*e))
	return nil
}

// RecordUndo converts and queues an undo.
func (b *Backend) RecordUndo(e *core.UndoEvent) error {
	b.queues.Undos.Push(convert.CoreToUndo(*e))
	return nil
}

// RecordScaleChange converts and queues a scale change.
func (b *Backend) RecordScaleChange(e *core.ScaleChangeEvent) error {
	b.queues.ScaleChanges.Push(convert.CoreToScaleChange(*e))
	return nil
}

// RecordRoundReset converts and queues a round reset.
func (b *Backend) RecordRoundReset(e *core.RoundResetEvent) error {
	b.queues.RoundResets.Push(convert.CoreToRoundReset(*e))
	return nil
}

// RecordDamage converts and queues a damage event.
func (b *Backend) RecordDamage(e *core.DamageEvent) error {
	b.queues.Damages.Push(convert.CoreToDamageEvent(*e))
	return nil
}

// RecordMishap converts and queues a mishap roll.
func (b *Backend) RecordMishap(e *core.MishapEvent) error {
	b.queues.Mishaps.Push(convert.CoreToMishapEvent(*e))
	return nil
}

// Pending returns the number of queued rows not yet written.
func (b *Backend) Pending() int {
	if b.queues == nil {
		return 0
	}
	return b.queues.pending()
}

// writeQueue writes all items from a queue to the database in a transaction.
// Failed batches are pushed back for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, prepare func([]T)) error {
	if q.Len() == 0 {
		return nil
	}

	items := q.GetAndEmpty()
	if prepare != nil {
		prepare(items)
	}

	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log.Error("Error writing batch", "table", name, "count", len(items), "error", err)
		tx.Rollback()
		q.Push(items...)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tx.Commit().Error; err != nil {
		q.Push(items...)
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}
	log.Debug("Wrote batch", "table", name, "count", len(items))
	return nil
}

// stamp sets the encounter foreign key on every row of a batch.
func stamp[T any](id uint, set func(*T, uint)) func([]T) {
	return func(items []T) {
		for i := range items {
			set(&items[i], id)
		}
	}
}

// Flush drains every queue into the database. In queue-only mode it is a no-op.
func (b *Backend) Flush() error {
	if b.deps.DB == nil || b.queues == nil {
		return nil
	}
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	db := b.deps.DB
	log := b.deps.Logger
	id := uint(b.encounterID.Load())

	return errors.Join(
		writeQueue(db, b.queues.RoundResets, "round resets", log,
			stamp(id, func(r *model.RoundReset, id uint) { r.EncounterID = id })),
		writeQueue(db, b.queues.Movements, "movements", log,
			stamp(id, func(m *model.Movement, id uint) { m.EncounterID = id })),
		writeQueue(db, b.queues.Undos, "undos", log,
			stamp(id, func(u *model.Undo, id uint) { u.EncounterID = id })),
		writeQueue(db, b.queues.ScaleChanges, "scale changes", log,
			stamp(id, func(s *model.ScaleChange, id uint) { s.EncounterID = id })),
		writeQueue(db, b.queues.Damages, "damage events", log,
			stamp(id, func(d *model.DamageEvent, id uint) { d.EncounterID = id })),
		writeQueue(db, b.queues.Mishaps, "mishap events", log,
			stamp(id, func(m *model.MishapEvent, id uint) { m.EncounterID = id })),
	)
}

// writerLoop periodically drains queues into the DB until Close.
func (b *Backend) writerLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.Logger.Warn("DB writer cycle incomplete", "error", err)
			}
		}
	}
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// LoadEventLog reads a stored encounter and all of its events back into an event log.
func LoadEventLog(db *gorm.DB, encounterID uint) (core.EventLog, error) {
	var enc model.Encounter
	err := db.
		Preload("Movements", byID).
		Preload("Undos", byID).
		Preload("ScaleChanges", byID).
		Preload("RoundResets", byID).
		Preload("DamageEvents", byID).
		Preload("MishapEvents", byID).
		First(&enc, encounterID).Error
	if err != nil {
		return core.EventLog{}, fmt.Errorf("failed to load encounter %d: %w", encounterID, err)
	}
	return convert.EncounterLog(enc), nil
}
