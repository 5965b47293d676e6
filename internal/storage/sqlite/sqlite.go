// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the only SQLite-specific concerns are creating
// the in-memory DB and the periodic disk dump.
package sqlitestorage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/internal/database"
	gormstorage "github.com/OCAP2/chase/internal/storage/gorm"

	"gorm.io/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      config.SQLiteConfig
	log      *slog.Logger
	stopChan chan struct{}
}

// New creates a new SQLite storage backend.
func New(cfg config.SQLiteConfig, logger *slog.Logger) (*Backend, error) {
	db, err := database.GetSqliteDBStandalone("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	return newWithDB(db, cfg, logger), nil
}

func newWithDB(db *gorm.DB, cfg config.SQLiteConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		Backend:  gormstorage.New(gormstorage.Dependencies{DB: db, Logger: logger}),
		db:       db,
		cfg:      cfg,
		log:      logger,
		stopChan: make(chan struct{}),
	}
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.Path != "" && b.cfg.DumpInterval > 0 {
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, closes the embedded GORM backend and
// writes a final dump so the file reflects every flushed event.
func (b *Backend) Close() error {
	select {
	case <-b.stopChan:
		return nil
	default:
		close(b.stopChan)
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.cfg.Path == "" {
		return nil
	}
	return b.Dump()
}

// EndEncounter flushes the encounter and dumps the database so a finished
// encounter is on disk even if the process dies before Close.
func (b *Backend) EndEncounter() error {
	if err := b.Backend.EndEncounter(); err != nil {
		return err
	}
	if b.cfg.Path == "" {
		return nil
	}
	return b.Dump()
}

// GetExportedFilePath returns the dump file.
func (b *Backend) GetExportedFilePath() string {
	return b.cfg.Path
}

// Dump writes a point-in-time snapshot of the database to the configured path.
func (b *Backend) Dump() error {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.Path); err != nil {
		b.log.Error("Error dumping to disk", "path", b.cfg.Path, "error", err)
		return err
	}
	b.log.Debug("Dumped to disk", "path", b.cfg.Path, "duration", time.Since(start))
	return nil
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Backend.Flush(); err != nil {
				b.log.Warn("Flush before dump incomplete", "error", err)
			}
			_ = b.Dump()
		}
	}
}
