// Package postgres implements the storage.Backend interface on PostgreSQL.
// Queueing and batch writes come from the embedded GORM backend.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/chase/internal/database"
	gormstorage "github.com/OCAP2/chase/internal/storage/gorm"

	"gorm.io/gorm"
)

// MaxOpenConns caps the connection pool.
const MaxOpenConns = 10

// Opener opens the database connection. It defaults to the db.* settings.
type Opener func() (*gorm.DB, error)

// Backend is the GORM backend bound to a PostgreSQL connection opened on Init.
type Backend struct {
	*gormstorage.Backend
	open Opener
	log  *slog.Logger
}

// New creates a new PostgreSQL storage backend. A nil opener uses the db.* settings.
func New(open Opener, logger *slog.Logger) *Backend {
	if open == nil {
		open = database.GetPostgresDBStandalone
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{open: open, log: logger}
}

// Init connects, validates the connection and initializes the embedded GORM backend.
func (b *Backend) Init() error {
	db, err := b.open()
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(MaxOpenConns)

	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: db, Logger: b.log})
	if err := b.Backend.Init(); err != nil {
		return err
	}
	b.log.Info("Connected to database", "dialect", db.Name())
	return nil
}

// Close closes the embedded backend and the connection pool.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	err := b.Backend.Close()
	if sqlDB, dbErr := b.Backend.DB().DB(); dbErr == nil {
		sqlDB.Close()
	}
	return err
}
