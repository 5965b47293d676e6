package sqlitestorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/internal/database"
	"github.com/OCAP2/chase/internal/model"
	"github.com/OCAP2/chase/internal/storage"
	gormstorage "github.com/OCAP2/chase/internal/storage/gorm"
	"github.com/OCAP2/chase/pkg/core"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	_ storage.Backend    = (*Backend)(nil)
	_ storage.Exportable = (*Backend)(nil)
)

func newTestBackend(t *testing.T, cfg config.SQLiteConfig) *Backend {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return newWithDB(db, cfg, nil)
}

func TestEndEncounter_DumpsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chase.db")
	b := newTestBackend(t, config.SQLiteConfig{Path: path})
	require.NoError(t, b.Init())
	defer b.Close()

	enc := &core.Encounter{Name: "Dump Run", StartTime: time.Now()}
	require.NoError(t, b.StartEncounter(enc))
	require.NoError(t, b.RecordMovement(&core.MovementEvent{
		Entity:    core.EntityKey{Kind: core.KindCreature, ID: "scout"},
		To:        core.Position{X: 25},
		FeetMoved: 25,
	}))
	require.NoError(t, b.EndEncounter())
	assert.Equal(t, path, b.GetExportedFilePath())

	dumped, err := database.GetSqliteDBStandalone(path)
	require.NoError(t, err)
	var count int64
	require.NoError(t, dumped.Model(&model.Movement{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	log, err := gormstorage.LoadEventLog(dumped, enc.ID)
	require.NoError(t, err)
	require.Len(t, log.Movements, 1)
	assert.Equal(t, core.Position{X: 25}, log.Movements[0].To)
}

func TestNoPath_NoDump(t *testing.T) {
	b := newTestBackend(t, config.SQLiteConfig{DumpInterval: time.Millisecond})
	require.NoError(t, b.Init())

	require.NoError(t, b.StartEncounter(&core.Encounter{Name: "Memory Only"}))
	require.NoError(t, b.EndEncounter())
	assert.Empty(t, b.GetExportedFilePath())
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}
