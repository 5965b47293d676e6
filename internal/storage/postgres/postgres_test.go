package postgres

import (
	"errors"
	"testing"

	"github.com/OCAP2/chase/internal/storage"
	"github.com/OCAP2/chase/pkg/core"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

// sqliteOpener stands in for a postgres connection so the wiring can be
// exercised without a server. The shared cache lets every pooled connection
// see the same database.
func sqliteOpener() (*gorm.DB, error) {
	return gorm.Open(sqlite.Open("file:postgres_wiring?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

func TestInit_ConnectError(t *testing.T) {
	b := New(func() (*gorm.DB, error) { return nil, errors.New("connection refused") }, nil)
	err := b.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to postgres")
	assert.NoError(t, b.Close())
}

func TestInit_MigratesAndRecords(t *testing.T) {
	b := New(sqliteOpener, nil)
	require.NoError(t, b.Init())

	enc := &core.Encounter{Name: "Highway"}
	require.NoError(t, b.StartEncounter(enc))
	assert.NotZero(t, enc.ID)

	require.NoError(t, b.RecordScaleChange(&core.ScaleChangeEvent{From: core.TierStrategic, To: core.TierApproach, Distance: 1800}))
	assert.Equal(t, 1, b.Pending())
	require.NoError(t, b.EndEncounter())
	assert.Equal(t, 0, b.Pending())
	require.NoError(t, b.Close())
}
