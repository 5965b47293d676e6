// internal/storage/memory/export_test.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/OCAP2/chase/internal/config"
	v1 "github.com/OCAP2/chase/internal/storage/memory/export/v1"
	"github.com/OCAP2/chase/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSampleEncounter(t *testing.T, b *Backend) {
	t.Helper()
	enc := &core.Encounter{
		Name:      "Bridge Run: Night",
		StartTime: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Seed:      7,
	}
	require.NoError(t, b.StartEncounter(enc))
	require.NoError(t, b.RecordMovement(&core.MovementEvent{
		EncounterID: enc.ID,
		Time:        enc.StartTime.Add(time.Second),
		Round:       1,
		Entity:      core.EntityKey{Kind: core.KindVehicle, ID: "rig"},
		To:          core.Position{X: 30, Y: 0},
		FeetMoved:   30,
	}))
	require.NoError(t, b.EndEncounter())
}

func TestExport_PlainJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: false})
	recordSampleEncounter(t, b)

	path := b.GetExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "Bridge_Run__Night_20240115_103000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var export v1.Export
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, v1.FormatVersion, export.FormatVersion)
	assert.Equal(t, "Bridge Run: Night", export.EncounterName)
	assert.Equal(t, int64(7), export.Seed)
	require.Len(t, export.Entities, 1)
	assert.Equal(t, "rig", export.Entities[0].ID)
	assert.Equal(t, 30.0, export.Entities[0].FeetMoved)
	assert.NotEmpty(t, export.EndTime)
}

func TestExport_Gzip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	recordSampleEncounter(t, b)

	path := b.GetExportedFilePath()
	require.True(t, strings.HasSuffix(path, ".json.gz"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var export v1.Export
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	assert.Equal(t, 1, export.EndRound)
	require.Len(t, export.Events, 1)
	assert.Equal(t, v1.KindMoved, export.Events[0][1])
}

func TestExport_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	b := New(config.MemoryConfig{OutputDir: filepath.Join(blocker, "sub")})
	require.NoError(t, b.StartEncounter(&core.Encounter{Name: "x"}))
	err := b.EndEncounter()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
}
