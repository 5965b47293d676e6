package influx

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/internal/storage"
	"github.com/OCAP2/chase/pkg/core"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ storage.Backend = (*Backend)(nil)

// unhealthyServer answers every request, including /ping, with a 500.
func unhealthyServer(t *testing.T) config.InfluxConfig {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return config.InfluxConfig{
		Enabled:  true,
		Protocol: u.Scheme,
		Host:     u.Hostname(),
		Port:     u.Port(),
		Org:      "chase-metrics",
		Bucket:   "chase",
	}
}

func readBackup(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	return string(data)
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	assert.Error(t, m.Connect(context.Background()))
}

func TestServerURL(t *testing.T) {
	m := NewManager(config.InfluxConfig{Protocol: "https", Host: "metrics", Port: "8086"}, zerolog.Nop(), "")
	assert.Equal(t, "https://metrics:8086", m.ServerURL())
}

func TestWritePoint_NoWriter(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	err := m.WritePoint(influxdb2_write.NewPointWithMeasurement("x").AddField("v", 1))
	assert.Error(t, err)
}

func TestBackend_FallsBackToBackupFile(t *testing.T) {
	cfg := unhealthyServer(t)
	backup := filepath.Join(t.TempDir(), "influx_backup.log.gz")

	b := NewBackend(NewManager(cfg, zerolog.Nop(), backup))
	require.NoError(t, b.Init())
	assert.False(t, b.m.IsValid)

	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, b.StartEncounter(&core.Encounter{ID: 5, Name: "Dune", StartTime: at, Seed: 8}))
	require.NoError(t, b.RecordMovement(&core.MovementEvent{
		Time:      at.Add(time.Second),
		Tier:      core.TierTactical,
		Phase:     core.PhaseCombat,
		Entity:    core.EntityKey{Kind: core.KindVehicle, ID: "rig"},
		To:        core.Position{X: 10, Y: 20},
		FeetMoved: 22.5,
	}))
	require.NoError(t, b.RecordMishap(&core.MishapEvent{
		Time:      at.Add(2 * time.Second),
		VehicleID: "rig",
		Roll:      20,
		Mishap:    &core.Mishap{Name: "Spinout"},
	}))
	require.NoError(t, b.EndEncounter())
	require.NoError(t, b.Close())

	content := readBackup(t, backup)
	assert.NotContains(t, content, "\n\n", "one point per line")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], MeasurementEncounter+","))
	assert.Contains(t, lines[0], "encounterId=5")
	assert.True(t, strings.HasPrefix(lines[1], MeasurementMovement+","))
	assert.Contains(t, lines[1], "entityId=rig")
	assert.Contains(t, lines[1], "feetMoved=22.5")
	assert.Contains(t, lines[2], "mishap=Spinout")
	assert.Contains(t, lines[2], "roll=20i")
	assert.Contains(t, lines[3], `state="ended"`)
}
