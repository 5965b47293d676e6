package factory

import (
	"testing"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/internal/influx"
	"github.com/OCAP2/chase/internal/storage"
	"github.com/OCAP2/chase/internal/storage/memory"
	"github.com/OCAP2/chase/internal/storage/postgres"
	"github.com/OCAP2/chase/internal/storage/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackend_Single(t *testing.T) {
	b, err := NewBackend(config.StorageConfig{Type: "memory"}, config.InfluxConfig{}, Dependencies{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	b, err = NewBackend(config.StorageConfig{Type: "none"}, config.InfluxConfig{}, Dependencies{})
	require.NoError(t, err)
	assert.IsType(t, storage.Nop{}, b)

	b, err = NewBackend(config.StorageConfig{Type: "postgres"}, config.InfluxConfig{}, Dependencies{})
	require.NoError(t, err)
	assert.IsType(t, &postgres.Backend{}, b)
}

func TestNewBackend_Combined(t *testing.T) {
	cfg := config.StorageConfig{
		Type:      "memory, websocket",
		WebSocket: config.WebSocketConfig{URL: "ws://localhost:5000/stream"},
	}
	b, err := NewBackend(cfg, config.InfluxConfig{Enabled: true}, Dependencies{LogsDir: t.TempDir()})
	require.NoError(t, err)

	multi, ok := b.(*storage.Multi)
	require.True(t, ok)
	require.Len(t, multi.Backends(), 3)
	assert.IsType(t, &memory.Backend{}, multi.Backends()[0])
	assert.IsType(t, &websocket.Backend{}, multi.Backends()[1])
	assert.IsType(t, &influx.Backend{}, multi.Backends()[2])
}

func TestNewBackend_Errors(t *testing.T) {
	_, err := NewBackend(config.StorageConfig{Type: "tape"}, config.InfluxConfig{}, Dependencies{})
	assert.EqualError(t, err, "unknown storage type: tape")

	_, err = NewBackend(config.StorageConfig{Type: "websocket"}, config.InfluxConfig{}, Dependencies{})
	assert.Error(t, err)
}
