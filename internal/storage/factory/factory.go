// Package factory builds the configured event sink.
package factory

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/internal/influx"
	"github.com/OCAP2/chase/internal/storage"
	"github.com/OCAP2/chase/internal/storage/memory"
	"github.com/OCAP2/chase/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/chase/internal/storage/sqlite"
	"github.com/OCAP2/chase/internal/storage/websocket"
	"github.com/rs/zerolog"
)

// Dependencies are shared by every backend the factory builds.
type Dependencies struct {
	Logger *slog.Logger
	// MetricsLogger is handed to the influx manager.
	MetricsLogger zerolog.Logger
	// LogsDir holds the influx backup file.
	LogsDir string
}

// NewBackend creates a storage backend based on configuration. storage.type
// may name several backends separated by commas; the first one assigns
// encounter IDs. With influx enabled, its backend is appended.
func NewBackend(cfg config.StorageConfig, influxCfg config.InfluxConfig, deps Dependencies) (storage.Backend, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	var backends []storage.Backend
	for _, typ := range strings.Split(cfg.Type, ",") {
		b, err := newOne(strings.TrimSpace(typ), cfg, deps)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}

	if influxCfg.Enabled {
		backup := filepath.Join(deps.LogsDir, "influx_backup.log.gz")
		backends = append(backends, influx.NewBackend(influx.NewManager(influxCfg, deps.MetricsLogger, backup)))
	}

	if len(backends) == 1 {
		return backends[0], nil
	}
	return storage.NewMulti(backends...), nil
}

func newOne(typ string, cfg config.StorageConfig, deps Dependencies) (storage.Backend, error) {
	switch typ {
	case "memory":
		return memory.New(cfg.Memory), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, deps.Logger)
	case "postgres":
		return postgres.New(nil, deps.Logger), nil
	case "websocket":
		if cfg.WebSocket.URL == "" {
			return nil, fmt.Errorf("websocket storage requires storage.websocket.url")
		}
		return websocket.New(cfg.WebSocket, deps.Logger), nil
	case "none", "":
		return storage.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", typ)
	}
}
