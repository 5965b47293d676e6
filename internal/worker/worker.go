// Package worker binds the engine commands to an encounter: it looks entity
// snapshots up in the cache, calls the resolvers and commits what they propose.
package worker

import (
	"errors"
	"log/slog"

	"github.com/OCAP2/chase/internal/cache"
	"github.com/OCAP2/chase/internal/encounter"
	"github.com/OCAP2/chase/internal/parser"
)

// ErrUnknownEntity is returned when a command names an entity the cache does not hold.
var ErrUnknownEntity = errors.New("unknown entity")

// LogWriter receives :LOG: notes.
type LogWriter interface {
	WriteLog(functionName, data, level string)
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Encounter   *encounter.Context
	EntityCache *cache.EntityCache
	Logger      *slog.Logger
	// LogWriter defaults to Logger at info level.
	LogWriter LogWriter
}

// Manager runs commands against one encounter.
type Manager struct {
	deps      Dependencies
	log       *slog.Logger
	processed cache.SafeCounter
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	if deps.EntityCache == nil {
		deps.EntityCache = cache.NewEntityCache()
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.LogWriter == nil {
		deps.LogWriter = slogWriter{log}
	}
	return &Manager{deps: deps, log: log}
}

type slogWriter struct{ log *slog.Logger }

func (w slogWriter) WriteLog(functionName, data, _ string) {
	w.log.Info(data, "function", functionName)
}

// LoadScenario puts the scenario's starting entities into the cache.
func (m *Manager) LoadScenario(s *parser.Scenario) {
	for _, v := range s.Vehicles {
		m.deps.EntityCache.AddVehicle(v)
	}
	for _, c := range s.Creatures {
		m.deps.EntityCache.AddCreature(c)
	}
	m.log.Debug("Scenario entities cached", "vehicles", len(s.Vehicles), "creatures", len(s.Creatures))
}

// Processed returns how many commands completed without error.
func (m *Manager) Processed() int {
	return m.processed.Value()
}
