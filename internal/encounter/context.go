// Package encounter owns the mutable state of one chase encounter: the round
// clock, the governing tier, the movement ledger and the dice. Every resolver
// call from a host goes through a Context.
package encounter

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/chase/internal/dice"
	"github.com/OCAP2/chase/internal/geo"
	"github.com/OCAP2/chase/internal/ledger"
	"github.com/OCAP2/chase/internal/mishap"
	"github.com/OCAP2/chase/internal/scale"
	"github.com/OCAP2/chase/internal/storage"
	"github.com/OCAP2/chase/pkg/core"
)

var (
	// ErrUnknownZone is returned when a vehicle zone ID is not on the template.
	ErrUnknownZone = errors.New("unknown vehicle zone")
	// ErrUnknownTemplate is returned when a vehicle references a template that was not configured.
	ErrUnknownTemplate = errors.New("unknown vehicle template")
)

// Config is the static configuration of an encounter.
type Config struct {
	Name              string
	Tag               string
	Table             *scale.Table
	ElevationZones    []core.ElevationZone
	Templates         []core.VehicleTemplate
	Bounds            *geo.Bounds
	MishapTable       []mishap.Entry
	MaxMishapAttempts int
	// Seed drives every mishap roll. 0 draws a fresh seed.
	Seed int64
}

// Dependencies are the collaborators a Context writes to.
type Dependencies struct {
	Sink   storage.Backend
	Logger *slog.Logger
	// Source overrides the seeded dice, mainly for tests.
	Source dice.Source
	// Now overrides the clock used to stamp events.
	Now func() time.Time
}

// Context is the per-encounter state. All methods are safe for concurrent use
// and each state-changing call is applied atomically.
type Context struct {
	mu sync.Mutex

	encounter core.Encounter
	policy    *scale.Policy
	ledger    *ledger.Ledger
	mishaps   *mishap.Resolver
	zones     []core.ElevationZone
	templates map[string]core.VehicleTemplate
	bounds    *geo.Bounds

	sink storage.Backend
	log  *slog.Logger
	now  func() time.Time

	// id, round and phase are mirrored here so log attribute providers can
	// read them without taking mu.
	id    atomic.Uint64
	round atomic.Int64
	phase atomic.Value
}

// New builds a Context from configuration. The encounter is not started
// until Start is called.
func New(cfg Config, deps Dependencies) (*Context, error) {
	table := cfg.Table
	if table == nil {
		table = scale.MustDefaultTable()
	}

	templates := make(map[string]core.VehicleTemplate, len(cfg.Templates))
	for _, t := range cfg.Templates {
		if _, dup := templates[t.ID]; dup {
			return nil, fmt.Errorf("duplicate vehicle template %q", t.ID)
		}
		templates[t.ID] = t
	}

	seed := cfg.Seed
	if seed == 0 {
		s, err := dice.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("failed to seed dice: %w", err)
		}
		seed = s
	}
	src := deps.Source
	if src == nil {
		src = dice.NewSeeded(seed)
	}

	sink := deps.Sink
	if sink == nil {
		sink = storage.Nop{}
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	c := &Context{
		encounter: core.Encounter{Name: cfg.Name, Tag: cfg.Tag, Seed: seed},
		policy:    scale.NewPolicy(table),
		ledger:    ledger.New(),
		mishaps:   mishap.NewResolver(cfg.MishapTable, src, cfg.MaxMishapAttempts),
		zones:     cfg.ElevationZones,
		templates: templates,
		bounds:    cfg.Bounds,
		sink:      sink,
		log:       log,
		now:       now,
	}
	c.phase.Store(core.PhaseSetup)
	return c, nil
}

// Start registers the encounter with the sink, which assigns its ID.
func (c *Context) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.encounter.StartTime = c.now()
	if err := c.sink.StartEncounter(&c.encounter); err != nil {
		return fmt.Errorf("failed to start encounter: %w", err)
	}
	c.id.Store(uint64(c.encounter.ID))
	c.log.Info("Encounter started",
		"encounterId", c.encounter.ID,
		"name", c.encounter.Name,
		"seed", c.encounter.Seed,
		"tier", c.policy.Current().Name)
	return nil
}

// End closes the encounter in the sink.
func (c *Context) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sink.EndEncounter(); err != nil {
		return fmt.Errorf("failed to end encounter: %w", err)
	}
	c.log.Info("Encounter ended", "encounterId", c.encounter.ID)
	return nil
}

// Encounter returns a copy of the encounter record.
func (c *Context) Encounter() core.Encounter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encounter
}

// Round returns the current round and phase.
func (c *Context) Round() (int, core.Phase) {
	return int(c.round.Load()), c.currentPhase()
}

func (c *Context) currentPhase() core.Phase {
	p, _ := c.phase.Load().(core.Phase)
	return p
}

// LogAttrs returns the encounter attributes attached to every log record.
func (c *Context) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Uint64("encounterId", c.id.Load()),
		slog.Int64("round", c.round.Load()),
		slog.String("phase", string(c.currentPhase())),
	}
}

// CurrentTier returns the governing tier.
func (c *Context) CurrentTier() core.ScaleTier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy.Current()
}

// Template looks up a configured vehicle template.
func (c *Context) Template(id string) (core.VehicleTemplate, error) {
	t, ok := c.templates[id]
	if !ok {
		return core.VehicleTemplate{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return t, nil
}

func (c *Context) record(kind string, err error) {
	if err != nil {
		c.log.Error("Failed to record event", "event", kind, "error", err)
	}
}
