package worker

import (
	"fmt"

	"github.com/OCAP2/chase/internal/arc"
	"github.com/OCAP2/chase/internal/dispatcher"
	"github.com/OCAP2/chase/internal/ledger"
	"github.com/OCAP2/chase/internal/mishap"
	"github.com/OCAP2/chase/internal/parser"
	"github.com/OCAP2/chase/pkg/core"
)

// RoundResult is the reply to :ROUND:.
type RoundResult struct {
	Round int        `json:"round"`
	Phase core.Phase `json:"phase"`
	Reset bool       `json:"reset"`
}

// MoveResult is the reply to :MOVE:. Remaining is the budget left after the move.
type MoveResult struct {
	ledger.MoveResult
	Entity    core.EntityKey `json:"entity"`
	Remaining float64        `json:"remaining"`
}

// UndoResult is the reply to :UNDO:.
type UndoResult struct {
	Undone bool               `json:"undone"`
	Undo   *ledger.UndoResult `json:"undo,omitempty"`
}

// MishapResult is the reply to :MISHAP:. Roll is nil when no valid mishap came up.
type MishapResult struct {
	Vehicle string             `json:"vehicle"`
	Found   bool               `json:"found"`
	Roll    *mishap.RollResult `json:"roll,omitempty"`
}

// DamageResult is the reply to :DAMAGE: with the vehicle as committed.
type DamageResult struct {
	mishap.DamageResult
	Vehicle core.Vehicle `json:"vehicle"`
}

// RegisterHandlers registers all engine commands with the dispatcher.
// Engine handlers are synchronous so a replay sees results in command order.
// Notes go through a queue; call Drain on the dispatcher before reading
// Processed.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// State changes - serialized against each other so the ledger and the
	// entity cache move together
	d.Register(parser.CmdRound, m.handleRound, dispatcher.Serialized(), dispatcher.Logged())
	d.Register(parser.CmdScaleResolve, m.handleScaleResolve, dispatcher.Serialized(), dispatcher.Logged())
	d.Register(parser.CmdScaleSelect, m.handleScaleSelect, dispatcher.Serialized(), dispatcher.Logged())
	d.Register(parser.CmdMove, m.handleMove, dispatcher.Serialized(), dispatcher.Logged())
	d.Register(parser.CmdUndo, m.handleUndo, dispatcher.Serialized(), dispatcher.Logged())
	d.Register(parser.CmdDamage, m.handleDamage, dispatcher.Serialized(), dispatcher.Logged())
	d.Register(parser.CmdMishap, m.handleMishap, dispatcher.Serialized(), dispatcher.Logged())

	// Pure queries
	d.Register(parser.CmdArcCover, m.handleArcCover, dispatcher.Logged())
	d.Register(parser.CmdElevation, m.handleElevation, dispatcher.Logged())

	// Notes only touch the session log
	d.Register(parser.CmdLog, m.handleLog, dispatcher.Buffered(logQueueSize), dispatcher.Blocking())
}

const logQueueSize = 64

func (m *Manager) done(result any, err error) (any, error) {
	if err == nil {
		m.processed.Inc()
	}
	return result, err
}

func (m *Manager) entity(key core.EntityKey) (core.Entity, error) {
	e, ok := m.deps.EntityCache.Entity(key)
	if !ok {
		return core.Entity{}, fmt.Errorf("%w: %s", ErrUnknownEntity, key)
	}
	return e, nil
}

func (m *Manager) vehicle(id string) (core.Vehicle, error) {
	v, ok := m.deps.EntityCache.GetVehicle(id)
	if !ok {
		return core.Vehicle{}, fmt.Errorf("%w: vehicle %q", ErrUnknownEntity, id)
	}
	return v, nil
}

func (m *Manager) handleRound(e dispatcher.Event) (any, error) {
	var req parser.RoundRequest
	if err := e.Decode(&req); err != nil {
		return nil, err
	}
	reset := m.deps.Encounter.SetRound(req.Round, req.Phase)
	round, phase := m.deps.Encounter.Round()
	return m.done(RoundResult{Round: round, Phase: phase, Reset: reset}, nil)
}

func (m *Manager) handleScaleResolve(e dispatcher.Event) (any, error) {
	var req parser.ScaleResolveRequest
	if err := e.Decode(&req); err != nil {
		return nil, err
	}

	entities := m.deps.EntityCache.Entities()
	if len(req.Entities) > 0 {
		entities = make([]core.Entity, 0, len(req.Entities))
		for _, key := range req.Entities {
			ent, err := m.entity(key)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve scale: %w", err)
			}
			entities = append(entities, ent)
		}
	}
	return m.done(m.deps.Encounter.ResolveScale(entities), nil)
}

func (m *Manager) handleScaleSelect(e dispatcher.Event) (any, error) {
	var req parser.ScaleSelectRequest
	if err := e.Decode(&req); err != nil {
		return nil, err
	}
	tier, err := m.deps.Encounter.SelectScale(req.Tier)
	if err != nil {
		return nil, fmt.Errorf("failed to select scale: %w", err)
	}
	return m.done(tier, nil)
}

func (m *Manager) handleMove(e dispatcher.Event) (any, error) {
	var req parser.MoveRequest
	if err := e.Decode(&req); err != nil {
		return nil, err
	}
	ent, err := m.entity(req.Entity)
	if err != nil {
		return nil, fmt.Errorf("failed to move: %w", err)
	}

	res := m.deps.Encounter.RequestMove(ent, req.Delta)
	if !res.Rejected && !res.AcceptedDelta.IsZero() {
		m.deps.EntityCache.CommitPosition(req.Entity, res.NewPosition)
	}
	return m.done(MoveResult{
		MoveResult: res,
		Entity:     req.Entity,
		Remaining:  m.deps.Encounter.Remaining(ent),
	}, nil)
}

func (m *Manager) handleUndo(e dispatcher.Event) (any, error) {
	u, ok := m.deps.Encounter.UndoLastMove()
	if !ok {
		return m.done(UndoResult{}, nil)
	}
	if !m.deps.EntityCache.CommitPosition(u.Entity, u.Restored) {
		m.log.Warn("Undone entity is not cached", "entity", u.Entity.String())
	}
	return m.done(UndoResult{Undone: true, Undo: &u}, nil)
}

func (m *Manager) handleArcCover(e dispatcher.Event) (any, error) {
	var req parser.CoverRequest
	if err := e.Decode(&req); err != nil {
		return nil, err
	}
	shooter, err := m.entity(req.Attacker)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cover: %w", err)
	}
	target, err := m.vehicle(req.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cover: %w", err)
	}

	attacker := arc.Attacker{Position: shooter.Movable().CurrentPosition()}
	switch shooter.Kind {
	case core.KindVehicle:
		attacker.VehicleID = shooter.Vehicle.ID
	case core.KindCreature:
		attacker.VehicleID = shooter.Creature.AssignedVehicleID
	}

	res, err := m.deps.Encounter.AttackArcAndCover(attacker, &target, req.Zone)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cover: %w", err)
	}
	return m.done(res, nil)
}

func (m *Manager) handleElevation(e dispatcher.Event) (any, error) {
	var req parser.ElevationRequest
	if err := e.Decode(&req); err != nil {
		return nil, err
	}
	attacker, err := m.entity(req.Attacker)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve elevation: %w", err)
	}
	target, err := m.entity(req.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve elevation: %w", err)
	}
	fx := m.deps.Encounter.ElevationEffects(
		attacker.Movable().CurrentPosition(),
		target.Movable().CurrentPosition(),
		req.WeaponRange)
	return m.done(fx, nil)
}

func (m *Manager) handleDamage(e dispatcher.Event) (any, error) {
	var req parser.DamageRequest
	if err := e.Decode(&req); err != nil {
		return nil, err
	}
	v, err := m.vehicle(req.Vehicle)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve damage: %w", err)
	}

	res, err := m.deps.Encounter.ResolveDamage(req.Damage, v.TemplateID, v)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve damage: %w", err)
	}
	committed, _ := m.deps.EntityCache.ApplyDamage(v.ID, res.HPDelta, res.ActiveMishaps)
	return m.done(DamageResult{DamageResult: res, Vehicle: committed}, nil)
}

func (m *Manager) handleMishap(e dispatcher.Event) (any, error) {
	var req parser.MishapRequest
	if err := e.Decode(&req); err != nil {
		return nil, err
	}
	v, err := m.vehicle(req.Vehicle)
	if err != nil {
		return nil, fmt.Errorf("failed to roll mishap: %w", err)
	}

	roll, ok := m.deps.Encounter.RollMishap(v)
	if ok && roll.AddToActive {
		m.deps.EntityCache.AddMishap(v.ID, *roll.Mishap)
	}
	return m.done(MishapResult{Vehicle: v.ID, Found: ok, Roll: roll}, nil)
}

func (m *Manager) handleLog(e dispatcher.Event) (any, error) {
	var req parser.LogRequest
	if err := e.Decode(&req); err != nil {
		return nil, err
	}
	source := req.Source
	if source == "" {
		source = "replay"
	}
	m.deps.LogWriter.WriteLog(source, req.Message, req.Level)
	return m.done(nil, nil)
}
