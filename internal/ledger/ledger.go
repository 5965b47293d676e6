// Package ledger tracks how far each entity has moved in the current round and
// keeps the undo history for those moves.
package ledger

import (
	"math"
	"sync"

	"github.com/OCAP2/chase/internal/geo"
	"github.com/OCAP2/chase/internal/queue"
	"github.com/OCAP2/chase/internal/scale"
	"github.com/OCAP2/chase/pkg/core"
)

// ReasonNoMovementRemaining is the rejection reason once an entity has spent
// its allowance for the round.
const ReasonNoMovementRemaining = "no movement remaining"

// MoveRequest asks to displace an entity by Delta under the governing tier.
// Bounds is optional; nil means the map is unbounded.
type MoveRequest struct {
	Entity core.Entity
	Delta  core.Vector
	Tier   core.ScaleTier
	Phase  core.Phase
	Bounds *geo.Bounds
}

// MoveResult is the outcome of a move request. The caller owns committing
// NewPosition to its entity store.
type MoveResult struct {
	AcceptedDelta core.Vector   `json:"acceptedDelta"`
	NewPosition   core.Position `json:"newPosition"`
	FeetMoved     float64       `json:"feetMoved"`
	Rejected      bool          `json:"rejected"`
	Reason        string        `json:"reason,omitempty"`
	Clamped       bool          `json:"clamped"`
}

// HistoryEntry is one accepted move on the undo stack. UsedBefore is the
// entity's usage before the move, restored as is on undo.
type HistoryEntry struct {
	Entity     core.EntityKey
	From       core.Position
	Feet       float64
	UsedBefore float64
}

// UndoResult names the entity whose last move was reverted and where it goes back to.
type UndoResult struct {
	Entity       core.EntityKey `json:"entity"`
	Restored     core.Position  `json:"restored"`
	FeetRefunded float64        `json:"feetRefunded"`
}

// Ledger holds per-round movement usage. It is reset by BeginRound.
type Ledger struct {
	mu      sync.Mutex
	round   int
	used    map[core.EntityKey]float64
	history *queue.Stack[HistoryEntry]
}

// New returns an empty ledger for round 0.
func New() *Ledger {
	return &Ledger{
		used:    make(map[core.EntityKey]float64),
		history: queue.NewStack[HistoryEntry](),
	}
}

// BeginRound moves the ledger to round. When the round differs from the
// current one all usage and undo history is discarded and true is returned.
func (l *Ledger) BeginRound(round int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if round == l.round {
		return false
	}
	l.round = round
	l.used = make(map[core.EntityKey]float64)
	l.history.Clear()
	return true
}

// Round returns the round the ledger is tracking.
func (l *Ledger) Round() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.round
}

// Len returns the number of undoable moves.
func (l *Ledger) Len() int {
	return l.history.Len()
}

// Used returns the feet key has moved this round.
func (l *Ledger) Used(key core.EntityKey) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used[key]
}

// Remaining returns what is left of allowance for key, never below zero.
func (l *Ledger) Remaining(key core.EntityKey, allowance float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return math.Max(0, allowance-l.used[key])
}

// RequestMove validates and charges a move.
func (l *Ledger) RequestMove(req MoveRequest) MoveResult {
	m := req.Entity.Movable()
	if m == nil {
		return MoveResult{Rejected: true, Reason: "unknown entity"}
	}
	from := m.CurrentPosition()
	delta := sanitize(req.Delta)

	if req.Entity.Kind == core.KindVehicle && req.Entity.Vehicle.HasMishap(core.MishapLockedSteering) {
		delta = geo.Project(delta, geo.FacingUnit(req.Entity.Vehicle.Facing))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := m.Key()
	length := geo.Magnitude(delta)
	feet := 0.0
	if req.Phase == core.PhaseCombat {
		allowance := scale.MovementAllowance(m.EffectiveSpeed(), req.Tier)
		remaining := math.Max(0, allowance-l.used[key])
		if remaining <= 0 {
			return MoveResult{NewPosition: from, Rejected: true, Reason: ReasonNoMovementRemaining}
		}
		if length == 0 {
			return MoveResult{NewPosition: from}
		}
		if length > remaining {
			delta = geo.ScaleTo(delta, remaining)
			length = remaining
		}
		feet = length
	} else if length == 0 {
		return MoveResult{NewPosition: from}
	}

	res := MoveResult{AcceptedDelta: delta, NewPosition: from.Add(delta), FeetMoved: feet}
	if req.Bounds != nil && !req.Bounds.Contains(res.NewPosition) {
		res.NewPosition = req.Bounds.Clamp(res.NewPosition)
		res.AcceptedDelta = res.NewPosition.Sub(from)
		res.Clamped = true
		if res.AcceptedDelta.IsZero() {
			// pinned against the edge; nothing moved, nothing charged
			return MoveResult{NewPosition: from, Clamped: true}
		}
	}

	before := l.used[key]
	l.used[key] = before + feet
	l.history.Push(HistoryEntry{Entity: key, From: from, Feet: feet, UsedBefore: before})
	return res
}

// Undo reverts the newest move across all entities. ok is false when there
// is nothing to undo.
func (l *Ledger) Undo() (UndoResult, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.history.Pop()
	if !ok {
		return UndoResult{}, false
	}
	// undo is global LIFO, so entry is always the entity's latest move
	l.used[entry.Entity] = entry.UsedBefore
	return UndoResult{Entity: entry.Entity, Restored: entry.From, FeetRefunded: entry.Feet}, true
}

func sanitize(v core.Vector) core.Vector {
	if math.IsNaN(v.X) || math.IsInf(v.X, 0) {
		v.X = 0
	}
	if math.IsNaN(v.Y) || math.IsInf(v.Y, 0) {
		v.Y = 0
	}
	return v
}
