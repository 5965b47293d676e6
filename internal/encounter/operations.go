package encounter

import (
	"fmt"

	"github.com/OCAP2/chase/internal/arc"
	"github.com/OCAP2/chase/internal/elevation"
	"github.com/OCAP2/chase/internal/ledger"
	"github.com/OCAP2/chase/internal/mishap"
	"github.com/OCAP2/chase/internal/scale"
	"github.com/OCAP2/chase/pkg/core"
)

// SetRound moves the encounter to round and phase. A round change clears the
// movement ledger and undo history and is reported as true.
// An unknown phase leaves the phase unchanged.
func (c *Context) SetRound(round int, phase core.Phase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !phase.Valid() {
		c.log.Warn("Ignoring unknown phase", "phase", phase)
		phase = c.currentPhase()
	}
	c.phase.Store(phase)

	previous := c.ledger.Round()
	discarded := c.ledger.Len()
	if !c.ledger.BeginRound(round) {
		return false
	}
	c.round.Store(int64(round))

	c.record("round reset", c.sink.RecordRoundReset(&core.RoundResetEvent{
		EncounterID:    c.encounter.ID,
		Time:           c.now(),
		PreviousRound:  previous,
		Round:          round,
		Phase:          phase,
		DiscardedMoves: discarded,
	}))
	c.log.Info("Round started", "previousRound", previous, "discardedMoves", discarded)
	return true
}

// ResolveScale measures the engagement distance between opposing factions
// and lets the tier policy act on it. With no opposing pair the tier stays put.
func (c *Context) ResolveScale(entities []core.Entity) core.ScaleTier {
	c.mu.Lock()
	defer c.mu.Unlock()

	distance, ok := scale.EngagementDistance(entities)
	if !ok {
		c.log.Debug("No opposing combatants, tier unchanged", "tier", c.policy.Current().Name)
		return c.policy.Current()
	}
	change, changed := c.policy.Apply(c.currentPhase(), distance)
	if changed {
		c.recordScaleChange(change)
	}
	return c.policy.Current()
}

// SelectScale sets the tier by operator choice.
func (c *Context) SelectScale(name core.TierName) (core.ScaleTier, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	change, changed, err := c.policy.Select(name)
	if err != nil {
		return c.policy.Current(), err
	}
	if changed {
		c.recordScaleChange(change)
	}
	return c.policy.Current(), nil
}

func (c *Context) recordScaleChange(change scale.Change) {
	c.record("scale change", c.sink.RecordScaleChange(&core.ScaleChangeEvent{
		EncounterID: c.encounter.ID,
		Time:        c.now(),
		Round:       int(c.round.Load()),
		From:        change.From,
		To:          change.To,
		Distance:    change.Distance,
		Manual:      change.Manual,
	}))
	c.log.Info("Scale changed", "from", change.From, "to", change.To, "distance", change.Distance, "manual", change.Manual)
}

// RequestMove charges a move against the entity's budget for the round.
// The caller commits NewPosition to its entity store.
func (c *Context) RequestMove(entity core.Entity, delta core.Vector) ledger.MoveResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	tier := c.policy.Current()
	phase := c.currentPhase()
	res := c.ledger.RequestMove(ledger.MoveRequest{
		Entity: entity,
		Delta:  delta,
		Tier:   tier,
		Phase:  phase,
		Bounds: c.bounds,
	})

	m := entity.Movable()
	if m == nil {
		c.log.Warn("Move requested for malformed entity", "kind", entity.Kind)
		return res
	}
	if !res.Rejected && res.AcceptedDelta.IsZero() {
		// no-op requests leave no trace
		return res
	}

	c.record("movement", c.sink.RecordMovement(&core.MovementEvent{
		EncounterID: c.encounter.ID,
		Time:        c.now(),
		Round:       int(c.round.Load()),
		Phase:       phase,
		Tier:        tier.Name,
		Entity:      m.Key(),
		From:        m.CurrentPosition(),
		To:          res.NewPosition,
		Requested:   delta,
		Accepted:    res.AcceptedDelta,
		FeetMoved:   res.FeetMoved,
		Rejected:    res.Rejected,
		Reason:      res.Reason,
		Clamped:     res.Clamped,
	}))

	if res.Rejected {
		c.log.Warn("Movement denied", "entity", m.Key().String(), "reason", res.Reason)
	} else {
		c.log.Info("Movement performed",
			"entity", m.Key().String(),
			"feet", res.FeetMoved,
			"x", res.NewPosition.X,
			"y", res.NewPosition.Y,
			"clamped", res.Clamped)
	}
	return res
}

// UndoLastMove reverts the newest move of the round, whoever made it.
func (c *Context) UndoLastMove() (ledger.UndoResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.ledger.Undo()
	if !ok {
		c.log.Info("Nothing to undo")
		return u, false
	}
	c.record("undo", c.sink.RecordUndo(&core.UndoEvent{
		EncounterID:  c.encounter.ID,
		Time:         c.now(),
		Round:        int(c.round.Load()),
		Entity:       u.Entity,
		Restored:     u.Restored,
		FeetRefunded: u.FeetRefunded,
	}))
	c.log.Info("Movement undone", "entity", u.Entity.String(), "feet", u.FeetRefunded)
	return u, true
}

// Remaining returns the feet the entity may still move this round at the
// governing tier.
func (c *Context) Remaining(entity core.Entity) float64 {
	m := entity.Movable()
	if m == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	allowance := scale.MovementAllowance(m.EffectiveSpeed(), c.policy.Current())
	return c.ledger.Remaining(m.Key(), allowance)
}

// AttackArcAndCover resolves the arc an attack comes from and the cover the
// targeted station gets from it.
func (c *Context) AttackArcAndCover(attacker arc.Attacker, target *core.Vehicle, zoneID string) (arc.CoverResult, error) {
	if target == nil {
		return arc.CoverResult{}, fmt.Errorf("%w: no target vehicle", ErrUnknownTemplate)
	}
	tmpl, err := c.Template(target.TemplateID)
	if err != nil {
		return arc.CoverResult{}, err
	}
	zone, ok := tmpl.Zone(zoneID)
	if !ok {
		return arc.CoverResult{}, fmt.Errorf("%w: %q on template %q", ErrUnknownZone, zoneID, tmpl.ID)
	}
	res := arc.Cover(attacker, target, zone)
	c.log.Debug("Cover resolved", "target", target.ID, "zone", zoneID, "arc", res.Arc, "cover", res.Cover)
	return res, nil
}

// ElevationEffects compares the ground under attacker and target.
func (c *Context) ElevationEffects(attacker, target core.Position, weaponRange int) elevation.Effects {
	fx := elevation.Resolve(attacker, target, c.zones, weaponRange)
	c.log.Debug("Elevation resolved", "diff", fx.Diff, "attackModifier", fx.AttackModifier)
	return fx
}

// ResolveDamage runs a hit through the vehicle's thresholds and rolls a
// mishap when it is heavy enough. The result proposes HP and active mishap
// changes; the caller commits them.
func (c *Context) ResolveDamage(damage int, templateID string, state core.Vehicle) (mishap.DamageResult, error) {
	tmpl, err := c.Template(templateID)
	if err != nil {
		return mishap.DamageResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	th := mishap.ThresholdsOf(tmpl)
	res := c.mishaps.Resolve(damage, th, state)
	now := c.now()
	round := int(c.round.Load())

	rolled := res.Mishap != nil || res.NoValidMishap
	c.record("damage", c.sink.RecordDamage(&core.DamageEvent{
		EncounterID:     c.encounter.ID,
		Time:            now,
		Round:           round,
		VehicleID:       state.ID,
		Damage:          res.Damage,
		Threshold:       res.Threshold,
		MishapThreshold: th.Mishap,
		HPDelta:         res.HPDelta,
		Absorbed:        res.Absorbed,
		MishapRolled:    rolled,
	}))
	c.log.Info("Damage resolved", "vehicle", state.ID, "damage", res.Damage, "hpDelta", res.HPDelta, "absorbed", res.Absorbed)

	if rolled {
		c.recordMishap(state.ID, res.Mishap, false)
	}
	return res, nil
}

// RollMishap rolls on the mishap table outside of damage resolution.
func (c *Context) RollMishap(state core.Vehicle) (*mishap.RollResult, bool) {
	var th mishap.Thresholds
	if tmpl, err := c.Template(state.TemplateID); err == nil {
		th = mishap.ThresholdsOf(tmpl)
	} else {
		c.log.Debug("Rolling mishap without template thresholds", "vehicle", state.ID, "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	roll, ok := c.mishaps.Roll(state, th)
	c.recordMishap(state.ID, roll, true)
	return roll, ok
}

func (c *Context) recordMishap(vehicleID string, roll *mishap.RollResult, manual bool) {
	ev := &core.MishapEvent{
		EncounterID: c.encounter.ID,
		Time:        c.now(),
		Round:       int(c.round.Load()),
		VehicleID:   vehicleID,
		Manual:      manual,
	}
	if roll == nil {
		ev.RerollCount = c.mishaps.MaxAttempts()
		c.record("mishap", c.sink.RecordMishap(ev))
		c.log.Warn("No valid mishap", "vehicle", vehicleID, "attempts", c.mishaps.MaxAttempts())
		return
	}
	ev.Roll = roll.Roll
	ev.RerollCount = roll.RerollCount
	ev.Mishap = roll.Mishap
	c.record("mishap", c.sink.RecordMishap(ev))
	c.log.Info("Mishap rolled", "vehicle", vehicleID, "roll", roll.Roll, "mishap", roll.Mishap.Name, "rerolls", roll.RerollCount)
}
