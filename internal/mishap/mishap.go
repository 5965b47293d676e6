// Package mishap gates damage against vehicle thresholds and rolls on the
// mishap table with rejection sampling.
package mishap

import (
	"github.com/OCAP2/chase/internal/dice"
	"github.com/OCAP2/chase/pkg/core"
)

// DefaultMaxAttempts bounds the rolls made before giving up on a valid mishap.
const DefaultMaxAttempts = 20

const tableDie = 20

// Thresholds are the damage bands of a vehicle template.
type Thresholds struct {
	Damage int `json:"damage"`
	Mishap int `json:"mishap"`
}

// ThresholdsOf reads the bands from a template.
func ThresholdsOf(t core.VehicleTemplate) Thresholds {
	return Thresholds{Damage: t.DamageThreshold, Mishap: t.MishapThreshold}
}

// Gate is the outcome of comparing damage to the thresholds.
type Gate struct {
	Applied    bool
	RollMishap bool
}

// OnDamage sorts damage into absorbed, applied, or applied with a mishap roll.
func OnDamage(damage, threshold, mishapThreshold int) Gate {
	if damage < threshold {
		return Gate{}
	}
	return Gate{Applied: true, RollMishap: damage >= mishapThreshold}
}

// RollResult is a valid mishap drawn from the table.
type RollResult struct {
	Roll        int          `json:"roll"`
	Mishap      *core.Mishap `json:"mishap"`
	RerollCount int          `json:"rerollCount"`
	AddToActive bool         `json:"addToActive"`
}

// DamageResult describes what a hit does to a vehicle. ActiveMishaps is the
// proposed active set; the caller commits it.
type DamageResult struct {
	Damage        int           `json:"damage"`
	Threshold     int           `json:"threshold"`
	HPDelta       int           `json:"hpDelta"`
	Absorbed      bool          `json:"absorbed"`
	Mishap        *RollResult   `json:"mishap,omitempty"`
	NoValidMishap bool          `json:"noValidMishap"`
	ActiveMishaps []core.Mishap `json:"activeMishaps"`
}

// Resolver rolls mishaps from a table using a dice source.
type Resolver struct {
	table       []Entry
	src         dice.Source
	maxAttempts int
}

// NewResolver builds a resolver. A nil table uses DefaultTable and
// maxAttempts below 1 uses DefaultMaxAttempts.
func NewResolver(table []Entry, src dice.Source, maxAttempts int) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Resolver{table: table, src: src, maxAttempts: maxAttempts}
}

// MaxAttempts returns the reroll bound.
func (r *Resolver) MaxAttempts() int {
	return r.maxAttempts
}

func (r *Resolver) lookup(face int) (Entry, bool) {
	for _, e := range r.table {
		if e.Covers(face) {
			return e, true
		}
	}
	return Entry{}, false
}

// EffectiveThreshold is the template damage threshold minus every active
// reduction, floored at 0.
func EffectiveThreshold(v core.Vehicle, base int) int {
	t := base
	for _, m := range v.ActiveMishaps {
		if m.MechanicalEffect != nil {
			t -= m.MechanicalEffect.DamageThresholdReduction
		}
	}
	if t < 0 {
		return 0
	}
	return t
}

// valid reports whether e can apply to the vehicle.
func valid(e Entry, v core.Vehicle, th Thresholds) bool {
	if e.RequiresWeapons && v.WeaponCount <= 0 {
		return false
	}
	if e.RequiresStations && v.StationCount <= 0 {
		return false
	}
	if !e.Stackable && e.Mishap.Duration != core.DurationInstant && v.HasMishap(e.Mishap.Name) {
		return false
	}
	if fx := e.Mishap.MechanicalEffect; fx != nil {
		if fx.SpeedReduction > 0 && v.EffectiveSpeed()-float64(fx.SpeedReduction) < 0 {
			return false
		}
		if fx.DamageThresholdReduction > 0 && EffectiveThreshold(v, th.Damage)-fx.DamageThresholdReduction < 0 {
			return false
		}
	}
	return true
}

// Roll draws until a valid entry comes up or the attempt bound is reached.
// ok is false when no valid mishap was found; nothing about v changes.
func (r *Resolver) Roll(v core.Vehicle, th Thresholds) (*RollResult, bool) {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		face := dice.Roll(r.src, tableDie)
		e, found := r.lookup(face)
		if !found || !valid(e, v, th) {
			continue
		}
		m := e.Mishap
		if e.Mishap.MechanicalEffect != nil {
			fx := *e.Mishap.MechanicalEffect
			m.MechanicalEffect = &fx
		}
		if m.Duration == core.DurationRounds {
			rounds := e.Rounds
			m.RoundsRemaining = &rounds
		}
		return &RollResult{
			Roll:        face,
			Mishap:      &m,
			RerollCount: attempt,
			AddToActive: m.Duration != core.DurationInstant,
		}, true
	}
	return nil, false
}

// Resolve applies damage against the vehicle's effective threshold and rolls a
// mishap when the mishap threshold is reached. Negative damage counts as 0.
func (r *Resolver) Resolve(damage int, th Thresholds, v core.Vehicle) DamageResult {
	if damage < 0 {
		damage = 0
	}
	threshold := EffectiveThreshold(v, th.Damage)
	res := DamageResult{
		Damage:        damage,
		Threshold:     threshold,
		ActiveMishaps: append([]core.Mishap(nil), v.ActiveMishaps...),
	}

	gate := OnDamage(damage, threshold, th.Mishap)
	if !gate.Applied {
		res.Absorbed = true
		return res
	}
	res.HPDelta = -damage
	if !gate.RollMishap {
		return res
	}

	roll, ok := r.Roll(v, th)
	if !ok {
		res.NoValidMishap = true
		return res
	}
	res.Mishap = roll
	if roll.AddToActive {
		res.ActiveMishaps = append(res.ActiveMishaps, *roll.Mishap)
	}
	return res
}
