package scale

import "github.com/OCAP2/chase/pkg/core"

// Change describes a tier transition for the event log.
type Change struct {
	From     core.TierName
	To       core.TierName
	Distance float64
	Manual   bool
}

// Policy tracks the governing tier of an encounter.
//
// During setup the suggested tier always applies. During combat the tier only
// ratchets toward closer tiers automatically; widening needs Select.
type Policy struct {
	table   *Table
	current core.ScaleTier
}

// NewPolicy starts a policy at the table's closest tier.
func NewPolicy(table *Table) *Policy {
	return &Policy{table: table, current: table.Closest()}
}

// Current returns the governing tier.
func (p *Policy) Current() core.ScaleTier {
	return p.current
}

// Table returns the tier table the policy resolves against.
func (p *Policy) Table() *Table {
	return p.table
}

// Apply considers the tier suggested by distance and returns the change made,
// if any.
func (p *Policy) Apply(phase core.Phase, distance float64) (Change, bool) {
	suggested := p.table.TierForDistance(distance)
	if suggested.Name == p.current.Name {
		return Change{}, false
	}
	if phase == core.PhaseCombat {
		si, _ := p.table.Index(suggested.Name)
		ci, err := p.table.Index(p.current.Name)
		if err == nil && si > ci {
			return Change{}, false
		}
	}
	c := Change{From: p.current.Name, To: suggested.Name, Distance: distance}
	p.current = suggested
	return c, true
}

// Select sets the tier by operator choice, in any direction.
func (p *Policy) Select(name core.TierName) (Change, bool, error) {
	tier, err := p.table.Tier(name)
	if err != nil {
		return Change{}, false, err
	}
	if tier.Name == p.current.Name {
		return Change{}, false, nil
	}
	c := Change{From: p.current.Name, To: tier.Name, Manual: true}
	p.current = tier
	return c, true, nil
}
