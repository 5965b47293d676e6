// pkg/core/events.go
package core

import "time"

// MovementEvent records an accepted or denied movement request.
type MovementEvent struct {
	EncounterID uint      `json:"encounterId"`
	Time        time.Time `json:"time"`
	Round       int       `json:"round"`
	Phase       Phase     `json:"phase"`
	Tier        TierName  `json:"tier"`
	Entity      EntityKey `json:"entity"`
	From        Position  `json:"from"`
	To          Position  `json:"to"`
	Requested   Vector    `json:"requested"`
	Accepted    Vector    `json:"accepted"`
	FeetMoved   float64   `json:"feetMoved"`
	Rejected    bool      `json:"rejected"`
	Reason      string    `json:"reason,omitempty"`
	Clamped     bool      `json:"clamped"`
}

// UndoEvent records a move being reverted.
type UndoEvent struct {
	EncounterID  uint      `json:"encounterId"`
	Time         time.Time `json:"time"`
	Round        int       `json:"round"`
	Entity       EntityKey `json:"entity"`
	Restored     Position  `json:"restored"`
	FeetRefunded float64   `json:"feetRefunded"`
}

// ScaleChangeEvent records the governing tier changing.
type ScaleChangeEvent struct {
	EncounterID uint      `json:"encounterId"`
	Time        time.Time `json:"time"`
	Round       int       `json:"round"`
	From        TierName  `json:"from"`
	To          TierName  `json:"to"`
	Distance    float64   `json:"distance"`
	Manual      bool      `json:"manual"`
}

// RoundResetEvent records the ledger being cleared at a round boundary.
type RoundResetEvent struct {
	EncounterID    uint      `json:"encounterId"`
	Time           time.Time `json:"time"`
	PreviousRound  int       `json:"previousRound"`
	Round          int       `json:"round"`
	Phase          Phase     `json:"phase"`
	DiscardedMoves int       `json:"discardedMoves"`
}

// DamageEvent records a damage event passing through the threshold gate.
type DamageEvent struct {
	EncounterID     uint      `json:"encounterId"`
	Time            time.Time `json:"time"`
	Round           int       `json:"round"`
	VehicleID       string    `json:"vehicleId"`
	Damage          int       `json:"damage"`
	Threshold       int       `json:"threshold"`
	MishapThreshold int       `json:"mishapThreshold"`
	HPDelta         int       `json:"hpDelta"`
	Absorbed        bool      `json:"absorbed"`
	MishapRolled    bool      `json:"mishapRolled"`
}

// MishapEvent records a mishap roll. Mishap is nil when no valid entry was found.
type MishapEvent struct {
	EncounterID uint      `json:"encounterId"`
	Time        time.Time `json:"time"`
	Round       int       `json:"round"`
	VehicleID   string    `json:"vehicleId"`
	Roll        int       `json:"roll"`
	RerollCount int       `json:"rerollCount"`
	Mishap      *Mishap   `json:"mishap,omitempty"`
	Manual      bool      `json:"manual"`
}
