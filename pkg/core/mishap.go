// pkg/core/mishap.go
package core

// MishapDuration says how long a mishap stays active.
type MishapDuration string

const (
	DurationInstant       MishapDuration = "instant"
	DurationRounds        MishapDuration = "rounds"
	DurationUntilRepaired MishapDuration = "until_repaired"
)

// MechanicalEffect holds the numeric penalties a mishap applies while active.
type MechanicalEffect struct {
	SpeedReduction           int `json:"speedReduction,omitempty"`
	DamageThresholdReduction int `json:"damageThresholdReduction,omitempty"`
}

// Mishap is an adverse vehicle effect.
// RoundsRemaining is set only for DurationRounds.
type Mishap struct {
	Name             string            `json:"name"`
	Effect           string            `json:"effect"`
	Duration         MishapDuration    `json:"duration"`
	RoundsRemaining  *int              `json:"roundsRemaining,omitempty"`
	MechanicalEffect *MechanicalEffect `json:"mechanicalEffect,omitempty"`
}

// MishapLockedSteering restricts a vehicle to moving along its heading.
const MishapLockedSteering = "Locked Steering"
