package parser

import (
	"github.com/OCAP2/chase/pkg/core"
)

// Commands understood by the engine.
const (
	CmdRound        = ":ROUND:"
	CmdScaleResolve = ":SCALE:RESOLVE:"
	CmdScaleSelect  = ":SCALE:SELECT:"
	CmdMove         = ":MOVE:"
	CmdUndo         = ":UNDO:"
	CmdArcCover     = ":ARC:COVER:"
	CmdElevation    = ":ELEVATION:"
	CmdDamage       = ":DAMAGE:"
	CmdMishap       = ":MISHAP:"
	CmdLog          = ":LOG:"
)

// Commands lists every command in the order a host registers them.
func Commands() []string {
	return []string{
		CmdRound,
		CmdScaleResolve,
		CmdScaleSelect,
		CmdMove,
		CmdUndo,
		CmdArcCover,
		CmdElevation,
		CmdDamage,
		CmdMishap,
		CmdLog,
	}
}

// Known reports whether cmd is an engine command.
func Known(cmd string) bool {
	for _, c := range Commands() {
		if c == cmd {
			return true
		}
	}
	return false
}

// RoundRequest is the payload of :ROUND:.
type RoundRequest struct {
	Round int        `json:"round"`
	Phase core.Phase `json:"phase"`
}

// ScaleResolveRequest is the payload of :SCALE:RESOLVE:. An empty entity
// list measures every cached entity.
type ScaleResolveRequest struct {
	Entities []core.EntityKey `json:"entities,omitempty"`
}

// ScaleSelectRequest is the payload of :SCALE:SELECT:.
type ScaleSelectRequest struct {
	Tier core.TierName `json:"tier"`
}

// MoveRequest is the payload of :MOVE:.
type MoveRequest struct {
	Entity core.EntityKey `json:"entity"`
	Delta  core.Vector    `json:"delta"`
}

// CoverRequest is the payload of :ARC:COVER:. The attacker's position and
// vehicle are looked up from the entity store.
type CoverRequest struct {
	Attacker core.EntityKey `json:"attacker"`
	Target   string         `json:"target"`
	Zone     string         `json:"zone"`
}

// ElevationRequest is the payload of :ELEVATION:.
type ElevationRequest struct {
	Attacker    core.EntityKey `json:"attacker"`
	Target      core.EntityKey `json:"target"`
	WeaponRange int            `json:"weaponRange"`
}

// DamageRequest is the payload of :DAMAGE:.
type DamageRequest struct {
	Vehicle string `json:"vehicle"`
	Damage  int    `json:"damage"`
}

// MishapRequest is the payload of :MISHAP:.
type MishapRequest struct {
	Vehicle string `json:"vehicle"`
}

// LogRequest is the payload of :LOG:, a note written into the session log.
// Level is one of debug, info, warn or error; anything else logs at info.
type LogRequest struct {
	Source  string `json:"source"`
	Message string `json:"message"`
	Level   string `json:"level,omitempty"`
}
