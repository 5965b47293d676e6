// pkg/core/encounter.go
package core

import "time"

// Encounter describes one chase or combat encounter being resolved.
// Seed is recorded so a replay reproduces every mishap roll.
type Encounter struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	Seed      int64     `json:"seed"`
	Tag       string    `json:"tag,omitempty"`
}

// EventLog is the full recorded history of an encounter, as exported to disk
// or read back from the database.
type EventLog struct {
	Encounter    Encounter          `json:"encounter"`
	EndTime      time.Time          `json:"endTime,omitempty"`
	Movements    []MovementEvent    `json:"movements"`
	Undos        []UndoEvent        `json:"undos"`
	ScaleChanges []ScaleChangeEvent `json:"scaleChanges"`
	RoundResets  []RoundResetEvent  `json:"roundResets"`
	Damages      []DamageEvent      `json:"damages"`
	Mishaps      []MishapEvent      `json:"mishaps"`
}

// UploadMetadata describes an exported event log sent to a table display server.
type UploadMetadata struct {
	EncounterName string
	Tag           string
	Seed          int64
	// Duration is the encounter length in seconds.
	Duration float64
}
