// Package v1 contains the v1 export format for encounter event logs.
// This format is read by the table display to replay an encounter.
package v1

// FormatVersion is written into every export.
const FormatVersion = "1"

// Export is the root JSON structure for v1 format
type Export struct {
	FormatVersion string   `json:"formatVersion"`
	EncounterID   uint     `json:"encounterId"`
	EncounterName string   `json:"encounterName"`
	Tags          string   `json:"tags"`
	Seed          int64    `json:"seed"`
	StartTime     string   `json:"startTime"`
	EndTime       string   `json:"endTime,omitempty"`
	EndRound      int      `json:"endRound"`
	Entities      []Entity `json:"entities"`
	Events        [][]any  `json:"events"`
}

// Entity is the movement track of one vehicle or creature.
// Track rows are [round, [x, y], feet]; undo rows carry negative feet.
type Entity struct {
	Kind      string  `json:"kind"`
	ID        string  `json:"id"`
	Moves     int     `json:"moves"`
	FeetMoved float64 `json:"feetMoved"`
	Track     [][]any `json:"track"`
}
