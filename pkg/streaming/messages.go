// Package streaming defines the wire messages an encounter is streamed with.
package streaming

import (
	"encoding/json"

	"github.com/OCAP2/chase/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartEncounter = "start_encounter"
	TypeEndEncounter   = "end_encounter"
	TypeMovement       = "movement"
	TypeUndo           = "undo"
	TypeScaleChange    = "scale_change"
	TypeRoundReset     = "round_reset"
	TypeDamage         = "damage"
	TypeMishap         = "mishap"
	TypeAck            = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
	// EncounterID is set by the server when acknowledging start_encounter.
	EncounterID uint `json:"encounterId,omitempty"`
}

// StartEncounterPayload carries the encounter record.
type StartEncounterPayload struct {
	Encounter *core.Encounter `json:"encounter"`
}
