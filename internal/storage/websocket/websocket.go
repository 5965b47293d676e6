// Package websocket streams encounter events to a remote server.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/pkg/core"
	"github.com/OCAP2/chase/pkg/streaming"
)

// Backend streams encounter events over WebSocket.
// Lifecycle messages wait for a server ack; events are fire-and-forget.
type Backend struct {
	conn *connection
	cfg  config.WebSocketConfig
}

// New creates a new WebSocket storage backend.
func New(cfg config.WebSocketConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget). Round and tier changes are also kept
// for replay after a reconnect.
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	switch msgType {
	case streaming.TypeRoundReset, streaming.TypeScaleChange:
		b.conn.remember(msgType, data)
	}
	b.conn.send(data)
	return nil
}

// StartEncounter sends the encounter and waits for the server ack.
// When the ack carries an encounter ID it is assigned to e.
func (b *Backend) StartEncounter(e *core.Encounter) error {
	data, err := marshalEnvelope(streaming.TypeStartEncounter, streaming.StartEncounterPayload{Encounter: e})
	if err != nil {
		return err
	}

	b.conn.forget()
	b.conn.remember(streaming.TypeStartEncounter, data)

	ack, err := b.conn.sendAndWait(data, streaming.TypeStartEncounter, ackTimeout)
	if err != nil {
		return err
	}
	if ack.EncounterID != 0 {
		e.ID = ack.EncounterID
	}
	return nil
}

// EndEncounter sends end_encounter and waits for server ack.
func (b *Backend) EndEncounter() error {
	data, err := marshalEnvelope(streaming.TypeEndEncounter, nil)
	if err != nil {
		return err
	}
	_, err = b.conn.sendAndWait(data, streaming.TypeEndEncounter, ackTimeout)

	// the encounter is over whether or not the server acked
	b.conn.forget()

	return err
}

func (b *Backend) RecordMovement(e *core.MovementEvent) error {
	return b.sendEnvelope(streaming.TypeMovement, e)
}

func (b *Backend) RecordUndo(e *core.UndoEvent) error {
	return b.sendEnvelope(streaming.TypeUndo, e)
}

func (b *Backend) RecordScaleChange(e *core.ScaleChangeEvent) error {
	return b.sendEnvelope(streaming.TypeScaleChange, e)
}

func (b *Backend) RecordRoundReset(e *core.RoundResetEvent) error {
	return b.sendEnvelope(streaming.TypeRoundReset, e)
}

func (b *Backend) RecordDamage(e *core.DamageEvent) error {
	return b.sendEnvelope(streaming.TypeDamage, e)
}

func (b *Backend) RecordMishap(e *core.MishapEvent) error {
	return b.sendEnvelope(streaming.TypeMishap, e)
}
