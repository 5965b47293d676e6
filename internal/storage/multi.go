package storage

import (
	"errors"

	"github.com/OCAP2/chase/pkg/core"
)

// Multi fans every call out to several backends. The first backend is the
// primary: it assigns the encounter ID the others receive.
// Errors from all backends are joined; a failing backend does not stop the rest.
type Multi struct {
	backends []Backend
}

// NewMulti combines backends in order.
func NewMulti(backends ...Backend) *Multi {
	return &Multi{backends: backends}
}

// Backends returns the wrapped backends.
func (m *Multi) Backends() []Backend {
	return m.backends
}

func (m *Multi) each(fn func(Backend) error) error {
	var errs []error
	for _, b := range m.backends {
		if err := fn(b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Init() error {
	return m.each(Backend.Init)
}

func (m *Multi) Close() error {
	return m.each(Backend.Close)
}

// StartEncounter starts the primary first and hands its ID to the rest.
// Secondaries get a copy, so an ID they assign themselves stays private.
func (m *Multi) StartEncounter(e *core.Encounter) error {
	if len(m.backends) == 0 {
		return nil
	}
	if err := m.backends[0].StartEncounter(e); err != nil {
		return err
	}
	var errs []error
	for _, b := range m.backends[1:] {
		cp := *e
		if err := b.StartEncounter(&cp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) EndEncounter() error {
	return m.each(Backend.EndEncounter)
}

func (m *Multi) RecordMovement(e *core.MovementEvent) error {
	return m.each(func(b Backend) error { return b.RecordMovement(e) })
}

func (m *Multi) RecordUndo(e *core.UndoEvent) error {
	return m.each(func(b Backend) error { return b.RecordUndo(e) })
}

func (m *Multi) RecordScaleChange(e *core.ScaleChangeEvent) error {
	return m.each(func(b Backend) error { return b.RecordScaleChange(e) })
}

func (m *Multi) RecordRoundReset(e *core.RoundResetEvent) error {
	return m.each(func(b Backend) error { return b.RecordRoundReset(e) })
}

func (m *Multi) RecordDamage(e *core.DamageEvent) error {
	return m.each(func(b Backend) error { return b.RecordDamage(e) })
}

func (m *Multi) RecordMishap(e *core.MishapEvent) error {
	return m.each(func(b Backend) error { return b.RecordMishap(e) })
}

// GetExportedFilePath returns the export path of the first exportable backend.
func (m *Multi) GetExportedFilePath() string {
	for _, b := range m.backends {
		if ex, ok := b.(Exportable); ok {
			if p := ex.GetExportedFilePath(); p != "" {
				return p
			}
		}
	}
	return ""
}
