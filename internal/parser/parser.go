// Package parser turns the replay inputs into engine values: the scenario
// file into entities and encounter configuration, and the JSON-lines command
// file into dispatcher events.
package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/OCAP2/chase/internal/dispatcher"
)

var (
	// ErrUnknownCommand is returned for a command line naming no engine command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidScenario is returned when a scenario file is inconsistent.
	ErrInvalidScenario = errors.New("invalid scenario")
)

// maxLineSize bounds one command line. Scenario payloads are small, but a
// cover request can carry a long entity list.
const maxLineSize = 1 << 20

// Parser converts replay input. It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// LoadScenario reads and validates a scenario file.
func (p *Parser) LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer f.Close()
	return p.ParseScenario(f)
}

// ParseScenario decodes and validates a scenario.
func (p *Parser) ParseScenario(r io.Reader) (*Scenario, error) {
	var s Scenario
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if n := len(s.Tiers); n > 0 {
		s.Tiers = unboundLastTier(s.Tiers)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	p.logger.Debug("Scenario parsed",
		"name", s.Name,
		"vehicles", len(s.Vehicles),
		"creatures", len(s.Creatures),
		"templates", len(s.Templates),
		"elevationZones", len(s.ElevationZones))
	return &s, nil
}

// LoadCommands reads a JSON-lines command file.
func (p *Parser) LoadCommands(path string) ([]dispatcher.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open commands: %w", err)
	}
	defer f.Close()
	return p.ParseCommands(f)
}

// ParseCommands reads one command per line:
//
//	{"command": ":MOVE:", "payload": {"entity": {"kind": "vehicle", "id": "v1"}, "delta": {"x": 10, "y": 0}}}
//
// Blank lines and lines starting with # are skipped.
func (p *Parser) ParseCommands(r io.Reader) ([]dispatcher.Event, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var events []dispatcher.Event
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}
		var e dispatcher.Event
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("line %d: failed to decode command: %w", line, err)
		}
		if !Known(e.Command) {
			return nil, fmt.Errorf("line %d: %w: %q", line, ErrUnknownCommand, e.Command)
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}
	p.logger.Debug("Commands parsed", "count", len(events), "lines", line)
	return events, nil
}
