package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/OCAP2/chase/internal/api"
	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/internal/dispatcher"
	"github.com/OCAP2/chase/internal/encounter"
	"github.com/OCAP2/chase/internal/logging"
	"github.com/OCAP2/chase/internal/parser"
	"github.com/OCAP2/chase/internal/storage"
	"github.com/OCAP2/chase/internal/worker"
	"github.com/OCAP2/chase/pkg/core"
	"github.com/spf13/viper"
)

// replayLine is one printed command result.
type replayLine struct {
	Line    int    `json:"line"`
	Command string `json:"command"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// replaySummary closes the replay output.
type replaySummary struct {
	EncounterID uint   `json:"encounterId"`
	Seed        int64  `json:"seed"`
	Commands    int    `json:"commands"`
	Processed   int    `json:"processed"`
	ExportPath  string `json:"exportPath,omitempty"`
	Uploaded    bool   `json:"uploaded,omitempty"`
}

// runReplay plays a command file against a scenario and writes one JSON line
// per command, then a summary. A failing command is reported and the replay
// goes on.
func runReplay(scenarioPath, commandsPath string, out io.Writer) error {
	p := parser.NewParser(Logger)
	scenario, err := p.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}
	events, err := p.LoadCommands(commandsPath)
	if err != nil {
		return err
	}

	engineCfg, err := config.GetEngineConfig()
	if err != nil {
		return err
	}
	encCfg, err := scenario.EncounterConfig(engineCfg)
	if err != nil {
		return err
	}
	if encCfg.Tag == "" {
		encCfg.Tag = viper.GetString("defaultTag")
	}

	backend, err := newStorageBackend()
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	ctx, err := encounter.New(encCfg, encounter.Dependencies{Sink: backend, Logger: Logger})
	if err != nil {
		return err
	}
	activeEncounter.Store(ctx)
	defer activeEncounter.Store(nil)
	if err := ctx.Start(); err != nil {
		return err
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(ZLogger.With().Str("component", "dispatcher").Logger()))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	defer d.Drain()
	deps := worker.Dependencies{Encounter: ctx, Logger: Logger}
	if SlogManager != nil {
		deps.LogWriter = SlogManager
	}
	manager := worker.NewManager(deps)
	manager.LoadScenario(scenario)
	manager.RegisterHandlers(d)

	enc := json.NewEncoder(out)
	for i, e := range events {
		res, err := d.Dispatch(e)
		line := replayLine{Line: i + 1, Command: e.Command, Result: res}
		if err != nil {
			line.Result = nil
			line.Error = err.Error()
			Logger.Warn("Command failed", "line", i+1, "command", e.Command, "error", err)
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}

	d.Drain()

	if err := ctx.End(); err != nil {
		return err
	}
	if OTelProvider != nil {
		if err := OTelProvider.Flush(context.Background()); err != nil {
			Logger.Warn("Failed to flush OTel logs", "error", err)
		}
	}

	summary := replaySummary{
		EncounterID: ctx.Encounter().ID,
		Seed:        ctx.Encounter().Seed,
		Commands:    len(events),
		Processed:   manager.Processed(),
	}
	if exp, ok := backend.(storage.Exportable); ok {
		summary.ExportPath = exp.GetExportedFilePath()
	}
	if summary.ExportPath != "" && viper.GetBool("api.upload") {
		summary.Uploaded = uploadExport(summary.ExportPath, ctx.Encounter())
	}
	Logger.Info("Replay finished", "commands", summary.Commands, "processed", summary.Processed, "export", summary.ExportPath)
	return enc.Encode(summary)
}

// uploadExport sends the exported log to the display server. Failures are
// logged; the export stays on disk either way.
func uploadExport(path string, enc core.Encounter) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Healthcheck(ctx); err != nil {
		Logger.Warn("Display server unreachable, skipping upload", "error", err)
		return false
	}
	meta := core.UploadMetadata{
		EncounterName: enc.Name,
		Tag:           enc.Tag,
		Seed:          enc.Seed,
		Duration:      time.Since(enc.StartTime).Seconds(),
	}
	if err := client.Upload(ctx, path, meta); err != nil {
		Logger.Error("Failed to upload encounter", "path", path, "error", err)
		return false
	}
	Logger.Info("Encounter uploaded", "path", path)
	return true
}
