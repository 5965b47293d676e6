package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/internal/encounter"
	"github.com/OCAP2/chase/internal/logging"
	intOtel "github.com/OCAP2/chase/internal/otel"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const AppName = "chase"

var (
	// SessionStartTime names the log file of this run
	SessionStartTime time.Time = time.Now()

	// LogFilePath is where this run logs to
	LogFilePath string
	LogFile     *os.File

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLogger is the zerolog logger handed to the infrastructure managers
	ZLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// activeEncounter feeds the encounter attributes of every log record
	activeEncounter atomic.Pointer[encounter.Context]
)

// configDir is where chase.cfg.json is looked up: CHASE_CONFIG_DIR or the
// working directory.
func configDir() string {
	if dir := os.Getenv("CHASE_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "."
}

// setup loads the config and brings up logging. Logs go to a file in logsDir
// so stdout stays free for command output.
func setup() error {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(os.Stderr, "warn", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(configDir()); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}

	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	// keep the previous log of a run started in the same second
	if _, err := os.Stat(LogFilePath); err == nil {
		os.Rename(LogFilePath, LogFilePath+".old")
	}
	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to create/open log file: %w", err)
	}

	ZLogger = zerolog.New(LogFile).With().Timestamp().Str("app", AppName).Logger().
		Level(zerologLevel(viper.GetString("logLevel")))

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		cfg := intOtel.FromConfig(otelCfg, LogFile)
		cfg.InstanceID = SessionStartTime.Format("20060102_150405")
		OTelProvider, err = intOtel.New(cfg)
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		}
	}
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	opts := logging.Options{
		File:     LogFile,
		Level:    viper.GetString("logLevel"),
		Provider: otelLogProvider,
		Context: func() []slog.Attr {
			if c := activeEncounter.Load(); c != nil {
				return c.LogAttrs()
			}
			return nil
		},
	}
	if viper.GetBool("graylog.enabled") {
		addr := viper.GetString("graylog.address")
		if w, err := logging.NewGraylogWriter(addr); err != nil {
			Logger.Warn("Graylog disabled", "address", addr, "error", err)
		} else {
			opts.Graylog = w
		}
	}
	SlogManager.SetupWith(opts)
	Logger = SlogManager.Logger()
	if OTelProvider != nil {
		OTelProvider.Install(Logger)
	}
	Logger.Info("Logging to file", "path", LogFilePath)
	return nil
}

func zerologLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "log flush failed:", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "otel shutdown failed:", err)
		}
	}
	if LogFile != nil {
		_ = LogFile.Close()
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `usage: %[1]s <command> [args]

commands:
  replay <scenario.json> <commands.jsonl>   run a scenario and print each result
  tier <distance>                           print the scale tier for a distance in feet
  export <encounterID>...                   print stored encounter event logs as JSON
  migratebackups [dir]                      copy sqlite dumps into postgres
`, filepath.Base(os.Args[0]))
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return fmt.Errorf("no command given")
	}

	switch strings.ToLower(args[0]) {
	case "replay":
		if len(args) != 3 {
			return fmt.Errorf("replay needs a scenario and a command file")
		}
		return runReplay(args[1], args[2], stdout)
	case "tier":
		if len(args) != 2 {
			return fmt.Errorf("tier needs a distance")
		}
		return printTier(args[1], stdout)
	case "export":
		if len(args) < 2 {
			return fmt.Errorf("no encounter IDs provided")
		}
		return exportEncounters(args[1:], stdout)
	case "migratebackups":
		dir := viper.GetString("logsDir")
		if len(args) > 1 {
			dir = args[1]
		}
		return migrateBackups(dir, stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stdout)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func main() {
	if err := setup(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err := run(os.Args[1:], os.Stdout)
	if err != nil {
		Logger.Error("Command failed", "error", err)
	}
	shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
