package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/OCAP2/chase/internal/config"
	"github.com/OCAP2/chase/internal/database"
	"github.com/OCAP2/chase/internal/scale"
	gormstorage "github.com/OCAP2/chase/internal/storage/gorm"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// printTier prints the tier the configured table assigns to a distance.
func printTier(arg string, out io.Writer) error {
	distance, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fmt.Errorf("invalid distance %q: %w", arg, err)
	}

	table := scale.MustDefaultTable()
	engineCfg, err := config.GetEngineConfig()
	if err != nil {
		return err
	}
	if len(engineCfg.Tiers) > 0 {
		if table, err = scale.NewTable(engineCfg.Tiers); err != nil {
			return err
		}
	}

	tier := table.TierForDistance(distance)
	return json.NewEncoder(out).Encode(tier)
}

// openEventDB opens the database stored encounters are read from: the sqlite
// dump when storage.sqlite.path is set, postgres otherwise.
func openEventDB() (*gorm.DB, error) {
	if path := viper.GetString("storage.sqlite.path"); path != "" {
		Logger.Info("Reading encounters from sqlite", "path", path)
		return database.GetSqliteDBStandalone(path)
	}

	db, err := database.GetPostgresDBStandalone()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	Logger.Info("Database connection established")
	return db, nil
}

func exportEncounters(ids []string, out io.Writer) error {
	db, err := openEventDB()
	if err != nil {
		return err
	}
	return writeEventLogs(db, ids, out)
}

func writeEventLogs(db *gorm.DB, ids []string, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	for _, raw := range ids {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid encounter ID %q: %w", raw, err)
		}
		log, err := gormstorage.LoadEventLog(db, uint(id))
		if err != nil {
			return err
		}
		if err := enc.Encode(log); err != nil {
			return fmt.Errorf("error marshalling encounter %d: %w", id, err)
		}
		Logger.Info("Exported encounter", "encounterId", id, "movements", len(log.Movements), "mishaps", len(log.Mishaps))
	}
	return nil
}

func migrateBackups(dir string, out io.Writer) error {
	m := database.NewManager(ZLogger.With().Str("component", "database").Logger())
	if err := m.Connect(); err != nil {
		return err
	}
	if m.ShouldSaveLocal {
		// Connect fell back to a scratch sqlite database
		return fmt.Errorf("postgres is unavailable, backups left in place")
	}
	if err := m.Setup(); err != nil {
		return err
	}

	migrated, err := database.MigrateBackups(dir, m.DB, m.Logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d backups, it's recommended to delete them to avoid future data duplication\n", len(migrated))
	for _, p := range migrated {
		fmt.Fprintln(out, p)
	}
	return nil
}
