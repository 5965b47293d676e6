package database

import (
	"errors"
	"fmt"
	"os"

	"github.com/OCAP2/chase/internal/model"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MigrateBackups copies every encounter in the sqlite dumps under dir into
// target, one transaction per file. Migrated files get a .migrated suffix so
// a second run does not duplicate them.
func MigrateBackups(dir string, target *gorm.DB, log zerolog.Logger) ([]string, error) {
	paths, err := GetBackupDBPaths(dir)
	if err != nil {
		return nil, fmt.Errorf("error getting backup database paths: %w", err)
	}

	migrated := make([]string, 0, len(paths))
	for _, path := range paths {
		n, err := migrateFile(path, target)
		if err != nil {
			return migrated, fmt.Errorf("error migrating %s: %w", path, err)
		}
		if err := os.Rename(path, path+".migrated"); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Error renaming sqlite file")
		}
		log.Info().Str("path", path).Int("encounters", n).Msg("Migrated backup")
		migrated = append(migrated, path)
	}
	return migrated, nil
}

func migrateFile(path string, target *gorm.DB) (int, error) {
	src, err := GetSqliteDBStandalone(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if sqlDB, err := src.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	var encounters []model.Encounter
	err = src.
		Preload("Movements").
		Preload("Undos").
		Preload("ScaleChanges").
		Preload("RoundResets").
		Preload("DamageEvents").
		Preload("MishapEvents").
		Order("id").
		Find(&encounters).Error
	if err != nil {
		return 0, fmt.Errorf("error reading encounters: %w", err)
	}

	// transaction for the target so we can rollback if errors
	tx := target.Begin()
	for _, enc := range encounters {
		if err := copyEncounter(tx, enc); err != nil {
			tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("error committing migration: %w", err)
	}
	return len(encounters), nil
}

// copyEncounter inserts enc under a fresh ID and re-parents its events.
func copyEncounter(tx *gorm.DB, enc model.Encounter) error {
	row := model.Encounter{
		Model:     gorm.Model{CreatedAt: enc.CreatedAt, UpdatedAt: enc.UpdatedAt},
		Name:      enc.Name,
		StartTime: enc.StartTime,
		EndTime:   enc.EndTime,
		Seed:      enc.Seed,
		Tag:       enc.Tag,
	}
	if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("error migrating encounter %d: %w", enc.ID, err)
	}
	id := row.ID

	return errors.Join(
		migrateRows(tx, enc.Movements, "movements", func(m *model.Movement) { m.ID, m.EncounterID = 0, id }),
		migrateRows(tx, enc.Undos, "undos", func(u *model.Undo) { u.ID, u.EncounterID = 0, id }),
		migrateRows(tx, enc.ScaleChanges, "scale_changes", func(s *model.ScaleChange) { s.ID, s.EncounterID = 0, id }),
		migrateRows(tx, enc.RoundResets, "round_resets", func(r *model.RoundReset) { r.ID, r.EncounterID = 0, id }),
		migrateRows(tx, enc.DamageEvents, "damage_events", func(d *model.DamageEvent) { d.ID, d.EncounterID = 0, id }),
		migrateRows(tx, enc.MishapEvents, "mishap_events", func(m *model.MishapEvent) { m.ID, m.EncounterID = 0, id }),
	)
}

// helper function for event table migrations
func migrateRows[M any](tx *gorm.DB, rows []M, table string, reset func(*M)) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		reset(&rows[i])
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("error migrating %s: %w", table, err)
	}
	return nil
}
