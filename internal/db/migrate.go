package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/ativarub/rollout/internal/config"
	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns every GORM model in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&models.Division{},
		&models.Responsible{},
		&models.WorkGroup{},
		&models.Store{},
		&models.Activity{},
		&models.Plan{},
		&models.Checkpoint{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every table, children first.
func DropAll(db *gorm.DB) error {
	all := AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("db: drop table: %w", err)
		}
	}
	return nil
}

// SeedDivisions upserts Division rows from configuration, keyed on name.
func SeedDivisions(db *gorm.DB, divisions []config.DivisionConfig) error {
	for _, dc := range divisions {
		div := models.Division{Name: strings.TrimSpace(dc.Name)}
		if c := strings.TrimSpace(dc.Contact); c != "" {
			div.Contact = &c
		}

		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"contact", "updated_at"}),
		}).Create(&div)
		if result.Error != nil {
			return fmt.Errorf("db: seed division %q: %w", dc.Name, result.Error)
		}
	}
	return nil
}

// RemoveSQLite deletes a SQLite database file; a missing file is not an error.
func RemoveSQLite(path string) error {
	if path == ":memory:" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("db: remove %s: %w", path, err)
	}
	return nil
}
