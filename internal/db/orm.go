package db

import (
	"fmt"
	"strings"

	"bode-andarilho/agenda/internal/logging"
	gormModels "bode-andarilho/agenda/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// IsSQLite reports whether dsn selects the embedded sqlite store.
func IsSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, sqlitePrefix)
}

// InitORM opens postgres, or sqlite for a sqlite://<path> DSN, and migrates
// the schema.
func InitORM(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if IsSQLite(dsn) {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logging.Info("Connected to database via GORM", "dialect", db.Dialector.Name())
	return db, nil
}

// Migrate creates or updates the members, events and confirmations tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&gormModels.Member{},
		&gormModels.Event{},
		&gormModels.Confirmation{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
