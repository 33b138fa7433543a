// Package database kapselt den Zugriff auf den relationalen Speicher (gorm).
package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pubhub/config"
	"pubhub/models"
)

// Open baut die Verbindung zum konfigurierten Treiber auf und migriert das Schema.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}

	db, err := OpenDialector(dialector)
	if err != nil {
		return nil, err
	}
	log.Info("Successfully connected to database.", zap.String("driver", cfg.DBDriver))

	log.Info("Running database auto-migration...")
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenDialector öffnet gorm mit den gemeinsamen Einstellungen.
func OpenDialector(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", dialector.Name(), err)
	}

	if dialector.Name() == config.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite erlaubt keine parallelen Schreibzugriffe
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate legt die drei Tabellen an.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migration: %w", err)
	}
	return nil
}

// WithTransaction führt fn in genau einer Transaktion aus: entweder alles
// wird committet oder alles zurückgerollt.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return db.WithContext(ctx).Transaction(fn)
}
