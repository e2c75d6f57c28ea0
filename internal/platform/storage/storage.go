package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventory-server-go/internal/platform/config"
	"inventory-server-go/internal/platform/storage/migrations"
)

// Global database instance, set once by InitDatabase.
var db *gorm.DB

// InitDatabase opens the SQLite database and brings the schema up to date.
func InitDatabase(cfg config.DatabaseConfig) error {
	if db != nil {
		return nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, cfg.File)

	var err error
	db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// AutoMigrate keeps dev databases usable even when a migration predates
	// a model change; versioned migrations remain the source of truth.
	if err := db.AutoMigrate(&Account{}, &Item{}, &AuthSession{}, &EventRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	migrationManager := NewMigrationManager(db)
	migrationManager.AddMigration(&migrations.Migration001Initial{})
	migrationManager.AddMigration(&migrations.Migration002ItemIndexes{})
	migrationManager.AddMigration(&migrations.Migration003EventLog{})

	if err := migrationManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// GetDB returns the global database instance.
func GetDB() *gorm.DB {
	if db == nil {
		panic("database not initialized, call InitDatabase() first")
	}
	return db
}

// CloseDatabase closes the underlying connection. Safe to call when the
// database was never opened.
func CloseDatabase() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	db = nil
	return sqlDB.Close()
}
