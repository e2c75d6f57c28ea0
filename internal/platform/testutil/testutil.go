// Package testutil provides the fixtures the package tests share: a ready
// config, a quiet file logger and an in-memory database with the schema
// migrated.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inventory-server-go/internal/platform/config"
	"inventory-server-go/internal/platform/logging"
	"inventory-server-go/internal/platform/storage"
)

// Config returns defaults adjusted for tests: fixed CORS origin, static
// serving off, quiet logs.
func Config(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.CORS.AllowedOrigin = "https://app.example.com"
	cfg.Web.Enabled = false
	cfg.Log.Level = "error"
	return cfg
}

// Logger returns a logger writing under t.TempDir, closed with the test.
func Logger(t *testing.T) *logging.Logger {
	t.Helper()

	logger, err := logging.New(logging.Config{
		Level:    "error",
		Dir:      t.TempDir(),
		Filename: "test.log",
	})
	if err != nil {
		t.Fatalf("test logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

// DB opens a fresh in-memory sqlite database carrying every model. The
// shared-cache DSN keeps the database alive across pooled connections
// within one test.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("test database: %v", err)
	}
	if err := db.AutoMigrate(
		&storage.Account{},
		&storage.Item{},
		&storage.AuthSession{},
		&storage.EventRecord{},
	); err != nil {
		t.Fatalf("test schema: %v", err)
	}
	return db
}
