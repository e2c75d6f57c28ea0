package migrations

import (
	"gorm.io/gorm"
)

// Migration001Initial creates the core tables.
type Migration001Initial struct{}

func (m *Migration001Initial) Version() string {
	return "001_initial"
}

func (m *Migration001Initial) Description() string {
	return "Create accounts, items and auth session tables"
}

func (m *Migration001Initial) Up(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE,
			status INTEGER DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price REAL NOT NULL,
			category VARCHAR(100),
			owner_id INTEGER NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS auth_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			jti VARCHAR(36) NOT NULL UNIQUE,
			account_id INTEGER NOT NULL,
			username VARCHAR(255) NOT NULL,
			remote_addr VARCHAR(255),
			issued_at DATETIME,
			expires_at DATETIME,
			metadata JSON
		)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_auth_sessions_account_id ON auth_sessions(account_id)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_auth_sessions_expires_at ON auth_sessions(expires_at)`).Error; err != nil {
		return err
	}

	return nil
}

func (m *Migration001Initial) Down(db *gorm.DB) error {
	if err := db.Exec(`DROP TABLE IF EXISTS auth_sessions`).Error; err != nil {
		return err
	}
	if err := db.Exec(`DROP TABLE IF EXISTS items`).Error; err != nil {
		return err
	}
	if err := db.Exec(`DROP TABLE IF EXISTS accounts`).Error; err != nil {
		return err
	}

	return nil
}
