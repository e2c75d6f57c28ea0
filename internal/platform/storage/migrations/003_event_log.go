package migrations

import (
	"gorm.io/gorm"
)

// Migration003EventLog creates the domain event audit trail table.
type Migration003EventLog struct{}

func (m *Migration003EventLog) Version() string {
	return "003_event_log"
}

func (m *Migration003EventLog) Description() string {
	return "Create event_records audit trail"
}

func (m *Migration003EventLog) Up(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS event_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic VARCHAR(100) NOT NULL,
			item_id VARCHAR(36),
			account_id INTEGER,
			data TEXT,
			created_at DATETIME
		)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_event_records_topic ON event_records(topic)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_event_records_item_id ON event_records(item_id)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_event_records_created_at ON event_records(created_at)`).Error; err != nil {
		return err
	}

	return nil
}

func (m *Migration003EventLog) Down(db *gorm.DB) error {
	if err := db.Exec(`DROP INDEX IF EXISTS idx_event_records_created_at`).Error; err != nil {
		return err
	}
	if err := db.Exec(`DROP INDEX IF EXISTS idx_event_records_item_id`).Error; err != nil {
		return err
	}
	if err := db.Exec(`DROP INDEX IF EXISTS idx_event_records_topic`).Error; err != nil {
		return err
	}
	return db.Exec(`DROP TABLE IF EXISTS event_records`).Error
}
