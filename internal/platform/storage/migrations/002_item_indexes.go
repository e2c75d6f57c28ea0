package migrations

import (
	"gorm.io/gorm"
)

// Migration002ItemIndexes adds the lookup indexes the item list endpoints
// lean on.
type Migration002ItemIndexes struct{}

func (m *Migration002ItemIndexes) Version() string {
	return "002_item_indexes"
}

func (m *Migration002ItemIndexes) Description() string {
	return "Add owner and category indexes to items"
}

func (m *Migration002ItemIndexes) Up(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_items_owner_category ON items(owner_id, category)`).Error; err != nil {
		return err
	}

	return nil
}

func (m *Migration002ItemIndexes) Down(db *gorm.DB) error {
	if err := db.Exec(`DROP INDEX IF EXISTS idx_items_owner_category`).Error; err != nil {
		return err
	}
	if err := db.Exec(`DROP INDEX IF EXISTS idx_items_category`).Error; err != nil {
		return err
	}
	if err := db.Exec(`DROP INDEX IF EXISTS idx_items_owner_id`).Error; err != nil {
		return err
	}

	return nil
}
