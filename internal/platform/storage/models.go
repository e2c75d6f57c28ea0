package storage

import (
	"time"

	"gorm.io/datatypes"
)

// Account is the GORM model backing registered users.
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string `json:"-"`
	Email     string `gorm:"type:varchar(255);uniqueIndex"`
	Status    uint   `gorm:"default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is the GORM model backing inventory items. The primary key is the
// externally visible item id (UUID), assigned by the domain service.
type Item struct {
	ID        string  `gorm:"type:varchar(36);primaryKey"`
	Name      string  `gorm:"type:varchar(255);not null"`
	Price     float64 `gorm:"not null"`
	Category  string  `gorm:"type:varchar(100);index"`
	OwnerID   uint    `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthSession is the GORM model backing the sqlite session store. One row per
// live refresh token, keyed by the token's jti claim.
type AuthSession struct {
	ID         uint   `gorm:"primaryKey"`
	JTI        string `gorm:"type:varchar(36);uniqueIndex;not null"`
	AccountID  uint   `gorm:"index;not null"`
	Username   string `gorm:"not null"`
	RemoteAddr string
	IssuedAt   time.Time
	ExpiresAt  time.Time      `gorm:"index"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
}

// EventRecord is the GORM model backing the domain event audit trail.
type EventRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Topic     string `gorm:"type:varchar(100);index;not null"`
	ItemID    string `gorm:"type:varchar(36);index"`
	AccountID uint   `gorm:"index"`
	Data      datatypes.JSON
	CreatedAt time.Time `gorm:"index"`
}
