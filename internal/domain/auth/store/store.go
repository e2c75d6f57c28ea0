package store

import (
	"context"
	"errors"
	"time"

	"inventory-server-go/internal/domain/auth/model"
)

// Sentinel errors shared by every driver so callers can branch without
// sniffing messages.
var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// IsInvalidSession reports whether err marks a session that can no
// longer be used (missing or expired), as opposed to a backend failure.
func IsInvalidSession(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired)
}

// Store defines the behaviour required by the auth manager.
type Store interface {
	Put(ctx context.Context, record model.SessionRecord) error
	Get(ctx context.Context, jti string) (model.SessionRecord, error)
	Remove(ctx context.Context, jti string) error
	List(ctx context.Context) ([]string, error)
	ListByAccount(ctx context.Context, accountID uint) ([]model.SessionRecord, error)
	CleanupExpired(ctx context.Context) error
	Stats(ctx context.Context) (map[string]any, error)
	Close(ctx context.Context) error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver    string
	TTL       time.Duration
	Namespace string
	Redis     *RedisConfig
	SQLite    *SQLiteConfig
	Memory    *MemoryConfig
}

// MemoryConfig holds in-memory tuning knobs.
type MemoryConfig struct {
	GCInterval time.Duration
}

// SQLiteConfig provides the database dependency.
type SQLiteConfig struct {
	DSN string
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}
