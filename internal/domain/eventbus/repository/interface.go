package repository

import (
	"context"
	"time"
)

// EventRepository persists the domain event audit trail.
type EventRepository interface {
	// Store appends one event to the log.
	Store(ctx context.Context, event Event) error

	// FindByTopic returns the newest events for a topic, most recent first.
	FindByTopic(ctx context.Context, topic string, limit int) ([]Event, error)

	// FindByItem returns every recorded event for an item, oldest first.
	FindByItem(ctx context.Context, itemID string) ([]Event, error)

	// FindRecent returns the newest events across all topics.
	FindRecent(ctx context.Context, limit int) ([]Event, error)

	// DeleteOldEvents drops events recorded before the given time.
	DeleteOldEvents(ctx context.Context, before time.Time) error

	// GetEventStats returns per-topic event counts.
	GetEventStats(ctx context.Context) (map[string]int64, error)
}

// Event is one entry in the audit trail.
type Event struct {
	ID        string
	Topic     string
	ItemID    string
	AccountID uint
	Data      interface{}
	CreatedAt time.Time
}
