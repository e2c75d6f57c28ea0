package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"inventory-server-go/internal/domain/eventbus/repository"
	"inventory-server-go/internal/platform/errors"
	"inventory-server-go/internal/platform/storage"
)

// eventRepository persists audit trail entries through GORM.
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates the audit trail repository.
func NewEventRepository(db *gorm.DB) repository.EventRepository {
	return &eventRepository{
		db: db,
	}
}

func (r *eventRepository) Store(ctx context.Context, event repository.Event) error {
	dataBytes, err := sonic.Marshal(event.Data)
	if err != nil {
		return errors.Wrap(errors.KindStorage, "event.store.marshal", "failed to marshal event data", err)
	}

	record := &storage.EventRecord{
		Topic:     event.Topic,
		ItemID:    event.ItemID,
		AccountID: event.AccountID,
		Data:      dataBytes,
		CreatedAt: event.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "event.store.create", "failed to store event", err)
	}

	return nil
}

func (r *eventRepository) FindByTopic(ctx context.Context, topic string, limit int) ([]repository.Event, error) {
	var records []storage.EventRecord
	query := r.db.WithContext(ctx).
		Where("topic = ?", topic).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "event.find.topic", "failed to find events by topic", err)
	}

	return r.convertRecords(records)
}

func (r *eventRepository) FindByItem(ctx context.Context, itemID string) ([]repository.Event, error) {
	var records []storage.EventRecord
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "event.find.item", "failed to find events by item", err)
	}

	return r.convertRecords(records)
}

func (r *eventRepository) FindRecent(ctx context.Context, limit int) ([]repository.Event, error) {
	var records []storage.EventRecord
	query := r.db.WithContext(ctx).Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "event.find.recent", "failed to find recent events", err)
	}

	return r.convertRecords(records)
}

func (r *eventRepository) DeleteOldEvents(ctx context.Context, before time.Time) error {
	if err := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&storage.EventRecord{}).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "event.delete.old", "failed to delete old events", err)
	}

	return nil
}

func (r *eventRepository) GetEventStats(ctx context.Context) (map[string]int64, error) {
	var stats []struct {
		Topic string
		Count int64
	}

	if err := r.db.WithContext(ctx).
		Model(&storage.EventRecord{}).
		Select("topic, count(*) as count").
		Group("topic").
		Scan(&stats).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "event.stats", "failed to get event stats", err)
	}

	result := make(map[string]int64)
	for _, stat := range stats {
		result[stat.Topic] = stat.Count
	}

	return result, nil
}

func (r *eventRepository) convertRecords(records []storage.EventRecord) ([]repository.Event, error) {
	events := make([]repository.Event, len(records))

	for i, rec := range records {
		var data interface{}
		if len(rec.Data) > 0 {
			if err := sonic.Unmarshal(rec.Data, &data); err != nil {
				return nil, errors.Wrap(errors.KindStorage, "event.convert.unmarshal", "failed to unmarshal event data", err)
			}
		}

		events[i] = repository.Event{
			ID:        fmt.Sprintf("%d", rec.ID),
			Topic:     rec.Topic,
			ItemID:    rec.ItemID,
			AccountID: rec.AccountID,
			Data:      data,
			CreatedAt: rec.CreatedAt,
		}
	}

	return events, nil
}
