package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-server-go/internal/domain/auth/model"
	"inventory-server-go/internal/platform/storage"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

type sqliteStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewSQLite builds a SQLite-backed session store.
func NewSQLite(db *gorm.DB, cfg Config) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite store requires database handle")
	}
	return &sqliteStore{
		db:  db,
		ttl: cfg.TTL,
	}, nil
}

func (s *sqliteStore) Put(ctx context.Context, record model.SessionRecord) error {
	if record.JTI == "" {
		return fmt.Errorf("session jti required")
	}
	now := time.Now()
	if record.IssuedAt.IsZero() {
		record.IssuedAt = now
	}
	if record.ExpiresAt.IsZero() && s.ttl > 0 {
		record.ExpiresAt = record.IssuedAt.Add(s.ttl)
	}
	meta, _ := sonic.Marshal(record.Metadata)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("jti = ?", record.JTI).Delete(&storage.AuthSession{}).Error; err != nil {
			return err
		}
		row := &storage.AuthSession{
			JTI:        record.JTI,
			AccountID:  record.AccountID,
			Username:   record.Username,
			RemoteAddr: record.RemoteAddr,
			IssuedAt:   record.IssuedAt,
			ExpiresAt:  record.ExpiresAt,
			Metadata:   meta,
		}
		return tx.Create(row).Error
	})
}

func (s *sqliteStore) Get(ctx context.Context, jti string) (model.SessionRecord, error) {
	record, err := s.fetch(ctx, jti)
	if err != nil {
		return model.SessionRecord{}, err
	}
	if record.Expired(time.Now()) {
		return model.SessionRecord{}, fmt.Errorf("%w: %s", ErrExpired, jti)
	}
	return record, nil
}

func (s *sqliteStore) Remove(ctx context.Context, jti string) error {
	return s.db.WithContext(ctx).Where("jti = ?", jti).Delete(&storage.AuthSession{}).Error
}

func (s *sqliteStore) List(ctx context.Context) ([]string, error) {
	var rows []storage.AuthSession
	if err := s.db.WithContext(ctx).Select("jti", "expires_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.ExpiresAt.IsZero() || now.Before(row.ExpiresAt) {
			ids = append(ids, row.JTI)
		}
	}
	return ids, nil
}

func (s *sqliteStore) ListByAccount(ctx context.Context, accountID uint) ([]model.SessionRecord, error) {
	var rows []storage.AuthSession
	if err := s.db.WithContext(ctx).Where("account_id = ?", accountID).Find(&rows).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	records := make([]model.SessionRecord, 0, len(rows))
	for _, row := range rows {
		record := fromRow(row)
		if !record.Expired(now) {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *sqliteStore) CleanupExpired(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&storage.AuthSession{}).
		Error
}

func (s *sqliteStore) Stats(ctx context.Context) (map[string]any, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&storage.AuthSession{}).Count(&total).Error; err != nil {
		return nil, err
	}
	var active int64
	if err := s.db.WithContext(ctx).Model(&storage.AuthSession{}).
		Where("expires_at >= ?", time.Now()).Count(&active).Error; err != nil {
		return nil, err
	}
	return map[string]any{
		"type":        "sqlite",
		"total":       total,
		"active":      active,
		"ttl_seconds": int(s.ttl.Seconds()),
	}, nil
}

func (s *sqliteStore) Close(context.Context) error {
	return nil
}

func (s *sqliteStore) fetch(ctx context.Context, jti string) (model.SessionRecord, error) {
	var row storage.AuthSession
	err := s.db.WithContext(ctx).Where("jti = ?", jti).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.SessionRecord{}, fmt.Errorf("%w: %s", ErrNotFound, jti)
		}
		return model.SessionRecord{}, err
	}
	return fromRow(row), nil
}

func fromRow(row storage.AuthSession) model.SessionRecord {
	record := model.SessionRecord{
		JTI:        row.JTI,
		AccountID:  row.AccountID,
		Username:   row.Username,
		RemoteAddr: row.RemoteAddr,
		IssuedAt:   row.IssuedAt,
		ExpiresAt:  row.ExpiresAt,
	}
	if len(row.Metadata) > 0 {
		var meta map[string]any
		if err := sonic.Unmarshal(row.Metadata, &meta); err == nil {
			record.Metadata = meta
		}
	}
	return record
}
