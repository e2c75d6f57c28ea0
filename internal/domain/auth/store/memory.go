package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inventory-server-go/internal/domain/auth/model"
)

type memoryStore struct {
	sessions    map[string]model.SessionRecord
	mutex       sync.RWMutex
	ttl         time.Duration
	cleanupFreq time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMemory builds an in-memory session store.
func NewMemory(cfg Config) Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	cleanup := 5 * time.Minute
	if cfg.Memory != nil && cfg.Memory.GCInterval > 0 {
		cleanup = cfg.Memory.GCInterval
	}
	s := &memoryStore{
		sessions:    make(map[string]model.SessionRecord),
		ttl:         ttl,
		cleanupFreq: cleanup,
		stop:        make(chan struct{}),
	}
	go s.gcLoop()
	return s
}

func (s *memoryStore) gcLoop() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = s.CleanupExpired(context.Background())
		case <-s.stop:
			return
		}
	}
}

func (s *memoryStore) Put(_ context.Context, record model.SessionRecord) error {
	if record.JTI == "" {
		return fmt.Errorf("session jti required")
	}
	now := time.Now()
	if record.IssuedAt.IsZero() {
		record.IssuedAt = now
	}
	if record.ExpiresAt.IsZero() && s.ttl > 0 {
		record.ExpiresAt = now.Add(s.ttl)
	}

	s.mutex.Lock()
	s.sessions[record.JTI] = record
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Get(_ context.Context, jti string) (model.SessionRecord, error) {
	s.mutex.RLock()
	record, ok := s.sessions[jti]
	s.mutex.RUnlock()
	if !ok {
		return model.SessionRecord{}, fmt.Errorf("%w: %s", ErrNotFound, jti)
	}
	if record.Expired(time.Now()) {
		return model.SessionRecord{}, fmt.Errorf("%w: %s", ErrExpired, jti)
	}
	return record, nil
}

func (s *memoryStore) Remove(_ context.Context, jti string) error {
	s.mutex.Lock()
	delete(s.sessions, jti)
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]string, error) {
	now := time.Now()
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for jti, record := range s.sessions {
		if !record.Expired(now) {
			ids = append(ids, jti)
		}
	}
	return ids, nil
}

func (s *memoryStore) ListByAccount(_ context.Context, accountID uint) ([]model.SessionRecord, error) {
	now := time.Now()
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	records := make([]model.SessionRecord, 0)
	for _, record := range s.sessions {
		if record.AccountID == accountID && !record.Expired(now) {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *memoryStore) CleanupExpired(_ context.Context) error {
	now := time.Now()
	s.mutex.Lock()
	for jti, record := range s.sessions {
		if record.Expired(now) {
			delete(s.sessions, jti)
		}
	}
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Stats(_ context.Context) (map[string]any, error) {
	now := time.Now()
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := len(s.sessions)
	active := 0
	for _, record := range s.sessions {
		if !record.Expired(now) {
			active++
		}
	}
	return map[string]any{
		"type":        "memory",
		"total":       total,
		"active":      active,
		"ttl_seconds": int(s.ttl.Seconds()),
	}, nil
}

func (s *memoryStore) Close(_ context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}
