package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory-server-go/internal/domain/auth/model"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis constructs a redis-backed session store.
func NewRedis(cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = cfg.Namespace
	}
	if prefix == "" {
		prefix = "auth:session:"
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &redisStore{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

func (s *redisStore) key(jti string) string {
	return s.prefix + jti
}

func (s *redisStore) Put(ctx context.Context, record model.SessionRecord) error {
	if record.JTI == "" {
		return fmt.Errorf("session jti required")
	}
	if record.IssuedAt.IsZero() {
		record.IssuedAt = time.Now()
	}
	data, err := sonic.Marshal(record)
	if err != nil {
		return err
	}
	expiry := s.ttl
	if !record.ExpiresAt.IsZero() {
		expiry = time.Until(record.ExpiresAt)
	}
	if expiry <= 0 {
		return fmt.Errorf("%w: %s", ErrExpired, record.JTI)
	}
	return s.client.Set(ctx, s.key(record.JTI), data, expiry).Err()
}

func (s *redisStore) Get(ctx context.Context, jti string) (model.SessionRecord, error) {
	raw, err := s.client.Get(ctx, s.key(jti)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return model.SessionRecord{}, fmt.Errorf("%w: %s", ErrNotFound, jti)
		}
		return model.SessionRecord{}, err
	}
	var record model.SessionRecord
	if err := sonic.Unmarshal(raw, &record); err != nil {
		return model.SessionRecord{}, err
	}
	if record.Expired(time.Now()) {
		_ = s.Remove(ctx, jti)
		return model.SessionRecord{}, fmt.Errorf("%w: %s", ErrExpired, jti)
	}
	return record, nil
}

func (s *redisStore) Remove(ctx context.Context, jti string) error {
	return s.client.Del(ctx, s.key(jti)).Err()
}

func (s *redisStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, s.prefix))
	}
	return ids, nil
}

func (s *redisStore) ListByAccount(ctx context.Context, accountID uint) ([]model.SessionRecord, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]model.SessionRecord, 0)
	for _, key := range keys {
		raw, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var record model.SessionRecord
		if err := sonic.Unmarshal(raw, &record); err != nil {
			continue
		}
		if record.AccountID == accountID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *redisStore) scanKeys(ctx context.Context) ([]string, error) {
	var cursor uint64
	keys := make([]string, 0)
	pattern := s.prefix + "*"
	for {
		res, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, res...)
		if nextCursor == 0 {
			break
		}
		cursor = nextCursor
	}
	return keys, nil
}

func (s *redisStore) CleanupExpired(context.Context) error {
	// Redis handles expiration via TTL.
	return nil
}

func (s *redisStore) Stats(ctx context.Context) (map[string]any, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type":        "redis",
		"total":       len(keys),
		"active":      len(keys),
		"ttl_seconds": int(s.ttl.Seconds()),
	}, nil
}

func (s *redisStore) Close(ctx context.Context) error {
	return s.client.Close()
}
