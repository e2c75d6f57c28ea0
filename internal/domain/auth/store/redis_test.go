package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-server-go/internal/domain/auth/model"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestRedisStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	store, err := NewRedis(Config{
		TTL: time.Second,
		Redis: &RedisConfig{
			Addr: mr.Addr(),
		},
	})
	if err != nil {
		t.Fatalf("NewRedis error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	record := model.SessionRecord{
		JTI:       "jti-redis",
		AccountID: 5,
		Username:  "alice",
	}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := store.Get(ctx, record.JTI)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.JTI != record.JTI || got.Username != record.Username {
		t.Fatalf("unexpected record: %+v", got)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 1 || list[0] != record.JTI {
		t.Fatalf("unexpected list: %v", list)
	}

	byAccount, err := store.ListByAccount(ctx, record.AccountID)
	if err != nil {
		t.Fatalf("ListByAccount error: %v", err)
	}
	if len(byAccount) != 1 || byAccount[0].JTI != record.JTI {
		t.Fatalf("unexpected account sessions: %+v", byAccount)
	}

	if err := store.Remove(ctx, record.JTI); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := store.Get(ctx, record.JTI); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}
}

func TestRedisStoreCustomPrefix(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	store, err := NewRedis(Config{
		TTL:       time.Minute,
		Namespace: "inventory:sessions:",
		Redis: &RedisConfig{
			Addr: mr.Addr(),
		},
	})
	if err != nil {
		t.Fatalf("NewRedis error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	if err := store.Put(ctx, model.SessionRecord{JTI: "jti-ns", AccountID: 1}); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if !mr.Exists("inventory:sessions:jti-ns") {
		t.Fatalf("expected namespaced key in redis, keys: %v", mr.Keys())
	}
}
