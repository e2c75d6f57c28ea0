package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"inventory-server-go/internal/domain/auth/model"
	"inventory-server-go/internal/platform/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&storage.AuthSession{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestSQLiteStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestSQLiteDB(t)

	store, err := NewSQLite(db, Config{TTL: time.Second})
	if err != nil {
		t.Fatalf("NewSQLite error: %v", err)
	}

	record := model.SessionRecord{
		JTI:       "jti-sqlite",
		AccountID: 9,
		Username:  "alice",
		Metadata:  map[string]any{"email": "alice@example.com"},
	}

	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := store.Get(ctx, record.JTI)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.JTI != record.JTI || got.Username != record.Username {
		t.Fatalf("unexpected session record: %+v", got)
	}
	if got.Metadata["email"] != "alice@example.com" {
		t.Fatalf("expected metadata round trip, got %+v", got.Metadata)
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

func TestSQLiteStoreCleanup(t *testing.T) {
	ctx := context.Background()
	db := newTestSQLiteDB(t)

	store, err := NewSQLite(db, Config{TTL: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewSQLite error: %v", err)
	}

	now := time.Now()
	record := model.SessionRecord{
		JTI:       "jti-expired",
		AccountID: 2,
		Username:  "bob",
		IssuedAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(-time.Minute),
	}

	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	if _, err := store.Get(ctx, record.JTI); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired for stale session, got %v", err)
	}

	if err := store.CleanupExpired(ctx); err != nil {
		t.Fatalf("CleanupExpired error: %v", err)
	}

	if _, err := store.Get(ctx, record.JTI); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after cleanup, got %v", err)
	}
}
