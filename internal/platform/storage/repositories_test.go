package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountaggregate "inventory-server-go/internal/domain/account/aggregate"
	"inventory-server-go/internal/domain/item/aggregate"
	"inventory-server-go/internal/platform/errors"
	"inventory-server-go/internal/platform/storage"
	"inventory-server-go/internal/platform/testutil"
)

func newItem(t *testing.T, name string, price float64, owner uint, createdAt time.Time) *aggregate.Item {
	t.Helper()

	item, err := aggregate.NewItem(name, price, "peripherals", owner)
	require.NoError(t, err)
	item.CreatedAt = createdAt
	item.UpdatedAt = createdAt
	return item
}

func TestItemRepositoryRoundTrip(t *testing.T) {
	repo := storage.NewItemRepository(testutil.DB(t))
	ctx := context.Background()

	item := newItem(t, "Keyboard", 49.5, 7, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, item))

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, item.ID, found.ID)
	assert.Equal(t, "Keyboard", found.Name)
	assert.Equal(t, 49.5, found.Price)
	assert.Equal(t, uint(7), found.OwnerID)

	require.NoError(t, found.ApplyUpdate("Mechanical Keyboard", 89.9, "peripherals"))
	require.NoError(t, repo.Update(ctx, found))

	updated, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Mechanical Keyboard", updated.Name)
	assert.Equal(t, 89.9, updated.Price)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestItemRepositoryMissingIDIsNilNil(t *testing.T) {
	repo := storage.NewItemRepository(testutil.DB(t))

	found, err := repo.FindByID(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, found, "absence is not an error at the repository level")
}

func TestItemRepositoryOwnerScope(t *testing.T) {
	repo := storage.NewItemRepository(testutil.DB(t))
	ctx := context.Background()
	base := time.Now().UTC()

	first := newItem(t, "Monitor", 199, 1, base)
	second := newItem(t, "Desk Mat", 15, 1, base.Add(time.Second))
	other := newItem(t, "Webcam", 59, 2, base.Add(2*time.Second))
	for _, item := range []*aggregate.Item{first, second, other} {
		require.NoError(t, repo.Create(ctx, item))
	}

	mine, err := repo.FindByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Monitor", mine[0].Name, "owner listing keeps creation order")
	assert.Equal(t, "Desk Mat", mine[1].Name)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.FindByOwner(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestItemRepositoryDeleteReportsRow(t *testing.T) {
	repo := storage.NewItemRepository(testutil.DB(t))
	ctx := context.Background()

	item := newItem(t, "Cable", 9.9, 1, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, item))

	removed, err := repo.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, removed, "second delete finds no row")
}

func TestAccountRepositoryAssignsID(t *testing.T) {
	repo := storage.NewAccountRepository(testutil.DB(t))
	ctx := context.Background()

	account := &accountaggregate.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$notarealhash",
	}
	require.NoError(t, repo.Create(ctx, account))
	assert.NotZero(t, account.ID, "create propagates the generated id")

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, account.ID, byName.ID)
	assert.Equal(t, "$2a$04$notarealhash", byName.PasswordHash)

	byID, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Username)

	missing, err := repo.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAccountRepositoryDuplicateUsername(t *testing.T) {
	repo := storage.NewAccountRepository(testutil.DB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &accountaggregate.Account{
		Username: "alice", Email: "a@example.com", PasswordHash: "x",
	}))

	err := repo.Create(ctx, &accountaggregate.Account{
		Username: "alice", Email: "b@example.com", PasswordHash: "y",
	})
	require.Error(t, err, "username carries a unique index")
	assert.True(t, errors.IsKind(err, errors.KindStorage))
}
