package repository

import (
	"context"

	"inventory-server-go/internal/domain/item/aggregate"
)

// ItemRepository is the persistence port for items. Lookups return (nil, nil)
// when nothing matches; Delete reports whether a row was removed.
type ItemRepository interface {
	Create(ctx context.Context, item *aggregate.Item) error
	Update(ctx context.Context, item *aggregate.Item) error
	FindByID(ctx context.Context, id string) (*aggregate.Item, error)
	FindByOwner(ctx context.Context, ownerID uint) ([]*aggregate.Item, error)
	FindAll(ctx context.Context) ([]*aggregate.Item, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}
