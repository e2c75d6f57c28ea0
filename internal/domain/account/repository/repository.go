package repository

import (
	"context"

	"inventory-server-go/internal/domain/account/aggregate"
)

// AccountRepository is the persistence port for accounts. Lookup methods
// return (nil, nil) when no row matches.
type AccountRepository interface {
	Create(ctx context.Context, account *aggregate.Account) error
	FindByUsername(ctx context.Context, username string) (*aggregate.Account, error)
	FindByID(ctx context.Context, id uint) (*aggregate.Account, error)
	Count(ctx context.Context) (int64, error)
}
