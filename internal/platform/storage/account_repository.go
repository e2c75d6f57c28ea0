package storage

import (
	"context"

	"gorm.io/gorm"

	"inventory-server-go/internal/domain/account/aggregate"
	"inventory-server-go/internal/domain/account/repository"
	"inventory-server-go/internal/platform/errors"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates the GORM-backed account repository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (r *accountRepository) Create(ctx context.Context, account *aggregate.Account) error {
	model := r.toModel(account)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "account.create", "failed to create account", err)
	}
	account.ID = model.ID
	return nil
}

// FindByUsername returns (nil, nil) when the username is unknown.
func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*aggregate.Account, error) {
	var model Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "account.find_by_username", "failed to find account", err)
	}
	return r.fromModel(&model), nil
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*aggregate.Account, error) {
	var model Account
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "account.find_by_id", "failed to find account", err)
	}
	return r.fromModel(&model), nil
}

func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Account{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "account.count", "failed to count accounts", err)
	}
	return count, nil
}

func (r *accountRepository) toModel(account *aggregate.Account) *Account {
	return &Account{
		ID:        account.ID,
		Username:  account.Username,
		Password:  account.PasswordHash,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

func (r *accountRepository) fromModel(model *Account) *aggregate.Account {
	return &aggregate.Account{
		ID:           model.ID,
		Username:     model.Username,
		PasswordHash: model.Password,
		Email:        model.Email,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
