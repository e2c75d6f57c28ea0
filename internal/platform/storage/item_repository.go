package storage

import (
	"context"

	"gorm.io/gorm"

	"inventory-server-go/internal/domain/item/aggregate"
	"inventory-server-go/internal/domain/item/repository"
	"inventory-server-go/internal/platform/errors"
)

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates the GORM-backed item repository.
func NewItemRepository(db *gorm.DB) repository.ItemRepository {
	return &itemRepository{
		db: db,
	}
}

func (r *itemRepository) Create(ctx context.Context, item *aggregate.Item) error {
	model := r.toModel(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "item.create", "failed to create item", err)
	}
	return nil
}

func (r *itemRepository) Update(ctx context.Context, item *aggregate.Item) error {
	model := r.toModel(item)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "item.update", "failed to update item", err)
	}
	return nil
}

// FindByID returns (nil, nil) when no item carries the id.
func (r *itemRepository) FindByID(ctx context.Context, id string) (*aggregate.Item, error) {
	var model Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "item.find_by_id", "failed to find item", err)
	}
	return r.fromModel(&model), nil
}

func (r *itemRepository) FindByOwner(ctx context.Context, ownerID uint) ([]*aggregate.Item, error) {
	var models []Item
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at").Find(&models).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "item.find_by_owner", "failed to find items", err)
	}
	return r.fromModels(models), nil
}

func (r *itemRepository) FindAll(ctx context.Context) ([]*aggregate.Item, error) {
	var models []Item
	if err := r.db.WithContext(ctx).Order("created_at").Find(&models).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "item.find_all", "failed to find items", err)
	}
	return r.fromModels(models), nil
}

// Delete reports whether a row was actually removed, so callers can
// distinguish a missing item without a prior lookup.
func (r *itemRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Item{})
	if result.Error != nil {
		return false, errors.Wrap(errors.KindStorage, "item.delete", "failed to delete item", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *itemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Item{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "item.count", "failed to count items", err)
	}
	return count, nil
}

func (r *itemRepository) toModel(item *aggregate.Item) *Item {
	return &Item{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Category:  item.Category,
		OwnerID:   item.OwnerID,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func (r *itemRepository) fromModel(model *Item) *aggregate.Item {
	return &aggregate.Item{
		ID:        model.ID,
		Name:      model.Name,
		Price:     model.Price,
		Category:  model.Category,
		OwnerID:   model.OwnerID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func (r *itemRepository) fromModels(models []Item) []*aggregate.Item {
	items := make([]*aggregate.Item, len(models))
	for i := range models {
		items[i] = r.fromModel(&models[i])
	}
	return items
}
