package service

import (
	"context"
	"time"

	"inventory-server-go/internal/domain/eventbus"
	"inventory-server-go/internal/domain/item/aggregate"
	"inventory-server-go/internal/domain/item/repository"
	"inventory-server-go/internal/platform/errors"
)

// ItemService orchestrates inventory changes and publishes item events after
// successful persistence.
type ItemService struct {
	itemRepo repository.ItemRepository
}

func NewItemService(itemRepo repository.ItemRepository) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
	}
}

// CreateItem stores a new item owned by ownerID.
func (s *ItemService) CreateItem(
	ctx context.Context,
	name string,
	price float64,
	category string,
	ownerID uint,
) (*aggregate.Item, error) {
	item, err := aggregate.NewItem(name, price, category, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, errors.Wrap(errors.KindDomain, "item.create", "failed to create item", err)
	}

	s.publishItemEvent(eventbus.EventItemCreated, "created", item)
	return item, nil
}

// GetItem returns the item with the given id, or a not_found error.
func (s *ItemService) GetItem(ctx context.Context, id string) (*aggregate.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "item.get", "failed to load item", err)
	}
	if item == nil {
		return nil, errors.New(errors.KindNotFound, "item.get", "item not found")
	}
	return item, nil
}

// ListByOwner returns the caller's items.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID uint) ([]*aggregate.Item, error) {
	items, err := s.itemRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "item.list", "failed to list items", err)
	}
	return items, nil
}

// ListAll returns the whole collection, every owner included.
func (s *ItemService) ListAll(ctx context.Context) ([]*aggregate.Item, error) {
	items, err := s.itemRepo.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "item.list_all", "failed to list items", err)
	}
	return items, nil
}

// UpdateItem replaces the mutable fields of an existing item.
func (s *ItemService) UpdateItem(
	ctx context.Context,
	id, name string,
	price float64,
	category string,
) (*aggregate.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "item.update", "failed to load item", err)
	}
	if item == nil {
		return nil, errors.New(errors.KindNotFound, "item.update", "item not found")
	}

	if err := item.ApplyUpdate(name, price, category); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, errors.Wrap(errors.KindDomain, "item.update", "failed to update item", err)
	}

	s.publishItemEvent(eventbus.EventItemUpdated, "updated", item)
	return item, nil
}

// DeleteItem removes the item with the given id, or reports not_found.
func (s *ItemService) DeleteItem(ctx context.Context, id string) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return errors.Wrap(errors.KindDomain, "item.delete", "failed to load item", err)
	}
	if item == nil {
		return errors.New(errors.KindNotFound, "item.delete", "item not found")
	}

	removed, err := s.itemRepo.Delete(ctx, id)
	if err != nil {
		return errors.Wrap(errors.KindDomain, "item.delete", "failed to delete item", err)
	}
	if !removed {
		return errors.New(errors.KindNotFound, "item.delete", "item not found")
	}

	s.publishItemEvent(eventbus.EventItemDeleted, "deleted", item)
	return nil
}

// CountItems reports the collection size.
func (s *ItemService) CountItems(ctx context.Context) (int64, error) {
	count, err := s.itemRepo.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.KindDomain, "item.count", "failed to count items", err)
	}
	return count, nil
}

func (s *ItemService) publishItemEvent(topic, action string, item *aggregate.Item) {
	eventbus.PublishAsync(topic, eventbus.ItemEventData{
		Action:     action,
		ItemID:     item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Category:   item.Category,
		OwnerID:    item.OwnerID,
		OccurredAt: time.Now(),
	})
}
