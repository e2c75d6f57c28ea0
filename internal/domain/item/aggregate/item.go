package aggregate

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"inventory-server-go/internal/platform/errors"
)

// Item is the inventory aggregate root. The ID is the externally visible
// item id; OwnerID stays server-side and never appears in payloads.
type Item struct {
	ID        string    `json:"itemId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	OwnerID   uint      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewItem creates an item with a fresh id and timestamps.
func NewItem(name string, price float64, category string, ownerID uint) (*Item, error) {
	item := &Item{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Price:    price,
		Category: strings.TrimSpace(category),
		OwnerID:  ownerID,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	return item, nil
}

func (i *Item) Validate() error {
	if i.Name == "" {
		return errors.New(errors.KindDomain, "item.validate", "item name cannot be empty")
	}
	if len(i.Name) > 255 {
		return errors.New(errors.KindDomain, "item.validate", "item name is too long")
	}
	if i.Price < 0 {
		return errors.New(errors.KindDomain, "item.validate", "item price cannot be negative")
	}
	return nil
}

// ApplyUpdate replaces the mutable fields and bumps the update time.
func (i *Item) ApplyUpdate(name string, price float64, category string) error {
	updated := *i
	updated.Name = strings.TrimSpace(name)
	updated.Price = price
	updated.Category = strings.TrimSpace(category)
	if err := updated.Validate(); err != nil {
		return err
	}

	i.Name = updated.Name
	i.Price = updated.Price
	i.Category = updated.Category
	i.UpdatedAt = time.Now()
	return nil
}
