package client

import (
	"context"
	"net/url"
	"strings"

	"inventory-server-go/internal/platform/errors"
)

// Item is the payload the item endpoints exchange. The pipeline treats it
// as opaque; unknown server fields are ignored on decode.
type Item struct {
	ItemID   string  `json:"itemId,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

// CreateItem stores a new item owned by the signed-in account.
func (c *Client) CreateItem(ctx context.Context, item Item) (Item, error) {
	var created Item
	if err := c.call(ctx, "POST", "/items", item, &created); err != nil {
		return Item{}, err
	}
	return created, nil
}

// GetItem fetches one item by id.
func (c *Client) GetItem(ctx context.Context, id string) (Item, error) {
	path, err := itemPath(id)
	if err != nil {
		return Item{}, err
	}

	var item Item
	if err := c.call(ctx, "GET", path, nil, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// ListItems returns the caller's own items.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.call(ctx, "GET", "/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetAllItems returns the whole collection regardless of owner.
func (c *Client) GetAllItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.call(ctx, "GET", "/items/all", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem replaces an item's mutable fields.
func (c *Client) UpdateItem(ctx context.Context, id string, item Item) (Item, error) {
	path, err := itemPath(id)
	if err != nil {
		return Item{}, err
	}

	var updated Item
	if err := c.call(ctx, "PUT", path, item, &updated); err != nil {
		return Item{}, err
	}
	return updated, nil
}

// DeleteItem removes an item. It issues exactly one request and discards
// any response payload.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	path, err := itemPath(id)
	if err != nil {
		return err
	}
	return c.call(ctx, "DELETE", path, nil, nil)
}

// itemPath rejects blank ids before any request goes out.
func itemPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New(errors.KindDomain, "client.items", "item id is required")
	}
	return "/items/" + url.PathEscape(id), nil
}
