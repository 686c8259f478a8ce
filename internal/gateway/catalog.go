package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"vendordesk/internal/domain"
)

func (c *Client) ListVendorItems(ctx context.Context, vendorID string) ([]domain.Item, error) {
	var wire []itemWire
	path := fmt.Sprintf("/vendor/%s/items", url.PathEscape(vendorID))
	if err := c.do(ctx, "list_items", http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(wire))
	for _, w := range wire {
		items = append(items, w.toDomain())
	}
	return items, nil
}

func (c *Client) ListVendorCategories(ctx context.Context, vendorID string) ([]domain.Category, error) {
	var wire []categoryWire
	path := fmt.Sprintf("/vendor-categories/categories/vendor/%s", url.PathEscape(vendorID))
	if err := c.do(ctx, "list_categories", http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(wire))
	for _, w := range wire {
		categories = append(categories, w.toDomain())
	}
	return categories, nil
}

func (c *Client) AddItem(ctx context.Context, item domain.Item) error {
	return c.do(ctx, "add_item", http.MethodPost, "/item/additem", newItemWire(item), nil)
}

func (c *Client) UpdateItem(ctx context.Context, item domain.Item) error {
	path := fmt.Sprintf("/item/updateitem/%d", item.ID)
	return c.do(ctx, "update_item", http.MethodPut, path, newItemWire(item), nil)
}

func (c *Client) DeleteItem(ctx context.Context, itemID int) error {
	return c.do(ctx, "delete_item", http.MethodDelete, fmt.Sprintf("/item/deleteitem/%d", itemID), nil, nil)
}
