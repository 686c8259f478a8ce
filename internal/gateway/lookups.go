package gateway

import (
	"context"
	"fmt"
	"net/http"

	"vendordesk/internal/domain"
)

func (c *Client) GetCustomer(ctx context.Context, customerID int) (*domain.Customer, error) {
	var wire namedWire
	if err := c.do(ctx, "get_customer", http.MethodGet, fmt.Sprintf("/customer/%d", customerID), nil, &wire); err != nil {
		return nil, err
	}
	return &domain.Customer{ID: customerID, Name: wire.Name}, nil
}

func (c *Client) GetItem(ctx context.Context, itemID int) (*domain.ItemSummary, error) {
	var wire namedWire
	if err := c.do(ctx, "get_item", http.MethodGet, fmt.Sprintf("/item/%d", itemID), nil, &wire); err != nil {
		return nil, err
	}
	return &domain.ItemSummary{ID: itemID, Name: wire.Name}, nil
}
