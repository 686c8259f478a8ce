package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"vendordesk/internal/domain"
	apperrors "vendordesk/internal/errors"
)

func (c *Client) ListOrdersForVendor(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
	var wire []orderWire
	path := fmt.Sprintf("/orders/vendor/%s", url.PathEscape(vendorID))
	if err := c.do(ctx, "list_orders", http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}

	orders := make([]domain.RawOrder, 0, len(wire))
	for _, w := range wire {
		orders = append(orders, w.toDomain())
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int, status domain.OrderStatus) error {
	if !status.Valid() {
		return apperrors.NewValidationError("unexpected order status", apperrors.ValidationDetail{
			Field:   "order_status",
			Message: fmt.Sprintf("%q is not one of placed, shipped, delivered", status),
		})
	}

	path := fmt.Sprintf("/orders/%d", orderID)
	return c.do(ctx, "update_order_status", http.MethodPut, path, statusUpdateWire{OrderStatus: string(status)}, nil)
}

func (c *Client) CreateShipping(ctx context.Context, record domain.ShippingRecord) error {
	return c.do(ctx, "create_shipping", http.MethodPost, "/orders/shipping", newShippingWire(record), nil)
}
