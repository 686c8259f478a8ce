package dto

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "vendordesk/internal/errors"
)

type CoordinatesDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type OrderDTO struct {
	OrderID         int             `json:"orderId"`
	CustomerID      int             `json:"customerId"`
	CustomerName    string          `json:"customerName"`
	ItemID          int             `json:"itemId"`
	ItemName        string          `json:"itemName"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Status          string          `json:"status"`
	CommittedStatus string          `json:"committedStatus"`
	Committing      bool            `json:"committing"`
	OrderDate       *time.Time      `json:"orderDate"`
	Location        *CoordinatesDTO `json:"location"`
	HasLocation     bool            `json:"hasLocation"`
}

// SelectionDTO always carries a map center: the focal point when there is
// one, the default center otherwise.
type SelectionDTO struct {
	SelectedOrderID *int            `json:"selectedOrderId"`
	FocalPoint      *CoordinatesDTO `json:"focalPoint"`
	MapCenter       CoordinatesDTO  `json:"mapCenter"`
	Zoom            int             `json:"zoom"`
}

type OrderBoardResponse struct {
	TraceID     string       `json:"traceId"`
	VendorID    string       `json:"vendorId"`
	Orders      []OrderDTO   `json:"orders"`
	Selection   SelectionDTO `json:"selection"`
	Loaded      bool         `json:"loaded"`
	RefreshedAt *time.Time   `json:"refreshedAt"`
	Error       *string      `json:"error"`
}

type OrderResponse struct {
	TraceID string   `json:"traceId"`
	Order   OrderDTO `json:"order"`
}

type ShippingDTO struct {
	OrderID        int             `json:"orderId"`
	Method         string          `json:"method"`
	Cost           decimal.Decimal `json:"cost"`
	ShippedAt      time.Time       `json:"shippedAt"`
	TrackingNumber string          `json:"trackingNumber"`
	Status         string          `json:"status"`
}

type CommitResponse struct {
	TraceID  string       `json:"traceId"`
	Order    OrderDTO     `json:"order"`
	Skipped  bool         `json:"skipped"`
	Shipping *ShippingDTO `json:"shipping,omitempty"`
}

type SelectionResponse struct {
	TraceID   string       `json:"traceId"`
	Selection SelectionDTO `json:"selection"`
}

type ErrorResponse struct {
	TraceID   string                       `json:"traceId"`
	Status    int                          `json:"status"`
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}
