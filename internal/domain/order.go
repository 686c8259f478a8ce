package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// ParseOrderStatus accepts any casing of a known status and returns its
// canonical lowercase form.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", false
	}
	return status, true
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

type RawOrder struct {
	OrderID         int
	CustomerID      int
	ItemID          int
	Quantity        int
	Price           decimal.Decimal
	Status          OrderStatus
	OrderDate       time.Time
	ShippingAddress *string
}

const DefaultCustomerName = "Unknown Customer"

func DefaultItemName(itemID int) string {
	return fmt.Sprintf("Item %d", itemID)
}

// EnrichedOrder is a RawOrder plus the names and location resolved for it.
// A nil Location means neither coordinate is known.
type EnrichedOrder struct {
	RawOrder
	Location     *Coordinates
	CustomerName string
	ItemName     string
}

func (o EnrichedOrder) HasLocation() bool {
	return o.Location != nil
}

type Customer struct {
	ID   int
	Name string
}

type ItemSummary struct {
	ID   int
	Name string
}
