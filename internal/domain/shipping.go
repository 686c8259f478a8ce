package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const ShippingStatusShipped = "shipped"

type ShippingRecord struct {
	OrderID        int
	Method         string
	Cost           decimal.Decimal
	ShippedAt      time.Time
	TrackingNumber string
	DeliveredAt    *time.Time
	Status         string
}

type ShippingDefaults struct {
	Method         string
	Cost           decimal.Decimal
	TrackingPrefix string
}

func TrackingNumber(prefix string, orderID int) string {
	return prefix + strconv.Itoa(orderID)
}

// NewShippingRecord builds the record created when an order moves to shipped.
// Everything except ShippedAt depends only on the order id.
func NewShippingRecord(orderID int, defaults ShippingDefaults, now time.Time) ShippingRecord {
	return ShippingRecord{
		OrderID:        orderID,
		Method:         defaults.Method,
		Cost:           defaults.Cost,
		ShippedAt:      now.UTC(),
		TrackingNumber: TrackingNumber(defaults.TrackingPrefix, orderID),
		Status:         ShippingStatusShipped,
	}
}
