package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vendordesk/internal/domain"
)

type orderWire struct {
	OrderID         int             `json:"order_id"`
	CustomerID      int             `json:"customer_id"`
	ItemID          int             `json:"item_id"`
	Quantity        int             `json:"item_quantity"`
	Price           decimal.Decimal `json:"item_price"`
	Status          string          `json:"order_status"`
	OrderDate       flexTime        `json:"order_date"`
	ShippingAddress json.RawMessage `json:"shipping_address"`
}

func (w orderWire) toDomain() domain.RawOrder {
	status := domain.OrderStatus(w.Status)
	if parsed, ok := domain.ParseOrderStatus(w.Status); ok {
		status = parsed
	}
	return domain.RawOrder{
		OrderID:         w.OrderID,
		CustomerID:      w.CustomerID,
		ItemID:          w.ItemID,
		Quantity:        w.Quantity,
		Price:           w.Price,
		Status:          status,
		OrderDate:       time.Time(w.OrderDate),
		ShippingAddress: embeddedText(w.ShippingAddress),
	}
}

// embeddedText returns shipping_address as the text the domain parser
// expects. The backend usually sends a JSON-encoded string, but an embedded
// object is passed through as its raw JSON.
func embeddedText(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return &s
	}
	s := string(raw)
	return &s
}

type namedWire struct {
	Name string `json:"name"`
}

type statusUpdateWire struct {
	OrderStatus string `json:"order_status"`
}

type shippingWire struct {
	OrderID        int         `json:"order_id"`
	ShippingMethod string      `json:"shipping_method"`
	ShippingCost   json.Number `json:"shipping_cost"`
	ShippingDate   string      `json:"shipping_date"`
	TrackingNumber string      `json:"tracking_number"`
	DeliveryDate   *string     `json:"delivery_date"`
	ShippingStatus string      `json:"shipping_status"`
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func newShippingWire(r domain.ShippingRecord) shippingWire {
	w := shippingWire{
		OrderID:        r.OrderID,
		ShippingMethod: r.Method,
		ShippingCost:   json.Number(r.Cost.StringFixed(2)),
		ShippingDate:   r.ShippedAt.UTC().Format(isoMillis),
		TrackingNumber: r.TrackingNumber,
		ShippingStatus: r.Status,
	}
	if r.DeliveredAt != nil {
		d := r.DeliveredAt.UTC().Format(isoMillis)
		w.DeliveryDate = &d
	}
	return w
}

type itemWire struct {
	ItemID        int             `json:"item_id,omitempty"`
	VendorID      flexString      `json:"vendor_id,omitempty"`
	CategoryID    flexString      `json:"categoryId"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Condition     string          `json:"item_condition"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"imageURL"`
	Description   string          `json:"description"`
	Review        float64         `json:"review"`
}

func (w itemWire) toDomain() domain.Item {
	var images []string
	for _, u := range strings.Split(w.ImageURL, ",") {
		if u = strings.TrimSpace(u); u != "" {
			images = append(images, u)
		}
	}
	return domain.Item{
		ID:            w.ItemID,
		VendorID:      string(w.VendorID),
		CategoryID:    string(w.CategoryID),
		Name:          w.Name,
		Brand:         w.Brand,
		Size:          w.Size,
		Color:         w.Color,
		Condition:     w.Condition,
		CostPrice:     w.CostPrice,
		SellingPrice:  w.SellingPrice,
		StockQuantity: w.StockQuantity,
		ImageURLs:     images,
		Description:   w.Description,
		Review:        w.Review,
	}
}

func newItemWire(item domain.Item) itemWire {
	return itemWire{
		ItemID:        item.ID,
		VendorID:      flexString(item.VendorID),
		CategoryID:    flexString(item.CategoryID),
		Name:          item.Name,
		Brand:         item.Brand,
		Size:          item.Size,
		Color:         item.Color,
		Condition:     item.Condition,
		CostPrice:     item.CostPrice,
		SellingPrice:  item.SellingPrice,
		StockQuantity: item.StockQuantity,
		ImageURL:      strings.Join(item.ImageURLs, ","),
		Description:   item.Description,
		Review:        item.Review,
	}
}

type categoryWire struct {
	CategoryID   int    `json:"category_id"`
	Name         string `json:"name"`
	CategoryName string `json:"category_name"`
}

func (w categoryWire) toDomain() domain.Category {
	name := w.Name
	if name == "" {
		name = w.CategoryName
	}
	return domain.Category{ID: w.CategoryID, Name: name}
}

// flexString decodes identifiers the backend sends either as numbers or strings.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// flexTime decodes the date formats the backend has been seen to emit.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = flexTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = flexTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*f = flexTime(t)
			return nil
		}
	}
	return fmt.Errorf("unrecognised time %q", s)
}
