package domain

import "github.com/shopspring/decimal"

type Item struct {
	ID            int
	VendorID      string
	CategoryID    string
	Name          string
	Brand         string
	Size          string
	Color         string
	Condition     string
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal
	StockQuantity int
	ImageURLs     []string
	Description   string
	Review        float64
}

type Category struct {
	ID   int
	Name string
}
