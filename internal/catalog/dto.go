package catalog

import "github.com/shopspring/decimal"

type ItemRequest struct {
	CategoryID    string          `json:"categoryId"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Condition     string          `json:"condition"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	StockQuantity int             `json:"stockQuantity"`
	ImageURLs     []string        `json:"imageUrls"`
	Description   string          `json:"description"`
}

type ItemDTO struct {
	ID            int             `json:"id"`
	VendorID      string          `json:"vendorId"`
	CategoryID    string          `json:"categoryId"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Condition     string          `json:"condition"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	StockQuantity int             `json:"stockQuantity"`
	InStock       bool            `json:"inStock"`
	ImageURLs     []string        `json:"imageUrls"`
	Description   string          `json:"description"`
	Review        float64         `json:"review"`
}

type ListItemsResponse struct {
	Items []ItemDTO `json:"items"`
}

type CategoryDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ListCategoriesResponse struct {
	Categories []CategoryDTO `json:"categories"`
}
