package catalog

import (
	"context"

	"vendordesk/internal/domain"
)

type UseCase interface {
	ListItems(ctx context.Context, vendorID, query string) (*ListItemsResponse, error)
	ListCategories(ctx context.Context, vendorID string) (*ListCategoriesResponse, error)
	AddItem(ctx context.Context, vendorID string, req ItemRequest) error
	UpdateItem(ctx context.Context, vendorID string, itemID int, req ItemRequest) error
	DeleteItem(ctx context.Context, itemID int) error
}

type Service interface {
	SearchItems(ctx context.Context, vendorID, query string) ([]domain.Item, error)
	Categories(ctx context.Context, vendorID string) ([]domain.Category, error)
	SaveItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, itemID int) error
}

// Backend is the slice of the remote gateway the catalog uses.
type Backend interface {
	ListVendorItems(ctx context.Context, vendorID string) ([]domain.Item, error)
	ListVendorCategories(ctx context.Context, vendorID string) ([]domain.Category, error)
	AddItem(ctx context.Context, item domain.Item) error
	UpdateItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, itemID int) error
}
