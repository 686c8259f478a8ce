package catalog

import (
	"context"
	"strings"

	"vendordesk/internal/domain"
)

type catalogService struct {
	backend Backend
}

func NewService(backend Backend) Service {
	return &catalogService{backend: backend}
}

// SearchItems lists the vendor's items whose name contains query, ignoring
// case. An empty query matches everything.
func (s *catalogService) SearchItems(ctx context.Context, vendorID, query string) ([]domain.Item, error) {
	items, err := s.backend.ListVendorItems(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items, nil
	}

	matched := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), query) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (s *catalogService) Categories(ctx context.Context, vendorID string) ([]domain.Category, error) {
	return s.backend.ListVendorCategories(ctx, vendorID)
}

// SaveItem creates the item when it has no id yet and updates it otherwise.
func (s *catalogService) SaveItem(ctx context.Context, item domain.Item) error {
	if item.ID == 0 {
		return s.backend.AddItem(ctx, item)
	}
	return s.backend.UpdateItem(ctx, item)
}

func (s *catalogService) DeleteItem(ctx context.Context, itemID int) error {
	return s.backend.DeleteItem(ctx, itemID)
}
