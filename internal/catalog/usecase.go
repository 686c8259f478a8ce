package catalog

import (
	"context"

	"vendordesk/internal/domain"
)

type catalogUseCase struct {
	service Service
}

func NewUseCase(service Service) UseCase {
	return &catalogUseCase{service: service}
}

func (uc *catalogUseCase) ListItems(ctx context.Context, vendorID, query string) (*ListItemsResponse, error) {
	found, err := uc.service.SearchItems(ctx, vendorID, query)
	if err != nil {
		return nil, err
	}

	items := make([]ItemDTO, 0, len(found))
	for _, it := range found {
		imageURLs := it.ImageURLs
		if imageURLs == nil {
			imageURLs = []string{}
		}
		items = append(items, ItemDTO{
			ID:            it.ID,
			VendorID:      it.VendorID,
			CategoryID:    it.CategoryID,
			Name:          it.Name,
			Brand:         it.Brand,
			Size:          it.Size,
			Color:         it.Color,
			Condition:     it.Condition,
			CostPrice:     it.CostPrice,
			SellingPrice:  it.SellingPrice,
			StockQuantity: it.StockQuantity,
			InStock:       it.StockQuantity > 0,
			ImageURLs:     imageURLs,
			Description:   it.Description,
			Review:        it.Review,
		})
	}

	return &ListItemsResponse{Items: items}, nil
}

func (uc *catalogUseCase) ListCategories(ctx context.Context, vendorID string) (*ListCategoriesResponse, error) {
	found, err := uc.service.Categories(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	categories := make([]CategoryDTO, 0, len(found))
	for _, c := range found {
		categories = append(categories, CategoryDTO{ID: c.ID, Name: c.Name})
	}
	return &ListCategoriesResponse{Categories: categories}, nil
}

func (uc *catalogUseCase) AddItem(ctx context.Context, vendorID string, req ItemRequest) error {
	return uc.service.SaveItem(ctx, toItem(vendorID, 0, req))
}

func (uc *catalogUseCase) UpdateItem(ctx context.Context, vendorID string, itemID int, req ItemRequest) error {
	return uc.service.SaveItem(ctx, toItem(vendorID, itemID, req))
}

func (uc *catalogUseCase) DeleteItem(ctx context.Context, itemID int) error {
	return uc.service.DeleteItem(ctx, itemID)
}

func toItem(vendorID string, itemID int, req ItemRequest) domain.Item {
	return domain.Item{
		ID:            itemID,
		VendorID:      vendorID,
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Brand:         req.Brand,
		Size:          req.Size,
		Color:         req.Color,
		Condition:     req.Condition,
		CostPrice:     req.CostPrice,
		SellingPrice:  req.SellingPrice,
		StockQuantity: req.StockQuantity,
		ImageURLs:     req.ImageURLs,
		Description:   req.Description,
	}
}
