package order

import (
	"go.uber.org/zap"

	"vendordesk/internal/config"
	"vendordesk/internal/domain"
	"vendordesk/internal/gateway"
	"vendordesk/internal/infrastructure/metrics"
	"vendordesk/internal/order/controller"
	"vendordesk/internal/order/enrichment"
	"vendordesk/internal/order/selection"
	"vendordesk/internal/order/usecase"
	"vendordesk/internal/order/workflow"
)

// NewModule builds the order board controller. Every vendor gets its own
// board, ledger and selection on first use.
func NewModule(client *gateway.Client, cfg *config.Config, reg *metrics.Registry, logger *zap.Logger) *controller.OrderController {
	aggregator := enrichment.NewAggregator(client, cfg.Enrichment.MaxConcurrency, reg, logger)
	shipping := domain.ShippingDefaults{
		Method:         cfg.Shipping.Method,
		Cost:           cfg.Shipping.Cost,
		TrackingPrefix: cfg.Shipping.TrackingPrefix,
	}

	boards := usecase.NewBoards(func(vendor domain.VendorContext) *usecase.OrderBoard {
		ledger := workflow.NewLedger(client, shipping, nil, reg, logger)
		return usecase.NewOrderBoard(vendor, client, aggregator, ledger, selection.New(), reg, logger)
	})

	return controller.NewOrderController(func(vendor domain.VendorContext) controller.Board {
		return boards.For(vendor)
	}, logger)
}
