package enrichment

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"vendordesk/internal/domain"
	"vendordesk/internal/infrastructure/metrics"
)

const (
	fieldLocation     = "location"
	fieldCustomerName = "customer_name"
	fieldItemName     = "item_name"
)

type Lookup interface {
	GetCustomer(ctx context.Context, customerID int) (*domain.Customer, error)
	GetItem(ctx context.Context, itemID int) (*domain.ItemSummary, error)
}

// Aggregator turns raw orders into enriched ones. Each order is resolved in
// its own task and a lookup failure only ever affects the record it belongs to.
type Aggregator struct {
	lookup         Lookup
	maxConcurrency int
	metrics        *metrics.Registry
	logger         *zap.Logger
}

// NewAggregator caps the number of orders enriched at once at maxConcurrency;
// zero means GOMAXPROCS. Each in-flight order issues two lookups.
func NewAggregator(lookup Lookup, maxConcurrency int, reg *metrics.Registry, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		lookup:         lookup,
		maxConcurrency: maxConcurrency,
		metrics:        reg,
		logger:         logger,
	}
}

// Enrich returns one EnrichedOrder per input order, in input order, once
// every order has been resolved.
func (a *Aggregator) Enrich(ctx context.Context, orders []domain.RawOrder) []domain.EnrichedOrder {
	if len(orders) == 0 {
		return []domain.EnrichedOrder{}
	}

	start := time.Now()
	mapper := iter.Mapper[domain.RawOrder, domain.EnrichedOrder]{MaxGoroutines: a.maxConcurrency}
	enriched := mapper.Map(orders, func(o *domain.RawOrder) domain.EnrichedOrder {
		return a.enrichOne(ctx, *o)
	})

	a.metrics.OrdersEnriched.Add(float64(len(enriched)))
	a.metrics.EnrichmentLatency.Observe(time.Since(start).Seconds())
	a.logger.Debug("orders enriched", zap.Int("count", len(enriched)), zap.Duration("elapsed", time.Since(start)))
	return enriched
}

func (a *Aggregator) enrichOne(ctx context.Context, o domain.RawOrder) domain.EnrichedOrder {
	enriched := domain.EnrichedOrder{
		RawOrder:     o,
		CustomerName: domain.DefaultCustomerName,
		ItemName:     domain.DefaultItemName(o.ItemID),
	}

	coords, err := domain.ParseShippingAddress(o.ShippingAddress)
	if err != nil {
		a.fallback(fieldLocation)
		a.logger.Debug("unusable shipping address", zap.Int("orderId", o.OrderID), zap.Error(err))
	}
	enriched.Location = coords

	var wg conc.WaitGroup
	wg.Go(func() {
		customer, err := a.lookup.GetCustomer(ctx, o.CustomerID)
		switch {
		case err != nil:
			a.fallback(fieldCustomerName)
			a.logger.Warn("customer lookup failed", zap.Int("orderId", o.OrderID), zap.Int("customerId", o.CustomerID), zap.Error(err))
		case customer == nil || customer.Name == "":
			a.fallback(fieldCustomerName)
			a.logger.Warn("customer has no name", zap.Int("orderId", o.OrderID), zap.Int("customerId", o.CustomerID))
		default:
			enriched.CustomerName = customer.Name
		}
	})
	wg.Go(func() {
		item, err := a.lookup.GetItem(ctx, o.ItemID)
		switch {
		case err != nil:
			a.fallback(fieldItemName)
			a.logger.Warn("item lookup failed", zap.Int("orderId", o.OrderID), zap.Int("itemId", o.ItemID), zap.Error(err))
		case item == nil || item.Name == "":
			a.fallback(fieldItemName)
			a.logger.Warn("item has no name", zap.Int("orderId", o.OrderID), zap.Int("itemId", o.ItemID))
		default:
			enriched.ItemName = item.Name
		}
	})
	wg.Wait()

	return enriched
}

func (a *Aggregator) fallback(field string) {
	a.metrics.EnrichmentFallbacks.WithLabelValues(field).Inc()
}
