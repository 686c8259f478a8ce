package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"vendordesk/internal/domain"
	apperrors "vendordesk/internal/errors"
	"vendordesk/internal/infrastructure/metrics"
)

type Gateway interface {
	UpdateOrderStatus(ctx context.Context, orderID int, status domain.OrderStatus) error
	CreateShipping(ctx context.Context, record domain.ShippingRecord) error
}

// Entry is the status bookkeeping for one order. Pending is what the
// dropdown shows; Committed is what the backend last accepted.
type Entry struct {
	OrderID    int
	Committed  domain.OrderStatus
	Pending    domain.OrderStatus
	Committing bool
}

type Result struct {
	OrderID  int
	Status   domain.OrderStatus
	Skipped  bool
	Shipping *domain.ShippingRecord
}

// Ledger holds the editable status of every order on a board.
type Ledger struct {
	gateway  Gateway
	defaults domain.ShippingDefaults
	now      func() time.Time
	metrics  *metrics.Registry
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[int]*Entry
}

func NewLedger(
	gateway Gateway,
	defaults domain.ShippingDefaults,
	now func() time.Time,
	reg *metrics.Registry,
	logger *zap.Logger,
) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		gateway:  gateway,
		defaults: defaults,
		now:      now,
		metrics:  reg,
		logger:   logger,
		entries:  make(map[int]*Entry),
	}
}

// Reset replaces every entry with the statuses of a freshly loaded order
// list. Entries with a commit in flight survive so the same order cannot be
// committed twice across a refresh.
func (l *Ledger) Reset(orders []domain.EnrichedOrder) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make(map[int]*Entry, len(orders))
	for _, o := range orders {
		if old, ok := l.entries[o.OrderID]; ok && old.Committing {
			entries[o.OrderID] = old
			continue
		}
		entries[o.OrderID] = &Entry{OrderID: o.OrderID, Committed: o.Status, Pending: o.Status}
	}
	l.entries = entries
}

func (l *Ledger) Entry(orderID int) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[orderID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Edit changes the pending status only; nothing is sent to the backend.
func (l *Ledger) Edit(orderID int, status string) (Entry, error) {
	parsed, ok := domain.ParseOrderStatus(status)
	if !ok {
		return Entry{}, apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of placed, shipped, delivered",
		})
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[orderID]
	if !ok {
		return Entry{}, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", orderID))
	}
	if e.Committing {
		return *e, apperrors.NewConflictError(fmt.Sprintf("order %d has a commit in progress", orderID))
	}
	e.Pending = parsed
	return *e, nil
}

// Commit persists the pending status. Pending "placed", or a pending status
// equal to the committed one, is a no-op. Moving to "shipped" creates the
// shipping record first and stops there if that fails. On any failure the
// pending status reverts to the committed one.
func (l *Ledger) Commit(ctx context.Context, orderID int) (Result, error) {
	l.mu.Lock()
	e, ok := l.entries[orderID]
	if !ok {
		l.mu.Unlock()
		return Result{}, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", orderID))
	}
	if e.Pending == domain.OrderStatusPlaced {
		committed := e.Committed
		l.mu.Unlock()
		l.metrics.StatusCommits.WithLabelValues(string(domain.OrderStatusPlaced), metrics.OutcomeSkipped).Inc()
		return Result{OrderID: orderID, Status: committed, Skipped: true}, nil
	}
	if e.Committing {
		l.mu.Unlock()
		return Result{}, apperrors.NewConflictError(fmt.Sprintf("order %d has a commit in progress", orderID))
	}
	if e.Pending == e.Committed {
		committed := e.Committed
		l.mu.Unlock()
		l.metrics.StatusCommits.WithLabelValues(string(committed), metrics.OutcomeSkipped).Inc()
		return Result{OrderID: orderID, Status: committed, Skipped: true}, nil
	}
	e.Committing = true
	target := e.Pending
	l.mu.Unlock()

	// A dropped client must not split the two backend calls.
	record, err := l.persist(context.WithoutCancel(ctx), orderID, target)

	l.mu.Lock()
	defer l.mu.Unlock()
	e.Committing = false

	if err != nil {
		e.Pending = e.Committed
		l.metrics.StatusCommits.WithLabelValues(string(target), metrics.OutcomeFailure).Inc()
		l.logger.Error("status commit failed",
			zap.Int("orderId", orderID),
			zap.String("status", string(target)),
			zap.String("committedStatus", string(e.Committed)),
			zap.Error(err),
		)
		return Result{OrderID: orderID, Status: e.Committed}, err
	}

	e.Committed = target
	e.Pending = target
	l.metrics.StatusCommits.WithLabelValues(string(target), metrics.OutcomeSuccess).Inc()
	l.logger.Info("status committed", zap.Int("orderId", orderID), zap.String("status", string(target)))
	return Result{OrderID: orderID, Status: target, Shipping: record}, nil
}

func (l *Ledger) persist(ctx context.Context, orderID int, status domain.OrderStatus) (*domain.ShippingRecord, error) {
	var record *domain.ShippingRecord
	if status == domain.OrderStatusShipped {
		r := domain.NewShippingRecord(orderID, l.defaults, l.now())
		if err := l.gateway.CreateShipping(ctx, r); err != nil {
			return nil, fmt.Errorf("creating shipping record: %w", err)
		}
		record = &r
		l.logger.Info("shipping record created", zap.Int("orderId", orderID), zap.String("trackingNumber", r.TrackingNumber))
	}

	if err := l.gateway.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if record != nil {
			l.logger.Warn("shipping record created but status update failed",
				zap.Int("orderId", orderID),
				zap.String("trackingNumber", record.TrackingNumber),
			)
		}
		return record, fmt.Errorf("updating order status: %w", err)
	}
	return record, nil
}
