package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"vendordesk/internal/domain"
	apperrors "vendordesk/internal/errors"
	"vendordesk/internal/infrastructure/metrics"
	"vendordesk/internal/order/selection"
	"vendordesk/internal/order/workflow"
)

// ErrRefreshSuperseded is returned by a refresh whose result was dropped
// because a newer refresh started while it was running.
var ErrRefreshSuperseded = errors.New("refresh superseded by a newer refresh")

type OrderSource interface {
	ListOrdersForVendor(ctx context.Context, vendorID string) ([]domain.RawOrder, error)
}

type Enricher interface {
	Enrich(ctx context.Context, orders []domain.RawOrder) []domain.EnrichedOrder
}

// BoardOrder is an enriched order as the table shows it: Status is the
// dropdown value, CommittedStatus what the backend last accepted.
type BoardOrder struct {
	domain.EnrichedOrder
	CommittedStatus domain.OrderStatus
	Committing      bool
}

type BoardView struct {
	Vendor      domain.VendorContext
	Orders      []BoardOrder
	Selection   selection.Snapshot
	Loaded      bool
	RefreshedAt time.Time
	Err         error
}

type CommitOutcome struct {
	Order    BoardOrder
	Skipped  bool
	Shipping *domain.ShippingRecord
}

// OrderBoard is the order page of one vendor: the enriched order list, the
// status ledger and the map selection.
type OrderBoard struct {
	vendor    domain.VendorContext
	source    OrderSource
	enricher  Enricher
	ledger    *workflow.Ledger
	selection *selection.State
	metrics   *metrics.Registry
	logger    *zap.Logger

	mu          sync.Mutex
	generation  uint64
	orders      []domain.EnrichedOrder
	index       map[int]int
	loaded      bool
	refreshedAt time.Time
	lastErr     error
	inflight    *refreshCall
}

// refreshCall is the outcome of one Refresh; view and err are set before
// done is closed.
type refreshCall struct {
	done chan struct{}
	view BoardView
	err  error
}

func NewOrderBoard(
	vendor domain.VendorContext,
	source OrderSource,
	enricher Enricher,
	ledger *workflow.Ledger,
	sel *selection.State,
	reg *metrics.Registry,
	logger *zap.Logger,
) *OrderBoard {
	return &OrderBoard{
		vendor:    vendor,
		source:    source,
		enricher:  enricher,
		ledger:    ledger,
		selection: sel,
		metrics:   reg,
		logger:    logger.With(zap.String("vendorId", vendor.VendorID)),
		orders:    []domain.EnrichedOrder{},
		index:     map[int]int{},
	}
}

// Refresh reloads and re-enriches the whole order list. Only the most
// recently started refresh may replace the list; older ones return
// ErrRefreshSuperseded. A listing failure empties the list and is kept as
// the board's error until the next successful refresh. The board is shared,
// so the reload runs to completion even if ctx is cancelled.
func (b *OrderBoard) Refresh(ctx context.Context) (BoardView, error) {
	b.mu.Lock()
	b.generation++
	gen := b.generation
	call := &refreshCall{done: make(chan struct{})}
	b.inflight = call
	b.mu.Unlock()

	view, err := b.refresh(context.WithoutCancel(ctx), gen)

	b.mu.Lock()
	if b.inflight == call {
		b.inflight = nil
	}
	b.mu.Unlock()

	call.view, call.err = view, err
	close(call.done)
	return view, err
}

func (b *OrderBoard) refresh(ctx context.Context, gen uint64) (BoardView, error) {
	b.logger.Info("refreshing orders", zap.Uint64("generation", gen))

	raw, err := b.source.ListOrdersForVendor(ctx, b.vendor.VendorID)
	var enriched []domain.EnrichedOrder
	if err == nil {
		enriched = b.enricher.Enrich(ctx, raw)
	}

	b.mu.Lock()
	if gen != b.generation {
		b.mu.Unlock()
		b.metrics.RefreshesDiscarded.Inc()
		b.logger.Info("discarding superseded refresh", zap.Uint64("generation", gen))
		return b.View(), ErrRefreshSuperseded
	}

	b.loaded = true
	b.refreshedAt = time.Now().UTC()
	if err != nil {
		b.orders = []domain.EnrichedOrder{}
		b.index = map[int]int{}
		b.lastErr = err
		b.ledger.Reset(nil)
		b.selection.Clear()
		b.mu.Unlock()

		b.logger.Error("listing orders failed", zap.Uint64("generation", gen), zap.Error(err))
		return b.View(), fmt.Errorf("listing orders for vendor %s: %w", b.vendor.VendorID, err)
	}

	b.orders = enriched
	b.index = make(map[int]int, len(enriched))
	for i, o := range enriched {
		b.index[o.OrderID] = i
	}
	b.lastErr = nil
	b.ledger.Reset(enriched)
	b.reselectLocked()
	b.mu.Unlock()

	b.logger.Info("orders refreshed", zap.Uint64("generation", gen), zap.Int("count", len(enriched)))
	return b.View(), nil
}

// EnsureLoaded refreshes only if the board has never been loaded. Callers
// arriving while a refresh is running wait for it instead of starting another.
func (b *OrderBoard) EnsureLoaded(ctx context.Context) (BoardView, error) {
	for {
		b.mu.Lock()
		if b.loaded {
			b.mu.Unlock()
			return b.View(), nil
		}
		call := b.inflight
		b.mu.Unlock()

		if call == nil {
			view, err := b.Refresh(ctx)
			if errors.Is(err, ErrRefreshSuperseded) {
				continue
			}
			return view, err
		}

		select {
		case <-call.done:
		case <-ctx.Done():
			return b.View(), ctx.Err()
		}
		if !errors.Is(call.err, ErrRefreshSuperseded) {
			return call.view, call.err
		}
	}
}

func (b *OrderBoard) View() BoardView {
	b.mu.Lock()
	defer b.mu.Unlock()

	orders := make([]BoardOrder, 0, len(b.orders))
	for _, o := range b.orders {
		orders = append(orders, b.boardOrderLocked(o))
	}
	return BoardView{
		Vendor:      b.vendor,
		Orders:      orders,
		Selection:   b.selection.Snapshot(),
		Loaded:      b.loaded,
		RefreshedAt: b.refreshedAt,
		Err:         b.lastErr,
	}
}

// Select selects the order with the given id, or clears the selection when
// orderID is nil.
func (b *OrderBoard) Select(orderID *int) (selection.Snapshot, error) {
	if orderID == nil {
		return b.selection.Clear(), nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orderLocked(*orderID)
	if !ok {
		return b.selection.Snapshot(), apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", *orderID))
	}
	return b.selection.Select(&order), nil
}

func (b *OrderBoard) Locate(ctx context.Context, locator selection.Locator) (selection.Snapshot, error) {
	return b.selection.Locate(ctx, locator)
}

func (b *OrderBoard) Subscribe() (<-chan selection.Snapshot, func()) {
	return b.selection.Subscribe()
}

func (b *OrderBoard) EditStatus(orderID int, status string) (BoardOrder, error) {
	if _, err := b.ledger.Edit(orderID, status); err != nil {
		return BoardOrder{}, err
	}
	return b.boardOrder(orderID)
}

func (b *OrderBoard) CommitStatus(ctx context.Context, orderID int) (CommitOutcome, error) {
	result, err := b.ledger.Commit(ctx, orderID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return CommitOutcome{}, err
		}
		order, _ := b.boardOrder(orderID)
		return CommitOutcome{Order: order}, err
	}

	order, err := b.boardOrder(orderID)
	if err != nil {
		return CommitOutcome{}, err
	}
	return CommitOutcome{Order: order, Skipped: result.Skipped, Shipping: result.Shipping}, nil
}

func (b *OrderBoard) boardOrder(orderID int) (BoardOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orderLocked(orderID)
	if !ok {
		return BoardOrder{}, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", orderID))
	}
	return b.boardOrderLocked(order), nil
}

func (b *OrderBoard) orderLocked(orderID int) (domain.EnrichedOrder, bool) {
	i, ok := b.index[orderID]
	if !ok {
		return domain.EnrichedOrder{}, false
	}
	return b.orders[i], true
}

func (b *OrderBoard) boardOrderLocked(o domain.EnrichedOrder) BoardOrder {
	bo := BoardOrder{EnrichedOrder: o, CommittedStatus: o.Status}
	if entry, ok := b.ledger.Entry(o.OrderID); ok {
		bo.Status = entry.Pending
		bo.CommittedStatus = entry.Committed
		bo.Committing = entry.Committing
	}
	return bo
}

// reselectLocked keeps the selection pointed at the fresh copy of the
// selected order, or clears it when that order is gone.
func (b *OrderBoard) reselectLocked() {
	snap := b.selection.Snapshot()
	if snap.SelectedOrderID == nil {
		return
	}
	order, ok := b.orderLocked(*snap.SelectedOrderID)
	if !ok {
		b.selection.Clear()
		return
	}
	b.selection.Select(&order)
}

// Boards hands out one OrderBoard per vendor, creating it on first use.
type Boards struct {
	mu      sync.Mutex
	factory func(vendor domain.VendorContext) *OrderBoard
	boards  map[string]*OrderBoard
}

func NewBoards(factory func(vendor domain.VendorContext) *OrderBoard) *Boards {
	return &Boards{
		factory: factory,
		boards:  make(map[string]*OrderBoard),
	}
}

func (b *Boards) For(vendor domain.VendorContext) *OrderBoard {
	b.mu.Lock()
	defer b.mu.Unlock()

	board, ok := b.boards[vendor.VendorID]
	if !ok {
		board = b.factory(vendor)
		b.boards[vendor.VendorID] = board
	}
	return board
}
