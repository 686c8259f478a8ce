package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vendordesk/internal/domain"
	apperrors "vendordesk/internal/errors"
	"vendordesk/internal/infrastructure/metrics"
	"vendordesk/internal/order/selection"
	"vendordesk/internal/order/workflow"
)

// Mock implementations
type mockOrderSource struct {
	ListOrdersForVendorFunc func(ctx context.Context, vendorID string) ([]domain.RawOrder, error)
	calls                   atomic.Int64
}

func (m *mockOrderSource) ListOrdersForVendor(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
	m.calls.Add(1)
	return m.ListOrdersForVendorFunc(ctx, vendorID)
}

// passthroughEnricher resolves locations only; names get fixed values.
type passthroughEnricher struct{}

func (passthroughEnricher) Enrich(ctx context.Context, orders []domain.RawOrder) []domain.EnrichedOrder {
	out := make([]domain.EnrichedOrder, 0, len(orders))
	for _, o := range orders {
		coords, _ := domain.ParseShippingAddress(o.ShippingAddress)
		out = append(out, domain.EnrichedOrder{
			RawOrder:     o,
			Location:     coords,
			CustomerName: "Customer",
			ItemName:     domain.DefaultItemName(o.ItemID),
		})
	}
	return out
}

type mockStatusGateway struct {
	UpdateOrderStatusFunc func(ctx context.Context, orderID int, status domain.OrderStatus) error
	CreateShippingFunc    func(ctx context.Context, record domain.ShippingRecord) error
}

func (m *mockStatusGateway) UpdateOrderStatus(ctx context.Context, orderID int, status domain.OrderStatus) error {
	if m.UpdateOrderStatusFunc == nil {
		return nil
	}
	return m.UpdateOrderStatusFunc(ctx, orderID, status)
}

func (m *mockStatusGateway) CreateShipping(ctx context.Context, record domain.ShippingRecord) error {
	if m.CreateShippingFunc == nil {
		return nil
	}
	return m.CreateShippingFunc(ctx, record)
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func sampleOrders() []domain.RawOrder {
	return []domain.RawOrder{
		{OrderID: 101, CustomerID: 1, ItemID: 11, Quantity: 1, Price: decimal.NewFromInt(10), Status: domain.OrderStatusPlaced,
			ShippingAddress: strPtr(`{"latitude":"10","longitude":"20"}`)},
		{OrderID: 102, CustomerID: 2, ItemID: 12, Quantity: 2, Price: decimal.NewFromInt(20), Status: domain.OrderStatusShipped,
			ShippingAddress: strPtr("null")},
	}
}

// Helper to create an OrderBoard with test defaults
func newTestBoard(source OrderSource, gw workflow.Gateway) (*OrderBoard, *metrics.Registry) {
	reg := metrics.NewRegistry()
	ledger := workflow.NewLedger(gw, domain.ShippingDefaults{Method: "Standard Shipping", Cost: decimal.NewFromInt(5), TrackingPrefix: "TRK"}, nil, reg, zap.NewNop())
	board := NewOrderBoard(
		domain.VendorContext{VendorID: "v-1"},
		source,
		passthroughEnricher{},
		ledger,
		selection.New(),
		reg,
		zap.NewNop(),
	)
	return board, reg
}

func staticSource(orders []domain.RawOrder) *mockOrderSource {
	return &mockOrderSource{
		ListOrdersForVendorFunc: func(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
			return orders, nil
		},
	}
}

// Tests

func TestRefresh_LoadsEnrichedOrders(t *testing.T) {
	var gotVendor string
	source := &mockOrderSource{
		ListOrdersForVendorFunc: func(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
			gotVendor = vendorID
			return sampleOrders(), nil
		},
	}
	board, _ := newTestBoard(source, &mockStatusGateway{})

	view, err := board.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "v-1", gotVendor)
	assert.True(t, view.Loaded)
	assert.NoError(t, view.Err)
	assert.False(t, view.RefreshedAt.IsZero())
	require.Len(t, view.Orders, 2)
	assert.Equal(t, 101, view.Orders[0].OrderID)
	assert.Equal(t, domain.OrderStatusPlaced, view.Orders[0].Status)
	assert.Equal(t, domain.OrderStatusPlaced, view.Orders[0].CommittedStatus)
	assert.True(t, view.Orders[0].HasLocation())
	assert.False(t, view.Orders[1].HasLocation())
}

func TestRefresh_FailureYieldsEmptyListAndError(t *testing.T) {
	fail := false
	source := &mockOrderSource{
		ListOrdersForVendorFunc: func(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
			if fail {
				return nil, apperrors.NewServerError("list_orders", 502, "bad gateway")
			}
			return sampleOrders(), nil
		},
	}
	board, _ := newTestBoard(source, &mockStatusGateway{})

	_, err := board.Refresh(context.Background())
	require.NoError(t, err)
	_, err = board.Select(intPtr(101))
	require.NoError(t, err)

	fail = true
	view, err := board.Refresh(context.Background())

	require.Error(t, err)
	_, ok := apperrors.IsServerError(err)
	assert.True(t, ok)
	assert.Empty(t, view.Orders, "no stale or fabricated orders after a failed refresh")
	assert.NotNil(t, view.Orders)
	assert.Error(t, view.Err)
	assert.Nil(t, view.Selection.SelectedOrderID)
	assert.Nil(t, view.Selection.FocalPoint)

	fail = false
	view, err = board.Refresh(context.Background())
	require.NoError(t, err)
	assert.NoError(t, view.Err)
	assert.Len(t, view.Orders, 2)
}

func TestRefresh_SupersededBatchIsDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var call atomic.Int64

	source := &mockOrderSource{
		ListOrdersForVendorFunc: func(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
			if call.Add(1) == 1 {
				close(firstStarted)
				<-releaseFirst
				return []domain.RawOrder{{OrderID: 1, Status: domain.OrderStatusPlaced}}, nil
			}
			return []domain.RawOrder{{OrderID: 2, Status: domain.OrderStatusPlaced}}, nil
		},
	}
	board, reg := newTestBoard(source, &mockStatusGateway{})

	firstDone := make(chan error, 1)
	go func() {
		_, err := board.Refresh(context.Background())
		firstDone <- err
	}()
	<-firstStarted

	view, err := board.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Orders, 1)
	assert.Equal(t, 2, view.Orders[0].OrderID)

	close(releaseFirst)
	select {
	case err := <-firstDone:
		assert.ErrorIs(t, err, ErrRefreshSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first refresh did not return")
	}

	view = board.View()
	require.Len(t, view.Orders, 1)
	assert.Equal(t, 2, view.Orders[0].OrderID, "the older batch must not overwrite the newer one")
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.RefreshesDiscarded))
}

func TestRefresh_KeepsSelectionWhenOrderStillPresent(t *testing.T) {
	orders := sampleOrders()
	source := &mockOrderSource{
		ListOrdersForVendorFunc: func(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
			return orders, nil
		},
	}
	board, _ := newTestBoard(source, &mockStatusGateway{})
	_, err := board.Refresh(context.Background())
	require.NoError(t, err)

	snap, err := board.Select(intPtr(101))
	require.NoError(t, err)
	require.NotNil(t, snap.FocalPoint)

	// the order moved
	orders = sampleOrders()
	orders[0].ShippingAddress = strPtr(`{"latitude":"30","longitude":"40"}`)
	view, err := board.Refresh(context.Background())
	require.NoError(t, err)

	require.NotNil(t, view.Selection.SelectedOrderID)
	assert.Equal(t, 101, *view.Selection.SelectedOrderID)
	require.NotNil(t, view.Selection.FocalPoint)
	assert.Equal(t, domain.Coordinates{Latitude: 30, Longitude: 40}, *view.Selection.FocalPoint)

	// the order is gone
	orders = orders[1:]
	view, err = board.Refresh(context.Background())
	require.NoError(t, err)
	assert.Nil(t, view.Selection.SelectedOrderID)
	assert.Nil(t, view.Selection.FocalPoint)
}

func TestSelect(t *testing.T) {
	board, _ := newTestBoard(staticSource(sampleOrders()), &mockStatusGateway{})
	_, err := board.Refresh(context.Background())
	require.NoError(t, err)

	snap, err := board.Select(intPtr(101))
	require.NoError(t, err)
	require.NotNil(t, snap.FocalPoint)
	assert.Equal(t, domain.Coordinates{Latitude: 10, Longitude: 20}, *snap.FocalPoint)

	snap, err = board.Select(intPtr(102))
	require.NoError(t, err)
	assert.Nil(t, snap.FocalPoint)

	_, err = board.Select(intPtr(999))
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	snap, err = board.Select(nil)
	require.NoError(t, err)
	assert.Nil(t, snap.SelectedOrderID)
}

func TestLocateAndSubscribe(t *testing.T) {
	board, _ := newTestBoard(staticSource(sampleOrders()), &mockStatusGateway{})
	ch, cancel := board.Subscribe()
	defer cancel()

	locator := selection.LocatorFunc(func(ctx context.Context) (domain.Coordinates, error) {
		return domain.Coordinates{Latitude: 5, Longitude: 6}, nil
	})
	snap, err := board.Locate(context.Background(), locator)
	require.NoError(t, err)
	require.NotNil(t, snap.FocalPoint)

	got := <-ch
	require.NotNil(t, got.FocalPoint)
	assert.Equal(t, domain.Coordinates{Latitude: 5, Longitude: 6}, *got.FocalPoint)
}

func TestEditAndCommitStatus(t *testing.T) {
	var shipped []string
	gw := &mockStatusGateway{
		CreateShippingFunc: func(ctx context.Context, record domain.ShippingRecord) error {
			shipped = append(shipped, record.TrackingNumber)
			return nil
		},
	}
	board, _ := newTestBoard(staticSource(sampleOrders()), gw)
	_, err := board.Refresh(context.Background())
	require.NoError(t, err)

	order, err := board.EditStatus(101, "shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	assert.Equal(t, domain.OrderStatusPlaced, order.CommittedStatus)

	outcome, err := board.CommitStatus(context.Background(), 101)
	require.NoError(t, err)
	assert.False(t, outcome.Skipped)
	assert.Equal(t, domain.OrderStatusShipped, outcome.Order.CommittedStatus)
	require.NotNil(t, outcome.Shipping)
	assert.Equal(t, []string{"TRK101"}, shipped)
}

func TestCommitStatus_FailureShowsCommittedStatus(t *testing.T) {
	gw := &mockStatusGateway{
		UpdateOrderStatusFunc: func(ctx context.Context, orderID int, status domain.OrderStatus) error {
			return apperrors.NewServerError("update_order_status", 500, "")
		},
	}
	board, _ := newTestBoard(staticSource(sampleOrders()), gw)
	_, err := board.Refresh(context.Background())
	require.NoError(t, err)

	_, err = board.EditStatus(102, "delivered")
	require.NoError(t, err)

	outcome, err := board.CommitStatus(context.Background(), 102)
	require.Error(t, err)
	assert.Equal(t, domain.OrderStatusShipped, outcome.Order.Status)

	view := board.View()
	assert.Equal(t, domain.OrderStatusShipped, view.Orders[1].Status)
}

func TestCommitStatus_UnknownOrder(t *testing.T) {
	board, _ := newTestBoard(staticSource(sampleOrders()), &mockStatusGateway{})

	_, err := board.CommitStatus(context.Background(), 101)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	_, err = board.EditStatus(101, "shipped")
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestEnsureLoaded_RefreshesOnce(t *testing.T) {
	source := staticSource(sampleOrders())
	board, _ := newTestBoard(source, &mockStatusGateway{})

	_, err := board.EnsureLoaded(context.Background())
	require.NoError(t, err)
	_, err = board.EnsureLoaded(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), source.calls.Load())
}

func TestEnsureLoaded_AfterFailureDoesNotRetry(t *testing.T) {
	source := &mockOrderSource{
		ListOrdersForVendorFunc: func(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
			return nil, errors.New("boom")
		},
	}
	board, _ := newTestBoard(source, &mockStatusGateway{})

	_, err := board.EnsureLoaded(context.Background())
	assert.Error(t, err)

	view, err := board.EnsureLoaded(context.Background())
	assert.NoError(t, err)
	assert.Error(t, view.Err)
	assert.Equal(t, int64(1), source.calls.Load())
}

func TestBoards_OnePerVendor(t *testing.T) {
	created := 0
	boards := NewBoards(func(vendor domain.VendorContext) *OrderBoard {
		created++
		board, _ := newTestBoard(staticSource(nil), &mockStatusGateway{})
		board.vendor = vendor
		return board
	})

	a := boards.For(domain.VendorContext{VendorID: "a"})
	again := boards.For(domain.VendorContext{VendorID: "a"})
	b := boards.For(domain.VendorContext{VendorID: "b"})

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, created)
}

// contextAwareEnricher falls back to default names once ctx is done, the way
// lookups fail on a cancelled request.
type contextAwareEnricher struct {
	before func()
}

func (e contextAwareEnricher) Enrich(ctx context.Context, orders []domain.RawOrder) []domain.EnrichedOrder {
	e.before()
	out := make([]domain.EnrichedOrder, 0, len(orders))
	for _, o := range orders {
		name := "Resolved Customer"
		if ctx.Err() != nil {
			name = domain.DefaultCustomerName
		}
		out = append(out, domain.EnrichedOrder{RawOrder: o, CustomerName: name, ItemName: domain.DefaultItemName(o.ItemID)})
	}
	return out
}

func newBoardWithEnricher(source OrderSource, enricher Enricher) *OrderBoard {
	reg := metrics.NewRegistry()
	ledger := workflow.NewLedger(&mockStatusGateway{}, domain.ShippingDefaults{TrackingPrefix: "TRK"}, nil, reg, zap.NewNop())
	return NewOrderBoard(domain.VendorContext{VendorID: "v-1"}, source, enricher, ledger, selection.New(), reg, zap.NewNop())
}

func TestRefresh_CallerCancellationDuringEnrichmentDoesNotDegradeBoard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board := newBoardWithEnricher(staticSource(sampleOrders()), contextAwareEnricher{before: cancel})

	view, err := board.Refresh(ctx)
	require.NoError(t, err)

	require.Len(t, view.Orders, 2)
	for _, o := range board.View().Orders {
		assert.Equal(t, "Resolved Customer", o.CustomerName)
	}
}

func TestRefresh_CallerCancellationDuringListingKeepsOrders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &mockOrderSource{
		ListOrdersForVendorFunc: func(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
			cancel()
			if err := ctx.Err(); err != nil {
				return nil, apperrors.NewNetworkError("list_orders", err)
			}
			return sampleOrders(), nil
		},
	}
	board, _ := newTestBoard(source, &mockStatusGateway{})

	_, err := board.Refresh(ctx)
	require.NoError(t, err)

	view := board.View()
	assert.NoError(t, view.Err)
	assert.Len(t, view.Orders, 2)
}

func TestEnsureLoaded_ConcurrentFirstLoadsShareOneRefresh(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int64

	source := &mockOrderSource{
		ListOrdersForVendorFunc: func(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return sampleOrders(), nil
		},
	}
	board, _ := newTestBoard(source, &mockStatusGateway{})

	const callers = 5
	errs := make(chan error, callers)
	views := make(chan BoardView, callers)
	go func() {
		view, err := board.EnsureLoaded(context.Background())
		views <- view
		errs <- err
	}()
	<-started
	for i := 1; i < callers; i++ {
		go func() {
			view, err := board.EnsureLoaded(context.Background())
			views <- view
			errs <- err
		}()
	}
	// let the late callers reach the wait
	time.Sleep(20 * time.Millisecond)
	close(release)

	for i := 0; i < callers; i++ {
		select {
		case err := <-errs:
			assert.NoError(t, err)
			assert.Len(t, (<-views).Orders, 2)
		case <-time.After(2 * time.Second):
			t.Fatal("EnsureLoaded did not return")
		}
	}
	assert.Equal(t, int64(1), calls.Load())
}

func TestEnsureLoaded_WaitsForExplicitRefresh(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	source := &mockOrderSource{
		ListOrdersForVendorFunc: func(ctx context.Context, vendorID string) ([]domain.RawOrder, error) {
			close(started)
			<-release
			return sampleOrders(), nil
		},
	}
	board, _ := newTestBoard(source, &mockStatusGateway{})

	go func() { _, _ = board.Refresh(context.Background()) }()
	<-started

	done := make(chan error, 1)
	go func() {
		_, err := board.EnsureLoaded(context.Background())
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("EnsureLoaded did not return")
	}
	assert.Equal(t, int64(1), source.calls.Load())
}
