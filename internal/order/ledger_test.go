package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/apperror"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/session"
)

func seedCatalog() *catalog.MemoryStore {
	return catalog.NewMemoryStore(
		catalog.Product{ID: "widget", Name: "Widget", Price: 2.00, Stock: 3, Active: true},
		catalog.Product{ID: "gadget", Name: "Gadget", Price: 5.00, Stock: 1, Active: true},
		catalog.Product{ID: "doohickey", Name: "Doohickey", Price: 7.00, Stock: 4, Active: true},
	)
}

func cartSession(customerID string, lines ...session.CartLine) *session.Session {
	s := session.New(customerID)
	s.Cart = lines
	s.SetState(session.StateReviewingCart)
	return &s
}

func TestConfirmCreatesOrderAndDecrementsStock(t *testing.T) {
	ctx := context.Background()
	stock := seedCatalog()
	orders := NewMemoryRepository()
	ledger := NewLedger(NewMemoryUnitOfWork(stock, orders), orders)
	ledger.newID = func() string { return "0f8e2c1a-5b7d-4e3f-9a21-7c4d2babc123" }
	ledger.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	s := cartSession("15550001", session.CartLine{ProductID: "widget", Name: "Widget", Quantity: 3, UnitPrice: 2.00})

	o, err := ledger.Confirm(ctx, s)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, o.Status)
	require.Equal(t, 6.00, o.TotalAmount)
	require.Equal(t, DefaultCurrency, o.Currency)
	require.Equal(t, "ABC123", o.ShortID())
	require.Equal(t, []Item{{ProductID: "widget", Name: "Widget", Quantity: 3, PriceAtTime: 2.00}}, o.Items)

	require.Equal(t, 0, stock.Stock("widget"))
	require.Empty(t, s.Cart)
	require.Equal(t, session.StateIdle, s.State)

	stored, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, o, *stored)
}

func TestConfirmEmptyCart(t *testing.T) {
	stock := seedCatalog()
	orders := NewMemoryRepository()
	ledger := NewLedger(NewMemoryUnitOfWork(stock, orders), orders)

	s := session.New("15550001")
	_, err := ledger.Confirm(context.Background(), &s)
	require.ErrorIs(t, err, ErrEmptyCart)
	require.True(t, apperror.IsValidation(err))
	require.Zero(t, orders.count())
}

func TestConfirmInsufficientStockRestoresEarlierLines(t *testing.T) {
	ctx := context.Background()
	stock := seedCatalog()
	orders := NewMemoryRepository()
	ledger := NewLedger(NewMemoryUnitOfWork(stock, orders), orders)

	// doohickey sorts before gadget, so it is reserved first and must be handed back.
	s := cartSession("15550001",
		session.CartLine{ProductID: "gadget", Name: "Gadget", Quantity: 2, UnitPrice: 5.00},
		session.CartLine{ProductID: "doohickey", Name: "Doohickey", Quantity: 2, UnitPrice: 7.00},
	)
	before := s.Clone()

	_, err := ledger.Confirm(ctx, s)
	var insufficient *apperror.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, "gadget", insufficient.ProductID)
	require.Equal(t, "Gadget", insufficient.Name)

	require.Equal(t, 4, stock.Stock("doohickey"))
	require.Equal(t, 1, stock.Stock("gadget"))
	require.Zero(t, orders.count())
	require.Equal(t, before, *s)
}

func TestConcurrentConfirmOnLastUnit(t *testing.T) {
	ctx := context.Background()
	stock := seedCatalog()
	orders := NewMemoryRepository()
	ledger := NewLedger(NewMemoryUnitOfWork(stock, orders), orders)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, customer := range []string{"15550001", "15550002"} {
		wg.Add(1)
		go func(i int, customer string) {
			defer wg.Done()
			s := cartSession(customer, session.CartLine{ProductID: "gadget", Name: "Gadget", Quantity: 1, UnitPrice: 5.00})
			_, results[i] = ledger.Confirm(ctx, s)
		}(i, customer)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t, apperror.IsInsufficientStock(err))
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, orders.count())
	require.Equal(t, 0, stock.Stock("gadget"))
}

func TestConcurrentConfirmConservesStock(t *testing.T) {
	ctx := context.Background()
	stock := catalog.NewMemoryStore(
		catalog.Product{ID: "a", Name: "A", Price: 1, Stock: 25, Active: true},
		catalog.Product{ID: "b", Name: "B", Price: 2, Stock: 10, Active: true},
	)
	orders := NewMemoryRepository()
	ledger := NewLedger(NewMemoryUnitOfWork(stock, orders), orders)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := cartSession(fmt.Sprintf("1555%04d", i),
				session.CartLine{ProductID: "a", Name: "A", Quantity: 1 + i%3, UnitPrice: 1},
				session.CartLine{ProductID: "b", Name: "B", Quantity: 1, UnitPrice: 2},
			)
			_, _ = ledger.Confirm(ctx, s)
		}(i)
	}
	wg.Wait()

	sold := map[string]int{}
	for i := 0; i < 40; i++ {
		list, err := orders.ListByCustomer(ctx, fmt.Sprintf("1555%04d", i))
		require.NoError(t, err)
		for _, o := range list {
			for _, it := range o.Items {
				sold[it.ProductID] += it.Quantity
			}
		}
	}
	require.Equal(t, 25, stock.Stock("a")+sold["a"])
	require.Equal(t, 10, stock.Stock("b")+sold["b"])
	require.GreaterOrEqual(t, stock.Stock("a"), 0)
	require.GreaterOrEqual(t, stock.Stock("b"), 0)
}

type failingCounter struct {
	catalog.StockCounter
	failOn string
}

func (f failingCounter) TryDecrement(ctx context.Context, productID string, quantity int) (bool, error) {
	if productID == f.failOn {
		return false, apperror.Unavailable(errors.New("connection reset"))
	}
	return f.StockCounter.TryDecrement(ctx, productID, quantity)
}

func TestConfirmStoreFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	stock := seedCatalog()
	orders := NewMemoryRepository()
	ledger := NewLedger(NewMemoryUnitOfWork(failingCounter{StockCounter: stock, failOn: "widget"}, orders), orders)

	s := cartSession("15550001",
		session.CartLine{ProductID: "doohickey", Name: "Doohickey", Quantity: 1, UnitPrice: 7.00},
		session.CartLine{ProductID: "widget", Name: "Widget", Quantity: 1, UnitPrice: 2.00},
	)

	_, err := ledger.Confirm(ctx, s)
	require.Error(t, err)
	require.True(t, apperror.IsRetryable(err))
	require.Equal(t, 4, stock.Stock("doohickey"))
	require.Zero(t, orders.count())
	require.Len(t, s.Cart, 2)
}

type stuckRelease struct {
	catalog.StockCounter
}

func (stuckRelease) Increment(ctx context.Context, productID string, quantity int) error {
	return errors.New("connection reset")
}

func TestConfirmFailedHandBackIsRetryable(t *testing.T) {
	ctx := context.Background()
	stock := seedCatalog()
	orders := NewMemoryRepository()
	ledger := NewLedger(NewMemoryUnitOfWork(stuckRelease{StockCounter: stock}, orders), orders)

	// doohickey is reserved first, then gadget comes up short and the hand-back fails.
	s := cartSession("15550001",
		session.CartLine{ProductID: "gadget", Name: "Gadget", Quantity: 5, UnitPrice: 5.00},
		session.CartLine{ProductID: "doohickey", Name: "Doohickey", Quantity: 1, UnitPrice: 7.00},
	)

	_, err := ledger.Confirm(ctx, s)
	require.ErrorIs(t, err, apperror.ErrStoreUnavailable)
	require.True(t, apperror.IsInsufficientStock(err))
	require.False(t, apperror.IsUserFacing(err))
	require.True(t, apperror.IsRetryable(err))
	require.Zero(t, orders.count())
	require.Len(t, s.Cart, 2)
}

type failingRepo struct {
	*MemoryRepository
}

func (failingRepo) Create(ctx context.Context, o *Order) error {
	return errors.New("disk full")
}

func TestConfirmOrderWriteFailureRestoresStock(t *testing.T) {
	stock := seedCatalog()
	repo := failingRepo{NewMemoryRepository()}
	ledger := NewLedger(NewMemoryUnitOfWork(stock, repo), repo)

	s := cartSession("15550001", session.CartLine{ProductID: "widget", Name: "Widget", Quantity: 2, UnitPrice: 2.00})

	_, err := ledger.Confirm(context.Background(), s)
	require.Error(t, err)
	require.True(t, apperror.IsRetryable(err))
	require.Equal(t, 3, stock.Stock("widget"))
}

func TestConfirmOnceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	stock := seedCatalog()
	orders := NewMemoryRepository()
	ledger := NewLedger(NewMemoryUnitOfWork(stock, orders), orders)

	line := session.CartLine{ProductID: "widget", Name: "Widget", Quantity: 2, UnitPrice: 2.00}

	first, err := ledger.ConfirmOnce(ctx, cartSession("15550001", line), "wamid.1")
	require.NoError(t, err)

	// Same request replayed against a session whose save was lost.
	retry := cartSession("15550001", line)
	second, err := ledger.ConfirmOnce(ctx, retry, "wamid.1")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Empty(t, retry.Cart)
	require.Equal(t, 1, stock.Stock("widget"))
	require.Equal(t, 1, orders.count())

	third, err := ledger.ConfirmOnce(ctx, cartSession("15550001", session.CartLine{ProductID: "widget", Name: "Widget", Quantity: 1, UnitPrice: 2.00}), "wamid.2")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, third.ID)
	require.Equal(t, 0, stock.Stock("widget"))
}

func TestShortID(t *testing.T) {
	require.Equal(t, "ABC123", Order{ID: "0f8e2c1a-5b7d-4e3f-9a21-7c4d2babc123"}.ShortID())
	require.Equal(t, "AB", Order{ID: "ab"}.ShortID())
}
