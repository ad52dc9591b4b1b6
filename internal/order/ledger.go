package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/apperror"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/session"
)

var ErrEmptyCart = &apperror.ValidationError{Message: "No items to order. Type PRODUCTS to start."}

// Ledger turns a session cart into a confirmed order. Stock for every line is
// reserved with compare-and-decrement; if any line cannot be covered, all
// reservations made so far are returned and no order is written.
type Ledger struct {
	uow    UnitOfWork
	orders Repository
	now    func() time.Time
	newID  func() string
}

// orderNamespace seeds the ids derived by ConfirmOnce.
var orderNamespace = uuid.MustParse("6f1c1d5e-2f43-4a8e-9a57-3c0b7e6d4a10")

func NewLedger(uow UnitOfWork, orders Repository) *Ledger {
	return &Ledger{uow: uow, orders: orders, now: time.Now, newID: uuid.NewString}
}

// Confirm reserves stock for the whole cart and records the order. On success
// the session cart is cleared and the session returns to Idle.
func (l *Ledger) Confirm(ctx context.Context, s *session.Session) (Order, error) {
	return l.confirm(ctx, s, l.newID())
}

// ConfirmOnce is Confirm keyed by the request that asked for it. The order id is
// derived from key, so a redelivered request finds the order it already produced
// instead of reserving stock a second time.
func (l *Ledger) ConfirmOnce(ctx context.Context, s *session.Session, key string) (Order, error) {
	if key == "" {
		return l.Confirm(ctx, s)
	}

	id := uuid.NewSHA1(orderNamespace, []byte(s.CustomerID+"/"+key)).String()
	existing, err := l.orders.GetByID(ctx, id)
	if err != nil {
		return Order{}, fmt.Errorf("lookup order %s: %w", id, err)
	}
	if existing != nil {
		s.ClearCart()
		return *existing, nil
	}
	return l.confirm(ctx, s, id)
}

func (l *Ledger) confirm(ctx context.Context, s *session.Session, orderID string) (Order, error) {
	if len(s.Cart) == 0 {
		return Order{}, ErrEmptyCart
	}

	o := Order{
		ID:          orderID,
		CustomerID:  s.CustomerID,
		Status:      StatusConfirmed,
		TotalAmount: cart.Total(s.Cart),
		Currency:    DefaultCurrency,
		CreatedAt:   l.now().UTC(),
	}
	for _, line := range s.Cart {
		o.Items = append(o.Items, Item{
			ProductID:   line.ProductID,
			Name:        line.Name,
			Quantity:    line.Quantity,
			PriceAtTime: line.UnitPrice,
		})
	}

	// Reserve in product id order so concurrent confirmations lock rows consistently.
	lines := append([]session.CartLine(nil), s.Cart...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	err := l.uow.Do(ctx, func(ctx context.Context, tx Tx) error {
		reserved := make([]session.CartLine, 0, len(lines))
		for _, line := range lines {
			ok, err := tx.TryDecrement(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return release(ctx, tx, reserved, fmt.Errorf("reserve %s: %w", line.ProductID, err))
			}
			if !ok {
				return release(ctx, tx, reserved, &apperror.InsufficientStockError{
					ProductID: line.ProductID,
					Name:      line.Name,
					Requested: line.Quantity,
				})
			}
			reserved = append(reserved, line)
		}

		if err := tx.CreateOrder(ctx, &o); err != nil {
			return release(ctx, tx, reserved, fmt.Errorf("create order: %w", err))
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.ClearCart()
	return o, nil
}

// release hands back every reservation and returns cause. A failed hand-back
// turns the outcome into a storage error so the event is retried.
func release(ctx context.Context, tx Tx, reserved []session.CartLine, cause error) error {
	var errs []error
	for i := len(reserved) - 1; i >= 0; i-- {
		if err := tx.Increment(ctx, reserved[i].ProductID, reserved[i].Quantity); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", reserved[i].ProductID, err))
		}
	}
	if len(errs) > 0 {
		return apperror.Unavailable(errors.Join(append(errs, cause)...))
	}
	return cause
}
