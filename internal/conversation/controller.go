// Package conversation turns inbound chat messages into session changes,
// orders, and replies.
package conversation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/apperror"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/dedup"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/gateway"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/session"
)

var ErrNoCustomer = &apperror.ValidationError{Message: "customer id must contain digits"}

// Inbound is a chat message as delivered by the messaging gateway.
type Inbound struct {
	MessageID  string `json:"messageId"`
	CustomerID string `json:"customerId"`
	Text       string `json:"text"`
}

type Result struct {
	Replies []gateway.Message
	// Order is set when the message confirmed an order.
	Order *order.Order
	// Duplicate reports that MessageID was already handled; nothing was done.
	Duplicate bool
}

type Controller struct {
	sessions session.Store
	locker   session.Locker
	seen     dedup.Store
	engine   *cart.Engine
	ledger   *order.Ledger
	log      *zap.Logger
	now      func() time.Time
}

func NewController(
	sessions session.Store,
	locker session.Locker,
	seen dedup.Store,
	engine *cart.Engine,
	ledger *order.Ledger,
	log *zap.Logger,
) *Controller {
	return &Controller{
		sessions: sessions,
		locker:   locker,
		seen:     seen,
		engine:   engine,
		ledger:   ledger,
		log:      log,
		now:      time.Now,
	}
}

// Handle processes text from customerID without redelivery tracking.
func (c *Controller) Handle(ctx context.Context, customerID, text string) ([]gateway.Message, error) {
	res, err := c.HandleMessage(ctx, Inbound{CustomerID: customerID, Text: text})
	if err != nil {
		return nil, err
	}
	return res.Replies, nil
}

// HandleMessage runs one inbound message under the customer's lock. Business
// problems come back as replies. Any other error is retryable: no reply was
// produced and the stored session is untouched.
func (c *Controller) HandleMessage(ctx context.Context, in Inbound) (Result, error) {
	customerID := session.NormalizeCustomerID(in.CustomerID)
	if customerID == "" {
		return Result{}, ErrNoCustomer
	}

	cmd := Parse(in.Text)
	log := c.log.With(
		zap.String("customer_id", customerID),
		zap.String("command", cmd.Name()),
		zap.String("message_id", in.MessageID),
	)

	release, err := c.locker.Acquire(ctx, customerID)
	if err != nil {
		log.Warn("session lock not acquired", zap.Error(err))
		return Result{}, err
	}
	defer release()

	if in.MessageID != "" {
		seen, err := c.seen.Seen(ctx, in.MessageID)
		if err != nil {
			log.Error("dedup lookup failed", zap.Error(err))
			return Result{}, apperror.Unavailable(err)
		}
		if seen {
			log.Info("duplicate message ignored")
			return Result{Duplicate: true}, nil
		}
	}

	stored, err := c.sessions.Load(ctx, customerID)
	if err != nil {
		log.Error("load session failed", zap.Error(err))
		return Result{}, apperror.Unavailable(err)
	}

	work := stored.Clone()
	work.LastActivity = c.now().UTC()

	res, err := c.dispatch(ctx, &work, cmd, in.MessageID)
	if err != nil {
		if !apperror.IsUserFacing(err) {
			log.Error("command failed", zap.Error(err))
			return Result{}, apperror.Unavailable(err)
		}
		log.Info("command rejected", zap.Error(err))
		res = Result{Replies: []gateway.Message{text(customerID, rejection(cmd, err))}}
	}

	if err := c.sessions.Save(ctx, work); err != nil {
		log.Error("save session failed", zap.Error(err))
		return Result{}, apperror.Unavailable(err)
	}

	if in.MessageID != "" {
		if err := c.seen.MarkProcessed(ctx, in.MessageID); err != nil {
			log.Warn("mark message processed failed", zap.Error(err))
		}
	}

	if res.Order != nil {
		log.Info("order confirmed",
			zap.String("order_id", res.Order.ID),
			zap.Float64("total", res.Order.TotalAmount),
		)
	}
	log.Debug("message handled", zap.String("state", string(work.State)), zap.Int("replies", len(res.Replies)))
	return res, nil
}

func (c *Controller) dispatch(ctx context.Context, s *session.Session, cmd Command, messageID string) (Result, error) {
	id := s.CustomerID

	switch cmd := cmd.(type) {
	case Menu:
		s.ClearCart()
		return reply(withButtons(id, menuText(), menuButtons)), nil

	case Products, Add:
		return c.showProducts(ctx, s)

	case Cart:
		return c.showCart(s), nil

	case Checkout:
		if len(s.Cart) == 0 {
			return reply(text(id, msgCheckoutEmpty)), nil
		}
		res := c.showCart(s)
		s.SetState(session.StateConfirmingOrder)
		return res, nil

	case Confirm:
		o, err := c.ledger.ConfirmOnce(ctx, s, messageID)
		if err != nil {
			return Result{}, err
		}
		res := reply(text(id, orderConfirmedText(o)))
		res.Order = &o
		return res, nil

	case Cancel:
		return reply(text(id, cancelledText(s.ClearCart()))), nil

	case Remove:
		removed, err := c.engine.RemoveLine(s, cmd.Index)
		if err != nil {
			return Result{}, err
		}
		res := reply(text(id, removedText(removed.Name)))
		if len(s.Cart) == 0 {
			res.Replies = append(res.Replies, text(id, msgCartNowEmpty))
			return res, nil
		}
		res.Replies = append(res.Replies, c.showCart(s).Replies...)
		return res, nil

	case Number:
		if s.State == session.StateSelectingQuantity {
			line, err := c.engine.AddToCart(ctx, s, cmd.Value)
			if err != nil {
				return Result{}, err
			}
			return reply(text(id, addedText(line.Quantity, line.Name, cart.ItemCount(s.Cart)))), nil
		}
		if cmd.Value < 1 || cmd.Value > 20 {
			return reply(text(id, helpText())), nil
		}
		p, err := c.engine.SelectProduct(ctx, s, cmd.Value)
		if err != nil {
			return Result{}, err
		}
		return reply(text(id, selectionText(p))), nil

	case Unknown:
		return reply(text(id, helpText())), nil
	}

	return reply(text(id, helpText())), nil
}

func (c *Controller) showProducts(ctx context.Context, s *session.Session) (Result, error) {
	products, err := c.engine.Listing(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(products) == 0 {
		return reply(text(s.CustomerID, msgNoProducts)), nil
	}
	s.SetState(session.StateBrowsing)
	return reply(text(s.CustomerID, productListText(products))), nil
}

func (c *Controller) showCart(s *session.Session) Result {
	if len(s.Cart) == 0 {
		return reply(text(s.CustomerID, msgCartEmpty))
	}
	s.SetState(session.StateReviewingCart)
	return reply(withButtons(s.CustomerID, cartReviewText(s.Cart, cart.Total(s.Cart)), reviewButtons))
}

func rejection(cmd Command, err error) string {
	var stock *apperror.InsufficientStockError
	if errors.As(err, &stock) {
		if _, ok := cmd.(Confirm); ok {
			return checkoutStockText(stock.Name)
		}
		return lowStockText(stock.Available)
	}
	var v *apperror.ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	return helpText()
}

func reply(msgs ...gateway.Message) Result {
	return Result{Replies: msgs}
}

func text(customerID, body string) gateway.Message {
	return gateway.Message{CustomerID: customerID, Body: body}
}

func withButtons(customerID, body string, buttons []gateway.Button) gateway.Message {
	return gateway.Message{CustomerID: customerID, Body: body, Buttons: buttons}
}
