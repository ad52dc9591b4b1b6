package conversation

import (
	"context"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/gateway"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/order"
)

// OrderPublisher announces confirmed orders to the rest of the system.
type OrderPublisher interface {
	PublishOrderConfirmed(ctx context.Context, o order.Order) error
}

// Dispatcher connects the controller to outbound delivery.
type Dispatcher struct {
	controller *Controller
	sender     gateway.Sender
	publisher  OrderPublisher
	log        *zap.Logger
}

// NewDispatcher builds a Dispatcher. publisher may be nil.
func NewDispatcher(controller *Controller, sender gateway.Sender, publisher OrderPublisher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{controller: controller, sender: sender, publisher: publisher, log: log}
}

// Handle runs the message through the controller and announces any confirmed
// order. Replies are returned to the caller rather than sent.
func (d *Dispatcher) Handle(ctx context.Context, in Inbound) (Result, error) {
	res, err := d.controller.HandleMessage(ctx, in)
	if err != nil {
		return Result{}, err
	}

	if res.Order != nil && d.publisher != nil {
		if err := d.publisher.PublishOrderConfirmed(ctx, *res.Order); err != nil {
			d.log.Warn("publish order confirmed failed",
				zap.String("order_id", res.Order.ID),
				zap.Error(err),
			)
		}
	}
	return res, nil
}

// OnMessage handles the message and sends every reply. Delivery failures are
// logged only; the session change has already been persisted.
func (d *Dispatcher) OnMessage(ctx context.Context, in Inbound) error {
	res, err := d.Handle(ctx, in)
	if err != nil {
		return err
	}

	for _, msg := range res.Replies {
		if err := d.sender.Send(ctx, msg); err != nil {
			d.log.Error("send reply failed",
				zap.String("customer_id", msg.CustomerID),
				zap.String("message_id", in.MessageID),
				zap.Error(err),
			)
		}
	}
	return nil
}
