package events

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/apperror"
)

const consumerTag = "chat-order-service"

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// StartChatInboundConsumer binds the inbound queue to the events exchange and
// handles deliveries until ctx is done.
func StartChatInboundConsumer(ctx context.Context, conn *amqp.Connection, handle HandlerFunc, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	queue, err := declareInboundTopology(ch)
	if err != nil {
		_ = ch.Close()
		return err
	}

	if err := ch.Qos(16, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	msgs, err := ch.Consume(
		queue,
		consumerTag,
		false, // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		defer ch.Close()
		consume(ctx, msgs, handle, log.With(zap.String("queue", queue)))
	}()
	return nil
}

func consume(ctx context.Context, msgs <-chan amqp.Delivery, handle HandlerFunc, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			log.Info("stopping chat inbound consumer")
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Warn("messages channel closed")
				return
			}
			settle(ctx, msg, handle, log)
		}
	}
}

func settle(ctx context.Context, msg amqp.Delivery, handle HandlerFunc, log *zap.Logger) {
	err := handle(ctx, msg.Body)
	if err == nil {
		_ = msg.Ack(false)
		return
	}

	requeue := !errors.Is(err, ErrMalformed) && apperror.IsRetryable(err)
	if requeue {
		log.Warn("chat message will be redelivered", zap.Error(err))
	} else {
		log.Error("chat message dropped", zap.Error(err), zap.ByteString("body", msg.Body))
	}
	_ = msg.Nack(false, requeue)
}
