package events

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "ecommerce.events"

	// Consumed from the messaging gateway.
	ChatInboundRoutingKey = "chat.inbound.v1"
	// Produced by this service.
	ChatOutboundRoutingKey   = "chat.outbound.v1"
	OrderConfirmedRoutingKey = "order.confirmed.v1"

	serviceName = "chat-order-service-go"
)

// topology is the part of *amqp.Channel that declares exchanges and queues.
type topology interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// InboundQueue is the durable queue chat messages are consumed from.
func InboundQueue() string {
	return serviceName + "." + ChatInboundRoutingKey
}

// declareReplyTopology prepares the exchange that replies and order events go to.
// Consumers of chat.outbound and order.confirmed own their queues.
func declareReplyTopology(ch topology) error {
	if err := ch.ExchangeDeclare(EventsExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}
	return nil
}

// declareInboundTopology declares the exchange plus the durable inbound queue
// bound to chat.inbound, and returns the queue name.
func declareInboundTopology(ch topology) (string, error) {
	if err := declareReplyTopology(ch); err != nil {
		return "", err
	}

	queue := InboundQueue()
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, ChatInboundRoutingKey, EventsExchange, false, nil); err != nil {
		return "", fmt.Errorf("bind %s to %s: %w", queue, ChatInboundRoutingKey, err)
	}
	return queue, nil
}
