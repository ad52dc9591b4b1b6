package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/gateway"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/sequence"
)

// amqpPublisher is the subset of *amqp.Channel the publisher needs.
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	ch               amqpPublisher
	closer           func() error
	seqRepo          sequence.Repository
	publishEnveloped bool
	producer         string
	now              func() time.Time
}

type PublisherOptions struct {
	PublishEnveloped bool
	Producer         string
}

func NewPublisher(conn *amqp.Connection, seqRepo sequence.Repository, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareReplyTopology(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}

	p := newPublisher(ch, seqRepo, opts)
	p.closer = ch.Close
	return p, nil
}

func newPublisher(ch amqpPublisher, seqRepo sequence.Repository, opts PublisherOptions) *Publisher {
	producer := opts.Producer
	if producer == "" {
		producer = serviceName
	}
	return &Publisher{
		ch:               ch,
		seqRepo:          seqRepo,
		publishEnveloped: opts.PublishEnveloped,
		producer:         producer,
		now:              time.Now,
	}
}

func (p *Publisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

// Send hands an outbound chat message to the messaging gateway.
func (p *Publisher) Send(ctx context.Context, msg gateway.Message) error {
	payload := ChatOutboundPayload{
		CustomerID: msg.CustomerID,
		Body:       msg.Body,
		Buttons:    msg.Buttons,
		Timestamp:  p.now().UTC(),
	}

	if !p.publishEnveloped {
		body, err := json.Marshal(LegacyChatOutbound{EventType: ChatOutboundEventName, ChatOutboundPayload: payload})
		if err != nil {
			return fmt.Errorf("marshal ChatReplyRequested: %w", err)
		}
		return p.publishJSON(ctx, ChatOutboundRoutingKey, body)
	}

	env, err := buildEnvelope(ctx, p, ChatOutboundEventName, chatOutboundSchema, msg.CustomerID, EnvelopeMetadata{}, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal ChatReplyRequested envelope: %w", err)
	}
	return p.publishJSON(ctx, ChatOutboundRoutingKey, body)
}

func (p *Publisher) PublishOrderConfirmed(ctx context.Context, o order.Order) error {
	payload := orderConfirmedPayload(o)

	if !p.publishEnveloped {
		body, err := json.Marshal(LegacyOrderConfirmed{EventType: OrderConfirmedEventName, OrderConfirmedPayload: payload})
		if err != nil {
			return fmt.Errorf("marshal OrderConfirmed: %w", err)
		}
		return p.publishJSON(ctx, OrderConfirmedRoutingKey, body)
	}

	env, err := buildEnvelope(ctx, p, OrderConfirmedEventName, orderConfirmedSchema, o.CustomerID, EnvelopeMetadata{CorrelationID: o.ID}, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderConfirmed envelope: %w", err)
	}
	return p.publishJSON(ctx, OrderConfirmedRoutingKey, body)
}

func buildEnvelope[T any](ctx context.Context, p *Publisher, name, schema, partitionKey string, meta EnvelopeMetadata, payload T) (EventEnvelope[T], error) {
	seq, err := p.seqRepo.NextSequence(ctx, partitionKey)
	if err != nil {
		return EventEnvelope[T]{}, fmt.Errorf("reserve sequence: %w", err)
	}
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}
	return newEnvelope(name, schema, p.producer, partitionKey, uuid.NewString(), seq, p.now(), meta, payload), nil
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
