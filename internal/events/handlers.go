package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/conversation"
)

// ErrMalformed marks a delivery that can never be processed.
var ErrMalformed = errors.New("malformed event")

// HandlerFunc processes one delivery body.
type HandlerFunc func(ctx context.Context, body []byte) error

type MessageDispatcher interface {
	OnMessage(ctx context.Context, in conversation.Inbound) error
}

// ChatInboundHandler feeds chat.inbound events to the dispatcher. Both the
// enveloped and the plain payload shape are accepted.
func ChatInboundHandler(d MessageDispatcher, log *zap.Logger) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		in, err := decodeInbound(body)
		if err != nil {
			return err
		}

		if err := d.OnMessage(ctx, in); err != nil {
			return fmt.Errorf("handle chat message %s: %w", in.MessageID, err)
		}

		log.Debug("chat message handled",
			zap.String("message_id", in.MessageID),
			zap.String("customer_id", in.CustomerID),
		)
		return nil
	}
}

func decodeInbound(body []byte) (conversation.Inbound, error) {
	var probe struct {
		EventName string `json:"eventName"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return conversation.Inbound{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var p ChatInboundPayload
	if probe.EventName != "" {
		var env EventEnvelope[ChatInboundPayload]
		if err := json.Unmarshal(body, &env); err != nil {
			return conversation.Inbound{}, fmt.Errorf("%w: unmarshal ChatMessageReceived envelope: %w", ErrMalformed, err)
		}
		if err := env.Validate(ChatInboundEventName, EnvelopeVersion); err != nil {
			return conversation.Inbound{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		p = env.Payload
		if p.MessageID == "" {
			p.MessageID = env.EventID
		}
	} else if err := json.Unmarshal(body, &p); err != nil {
		return conversation.Inbound{}, fmt.Errorf("%w: unmarshal ChatMessageReceived: %w", ErrMalformed, err)
	}

	if p.CustomerID == "" {
		return conversation.Inbound{}, fmt.Errorf("%w: missing customerId", ErrMalformed)
	}
	return conversation.Inbound{MessageID: p.MessageID, CustomerID: p.CustomerID, Text: p.Text}, nil
}
