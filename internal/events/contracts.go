package events

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/gateway"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/order"
)

const (
	ChatInboundEventName    = "ChatMessageReceived"
	ChatOutboundEventName   = "ChatReplyRequested"
	OrderConfirmedEventName = "OrderConfirmed"

	chatInboundSchema    = "contracts/events/chat/ChatMessageReceived.v1.payload.schema.json"
	chatOutboundSchema   = "contracts/events/chat/ChatReplyRequested.v1.payload.schema.json"
	orderConfirmedSchema = "contracts/events/order/OrderConfirmed.v1.payload.schema.json"
)

// ChatInboundPayload is a chat message already normalized by the messaging gateway.
type ChatInboundPayload struct {
	MessageID  string    `json:"messageId"`
	CustomerID string    `json:"customerId"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"receivedAt,omitempty"`
}

type ChatOutboundPayload struct {
	CustomerID string           `json:"customerId"`
	Body       string           `json:"body"`
	Buttons    []gateway.Button `json:"buttons,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

type OrderConfirmedPayload struct {
	OrderID     string       `json:"orderId"`
	CustomerID  string       `json:"customerId"`
	Status      string       `json:"status"`
	Items       []order.Item `json:"items"`
	TotalAmount float64      `json:"totalAmount"`
	Currency    string       `json:"currency"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// LegacyOrderConfirmed is published when enveloped events are switched off.
type LegacyOrderConfirmed struct {
	EventType string `json:"eventType"`
	OrderConfirmedPayload
}

type LegacyChatOutbound struct {
	EventType string `json:"eventType"`
	ChatOutboundPayload
}

func orderConfirmedPayload(o order.Order) OrderConfirmedPayload {
	return OrderConfirmedPayload{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Status:      string(o.Status),
		Items:       o.Items,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		CreatedAt:   o.CreatedAt,
	}
}
