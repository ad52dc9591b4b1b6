// Package gateway describes what the service hands to the messaging gateway.
// Delivery itself (WhatsApp, Twilio, ...) lives outside this service.
package gateway

import (
	"context"

	"go.uber.org/zap"
)

// Button is a quick-reply button. ID is the command text sent back when tapped.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Message struct {
	CustomerID string   `json:"customerId"`
	Body       string   `json:"body"`
	Buttons    []Button `json:"buttons,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes outbound messages to the log instead of delivering them.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info("outbound message",
		zap.String("customer_id", msg.CustomerID),
		zap.String("body", msg.Body),
		zap.Int("buttons", len(msg.Buttons)),
	)
	return nil
}
