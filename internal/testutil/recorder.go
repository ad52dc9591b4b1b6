package testutil

import (
	"context"
	"sync"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/gateway"
)

// Recorder is a gateway.Sender that keeps every message it is asked to send.
// When Err is set, Send fails and records nothing.
type Recorder struct {
	mu   sync.Mutex
	msgs []gateway.Message
	Err  error
}

func (r *Recorder) Send(ctx context.Context, msg gateway.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *Recorder) Messages() []gateway.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gateway.Message(nil), r.msgs...)
}
