package session

import "context"

// Store persists whole session values keyed by customer id.
type Store interface {
	// Load returns the stored session or a fresh Idle one. It never creates a row.
	Load(ctx context.Context, customerID string) (Session, error)
	Save(ctx context.Context, s Session) error
}
