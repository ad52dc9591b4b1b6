// Package dedup remembers which inbound chat messages were already handled,
// so a webhook redelivery does not run a command twice.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/patrickmn/go-cache"
)

// Retention is how long a message id is remembered by the memory store.
const Retention = 24 * time.Hour

type Store interface {
	Seen(ctx context.Context, messageID string) (bool, error)
	MarkProcessed(ctx context.Context, messageID string) error
}

type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	pool DBPool
}

func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Seen(ctx context.Context, messageID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, `
		SELECT 1 FROM processed_messages WHERE message_id = $1
	`, messageID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select processed_message: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) MarkProcessed(ctx context.Context, messageID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO processed_messages (message_id, processed_at)
		VALUES ($1, NOW())
		ON CONFLICT (message_id) DO NOTHING
	`, messageID)
	if err != nil {
		return fmt.Errorf("insert processed_message: %w", err)
	}
	return nil
}

type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(Retention, time.Hour)}
}

func (s *MemoryStore) Seen(ctx context.Context, messageID string) (bool, error) {
	_, found := s.cache.Get(messageID)
	return found, nil
}

func (s *MemoryStore) MarkProcessed(ctx context.Context, messageID string) error {
	s.cache.SetDefault(messageID, struct{}{})
	return nil
}
