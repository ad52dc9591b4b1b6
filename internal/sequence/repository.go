package sequence

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Repository hands out producer-side sequence numbers per partition key.
type Repository interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, `
		INSERT INTO event_sequence (partition_key, last_sequence, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (partition_key)
		DO UPDATE SET last_sequence = event_sequence.last_sequence + 1, updated_at = NOW()
		RETURNING last_sequence
	`, partitionKey).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// MemoryRepository restarts from 1 with the process.
type MemoryRepository struct {
	mu   sync.Mutex
	last map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{last: make(map[string]int64)}
}

func (r *MemoryRepository) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[partitionKey]++
	return r.last[partitionKey], nil
}
