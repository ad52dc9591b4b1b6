package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
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

func (r *PostgresStore) Load(ctx context.Context, customerID string) (Session, error) {
	s := New(customerID)

	var (
		state    string
		selected []byte
		cart     []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT state, selected_product, cart, last_activity
		FROM chat_sessions
		WHERE customer_id=$1
	`, customerID).Scan(&state, &selected, &cart, &s.LastActivity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, nil
		}
		return Session{}, fmt.Errorf("select session: %w", err)
	}

	s.State = State(state)
	if len(selected) > 0 {
		var sel SelectedProduct
		if err := json.Unmarshal(selected, &sel); err != nil {
			return Session{}, fmt.Errorf("decode selected product: %w", err)
		}
		s.SelectedProduct = &sel
	}
	if len(cart) > 0 {
		if err := json.Unmarshal(cart, &s.Cart); err != nil {
			return Session{}, fmt.Errorf("decode cart: %w", err)
		}
	}
	return s, nil
}

func (r *PostgresStore) Save(ctx context.Context, s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	var selected []byte
	if s.SelectedProduct != nil {
		b, err := json.Marshal(s.SelectedProduct)
		if err != nil {
			return fmt.Errorf("encode selected product: %w", err)
		}
		selected = b
	}

	lines := s.Cart
	if lines == nil {
		lines = []CartLine{}
	}
	cart, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO chat_sessions (customer_id, state, selected_product, cart, last_activity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (customer_id) DO UPDATE SET
			state = EXCLUDED.state,
			selected_product = EXCLUDED.selected_product,
			cart = EXCLUDED.cart,
			last_activity = EXCLUDED.last_activity
	`, s.CustomerID, string(s.State), selected, cart, s.LastActivity)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}
