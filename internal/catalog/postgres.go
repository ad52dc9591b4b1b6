package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Executor is the subset of pgx used by the store; both *pgxpool.Pool and pgx.Tx satisfy it.
type Executor interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	exec Executor
}

func NewPostgresStore(exec Executor) *PostgresStore {
	return &PostgresStore{exec: exec}
}

// WithExecutor returns a shallow copy using the provided executor (e.g., a transaction).
func (s *PostgresStore) WithExecutor(exec Executor) *PostgresStore {
	return &PostgresStore{exec: exec}
}

const productColumns = `id, name, description, price, stock, active, position`

func (s *PostgresStore) ListActive(ctx context.Context, limit int) ([]Product, error) {
	rows, err := s.exec.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE active AND stock > 0
		ORDER BY position, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Active, &p.Position); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return products, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, productID string) (Product, error) {
	var p Product
	err := s.exec.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id=$1 AND active
	`, productID).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Active, &p.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) TryDecrement(ctx context.Context, productID string, quantity int) (bool, error) {
	tag, err := s.exec.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id=$1 AND active AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) Increment(ctx context.Context, productID string, quantity int) error {
	_, err := s.exec.Exec(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id=$1
	`, productID, quantity)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, p Product) error {
	_, err := s.exec.Exec(ctx, `
		INSERT INTO products (id, name, description, price, stock, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			active = EXCLUDED.active,
			updated_at = now()
	`, p.ID, p.Name, p.Description, p.Price, p.Stock, p.Active)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetStock(ctx context.Context, productID string, stock int) error {
	tag, err := s.exec.Exec(ctx, `
		UPDATE products SET stock=$2, updated_at=now() WHERE id=$1
	`, productID, stock)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
