package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	// GetByID returns nil, nil when the order does not exist.
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
}

// Executor is satisfied by *pgxpool.Pool and pgx.Tx.
type Executor interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	exec Executor
}

func NewPostgresRepository(exec Executor) *PostgresRepository {
	return &PostgresRepository{exec: exec}
}

// WithExecutor returns a shallow copy using the provided executor (e.g., a transaction).
func (r *PostgresRepository) WithExecutor(exec Executor) *PostgresRepository {
	return &PostgresRepository{exec: exec}
}

// Create inserts the order and its items. Callers wanting atomicity pass a transaction
// through WithExecutor; the ledger always does.
func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	_, err := r.exec.Exec(ctx,
		`INSERT INTO orders (id, customer_id, status, total_amount, currency, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.CustomerID, string(o.Status), o.TotalAmount, o.Currency, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		_, err = r.exec.Exec(ctx,
			`INSERT INTO order_items (order_id, line_no, product_id, name, quantity, price_at_time)
             VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, i+1, it.ProductID, it.Name, it.Quantity, it.PriceAtTime,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	var status string
	err := r.exec.QueryRow(ctx,
		`SELECT id, customer_id, status, total_amount, currency, created_at
         FROM orders WHERE id = $1`,
		orderID,
	).Scan(&o.ID, &o.CustomerID, &status, &o.TotalAmount, &o.Currency, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	o.Status = Status(status)

	items, err := r.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	rows, err := r.exec.Query(ctx,
		`SELECT id, customer_id, status, total_amount, currency, created_at
         FROM orders WHERE customer_id = $1 ORDER BY created_at DESC, id`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	var orders []Order
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.CustomerID, &status, &o.TotalAmount, &o.Currency, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = Status(status)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := r.items(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *PostgresRepository) items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.exec.Query(ctx,
		`SELECT product_id, name, quantity, price_at_time
         FROM order_items WHERE order_id = $1 ORDER BY line_no`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.PriceAtTime); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]Order)}
}

func (m *MemoryRepository) Create(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.orders[o.ID]; exists {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	m.orders[o.ID] = clone(*o)
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	c := clone(o)
	return &c, nil
}

func (m *MemoryRepository) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, clone(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

func clone(o Order) Order {
	o.Items = append([]Item(nil), o.Items...)
	return o
}
