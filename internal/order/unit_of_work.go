package order

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/catalog"
)

// Tx is the view of storage a confirmation runs against.
type Tx interface {
	catalog.StockCounter
	CreateOrder(ctx context.Context, o *Order) error
}

// UnitOfWork runs fn so that its writes either all land or none are kept.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// TxBeginner matches (*pgxpool.Pool).BeginTx.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// PostgresUnitOfWork wraps stock updates and the order insert in one transaction.
type PostgresUnitOfWork struct {
	pool   TxBeginner
	stock  *catalog.PostgresStore
	orders *PostgresRepository
}

func NewPostgresUnitOfWork(pool TxBeginner, stock *catalog.PostgresStore, orders *PostgresRepository) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{pool: pool, stock: stock, orders: orders}
}

func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(ctx, postgresTx{stock: u.stock.WithExecutor(tx), orders: u.orders.WithExecutor(tx)}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type postgresTx struct {
	stock  *catalog.PostgresStore
	orders *PostgresRepository
}

func (t postgresTx) TryDecrement(ctx context.Context, productID string, quantity int) (bool, error) {
	return t.stock.TryDecrement(ctx, productID, quantity)
}

func (t postgresTx) Increment(ctx context.Context, productID string, quantity int) error {
	return t.stock.Increment(ctx, productID, quantity)
}

func (t postgresTx) CreateOrder(ctx context.Context, o *Order) error {
	return t.orders.Create(ctx, o)
}

// MemoryUnitOfWork applies writes directly; the ledger's compensation undoes partial work.
type MemoryUnitOfWork struct {
	stock  catalog.StockCounter
	orders Repository
}

func NewMemoryUnitOfWork(stock catalog.StockCounter, orders Repository) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{stock: stock, orders: orders}
}

func (u *MemoryUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return fn(ctx, memoryTx{stock: u.stock, orders: u.orders})
}

type memoryTx struct {
	stock  catalog.StockCounter
	orders Repository
}

func (t memoryTx) TryDecrement(ctx context.Context, productID string, quantity int) (bool, error) {
	return t.stock.TryDecrement(ctx, productID, quantity)
}

func (t memoryTx) Increment(ctx context.Context, productID string, quantity int) error {
	return t.stock.Increment(ctx, productID, quantity)
}

func (t memoryTx) CreateOrder(ctx context.Context, o *Order) error {
	return t.orders.Create(ctx, o)
}
