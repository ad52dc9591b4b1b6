package catalog

import (
	"context"
	"errors"
)

// ListingLimit is the size of the product window shown to customers.
const ListingLimit = 10

var ErrNotFound = errors.New("product not found")

type Reader interface {
	// ListActive returns active, in-stock products ordered by position then id.
	ListActive(ctx context.Context, limit int) ([]Product, error)
	// GetByID returns an active product or ErrNotFound.
	GetByID(ctx context.Context, productID string) (Product, error)
}

type StockCounter interface {
	// TryDecrement subtracts quantity only if the current stock covers it.
	TryDecrement(ctx context.Context, productID string, quantity int) (bool, error)
	Increment(ctx context.Context, productID string, quantity int) error
}

type Store interface {
	Reader
	StockCounter
	Upsert(ctx context.Context, p Product) error
	SetStock(ctx context.Context, productID string, stock int) error
}
