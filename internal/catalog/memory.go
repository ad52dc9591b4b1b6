package catalog

import (
	"context"
	"sync"
)

// MemoryStore keeps the catalog in insertion order. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	products []Product
	index    map[string]int
}

func NewMemoryStore(seed ...Product) *MemoryStore {
	s := &MemoryStore{index: make(map[string]int)}
	for _, p := range seed {
		s.upsertLocked(p)
	}
	return s
}

func (s *MemoryStore) ListActive(ctx context.Context, limit int) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, limit)
	for _, p := range s.products {
		if len(out) == limit {
			break
		}
		if p.Listable() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, productID string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[productID]
	if !ok || !s.products[i].Active {
		return Product{}, ErrNotFound
	}
	return s.products[i], nil
}

func (s *MemoryStore) TryDecrement(ctx context.Context, productID string, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[productID]
	if !ok || !s.products[i].Active || s.products[i].Stock < quantity {
		return false, nil
	}
	s.products[i].Stock -= quantity
	return true, nil
}

func (s *MemoryStore) Increment(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[productID]; ok {
		s.products[i].Stock += quantity
	}
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(p)
	return nil
}

func (s *MemoryStore) SetStock(ctx context.Context, productID string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[productID]
	if !ok {
		return ErrNotFound
	}
	s.products[i].Stock = stock
	return nil
}

// Stock returns the raw stock count, including inactive products.
func (s *MemoryStore) Stock(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.index[productID]; ok {
		return s.products[i].Stock
	}
	return 0
}

func (s *MemoryStore) upsertLocked(p Product) {
	if i, ok := s.index[p.ID]; ok {
		p.Position = s.products[i].Position
		s.products[i] = p
		return
	}
	p.Position = int64(len(s.products) + 1)
	s.index[p.ID] = len(s.products)
	s.products = append(s.products, p)
}
