package session

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Sessions never expire.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryStore) Load(ctx context.Context, customerID string) (Session, error) {
	if x, found := m.cache.Get(customerID); found {
		return x.(Session).Clone(), nil
	}
	return New(customerID), nil
}

func (m *MemoryStore) Save(ctx context.Context, s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.cache.Set(s.CustomerID, s.Clone(), cache.NoExpiration)
	return nil
}

func (m *MemoryStore) count() int {
	return m.cache.ItemCount()
}
