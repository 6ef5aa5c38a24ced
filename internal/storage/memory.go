package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hyperjump/ecorank/internal/models"
)

// MemoryStore is a process-lifetime SessionStore.
type MemoryStore struct {
	mu       sync.RWMutex
	id       string
	products []models.ScoredProduct
}

// NewMemoryStore creates an empty store with a fresh session ID.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{id: uuid.NewString()}
}

func (s *MemoryStore) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *MemoryStore) Products(ctx context.Context) ([]models.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneProducts(s.products), nil
}

func (s *MemoryStore) Save(ctx context.Context, products []models.ScoredProduct) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := models.CloneProducts(products)
	s.mu.Lock()
	s.products = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.products = nil
	s.id = uuid.NewString()
	s.mu.Unlock()
	return nil
}
