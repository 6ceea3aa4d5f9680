package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	perrors "github.com/pkazakov/product-catalog/internal/product/errors"
	"github.com/pkazakov/product-catalog/internal/product/model"
)

// inMemory implements ProductStore using an in-memory map.
// Useful for tests and small deployments without a database.
type inMemory struct {
	mu       sync.RWMutex
	products map[uuid.UUID]model.Product
}

// NewInMemoryStore creates a new instance of ProductStore backed by a map.
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[uuid.UUID]model.Product),
	}
}

// Create assigns a fresh ID and stores a copy of the product.
func (s *inMemory) Create(_ context.Context, p *model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *p
	created.ID = uuid.New()
	created.CreatedAt = time.Now().UTC()
	s.products[created.ID] = created

	return &created, nil
}

// Update replaces the stored state of an existing product.
func (s *inMemory) Update(_ context.Context, p *model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	updated := *p
	updated.CreatedAt = existing.CreatedAt
	s.products[p.ID] = updated

	return &updated, nil
}

// DeleteByID deletes a product by its ID.
func (s *inMemory) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return perrors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return &p, nil
}

// FindAll retrieves all products. Order is unspecified.
func (s *inMemory) FindAll(_ context.Context) ([]model.Product, error) {
	return s.filter(func(model.Product) bool { return true }), nil
}

// FindByName retrieves all products with the given name.
func (s *inMemory) FindByName(_ context.Context, name string) ([]model.Product, error) {
	return s.filter(func(p model.Product) bool { return p.Name == name }), nil
}

// FindByPrice retrieves all products with the given price.
// Prices compare by numeric value, so 12.5 and 12.50 match.
func (s *inMemory) FindByPrice(_ context.Context, price decimal.Decimal) ([]model.Product, error) {
	return s.filter(func(p model.Product) bool { return p.Price.Equal(price) }), nil
}

// FindByAvailability retrieves all products with the given availability flag.
func (s *inMemory) FindByAvailability(_ context.Context, available bool) ([]model.Product, error) {
	return s.filter(func(p model.Product) bool { return p.Available == available }), nil
}

// FindByCategory retrieves all products in the given category.
func (s *inMemory) FindByCategory(_ context.Context, category model.Category) ([]model.Product, error) {
	return s.filter(func(p model.Product) bool { return p.Category == category }), nil
}

func (s *inMemory) filter(match func(model.Product) bool) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if match(p) {
			list = append(list, p)
		}
	}
	return list
}
