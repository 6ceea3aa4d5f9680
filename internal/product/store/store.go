// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkazakov/product-catalog/internal/product/model"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// Create persists a new product and returns it with the assigned ID.
	// Returns error if the product cannot be created.
	Create(ctx context.Context, p *model.Product) (*model.Product, error)

	// Update persists the given state to the existing row identified by its ID.
	// Returns ErrProductNotFound if the ID is unset or no such product exists.
	Update(ctx context.Context, p *model.Product) (*model.Product, error)

	// DeleteByID removes a product by its ID. The delete is permanent.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// FindAll returns every persisted product.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]model.Product, error)

	// FindByName returns all products whose name equals the given name.
	FindByName(ctx context.Context, name string) ([]model.Product, error)

	// FindByPrice returns all products whose price equals the given price.
	FindByPrice(ctx context.Context, price decimal.Decimal) ([]model.Product, error)

	// FindByAvailability returns all products with the given availability flag.
	FindByAvailability(ctx context.Context, available bool) ([]model.Product, error)

	// FindByCategory returns all products in the given category.
	FindByCategory(ctx context.Context, category model.Category) ([]model.Product, error)
}
