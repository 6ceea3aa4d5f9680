// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	perrors "github.com/pkazakov/product-catalog/internal/product/errors"
	"github.com/pkazakov/product-catalog/internal/product/model"
	"github.com/pkazakov/product-catalog/internal/product/store"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindAll returns every persisted product.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByName returns all products whose name equals the given name.
	FindByName(ctx context.Context, name string) ([]ProductDto, error)

	// FindByPrice returns all products whose price equals the given decimal text.
	// Returns ErrValidation if the price is not valid decimal text.
	FindByPrice(ctx context.Context, price string) ([]ProductDto, error)

	// FindByAvailability returns all products with the given availability flag.
	FindByAvailability(ctx context.Context, available bool) ([]ProductDto, error)

	// FindByCategory returns all products in the named category.
	// Returns ErrValidation if the category name is not recognized.
	FindByCategory(ctx context.Context, category string) ([]ProductDto, error)

	// Create adds a new product to the system and returns it with its assigned ID.
	// Returns ErrValidation if required fields are missing or malformed.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update persists new field values to an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID,
	// ErrValidation if the new state is malformed.
	Update(ctx context.Context, id uuid.UUID, product ProductCreateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID. Deleting a product that does
	// not exist, including one already deleted, returns ErrProductNotFound.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductCreateDto represents the data transfer object for creating or
// replacing a product. Price travels as decimal text and category as its
// symbolic name.
type ProductCreateDto struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description"`
	Price       string `json:"price"       validate:"required"`
	Available   *bool  `json:"available"   validate:"required"`
	Category    string `json:"category"    validate:"required"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Available   bool   `json:"available"`
	Category    string `json:"category"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	return toDto(product), nil
}

// FindAll retrieves every persisted product as ProductDTOs.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// FindByName retrieves all products whose name equals the given name.
func (s *Service) FindByName(ctx context.Context, name string) ([]ProductDto, error) {
	products, err := s.repository.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by name %q: %w", name, err)
	}
	return toDtos(products), nil
}

// FindByPrice retrieves all products whose price equals the given decimal text.
func (s *Service) FindByPrice(ctx context.Context, price string) ([]ProductDto, error) {
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid price %q", perrors.ErrValidation, price)
	}
	products, err := s.repository.FindByPrice(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by price %s: %w", price, err)
	}
	return toDtos(products), nil
}

// FindByAvailability retrieves all products with the given availability flag.
func (s *Service) FindByAvailability(ctx context.Context, available bool) ([]ProductDto, error) {
	products, err := s.repository.FindByAvailability(ctx, available)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by availability: %w", err)
	}
	return toDtos(products), nil
}

// FindByCategory retrieves all products in the named category.
func (s *Service) FindByCategory(ctx context.Context, category string) ([]ProductDto, error) {
	parsed, err := model.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	products, err := s.repository.FindByCategory(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by category %s: %w", category, err)
	}
	return toDtos(products), nil
}

// Create validates the DTO, persists a new product and returns it with its ID.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := toModel(product)
	if err != nil {
		return nil, err
	}
	created, err := s.repository.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return toDto(created), nil
}

// Update validates the DTO and persists it to the product with the given ID.
func (s *Service) Update(ctx context.Context, id uuid.UUID, product ProductCreateDto) (*ProductDto, error) {
	p, err := toModel(product)
	if err != nil {
		return nil, err
	}
	p.ID = id
	updated, err := s.repository.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteByID(ctx, id)
}

// toModel converts a create DTO to a validated model.Product.
func toModel(dto ProductCreateDto) (*model.Product, error) {
	price, err := decimal.NewFromString(dto.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid price %q", perrors.ErrValidation, dto.Price)
	}
	category, err := model.ParseCategory(dto.Category)
	if err != nil {
		return nil, err
	}
	available := false
	if dto.Available != nil {
		available = *dto.Available
	}
	p := &model.Product{
		Name:        dto.Name,
		Description: dto.Description,
		Price:       price,
		Available:   available,
		Category:    category,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// toDto converts a model.Product to a ProductDto.
func toDto(product *model.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.String(),
		Available:   product.Available,
		Category:    product.Category.String(),
	}
}

func toDtos(products []model.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i, item := range products {
		dtos[i] = *toDto(&item)
	}
	return dtos
}
