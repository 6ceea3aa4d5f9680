// Package model defines the Product entity and its exchange format.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	perrors "github.com/pkazakov/product-catalog/internal/product/errors"
)

// Product represents a catalog product. ID is uuid.Nil until the product
// has been persisted; the store assigns it on create.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Available   bool
	Category    Category
	CreatedAt   time.Time
}

// Validate checks the invariants required before persisting a product.
// Returns ErrValidation describing the first violated rule.
func (p *Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name must not be empty", perrors.ErrValidation)
	}
	if len(p.Name) > 100 {
		return fmt.Errorf("%w: name must not exceed 100 characters", perrors.ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", perrors.ErrValidation)
	}
	if !p.Category.Known() || p.Category == CategoryUnknown {
		return fmt.Errorf("%w: category must be set", perrors.ErrValidation)
	}
	return nil
}

// Serialize renders the product as a plain field map. Price is rendered as
// exact decimal text and category as its symbolic name. The ID is not part
// of the exchange format.
func (p *Product) Serialize() map[string]any {
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.String(),
		"available":   p.Available,
		"category":    p.Category.String(),
	}
}

// Deserialize populates the product from a plain field map, the inverse of
// Serialize. Returns ErrValidation when a required key is missing, a value
// has the wrong shape, or the category is not a recognized member.
func (p *Product) Deserialize(data map[string]any) error {
	name, err := stringValue(data, "name")
	if err != nil {
		return err
	}
	description, err := stringValue(data, "description")
	if err != nil {
		return err
	}
	price, err := priceValue(data)
	if err != nil {
		return err
	}
	available, err := boolValue(data, "available")
	if err != nil {
		return err
	}
	categoryName, err := stringValue(data, "category")
	if err != nil {
		return err
	}
	category, err := ParseCategory(categoryName)
	if err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.Price = price
	p.Available = available
	p.Category = category
	return nil
}

func stringValue(data map[string]any, key string) (string, error) {
	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("%w: missing key %q", perrors.ErrValidation, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: key %q must be a string", perrors.ErrValidation, key)
	}
	return s, nil
}

func boolValue(data map[string]any, key string) (bool, error) {
	raw, ok := data[key]
	if !ok {
		return false, fmt.Errorf("%w: missing key %q", perrors.ErrValidation, key)
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: key %q must be a boolean", perrors.ErrValidation, key)
	}
	return b, nil
}

// priceValue accepts decimal text (the canonical exchange form) and, for
// convenience when the map comes from decoded JSON, a raw number.
func priceValue(data map[string]any) (decimal.Decimal, error) {
	raw, ok := data["price"]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: missing key %q", perrors.ErrValidation, "price")
	}
	switch v := raw.(type) {
	case string:
		price, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: invalid price %q", perrors.ErrValidation, v)
		}
		return price, nil
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: price must be decimal text", perrors.ErrValidation)
	}
}
