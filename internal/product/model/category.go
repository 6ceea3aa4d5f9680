package model

import (
	"fmt"

	perrors "github.com/pkazakov/product-catalog/internal/product/errors"
)

// Category classifies a product. It is stored as its numeric code and
// exchanged as its symbolic name.
type Category int16

const (
	CategoryUnknown Category = iota
	CategoryCloths
	CategoryFood
	CategoryHousewares
	CategoryAutomotive
	CategoryTools
)

var categoryNames = map[Category]string{
	CategoryUnknown:    "UNKNOWN",
	CategoryCloths:     "CLOTHS",
	CategoryFood:       "FOOD",
	CategoryHousewares: "HOUSEWARES",
	CategoryAutomotive: "AUTOMOTIVE",
	CategoryTools:      "TOOLS",
}

var categoriesByName = func() map[string]Category {
	m := make(map[string]Category, len(categoryNames))
	for c, name := range categoryNames {
		m[name] = c
	}
	return m
}()

// String returns the symbolic name of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Known reports whether the category is a member of the enumeration.
// CategoryUnknown is a known member; it is rejected separately on input.
func (c Category) Known() bool {
	_, ok := categoryNames[c]
	return ok
}

// ParseCategory resolves a symbolic name to its category.
// Returns ErrValidation if the name is not a recognized member.
func ParseCategory(name string) (Category, error) {
	c, ok := categoriesByName[name]
	if !ok {
		return CategoryUnknown, fmt.Errorf("%w: unknown category %q", perrors.ErrValidation, name)
	}
	return c, nil
}

// MarshalText renders the category as its symbolic name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a symbolic category name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
