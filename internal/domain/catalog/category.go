package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/stockroom/backend/internal/domain/shared"
)

// DefaultCategoryLabel is shown for products without a category
const DefaultCategoryLabel = "Sin categoría"

// Category groups products
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
}

// NewCategory creates a new category
func NewCategory(name, description string) (*Category, error) {
	c := &Category{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := c.Update(name, description); err != nil {
		return nil, err
	}
	c.Version = 1
	return c, nil
}

// Update changes name and description
func (c *Category) Update(name, description string) error {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return shared.FieldError("name", "category name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.FieldError("name", "category name cannot exceed 100 characters")
	}
	if utf8.RuneCountInString(description) > 100 {
		return shared.FieldError("description", "description cannot exceed 100 characters")
	}
	c.Name = name
	c.Description = description
	c.Touch()
	c.IncrementVersion()
	return nil
}
