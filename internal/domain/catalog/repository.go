package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Filter keys understood by ProductRepository.FindAll / Count
const (
	FilterCategoryID = "category_id"
	FilterInStock    = "in_stock"
	FilterLowStock   = "low_stock"
	// FilterText matches name or description only, unlike Filter.Search which also covers brand
	FilterText = "text"
)

// ProductRepository defines the interface for product persistence.
// Soft-deleted products are invisible to every finder.
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindExpiringBetween finds products whose expiry date falls in [from, to]
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]Product, error)

	// CountByCategory counts products in a category
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveWithLock updates a product only if its stored version matches
	SaveWithLock(ctx context.Context, product *Product) error

	// DecrementStock subtracts qty only when at least qty units remain.
	// It returns shared.ErrInsufficientStock when no row qualified.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error

	// IncrementStock adds qty back to the product
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// ExistsByName checks case-insensitively, ignoring excludeID when set
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NutritionRepository defines the interface for nutrition info persistence
type NutritionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*NutritionInfo, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]NutritionInfo, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, info *NutritionInfo) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RuleAssignment pairs a rule with the products it watches
type RuleAssignment struct {
	Rule       ExpiryAlertRule
	ProductIDs []uuid.UUID
}

// ExpiryRuleRepository defines the interface for expiry alert rule persistence
type ExpiryRuleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ExpiryAlertRule, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ExpiryAlertRule, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, rule *ExpiryAlertRule) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Attach links a product to a rule; a duplicate pair yields shared.ErrAlreadyExists
	Attach(ctx context.Context, productID, ruleID uuid.UUID) error
	Detach(ctx context.Context, productID, ruleID uuid.UUID) error
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ExpiryAlertRule, error)
	FindAssignments(ctx context.Context) ([]RuleAssignment, error)
}
