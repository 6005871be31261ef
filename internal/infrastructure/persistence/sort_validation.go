package persistence

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stockroom/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"brand":         true,
	"price":         true,
	"current_stock": true,
	"expiry_date":   true,
}

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = map[string]bool{
	"created_at": true,
	"name":       true,
}

// ExpiryRuleSortFields contains allowed sort fields for expiry alert rules
var ExpiryRuleSortFields = map[string]bool{
	"created_at":  true,
	"name":        true,
	"days_before": true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"company_name": true,
	"contact_name": true,
	"rut":          true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"created_at":    true,
	"email":         true,
	"first_name":    true,
	"last_name":     true,
	"last_login_at": true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"total":      true,
}

// applyOrder orders by a whitelisted field, falling back to defaultOrder when none is given
func applyOrder(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "")
	if field == "" {
		return query.Order(defaultOrder)
	}
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
}

// applyPagination applies offset and limit when the filter asks for a page
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// foldKey case-folds a value for comparison against LOWER(column)
func foldKey(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}

// likePattern builds a case-folded LIKE pattern for case-insensitive search on
// both postgres and sqlite
func likePattern(search string) string {
	return "%" + foldKey(search) + "%"
}

// Postgres SQLSTATE codes that signal a transaction lost a race and may be retried
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// translateError maps GORM errors to domain errors
func translateError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.WrapDomainError(shared.ErrAlreadyExists.Code, shared.ErrAlreadyExists.Message, err)
	case errors.As(err, &pgErr) && (pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected):
		return shared.WrapDomainError(shared.ErrConcurrencyConflict.Code, shared.ErrConcurrencyConflict.Message, err)
	default:
		return err
	}
}
