package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Field keys reported by ValidateProduct
const (
	FieldName           = "name"
	FieldPrice          = "price"
	FieldExpiryDate     = "expiry_date"
	FieldProductionDate = "production_date"
	FieldCurrentStock   = "current_stock"
	FieldMinStock       = "min_stock"
	FieldMaxStock       = "max_stock"
)

// ProductCandidate is a product record about to be persisted.
// Nil fields are "not present" and skip the checks that depend on them.
type ProductCandidate struct {
	Name           string
	Price          *decimal.Decimal
	ProductionDate *time.Time
	ExpiryDate     *time.Time
	CurrentStock   *int
	MinStock       *int
	MaxStock       *int
}

// ValidateProduct runs field and cross-field checks on a candidate.
// It returns a *shared.ValidationError keyed by field, or nil.
func ValidateProduct(c ProductCandidate) error {
	errs := shared.NewValidationError()

	if strings.TrimSpace(c.Name) == "" {
		errs.Add(FieldName, "name is required")
	} else if utf8.RuneCountInString(strings.TrimSpace(c.Name)) > 100 {
		errs.Add(FieldName, "name cannot exceed 100 characters")
	}

	if c.Price != nil {
		switch {
		case c.Price.IsNegative():
			errs.Add(FieldPrice, "price must be greater than or equal to 0")
		case !c.Price.Equal(c.Price.Round(2)):
			errs.Add(FieldPrice, "price cannot have more than 2 decimal places")
		}
	}

	if c.ProductionDate != nil && c.ExpiryDate != nil && dateOnly(*c.ExpiryDate).Before(dateOnly(*c.ProductionDate)) {
		errs.Add(FieldExpiryDate, "expiry date cannot be earlier than production date")
	}

	for field, v := range map[string]*int{
		FieldCurrentStock: c.CurrentStock,
		FieldMinStock:     c.MinStock,
		FieldMaxStock:     c.MaxStock,
	} {
		if v != nil && *v < 0 {
			errs.Add(field, "stock values cannot be negative")
		}
	}

	if c.MinStock != nil && c.MaxStock != nil && *c.MinStock >= *c.MaxStock {
		errs.Add(FieldMinStock, "minimum stock must be lower than maximum stock")
	}

	if c.CurrentStock != nil && c.MinStock != nil && c.MaxStock != nil {
		if *c.CurrentStock < *c.MinStock || *c.CurrentStock > *c.MaxStock {
			errs.Add(FieldCurrentStock, "current stock must be between minimum and maximum stock")
		}
	}

	return errs.OrNil()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
