package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stockroom/backend/internal/domain/shared"
)

// ExpiryAlertRule raises an alert DaysBefore days ahead of a product's expiry date
type ExpiryAlertRule struct {
	shared.BaseEntity
	Name        string
	Description string
	DaysBefore  int
}

// NewExpiryAlertRule creates a rule
func NewExpiryAlertRule(name, description string, daysBefore int) (*ExpiryAlertRule, error) {
	r := &ExpiryAlertRule{BaseEntity: shared.NewBaseEntity()}
	if err := r.Update(name, description, daysBefore); err != nil {
		return nil, err
	}
	return r, nil
}

// Update changes the rule
func (r *ExpiryAlertRule) Update(name, description string, daysBefore int) error {
	errs := shared.NewValidationError()
	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "rule name is required")
	} else if utf8.RuneCountInString(name) > 100 {
		errs.Add("name", "rule name cannot exceed 100 characters")
	}
	if utf8.RuneCountInString(description) > 255 {
		errs.Add("description", "description cannot exceed 255 characters")
	}
	if daysBefore < 0 {
		errs.Add("days_before", "days before expiry cannot be negative")
	}
	if err := errs.OrNil(); err != nil {
		return err
	}

	r.Name = name
	r.Description = strings.TrimSpace(description)
	r.DaysBefore = daysBefore
	r.Touch()
	return nil
}

// Triggers reports whether the rule fires for product on the given day
func (r *ExpiryAlertRule) Triggers(product *Product, today time.Time) bool {
	if product == nil || product.IsDeleted() {
		return false
	}
	return product.ExpiresWithin(today, r.DaysBefore)
}
