package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE users;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", "name", "name"},
		{"valid field returns field", "price", "name", "price"},
		{"invalid field returns default", "password", "name", "name"},
		{"sql injection attempt returns default", "name; DROP TABLE products;--", "name", "name"},
		{"case sensitive", "NAME", "name", "name"},
		{"whitespace around valid field returns field", "  expiry_date  ", "name", "expiry_date"},
		{"empty default with invalid field", "invalid", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, ProductSortFields, tt.defaultField))
		})
	}
}

func TestSortFieldsWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"ProductSortFields":    ProductSortFields,
		"CategorySortFields":   CategorySortFields,
		"ExpiryRuleSortFields": ExpiryRuleSortFields,
		"SupplierSortFields":   SupplierSortFields,
		"UserSortFields":       UserSortFields,
		"OrderSortFields":      OrderSortFields,
	}

	for name, whitelist := range whitelists {
		t.Run(name, func(t *testing.T) {
			assert.True(t, whitelist["created_at"], "%s should allow created_at", name)
			assert.False(t, whitelist["password_hash"])
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%pan amasado%", likePattern("  Pan Amasado "))
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), shared.ErrNotFound)
	assert.ErrorIs(t, translateError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)), shared.ErrAlreadyExists)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
}
