package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewNotFoundError("product", uuid.New())
	wrapped := fmt.Errorf("load product: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInsufficientStock))
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapDomainError("CONCURRENCY_CONFLICT", "stock changed", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestValidationError(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.OrNil())

	v.Add("price", "must not be negative")
	v.Add("name", "is required")
	v.Add("name", "too long")

	err := v.OrNil()
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"name", "price"}, v.FieldNames())
	assert.Equal(t, "validation failed: name: is required; too long, price: must not be negative", err.Error())

	var target *ValidationError
	assert.True(t, errors.As(fmt.Errorf("create: %w", err), &target))
	assert.Len(t, target.Fields["name"], 2)
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, Filter{Page: 3, PageSize: 10}.Offset())
	assert.Equal(t, 0, Filter{Page: 0, PageSize: 10}.Offset())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPaginated([]int{}, 0, 1, 0)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 0, p.TotalPages)
}
