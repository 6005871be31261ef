package order

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// StockError reports a cart line that cannot be served from current stock
type StockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

// Error implements the error interface
func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// Unwrap lets errors.Is(err, shared.ErrInsufficientStock) match
func (e *StockError) Unwrap() error {
	return shared.ErrInsufficientStock
}

// ErrEmptyCart is returned when placing an order from an empty cart
var ErrEmptyCart = shared.FieldError("cart", "cart is empty")
