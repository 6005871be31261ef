package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=999"`
}

// SetQuantityRequest overwrites a line quantity; 0 removes the line
type SetQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=999"`
}

// LineView is one cart line priced with the product's current price
type LineView struct {
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Brand          string          `json:"brand,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	AvailableStock int             `json:"available_stock"`
	// Shortage is set when the line asks for more units than are in stock
	Shortage bool `json:"shortage"`
}

// View is the priced content of a cart
type View struct {
	Items      []LineView      `json:"items"`
	TotalUnits int             `json:"total_units"`
	Total      decimal.Decimal `json:"total"`
	// Missing lists products that were in the cart but no longer exist
	Missing []uuid.UUID `json:"missing,omitempty"`
}
