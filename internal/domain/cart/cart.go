package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// MaxLineQuantity caps a single cart line
const MaxLineQuantity = 999

// Item is one cart line
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart maps product ids to requested quantities for one session.
// It is not persisted in the database; its lifetime is the session's.
type Cart struct {
	SessionKey string    `json:"session_key"`
	Items      []Item    `json:"items"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// New returns an empty cart for the session
func New(sessionKey string) *Cart {
	return &Cart{SessionKey: sessionKey, Items: []Item{}, UpdatedAt: time.Now()}
}

// Add merges qty into the existing line for productID, or appends a new line
func (c *Cart) Add(productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return shared.FieldError("quantity", "quantity must be greater than 0")
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if c.Items[i].Quantity+qty > MaxLineQuantity {
				return shared.FieldError("quantity", "quantity exceeds the per-line limit")
			}
			c.Items[i].Quantity += qty
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	if qty > MaxLineQuantity {
		return shared.FieldError("quantity", "quantity exceeds the per-line limit")
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty, AddedAt: time.Now()})
	c.UpdatedAt = time.Now()
	return nil
}

// SetQuantity overwrites the quantity of a line; zero removes it
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) error {
	if qty < 0 {
		return shared.FieldError("quantity", "quantity cannot be negative")
	}
	if qty > MaxLineQuantity {
		return shared.FieldError("quantity", "quantity exceeds the per-line limit")
	}
	if qty == 0 {
		c.Remove(productID)
		return nil
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty, AddedAt: time.Now()})
	c.UpdatedAt = time.Now()
	return nil
}

// Remove drops the line for productID if present
func (c *Cart) Remove(productID uuid.UUID) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// Quantity returns the requested quantity for productID
func (c *Cart) Quantity(productID uuid.UUID) int {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}

// Snapshot returns a copy of the lines
func (c *Cart) Snapshot() []Item {
	out := make([]Item, len(c.Items))
	copy(out, c.Items)
	return out
}

// ProductIDs lists the products in the cart in insertion order
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

// TotalUnits sums all quantities
func (c *Cart) TotalUnits() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clear removes every line
func (c *Cart) Clear() {
	c.Items = []Item{}
	c.UpdatedAt = time.Now()
}
