package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/cart"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Service manages session carts
type Service struct {
	store       cart.SessionStore
	productRepo catalog.ProductRepository
}

// NewService creates a new cart Service
func NewService(store cart.SessionStore, productRepo catalog.ProductRepository) *Service {
	return &Service{store: store, productRepo: productRepo}
}

// Add merges the requested quantity into the cart
func (s *Service) Add(ctx context.Context, sessionKey string, req AddItemRequest) (*View, error) {
	if req.Quantity <= 0 {
		return nil, shared.FieldError("quantity", "quantity must be greater than 0")
	}
	if _, err := s.product(ctx, req.ProductID); err != nil {
		return nil, err
	}

	c, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if err := c.Add(req.ProductID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, sessionKey, c); err != nil {
		return nil, err
	}

	logger.L(ctx).Debug("Cart item added",
		zap.String("product_id", req.ProductID.String()),
		zap.Int("quantity", c.Quantity(req.ProductID)),
	)
	return s.price(ctx, c)
}

// SetQuantity overwrites the quantity of a line
func (s *Service) SetQuantity(ctx context.Context, sessionKey string, productID uuid.UUID, req SetQuantityRequest) (*View, error) {
	c, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if req.Quantity > 0 && c.Quantity(productID) == 0 {
		if _, err := s.product(ctx, productID); err != nil {
			return nil, err
		}
	}
	if err := c.SetQuantity(productID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, sessionKey, c); err != nil {
		return nil, err
	}
	return s.price(ctx, c)
}

// Remove drops a line from the cart
func (s *Service) Remove(ctx context.Context, sessionKey string, productID uuid.UUID) (*View, error) {
	c, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if !c.Remove(productID) {
		return nil, shared.NewNotFoundError("CartItem", productID)
	}
	if err := s.store.Set(ctx, sessionKey, c); err != nil {
		return nil, err
	}
	return s.price(ctx, c)
}

// View returns the cart priced with current product data
func (s *Service) View(ctx context.Context, sessionKey string) (*View, error) {
	c, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, c)
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, sessionKey string) error {
	return s.store.Clear(ctx, sessionKey)
}

func (s *Service) product(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if id == uuid.Nil {
		return nil, shared.FieldError("product_id", "product is required")
	}
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsDeleted() {
		return nil, shared.NewNotFoundError("Product", id)
	}
	return p, nil
}

func (s *Service) price(ctx context.Context, c *cart.Cart) (*View, error) {
	view := &View{Items: make([]LineView, 0, len(c.Items)), Total: decimal.Zero}
	if c.IsEmpty() {
		return view, nil
	}

	products, err := s.productRepo.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range c.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			view.Missing = append(view.Missing, item.ProductID)
			continue
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, LineView{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Brand:          p.Brand,
			Quantity:       item.Quantity,
			UnitPrice:      p.Price,
			Subtotal:       subtotal,
			AvailableStock: p.CurrentStock,
			Shortage:       item.Quantity > p.CurrentStock,
		})
		view.TotalUnits += item.Quantity
		view.Total = view.Total.Add(subtotal)
	}
	view.Total = view.Total.Round(2)
	return view, nil
}
