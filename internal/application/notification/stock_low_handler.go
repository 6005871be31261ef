package notification

import (
	"context"
	"fmt"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/notification"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// StockLowHandler notifies every staff member when a product reaches its minimum stock
type StockLowHandler struct {
	repo     notification.Repository
	userRepo identity.UserRepository
}

// NewStockLowHandler creates a new handler for stock.low events
func NewStockLowHandler(repo notification.Repository, userRepo identity.UserRepository) *StockLowHandler {
	return &StockLowHandler{repo: repo, userRepo: userRepo}
}

// EventTypes returns the event types this handler is interested in
func (h *StockLowHandler) EventTypes() []string {
	return []string{catalog.EventTypeStockLow}
}

// Handle processes a StockLowEvent
func (h *StockLowHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	low, ok := event.(*catalog.StockLowEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeStockLow, event.EventType())
	}

	staff, err := h.userRepo.FindStaff(ctx)
	if err != nil {
		return fmt.Errorf("load staff: %w", err)
	}
	if len(staff) == 0 {
		return nil
	}

	productID := low.ProductID
	message := fmt.Sprintf("Stock bajo: %s tiene %d unidades (mínimo %d)",
		low.ProductName, low.CurrentStock, low.MinStock)

	batch := make([]*notification.Notification, 0, len(staff))
	for _, u := range staff {
		n, err := notification.New(u.ID, &productID, notification.KindLowStock, message)
		if err != nil {
			return err
		}
		batch = append(batch, n)
	}

	created, err := h.repo.Create(ctx, batch...)
	if err != nil {
		return fmt.Errorf("create low stock notifications: %w", err)
	}

	logger.L(ctx).Info("Low stock notifications created",
		zap.String("product_id", productID.String()),
		zap.Int64("recipients", created))
	return nil
}
