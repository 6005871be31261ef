package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/order"
)

// Actor identifies who is acting on an order
type Actor struct {
	UserID uuid.UUID
	Staff  bool
}

// ListFilter pages a customer's own orders
type ListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AdminListFilter pages every order for staff
type AdminListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING PREPARING SHIPPED COMPLETED CANCELLED"`
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UpdateStatusRequest moves an order along its lifecycle
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PREPARING SHIPPED COMPLETED CANCELLED"`
}

// LineResponse is one order line with its frozen price
type LineResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse represents an order in API responses.
// Lines are only present on single-order reads.
type OrderResponse struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Status      order.Status    `json:"status"`
	StatusLabel string          `json:"status_label"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count,omitempty"`
	Lines       []LineResponse  `json:"lines,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		StatusLabel: o.Status.Label(),
		Total:       o.Total,
		ItemCount:   o.ItemCount(),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		CancelledAt: o.CancelledAt,
	}
	if len(o.Lines) > 0 {
		resp.Lines = make([]LineResponse, len(o.Lines))
		for i, l := range o.Lines {
			resp.Lines[i] = LineResponse{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				Subtotal:    l.Subtotal(),
			}
		}
	}
	return resp
}

func toOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
