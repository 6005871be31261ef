package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/notification"
)

// ListFilter filters the caller's notifications
type ListFilter struct {
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	UnreadOnly bool `form:"unread"`
}

// Response is the public view of a notification
type Response struct {
	ID        uuid.UUID  `json:"id"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Kind      string     `json:"kind"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToResponse converts a domain notification
func ToResponse(n *notification.Notification) Response {
	return Response{
		ID:        n.ID,
		ProductID: n.ProductID,
		Kind:      string(n.Kind),
		Message:   n.Message,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
