package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// FilterUnread restricts listings to unread notifications
const FilterUnread = "unread"

// Repository defines the interface for notification persistence
type Repository interface {
	// FindByID finds a notification by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByUser lists a user's notifications, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Notification, error)

	// CountByUser counts a user's notifications matching the filter
	CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)

	// Create inserts notifications and returns how many were stored.
	// Rows whose (user, dedup key) already exists are skipped.
	Create(ctx context.Context, notifications ...*Notification) (int64, error)

	// Save updates an existing notification
	Save(ctx context.Context, n *Notification) error

	// MarkAllRead flags every unread notification of the user and returns how many changed
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}
