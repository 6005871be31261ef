// Package notification delivers in-app messages to staff and customers.
package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/notification"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Service exposes a user's notifications
type Service struct {
	repo notification.Repository
}

// NewService creates a new notification Service
func NewService(repo notification.Repository) *Service {
	return &Service{repo: repo}
}

// List returns the user's notifications, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, f ListFilter) (*shared.Paginated[Response], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.UnreadOnly {
		filter.Filters = map[string]interface{}{notification.FilterUnread: true}
	}

	total, err := s.repo.CountByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]Response, len(items))
	for i := range items {
		out[i] = ToResponse(&items[i])
	}
	page := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UnreadCount returns how many unread notifications the user has
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	filter := shared.DefaultFilter()
	filter.Filters = map[string]interface{}{notification.FilterUnread: true}
	return s.repo.CountByUser(ctx, userID, filter)
}

// MarkRead flags one notification as read. Notifications of other users
// are reported as not found.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) (*Response, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Notification", id)
		}
		return nil, err
	}
	if !n.IsAddressedTo(userID) {
		return nil, shared.NewNotFoundError("Notification", id)
	}

	if !n.Read {
		n.MarkRead()
		if err := s.repo.Save(ctx, n); err != nil {
			return nil, err
		}
	}

	resp := ToResponse(n)
	return &resp, nil
}

// MarkAllRead flags every unread notification of the user
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (*MarkAllReadResponse, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MarkAllReadResponse{Updated: n}, nil
}
