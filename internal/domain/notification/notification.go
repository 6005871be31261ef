package notification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// MaxMessageLength bounds Notification.Message
const MaxMessageLength = 255

// Kind tells what raised the notification
type Kind string

const (
	KindLowStock Kind = "low_stock"
	KindExpiry   Kind = "expiry"
	KindOrder    Kind = "order"
)

// Notification is a message addressed to one user
type Notification struct {
	shared.BaseEntity
	UserID    uuid.UUID
	ProductID *uuid.UUID
	Kind      Kind
	Message   string
	Read      bool
	ReadAt    *time.Time
	DedupKey  string // empty when duplicates are allowed
}

// New creates an unread notification. Messages longer than MaxMessageLength are truncated.
func New(userID uuid.UUID, productID *uuid.UUID, kind Kind, message string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.FieldError("user_id", "user is required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, shared.FieldError("message", "message is required")
	}
	if r := []rune(message); len(r) > MaxMessageLength {
		message = string(r[:MaxMessageLength])
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
		Kind:       kind,
		Message:    message,
	}, nil
}

// WithDedupKey marks the notification as unique per key and user
func (n *Notification) WithDedupKey(key string) *Notification {
	n.DedupKey = key
	return n
}

// MarkRead flags the notification as read; already-read notifications are unchanged
func (n *Notification) MarkRead() {
	if n.Read {
		return
	}
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	n.UpdatedAt = now
}

// IsAddressedTo reports whether userID owns the notification
func (n *Notification) IsAddressedTo(userID uuid.UUID) bool {
	return n.UserID == userID
}

// ExpiryDedupKey identifies one expiry alert per product and day
func ExpiryDedupKey(productID uuid.UUID, day time.Time) string {
	return "expiry:" + productID.String() + ":" + day.Format("2006-01-02")
}
